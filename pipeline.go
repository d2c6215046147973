package pingrab

import (
	"context"
	"log/slog"
)

// FetchImages is the entry point the conversation layer calls. It returns up
// to count image references for the category, in discovery order, organic
// results first and synthetic placeholders topping up any shortfall. It never
// returns an error: total harvester failure degrades to an all-fallback
// result, and an empty slice means even the placeholder service is out of
// reach — callers should treat that as "try again later".
func (cfg *Config) FetchImages(ctx context.Context, category Category, count int, userID string) []ImageRef {
	cfg.defaults()

	if count <= 0 || !category.Valid() {
		return nil
	}
	if cfg.OnImageSearch != nil {
		cfg.OnImageSearch()
	}

	spec := category.Geometry()
	refs := make([]ImageRef, 0, count)
	attempts := 0
	adSkipped, formatSkipped, dupSkipped := 0, 0, 0

collecting:
	for _, query := range cfg.queryVariants(category) {
		if len(refs) >= count || attempts >= cfg.MaxAttempts {
			break
		}
		for _, cand := range cfg.Harvest(ctx, query) {
			if len(refs) >= count || attempts >= cfg.MaxAttempts {
				break collecting
			}
			attempts++

			if cfg.isAd(cand) {
				adSkipped++
				slog.Debug("pingrab: ad rejected", "url", cand.SourceURL, "alt", clip(cand.AltText, 50))
				continue
			}

			width, height := cfg.ResolveDimensions(ctx, cand.SourceURL)
			if !cfg.meetsGeometry(width, height, spec) {
				formatSkipped++
				slog.Debug("pingrab: geometry rejected", "url", cand.SourceURL, "width", width, "height", height, "category", category)
				continue
			}

			if cfg.Seen.Seen(userID, category, cand.SourceURL) {
				dupSkipped++
				continue
			}

			refs = append(refs, ImageRef{URL: cand.SourceURL, Provenance: Organic})
			cfg.Seen.Mark(userID, category, cand.SourceURL)
		}
	}

	slog.Info("pingrab: harvest done",
		"category", category,
		"organic", len(refs),
		"attempts", attempts,
		"ads_skipped", adSkipped,
		"format_skipped", formatSkipped,
		"dup_skipped", dupSkipped,
	)

	if shortfall := count - len(refs); shortfall > 0 {
		fallback := GenerateFallback(category, shortfall)
		if cfg.OnFallback != nil {
			cfg.OnFallback(category, len(fallback))
		}
		// Fallback entries skip the ad and geometry gates — they satisfy the
		// spec by construction — but still enter the ledger so an immediate
		// repeat request doesn't re-deliver them.
		for _, ref := range fallback {
			cfg.Seen.Mark(userID, category, ref.URL)
			refs = append(refs, ref)
		}
	}

	if len(refs) > count {
		refs = refs[:count]
	}
	return refs
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
