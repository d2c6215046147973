package pingrab

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/time/rate"
)

// buildSearchPage renders an HTML search page from (url, alt) pairs.
func buildSearchPage(imgs [][2]string) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for _, img := range imgs {
		fmt.Fprintf(&sb, `<img src=%q alt=%q>`, img[0], img[1])
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

// newPipelineConfig wires a Config against a test server serving one page for
// a single query variant, with rate limiting disabled. Candidate URLs should
// embed WxH tokens so no dimension probes hit the network.
func newPipelineConfig(srv *httptest.Server, category Category) *Config {
	return &Config{
		HTTPClient:    srv.Client(),
		SearchBaseURL: srv.URL + "/search/pins/",
		Limiter:       rate.NewLimiter(rate.Inf, 1),
		Queries:       map[Category][]string{category: {"test query"}},
	}
}

func servePage(t *testing.T, page string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// Scenario A: 20 candidates — 5 ads, 5 wrong geometry, 10 good — requesting
// 10 yields exactly the 10 good ones in harvest order, zero fallback.
func TestFetchImagesFiltersAndPreservesOrder(t *testing.T) {
	t.Parallel()

	var imgs [][2]string
	var wantURLs []string
	for i := 0; i < 20; i++ {
		switch {
		case i%4 == 1: // 5 ads
			imgs = append(imgs, [2]string{
				fmt.Sprintf("https://i.example.com/512x512/ad%d.jpg", i),
				"big sale poster",
			})
		case i%4 == 3: // 5 wrong geometry (landscape offered as avatar)
			imgs = append(imgs, [2]string{
				fmt.Sprintf("https://i.example.com/1920x1080/wide%d.jpg", i),
				"wide scenery",
			})
		default: // 10 good squares
			url := fmt.Sprintf("https://i.example.com/512x512/good%d.jpg", i)
			imgs = append(imgs, [2]string{url, "anime face"})
			wantURLs = append(wantURLs, url)
		}
	}

	srv := servePage(t, buildSearchPage(imgs))
	cfg := newPipelineConfig(srv, Avatars)

	refs := cfg.FetchImages(context.Background(), Avatars, 10, "user1")
	if len(refs) != 10 {
		t.Fatalf("FetchImages returned %d refs, want 10", len(refs))
	}
	for i, ref := range refs {
		if ref.Provenance != Organic {
			t.Errorf("ref %d provenance = %s, want organic", i, ref.Provenance)
		}
		if ref.URL != wantURLs[i] {
			t.Errorf("ref %d URL = %q, want %q (harvest order)", i, ref.URL, wantURLs[i])
		}
	}
}

// Scenario B: unreachable source degrades silently to an all-fallback result.
func TestFetchImagesSourceDownAllFallback(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	cfg := &Config{
		SearchBaseURL: srv.URL + "/search/pins/",
		Limiter:       rate.NewLimiter(rate.Inf, 1),
	}

	refs := cfg.FetchImages(context.Background(), WallpapersPC, 5, "user1")
	if len(refs) != 5 {
		t.Fatalf("FetchImages returned %d refs, want 5", len(refs))
	}
	for i, ref := range refs {
		if ref.Provenance != Synthetic {
			t.Errorf("ref %d provenance = %s, want synthetic", i, ref.Provenance)
		}
		if !strings.Contains(ref.URL, "1920/1080") {
			t.Errorf("ref %d URL = %q, want desktop wallpaper dimensions", i, ref.URL)
		}
	}
}

// Scenario C: an 8-candidate pool and two count=6 requests — the second call
// gets the 2 unseen organics plus 4 fallback entries.
func TestFetchImagesDedupAcrossCalls(t *testing.T) {
	t.Parallel()

	var imgs [][2]string
	for i := 0; i < 8; i++ {
		imgs = append(imgs, [2]string{
			fmt.Sprintf("https://i.example.com/512x512/pic%d.jpg", i),
			"anime face",
		})
	}
	srv := servePage(t, buildSearchPage(imgs))
	cfg := newPipelineConfig(srv, Avatars)

	first := cfg.FetchImages(context.Background(), Avatars, 6, "user1")
	second := cfg.FetchImages(context.Background(), Avatars, 6, "user1")

	if len(first) != 6 || len(second) != 6 {
		t.Fatalf("call sizes = %d, %d, want 6, 6", len(first), len(second))
	}

	organic, synthetic := 0, 0
	for _, ref := range second {
		if ref.Provenance == Organic {
			organic++
		} else {
			synthetic++
		}
	}
	if organic != 2 || synthetic != 4 {
		t.Errorf("second call organic/synthetic = %d/%d, want 2/4", organic, synthetic)
	}

	seen := make(map[string]bool, len(first))
	for _, ref := range first {
		seen[ref.URL] = true
	}
	for _, ref := range second {
		if seen[ref.URL] {
			t.Errorf("URL %q delivered twice to the same user", ref.URL)
		}
	}
}

// Requesting zero images short-circuits: no harvest, no fallback.
func TestFetchImagesZeroCount(t *testing.T) {
	t.Parallel()

	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := newPipelineConfig(srv, Avatars)
	if refs := cfg.FetchImages(context.Background(), Avatars, 0, "user1"); len(refs) != 0 {
		t.Errorf("FetchImages(count=0) returned %d refs, want 0", len(refs))
	}
	if requests != 0 {
		t.Errorf("count=0 still made %d source requests, want 0", requests)
	}
}

func TestFetchImagesUnknownCategory(t *testing.T) {
	t.Parallel()

	cfg := &Config{Limiter: rate.NewLimiter(rate.Inf, 1)}
	if refs := cfg.FetchImages(context.Background(), Category("posters"), 5, "user1"); refs != nil {
		t.Errorf("FetchImages for unknown category = %v, want nil", refs)
	}
}

// The attempt ceiling bounds work even when plenty of good candidates remain;
// the shortfall is topped up synthetically.
func TestFetchImagesAttemptCeiling(t *testing.T) {
	t.Parallel()

	var imgs [][2]string
	for i := 0; i < 20; i++ {
		imgs = append(imgs, [2]string{
			fmt.Sprintf("https://i.example.com/512x512/pic%d.jpg", i),
			"anime face",
		})
	}
	srv := servePage(t, buildSearchPage(imgs))
	cfg := newPipelineConfig(srv, Avatars)
	cfg.MaxAttempts = 5

	refs := cfg.FetchImages(context.Background(), Avatars, 10, "user1")
	if len(refs) != 10 {
		t.Fatalf("FetchImages returned %d refs, want 10", len(refs))
	}
	organic := 0
	for _, ref := range refs {
		if ref.Provenance == Organic {
			organic++
		}
	}
	if organic != 5 {
		t.Errorf("organic refs = %d, want 5 (attempt ceiling)", organic)
	}
}

// Different users keep independent ledgers.
func TestFetchImagesUsersIndependent(t *testing.T) {
	t.Parallel()

	var imgs [][2]string
	for i := 0; i < 6; i++ {
		imgs = append(imgs, [2]string{
			fmt.Sprintf("https://i.example.com/512x512/pic%d.jpg", i),
			"anime face",
		})
	}
	srv := servePage(t, buildSearchPage(imgs))
	cfg := newPipelineConfig(srv, Avatars)

	first := cfg.FetchImages(context.Background(), Avatars, 6, "alice")
	second := cfg.FetchImages(context.Background(), Avatars, 6, "bob")

	for i := range first {
		if first[i].URL != second[i].URL {
			t.Errorf("users got different result %d: %q vs %q", i, first[i].URL, second[i].URL)
		}
	}
}

func TestFetchImagesCallbacks(t *testing.T) {
	t.Parallel()

	srv := servePage(t, buildSearchPage(nil))
	cfg := newPipelineConfig(srv, Avatars)

	searches, fallbacks := 0, 0
	cfg.OnImageSearch = func() { searches++ }
	cfg.OnFallback = func(_ Category, n int) { fallbacks = n }

	cfg.FetchImages(context.Background(), Avatars, 3, "user1")
	if searches != 1 {
		t.Errorf("OnImageSearch called %d times, want 1", searches)
	}
	if fallbacks != 3 {
		t.Errorf("OnFallback reported %d entries, want 3", fallbacks)
	}
}
