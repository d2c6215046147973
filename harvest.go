package pingrab

import (
	"context"
	"encoding/xml"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxDocumentBytes bounds how much of a source document is read.
const maxDocumentBytes = 4 * 1024 * 1024

// Harvest runs one query against the source and extracts raw candidates from
// the returned document. One fetch and one parse per call. Any failure —
// transport, non-200 status, unparseable markup — yields an empty slice and a
// log line, never an error: a single bad query must not sink the pipeline.
func (cfg *Config) Harvest(ctx context.Context, query string) []Candidate {
	cfg.defaults()
	if query == "" {
		return nil
	}

	useFeed := cfg.FeedURL != ""
	docURL := cfg.searchURL(query)
	if useFeed {
		docURL = cfg.rssURL(query)
	}

	body, err := cfg.fetchDocument(ctx, docURL)
	if err != nil {
		slog.Warn("pingrab: harvest fetch failed", "url", docURL, "error", err.Error())
		return nil
	}

	var candidates []Candidate
	if useFeed {
		candidates, err = parseFeed(strings.NewReader(body))
	} else {
		candidates, err = parseSearchPage(strings.NewReader(body))
	}
	if err != nil {
		slog.Warn("pingrab: harvest parse failed", "url", docURL, "error", err.Error())
		return nil
	}
	return candidates
}

// fetchDocument retrieves one source document with a browser-like header set
// and the imported cookies, if any. The stealth client is tried first when
// configured.
func (cfg *Config) fetchDocument(ctx context.Context, docURL string) (string, error) {
	if err := cfg.Limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", cfg.AcceptLanguage)
	if cfg.Auth != nil {
		for name, value := range cfg.Auth.Cookies() {
			req.AddCookie(&http.Cookie{Name: name, Value: value})
		}
	}

	client := cfg.HTTPClient
	if cfg.StealthClient != nil {
		client = cfg.StealthClient
	}
	resp, err := client.Do(req)
	if err != nil && client != cfg.HTTPClient {
		// Stealth transport failed; retry once with the regular client.
		resp, err = cfg.HTTPClient.Do(req.Clone(ctx))
	}
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &statusError{code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type statusError struct{ code int }

func (e *statusError) Error() string { return "unexpected status " + http.StatusText(e.code) }

// parseSearchPage extracts every image-bearing element from an HTML search
// results page. Elements missing either a source URL or descriptive text are
// skipped — without both, neither the ad classifier nor the renderer can do
// anything useful.
func parseSearchPage(r io.Reader) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src := sel.AttrOr("src", "")
		alt := sel.AttrOr("alt", "")
		if src == "" || alt == "" {
			return
		}

		attrs := make(map[string]string)
		for _, node := range sel.Nodes[:1] {
			for _, a := range node.Attr {
				if a.Key == "src" || a.Key == "alt" {
					continue
				}
				attrs[a.Key] = a.Val
			}
		}

		candidates = append(candidates, Candidate{
			SourceURL: UpgradeThumbnail(src),
			AltText:   alt,
			Attrs:     attrs,
		})
	})
	return candidates, nil
}

// feed structures for the RSS endpoint.
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string       `xml:"title"`
	Link        string       `xml:"link"`
	Description string       `xml:"description"`
	Category    string       `xml:"category"`
	Enclosure   rssEnclosure `xml:"enclosure"`
}

type rssEnclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// descImgRe pulls the first embedded <img> out of an RSS item description.
var descImgRe = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)

// parseFeed extracts candidates from an RSS document. The image URL comes
// from the item enclosure when it declares an image type, otherwise from the
// first <img> embedded in the description.
func parseFeed(r io.Reader) ([]Candidate, error) {
	var feed rssFeed
	if err := xml.NewDecoder(r).Decode(&feed); err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, item := range feed.Channel.Items {
		src := ""
		if strings.HasPrefix(item.Enclosure.Type, "image/") {
			src = item.Enclosure.URL
		}
		if src == "" {
			if m := descImgRe.FindStringSubmatch(item.Description); m != nil {
				src = m[1]
			}
		}
		if src == "" || item.Title == "" {
			continue
		}

		attrs := map[string]string{"link": item.Link}
		if item.Category != "" {
			attrs["category"] = item.Category
		}
		candidates = append(candidates, Candidate{
			SourceURL: UpgradeThumbnail(src),
			AltText:   item.Title,
			Attrs:     attrs,
		})
	}
	return candidates, nil
}

// thumbSizeRe matches the source's downscaled-thumbnail path segments.
var thumbSizeRe = regexp.MustCompile(`/(236x|564x)/`)

// UpgradeThumbnail rewrites a downscaled thumbnail URL to its full-resolution
// variant. URLs without a thumbnail size segment pass through unchanged.
func UpgradeThumbnail(src string) string {
	return thumbSizeRe.ReplaceAllString(src, "/originals/")
}
