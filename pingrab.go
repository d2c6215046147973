// Package pingrab fetches auto-curated images (avatars, desktop and phone
// wallpapers) from a Pinterest-style source, filtering out advertising and
// wrong-format results, deduplicating per user, and topping up with synthetic
// placeholders when the live source yields too little.
package pingrab

import (
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// DefaultMaxAttempts is the ceiling on candidates examined per request.
const DefaultMaxAttempts = 50

// Provenance tells where an ImageRef came from.
type Provenance int

const (
	Organic   Provenance = iota // harvested from the live source
	Synthetic                   // generated placeholder
)

func (p Provenance) String() string {
	if p == Synthetic {
		return "synthetic"
	}
	return "organic"
}

// ImageRef is a single deliverable image reference.
type ImageRef struct {
	URL        string
	Provenance Provenance
}

// Candidate is a raw image-bearing element extracted from a source document.
// Ephemeral; never persisted.
type Candidate struct {
	SourceURL string            // direct image URL
	AltText   string            // descriptive text from the element
	Attrs     map[string]string // remaining element attributes
}

// ResolvedCandidate is a Candidate with best-effort dimensions attached.
// Width/Height of 0 mean "unknown", never "zero-size".
type ResolvedCandidate struct {
	Candidate
	Width  int
	Height int
}

// Config holds all dependencies injected by the consumer.
type Config struct {
	HTTPClient    *http.Client // default: http.DefaultClient
	StealthClient *http.Client // optional TLS-fingerprinted client, tried first

	Auth *AuthContext // optional imported credentials; nil = anonymous
	Seen *SeenSet     // per-user delivery ledger; auto-created when nil

	UserAgent      string // default: desktop Chrome UA
	AcceptLanguage string // default: "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7"

	// SearchBaseURL is the HTML search endpoint. The query text is attached
	// as the q parameter.
	SearchBaseURL string // default: "https://ru.pinterest.com/search/pins/"

	// FeedURL, when set, is an RSS endpoint queried instead of the HTML
	// search page.
	FeedURL string

	MaxAttempts  int           // default: DefaultMaxAttempts
	FetchTimeout time.Duration // per document fetch (default: 15s)
	ProbeTimeout time.Duration // per dimension probe (default: 10s)

	// StrictGeometry rejects candidates whose dimensions could not be
	// resolved. Default is lenient: unknown size passes the geometry gate.
	StrictGeometry bool

	// HeadProbeOnly disables the header-prefix decode probe and falls back
	// to a HEAD request with a Content-Length size estimate.
	HeadProbeOnly bool

	// Limiter throttles document fetches against the source.
	// Default: 1 request/second, burst 2.
	Limiter *rate.Limiter

	// ExtraAdKeywords and ExtraAdHosts extend the built-in ad signal lists
	// with deployment-specific entries.
	ExtraAdKeywords []string
	ExtraAdHosts    []string

	// Queries overrides the built-in query variants per category.
	Queries map[Category][]string

	// Optional callbacks for metrics/logging.
	OnImageSearch func()
	OnFallback    func(category Category, count int)

	// dims memoizes resolved dimensions per URL so repeated requests don't
	// re-probe the same candidates.
	dims *cache.Cache
}

// defaults fills zero-value fields with sensible defaults.
func (cfg *Config) defaults() {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if cfg.AcceptLanguage == "" {
		cfg.AcceptLanguage = "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7"
	}
	if cfg.SearchBaseURL == "" {
		cfg.SearchBaseURL = "https://ru.pinterest.com/search/pins/"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 10 * time.Second
	}
	if cfg.Limiter == nil {
		cfg.Limiter = rate.NewLimiter(rate.Limit(1), 2)
	}
	if cfg.Seen == nil {
		cfg.Seen = NewSeenSet()
	}
	if cfg.dims == nil {
		cfg.dims = cache.New(30*time.Minute, 10*time.Minute)
	}
}
