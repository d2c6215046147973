package pingrab

import (
	"context"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	_ "golang.org/x/image/webp"
)

const (
	// decodeLimit bounds how much of the body the deep probe reads; image
	// headers carrying the dimensions fit comfortably.
	decodeLimit = 64 * 1024

	// bigBodyBytes is the Content-Length above which the coarse estimate
	// assumes a full-size source image. A rough guess, used only when every
	// other signal is absent.
	bigBodyBytes = 100 * 1024

	// assumedSize is the source's common base dimension, reported by the
	// coarse estimate for both axes.
	assumedSize = 736
)

var (
	// sizePairRe matches an explicit WxH token embedded in a URL,
	// e.g. "/1920x1080/" or "_564x846.jpg".
	sizePairRe = regexp.MustCompile(`(\d{2,5})x(\d{2,5})`)

	// singleSizeRe matches the source's single-size path convention,
	// e.g. "/736x/" — by convention a square base size.
	singleSizeRe = regexp.MustCompile(`/(\d{2,5})x/`)
)

// ParseSizeFromURL extracts dimensions encoded in the URL itself.
// Returns (0, 0) when the URL carries no size token. No network I/O.
func ParseSizeFromURL(rawURL string) (width, height int) {
	if m := sizePairRe.FindStringSubmatch(rawURL); m != nil {
		w, errW := strconv.Atoi(m[1])
		h, errH := strconv.Atoi(m[2])
		if errW == nil && errH == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	if m := singleSizeRe.FindStringSubmatch(rawURL); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n, n
		}
	}
	return 0, 0
}

// ResolveDimensions determines an image's pixel dimensions with at most one
// network round-trip. Priority: URL-embedded WxH token, then the single-size
// square convention, then one bounded probe. Fails soft — any network or
// parse failure yields (0, 0), which callers must treat as "unknown".
func (cfg *Config) ResolveDimensions(ctx context.Context, rawURL string) (width, height int) {
	cfg.defaults()

	if w, h := ParseSizeFromURL(rawURL); w > 0 && h > 0 {
		return w, h
	}

	if cached, ok := cfg.dims.Get(rawURL); ok {
		if d, ok := cached.([2]int); ok {
			return d[0], d[1]
		}
	}

	var w, h int
	if cfg.HeadProbeOnly {
		w, h = cfg.headProbe(ctx, rawURL)
	} else {
		w, h = cfg.decodeProbe(ctx, rawURL)
	}
	if w > 0 && h > 0 {
		cfg.dims.SetDefault(rawURL, [2]int{w, h})
	}
	return w, h
}

// decodeProbe issues one GET and decodes only the image header from a bounded
// prefix of the body. Falls back to the Content-Length estimate when the
// header cannot be decoded.
func (cfg *Config) decodeProbe(ctx context.Context, rawURL string) (int, int) {
	resp, err := cfg.probeRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return 0, 0
	}
	defer resp.Body.Close()

	if !probeLooksLikeImage(resp) {
		return 0, 0
	}

	imgCfg, _, err := image.DecodeConfig(io.LimitReader(resp.Body, decodeLimit))
	if err != nil {
		slog.Debug("pingrab: header decode failed, using size estimate", "url", rawURL, "error", err.Error())
		return estimateFromLength(resp.ContentLength)
	}
	return imgCfg.Width, imgCfg.Height
}

// headProbe issues one HEAD request and estimates the size from
// Content-Length alone. Explicitly an approximation.
func (cfg *Config) headProbe(ctx context.Context, rawURL string) (int, int) {
	resp, err := cfg.probeRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		return 0, 0
	}
	defer resp.Body.Close()

	if !probeLooksLikeImage(resp) {
		return 0, 0
	}
	return estimateFromLength(resp.ContentLength)
}

func (cfg *Config) probeRequest(ctx context.Context, method, rawURL string) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ProbeTimeout)
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := &http.Client{
		Timeout: cfg.ProbeTimeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			const maxRedirects = 3
			if len(via) >= maxRedirects {
				return errors.New("too many redirects")
			}
			return nil
		},
		Transport: cfg.HTTPClient.Transport,
	}
	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, errors.New(resp.Status)
	}
	resp.Body = &cancelReadCloser{rc: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelReadCloser releases the request context when the body is closed.
type cancelReadCloser struct {
	rc     io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Read(p []byte) (int, error) { return c.rc.Read(p) }

func (c *cancelReadCloser) Close() error {
	c.cancel()
	return c.rc.Close()
}

func probeLooksLikeImage(resp *http.Response) bool {
	ct := resp.Header.Get("Content-Type")
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	return strings.HasPrefix(ct, "image/")
}

// estimateFromLength is the transfer-size heuristic: a body over ~100 KB is
// assumed to be a full-size square base image. Wrong often enough that the
// URL-token path is always preferred.
func estimateFromLength(contentLength int64) (int, int) {
	if contentLength > bigBodyBytes {
		return assumedSize, assumedSize
	}
	return 0, 0
}
