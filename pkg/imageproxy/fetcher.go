package imageproxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/mailsig/pkg/cache"
	"github.com/dmitrymomot/mailsig/pkg/logger"
	"github.com/dmitrymomot/mailsig/pkg/storage"
)

const (
	// DefaultUserAgent is sent upstream; some CDNs refuse requests without one.
	DefaultUserAgent = "Mozilla/5.0"

	DefaultTimeout  = 15 * time.Second
	DefaultMaxBytes = 10 << 20
	DefaultCacheTTL = time.Hour
)

// Source fetches image bytes for an absolute URL.
type Source interface {
	Fetch(ctx context.Context, url string) (Image, error)
}

// Fetcher downloads images directly from their origin.
type Fetcher struct {
	client    *http.Client
	cache     cache.Cache[Image]
	logger    *slog.Logger
	userAgent string
	maxBytes  int64
	cacheTTL  time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the default client (DefaultTimeout).
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithCache memoizes successful fetches. Failures are never cached.
func WithCache(c cache.Cache[Image], ttl time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.cache = c
		if ttl != 0 {
			f.cacheTTL = ttl
		}
	}
}

func WithMaxBytes(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher returns an uncached Fetcher unless WithCache is given.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		logger:    logger.NewNope(),
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBytes,
		cacheTTL:  DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads rawURL, going through the cache when one is configured.
// Concurrent misses for the same URL share one upstream request.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Image, error) {
	if !IsAbsolute(rawURL) {
		return Image{}, ErrInvalidURL
	}
	if f.cache == nil {
		return f.download(ctx, rawURL)
	}
	return cache.GetOrSet(ctx, f.cache, "img:"+rawURL, func(ctx context.Context) (Image, time.Duration, error) {
		img, err := f.download(ctx, rawURL)
		return img, f.cacheTTL, err
	})
}

func (f *Fetcher) download(ctx context.Context, rawURL string) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Image{}, errors.Join(ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("imageproxy: fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Image{}, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("imageproxy: read %s: %w", rawURL, err)
	}
	if int64(len(data)) > f.maxBytes {
		return Image{}, ErrTooLarge
	}
	if len(data) == 0 {
		return Image{}, ErrEmptyImage
	}

	// The declared type is kept only when the bytes agree it is an image.
	declared := resp.Header.Get("Content-Type")
	ct, ok := storage.SniffImage(data, declared)
	if !ok {
		return Image{}, fmt.Errorf("%w: %s sniffed as %s", ErrNotImage, rawURL, ct)
	}
	if mt, _, err := mime.ParseMediaType(declared); err == nil && strings.HasPrefix(mt, "image/") {
		ct = mt
	}

	f.logger.DebugContext(ctx, "image fetched",
		slog.String("url", rawURL),
		slog.String("content_type", ct),
		slog.Int("bytes", len(data)),
	)
	return Image{ContentType: ct, Data: data}, nil
}
