package rasterexport

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/dmitrymomot/mailsig/pkg/imageproxy"
	"github.com/dmitrymomot/mailsig/pkg/logger"
)

// Page is a live document holding the element to export.
type Page interface {
	// Attached reports whether selector matches an element in the document.
	Attached(ctx context.Context, selector string) (bool, error)
	// Origin is the document origin, e.g. "http://127.0.0.1:41234".
	Origin() string
	// Images lists the src of every <img> under selector in document order.
	Images(ctx context.Context, selector string) ([]string, error)
	// ReplaceImage sets the src of the index-th <img> under selector.
	ReplaceImage(ctx context.Context, selector string, index int, src string) error
	// WaitImages blocks until every <img> under selector loaded or errored.
	WaitImages(ctx context.Context, selector string) error
	// Capture screenshots selector as PNG over bg.
	Capture(ctx context.Context, selector string, pixelRatio float64, bg color.Color) ([]byte, error)
}

// File is an encoded export.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	// Location is set by sinks that persist the file (path or URL).
	Location string
}

// Sink receives the finished file.
type Sink interface {
	Save(ctx context.Context, f *File) error
}

// Exporter runs exports. It is safe for concurrent use.
type Exporter struct {
	resolver *imageproxy.Resolver
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

type Option func(*Exporter)

func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Exporter that inlines cross-origin images through resolver.
func New(resolver *imageproxy.Resolver, opts ...Option) *Exporter {
	e := &Exporter{
		resolver: resolver,
		logger:   logger.NewNope(),
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export captures selector from page and saves it to sink.
func (e *Exporter) Export(ctx context.Context, page Page, selector string, opts Options, sink Sink) (*File, error) {
	opts = opts.withDefaults()

	if opts.Key != "" {
		if !e.acquire(opts.Key) {
			return nil, fail(ErrBusy, opts.Format, nil)
		}
		defer e.release(opts.Key)
	}

	ok, err := page.Attached(ctx, selector)
	if err != nil || !ok {
		return nil, fail(ErrTargetMissing, opts.Format, err)
	}

	e.inlineImages(ctx, page, selector)
	e.waitImages(ctx, page, selector, opts.ImageTimeout)

	if err := ctx.Err(); err != nil {
		return nil, fail(ErrCapture, opts.Format, err)
	}

	shot, err := page.Capture(ctx, selector, opts.PixelRatio, opts.Background)
	if err != nil {
		return nil, fail(ErrCapture, opts.Format, err)
	}
	if len(shot) == 0 {
		return nil, fail(ErrEmptyImage, opts.Format, nil)
	}

	data, err := encode(shot, opts.Format, opts.Background)
	if err != nil {
		return nil, fail(ErrEncode, opts.Format, err)
	}
	if len(data) == 0 {
		return nil, fail(ErrEmptyImage, opts.Format, nil)
	}

	f := &File{
		Name:        opts.Filename + "." + string(opts.Format),
		ContentType: opts.Format.ContentType(),
		Data:        data,
	}
	if err := sink.Save(ctx, f); err != nil {
		return nil, fail(ErrDownload, opts.Format, err)
	}

	e.logger.InfoContext(ctx, "signature exported",
		slog.String("file", f.Name),
		slog.Int("bytes", len(f.Data)),
		slog.Float64("pixel_ratio", opts.PixelRatio),
	)
	return f, nil
}

// inlineImages swaps cross-origin images for data URIs. Every failure is
// tolerated; the image keeps its original src.
func (e *Exporter) inlineImages(ctx context.Context, page Page, selector string) {
	srcs, err := page.Images(ctx, selector)
	if err != nil {
		e.logger.WarnContext(ctx, "list images failed", logger.Error(err))
		return
	}

	origin := page.Origin()
	var idx []int
	var foreign []string
	for i, src := range srcs {
		if imageproxy.NeedsResolve(src, origin) {
			idx = append(idx, i)
			foreign = append(foreign, src)
		}
	}
	if len(foreign) == 0 {
		return
	}

	resolved := e.resolver.ResolveAll(ctx, foreign)
	for j, src := range resolved {
		if src == foreign[j] {
			continue
		}
		if err := page.ReplaceImage(ctx, selector, idx[j], src); err != nil {
			e.logger.WarnContext(ctx, "replace image failed",
				slog.String("src", foreign[j]),
				logger.Error(err),
			)
		}
	}
}

func (e *Exporter) waitImages(ctx context.Context, page Page, selector string, timeout time.Duration) {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := page.WaitImages(wctx, selector)
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		e.logger.WarnContext(ctx, "image load timeout, proceeding with export",
			slog.Duration("timeout", timeout),
		)
	default:
		e.logger.WarnContext(ctx, "image wait failed, proceeding with export", logger.Error(err))
	}
}

func (e *Exporter) acquire(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inflight[key]; busy {
		return false
	}
	e.inflight[key] = struct{}{}
	return true
}

func (e *Exporter) release(key string) {
	e.mu.Lock()
	delete(e.inflight, key)
	e.mu.Unlock()
}

// encode converts the PNG capture into the requested format. JPEG has no
// alpha, so the capture is flattened onto bg first.
func encode(shot []byte, f Format, bg color.Color) ([]byte, error) {
	if f == PNG {
		return shot, nil
	}

	img, err := imaging.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	flat := imaging.New(b.Dx(), b.Dy(), bg)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
