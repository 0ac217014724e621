package composite

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mailsig/pkg/imageproxy"
	"github.com/dmitrymomot/mailsig/pkg/logger"
)

// Geometry of the framed photo, in background pixels.
const (
	PhotoSize   = 230
	PhotoOffset = 32
	ExtraHeight = 80
)

// Compositor frames photos onto a shared background.
type Compositor struct {
	bg      *Background
	src     imageproxy.Source
	baseURL *url.URL
	logger  *slog.Logger
}

type Option func(*Compositor)

// WithSource sets how absolute photo URLs are fetched.
func WithSource(src imageproxy.Source) Option {
	return func(c *Compositor) {
		if src != nil {
			c.src = src
		}
	}
}

// WithBaseURL resolves relative photo references (e.g. "/static/me.png").
func WithBaseURL(base string) Option {
	return func(c *Compositor) {
		if u, err := url.Parse(base); err == nil && u.IsAbs() {
			c.baseURL = u
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Compositor) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(bg *Background, opts ...Option) *Compositor {
	c := &Compositor{
		bg:     bg,
		src:    imageproxy.NewFetcher(),
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Composite returns the framed photo as a PNG data URI. The background and
// the photo load concurrently; either failing fails the call.
func (c *Compositor) Composite(ctx context.Context, photoSrc string) (string, error) {
	var bg, photo image.Image

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := c.bg.Get(gctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBackground, err)
		}
		bg = img
		return nil
	})
	g.Go(func() error {
		img, err := c.loadPhoto(gctx, photoSrc)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPhoto, err)
		}
		photo = img
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := Draw(bg, photo).EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("composite: encode: %w", err)
	}

	c.logger.DebugContext(ctx, "photo composited",
		slog.Int("width", bg.Bounds().Dx()),
		slog.Int("height", bg.Bounds().Dy()+ExtraHeight),
		slog.Int("bytes", buf.Len()),
	)
	return imageproxy.Image{ContentType: "image/png", Data: buf.Bytes()}.DataURI(), nil
}

// Draw renders the composite onto a new transparent canvas.
func Draw(bg, photo image.Image) *gg.Context {
	b := bg.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy()+ExtraHeight)
	dc.DrawImage(bg, 0, 0)

	cover := imaging.Fill(photo, PhotoSize, PhotoSize, imaging.Center, imaging.Lanczos)
	r := float64(PhotoSize) / 2
	dc.DrawCircle(PhotoOffset+r, PhotoOffset+r, r)
	dc.Clip()
	dc.DrawImage(cover, PhotoOffset, PhotoOffset)
	dc.ResetClip()

	return dc
}

func (c *Compositor) loadPhoto(ctx context.Context, src string) (image.Image, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		img, err := imageproxy.ParseDataURI(src)
		if err != nil {
			return nil, err
		}
		return decode(img.Data)
	case imageproxy.IsAbsolute(src):
		return c.fetch(ctx, src)
	case src == "" || imageproxy.IsEmbedded(src):
		return nil, ErrUnsupportedSource
	}

	if c.baseURL == nil {
		return nil, fmt.Errorf("%w: relative reference %q without base URL", ErrUnsupportedSource, src)
	}
	ref, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedSource, err)
	}
	return c.fetch(ctx, c.baseURL.ResolveReference(ref).String())
}

func (c *Compositor) fetch(ctx context.Context, u string) (image.Image, error) {
	img, err := c.src.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	return decode(img.Data)
}
