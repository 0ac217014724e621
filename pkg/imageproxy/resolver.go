package imageproxy

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mailsig/pkg/logger"
)

// Resolver rewrites image references into data URIs through a Source.
type Resolver struct {
	src    Source
	logger *slog.Logger
}

func NewResolver(src Source, l *slog.Logger) *Resolver {
	if l == nil {
		l = logger.NewNope()
	}
	return &Resolver{src: src, logger: l}
}

// Source returns the underlying fetcher.
func (r *Resolver) Source() Source { return r.src }

// Resolve returns src unchanged when it is embedded, otherwise the fetched
// image as a data URI.
func (r *Resolver) Resolve(ctx context.Context, src string) (string, error) {
	if IsEmbedded(src) {
		return src, nil
	}
	img, err := r.src.Fetch(ctx, src)
	if err != nil {
		return "", err
	}
	return img.DataURI(), nil
}

// ResolveAll resolves every entry concurrently and waits for all of them.
// A failed entry is logged and keeps its original value, so the result always
// has the same length and order as srcs.
func (r *Resolver) ResolveAll(ctx context.Context, srcs []string) []string {
	out := make([]string, len(srcs))
	copy(out, srcs)

	var g errgroup.Group
	for i, src := range srcs {
		if IsEmbedded(src) {
			continue
		}
		g.Go(func() error {
			resolved, err := r.Resolve(ctx, src)
			if err != nil {
				r.logger.WarnContext(ctx, "image resolve failed, keeping original",
					slog.String("src", src),
					logger.Error(err),
				)
				return nil
			}
			out[i] = resolved
			return nil
		})
	}
	_ = g.Wait()

	return out
}
