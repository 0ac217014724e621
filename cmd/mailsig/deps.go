package main

import (
	"context"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mailsig/pkg/browser"
	"github.com/dmitrymomot/mailsig/pkg/cache"
	"github.com/dmitrymomot/mailsig/pkg/composite"
	"github.com/dmitrymomot/mailsig/pkg/imageproxy"
	"github.com/dmitrymomot/mailsig/pkg/logger"
	"github.com/dmitrymomot/mailsig/pkg/redis"
	"github.com/dmitrymomot/mailsig/pkg/storage"
)

// deps are the collaborators shared by the server and the one-shot commands.
type deps struct {
	redis      goredis.UniversalClient
	fetcher    *imageproxy.Fetcher
	source     imageproxy.Source
	resolver   *imageproxy.Resolver
	background *composite.Background
	compositor *composite.Compositor

	closers []func(context.Context) error
}

// newDeps connects Redis when configured and builds the image pipeline on
// top of it. Without REDIS_URL fetched images are cached in memory. With
// viaRelay and RELAY_URL set, images are fetched through that relay instead
// of directly.
func (c *cli) newDeps(ctx context.Context, viaRelay bool) (*deps, error) {
	d := &deps{}

	var imgCache cache.Cache[imageproxy.Image]
	if c.cfg.RedisURL != "" {
		client, err := redis.Open(ctx, c.cfg.RedisURL, redis.WithLogger(c.log))
		if err != nil {
			return nil, err
		}
		d.redis = client
		d.closers = append(d.closers, redis.Shutdown(client))
		imgCache = imageproxy.NewRedisCache(client, c.cfg.ImageCacheTTL)
	} else {
		mem := imageproxy.NewMemoryCache(0, c.cfg.ImageCacheTTL)
		d.closers = append(d.closers, func(context.Context) error { return mem.Close() })
		imgCache = mem
	}

	client := &http.Client{Timeout: c.cfg.RelayTimeout}
	d.fetcher = imageproxy.NewFetcher(
		imageproxy.WithHTTPClient(client),
		imageproxy.WithCache(imgCache, c.cfg.ImageCacheTTL),
		imageproxy.WithMaxBytes(c.cfg.RelayMaxBytes),
		imageproxy.WithFetcherLogger(c.log),
	)
	d.source = d.fetcher
	if viaRelay && c.cfg.RelayURL != "" {
		d.source = imageproxy.NewRelayClient(c.cfg.RelayURL,
			imageproxy.WithHTTPClient(client),
			imageproxy.WithMaxBytes(c.cfg.RelayMaxBytes),
			imageproxy.WithFetcherLogger(c.log),
		)
		c.log.DebugContext(ctx, "fetching images through relay", slog.String("relay", c.cfg.RelayURL))
	}
	d.resolver = imageproxy.NewResolver(d.source, c.log)

	load := composite.FromURL(client, c.cfg.BackgroundURL())
	if c.cfg.BackgroundAssetPath != "" {
		load = composite.FromFile(c.cfg.BackgroundAssetPath)
	}
	d.background = composite.NewBackground(load)
	d.compositor = composite.New(d.background,
		composite.WithSource(d.source),
		composite.WithBaseURL(c.cfg.BaseURL),
		composite.WithLogger(c.log),
	)
	return d, nil
}

// Close releases every collaborator in reverse order of creation.
func (d *deps) Close(ctx context.Context, l *slog.Logger) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			l.WarnContext(ctx, "shutdown step failed", logger.Error(err))
		}
	}
}

func (c *cli) newBrowser(ctx context.Context, headful bool) (*browser.Browser, error) {
	opts := []browser.Option{
		browser.WithLogger(c.log),
		browser.WithOpenTimeout(c.cfg.ExportTimeout),
	}
	if c.cfg.ChromePath != "" {
		opts = append(opts, browser.WithExecPath(c.cfg.ChromePath))
	}
	if c.cfg.ChromeNoSandbox {
		opts = append(opts, browser.WithNoSandbox())
	}
	if headful {
		opts = append(opts, browser.WithHeadful())
	}
	return browser.New(ctx, opts...)
}

// newStorage returns nil when S3 is not configured.
func (c *cli) newStorage() (storage.Storage, error) {
	sc := c.cfg.S3.Storage()
	if !sc.Configured() {
		return nil, nil
	}
	s, err := storage.New(sc)
	if err != nil {
		return nil, err
	}
	return s, nil
}
