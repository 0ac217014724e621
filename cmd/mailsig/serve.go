package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailsig/handlers"
	"github.com/dmitrymomot/mailsig/internal"
	"github.com/dmitrymomot/mailsig/middlewares"
	"github.com/dmitrymomot/mailsig/pkg/clipboard"
	"github.com/dmitrymomot/mailsig/pkg/cookie"
	"github.com/dmitrymomot/mailsig/pkg/health"
	"github.com/dmitrymomot/mailsig/pkg/logger"
	"github.com/dmitrymomot/mailsig/pkg/rasterexport"
	"github.com/dmitrymomot/mailsig/pkg/redis"
	"github.com/dmitrymomot/mailsig/pkg/templates"
	"github.com/dmitrymomot/mailsig/views"
)

func newServeCmd(c *cli) *cobra.Command {
	var (
		addr     string
		noExport bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web editor and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				c.cfg.HTTPAddr = addr
			}
			return c.serve(cmd.Context(), noExport)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	cmd.Flags().BoolVar(&noExport, "no-export", false, "do not start Chrome; image export answers 503")
	return cmd
}

func (c *cli) serve(ctx context.Context, noExport bool) error {
	d, err := c.newDeps(ctx, false)
	if err != nil {
		return err
	}

	reg := templates.Builtin()
	sigOpts := []handlers.SignatureOption{handlers.WithBaseURL(c.cfg.BaseURL)}
	var checks []internal.HealthOption

	if d.redis != nil {
		checks = append(checks, internal.WithReadinessCheck("redis", redis.Healthcheck(d.redis)))
	}

	if !noExport {
		b, err := c.newBrowser(ctx, false)
		if err != nil {
			c.log.WarnContext(ctx, "chrome unavailable, image export disabled", logger.Error(err))
		} else {
			d.closers = append(d.closers, func(context.Context) error { return b.Close() })
			exporter := rasterexport.New(d.resolver, rasterexport.WithLogger(c.log))
			sigOpts = append(sigOpts, handlers.WithRasterExport(exporter, handlers.BrowserPages{Browser: b}, c.cfg.ExportTimeout))
			checks = append(checks, internal.WithReadinessCheck("browser", health.CheckFunc(b.Healthcheck)))
		}
	}

	store, err := c.newStorage()
	if err != nil {
		d.Close(ctx, c.log)
		return err
	}
	sigOpts = append(sigOpts, handlers.WithUploads(store != nil))

	if c.cfg.CookieSecret == "" {
		c.log.WarnContext(ctx, "COOKIE_SECRET is not set, drafts will not be kept")
	}

	app := internal.New(
		internal.WithCustomLogger(c.log),
		internal.WithErrorHandler(middlewares.ErrorHandler()),
		internal.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
		),
		internal.WithCookieOptions(
			cookie.WithSecret(c.cfg.CookieSecret),
			cookie.WithSecure(strings.HasPrefix(c.cfg.BaseURL, "https://")),
			cookie.WithHTTPOnly(true),
			cookie.WithSameSite(http.SameSiteLaxMode),
		),
		internal.WithStorage(store),
		internal.WithStaticFiles("/assets/", views.Static(), "static"),
		internal.WithHandlers(
			handlers.NewSignatureHandler(reg, clipboard.New(d.resolver, clipboard.WithLogger(c.log)), sigOpts...),
			handlers.NewAPIHandler(reg, d.compositor, d.fetcher, c.log),
		),
		internal.WithHealthChecks(checks...),
	)

	return app.Run(c.cfg.HTTPAddr,
		internal.WithContext(ctx),
		internal.Logger(c.log),
		internal.StartupHook(func(ctx context.Context) error {
			// Warm the composite background without holding up startup.
			go func() {
				bctx := context.WithoutCancel(ctx)
				if _, err := d.background.Get(bctx); err != nil {
					c.log.WarnContext(bctx, "background asset preload failed", logger.Error(err))
				}
			}()
			return nil
		}),
		internal.ShutdownHook(func(ctx context.Context) error {
			d.Close(ctx, c.log)
			return nil
		}),
	)
}
