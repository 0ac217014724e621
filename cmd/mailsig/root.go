package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailsig/middlewares"
	"github.com/dmitrymomot/mailsig/pkg/config"
	"github.com/dmitrymomot/mailsig/pkg/logger"
)

// cli carries the configuration and logger shared by every command.
type cli struct {
	cfg config.App
	log *slog.Logger

	logLevel string
	baseURL  string
	relayURL string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "mailsig",
		Short:        "Email signature generator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")
	pf.StringVar(&c.baseURL, "base-url", "", "absolute URL relative references resolve against (overrides BASE_URL)")
	pf.StringVar(&c.relayURL, "relay", "", "image relay endpoint, e.g. http://localhost:8080/api/image-proxy (overrides RELAY_URL)")

	root.AddCommand(
		newServeCmd(c),
		newHTMLCmd(c),
		newExportCmd(c),
		newCopyCmd(c),
		newCompositeCmd(c),
		newTemplatesCmd(c),
	)
	return root
}

// init loads the environment and builds the logger. The server logs JSON to
// stdout; one-shot commands keep stdout for their output and log text to
// stderr.
func (c *cli) init(cmd *cobra.Command) error {
	if err := config.Load(&c.cfg); err != nil {
		return err
	}
	if c.logLevel != "" {
		c.cfg.LogLevel = c.logLevel
	}
	if c.baseURL != "" {
		c.cfg.BaseURL = c.baseURL
	}
	if c.relayURL != "" {
		c.cfg.RelayURL = c.relayURL
	}

	opts := []logger.Option{
		logger.WithLevel(logger.ParseLevel(c.cfg.LogLevel)),
		logger.WithExtractors(middlewares.RequestIDExtractor()),
	}
	if cmd.Name() != "serve" {
		opts = append(opts, logger.WithWriter(os.Stderr), logger.WithFormat(logger.FormatText))
	}
	c.log = logger.NewWithSentry(c.cfg.Sentry, opts...).With(logger.Component("mailsig"))
	return nil
}
