// Package logger builds the slog loggers used by the server and the CLI.
//
// New returns a JSON logger on stdout; options switch the level, the writer
// or the text format the CLI prefers. Context extractors add request-scoped
// attributes (such as request_id) to every record logged with a context:
//
//	log := logger.New(logger.WithExtractors(middlewares.RequestIDExtractor()))
//	log.WarnContext(ctx, "image resolve failed", logger.Error(err))
//
// NewWithSentry fans records out to Sentry as well. Errors become issues,
// warnings are kept as breadcrumb logs. Without a DSN it behaves like New.
//
// NewNope discards everything and is the default for components that accept
// an optional *slog.Logger.
package logger
