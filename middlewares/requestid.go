package middlewares

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/mailsig/internal"
	"github.com/dmitrymomot/mailsig/pkg/id"
	"github.com/dmitrymomot/mailsig/pkg/logger"
)

// requestIDKey is the context key for storing the request ID.
type requestIDKey struct{}

// RequestIDHeader is the response header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator func() string
	Validate  func(string) bool
	Extractor internal.Extractor
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDSources replaces the sources checked for an upstream ID.
func WithRequestIDSources(sources ...internal.ExtractorSource) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Extractor = internal.NewExtractor(sources...)
	}
}

// WithRequestIDGenerator sets a custom ID generator function.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		if gen != nil {
			cfg.Generator = gen
		}
	}
}

// WithRequestIDValidator decides whether an upstream ID is propagated.
// A nil validator accepts anything non-empty.
func WithRequestIDValidator(fn func(string) bool) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Validate = fn
	}
}

// RequestID returns middleware that assigns an ID to each request.
// An upstream X-Request-ID or X-Correlation-ID is kept when it is a UUID;
// otherwise a fresh UUIDv7 is generated. The ID is stored in the context
// and echoed in the X-Request-ID response header.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &RequestIDConfig{
		Generator: id.NewRequestID,
		Validate:  id.ValidRequestID,
		Extractor: internal.NewExtractor(
			internal.FromHeader("X-Request-ID"),
			internal.FromHeader("X-Correlation-ID"),
		),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			reqID, ok := cfg.Extractor.Extract(c)
			if !ok || (cfg.Validate != nil && !cfg.Validate(reqID)) {
				reqID = cfg.Generator()
			}

			c.Set(requestIDKey{}, reqID)
			c.SetHeader(RequestIDHeader, reqID)

			return next(c)
		}
	}
}

// GetRequestID returns the request ID, or "" outside the middleware.
func GetRequestID(c internal.Context) string {
	return internal.ContextValue[string](c, requestIDKey{})
}

// RequestIDExtractor adds "request_id" to every log entry made with the
// request context.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
