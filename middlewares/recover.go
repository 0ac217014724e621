package middlewares

import (
	"runtime"

	"github.com/dmitrymomot/mailsig/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	StackSize      int
	DisableLogging bool
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size. Zero disables
// stack capture.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = max(size, 0)
	}
}

// WithRecoverDisableLogging leaves logging to the error handler.
func WithRecoverDisableLogging() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisableLogging = true
	}
}

// Recover returns middleware that turns a handler panic into a *PanicError.
// ErrorHandler answers it with a 500.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &RecoverConfig{StackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				var stack []byte
				if cfg.StackSize > 0 {
					stack = make([]byte, cfg.StackSize)
					stack = stack[:runtime.Stack(stack, false)]
				}

				if !cfg.DisableLogging {
					c.LogError("panic recovered",
						"panic", r,
						"method", c.Request().Method,
						"path", c.Request().URL.Path,
						"stack", string(stack),
					)
				}

				err = &PanicError{Value: r, Stack: stack}
			}()

			return next(c)
		}
	}
}
