package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/mailsig/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// timeoutContextKey stores the deadline-bound context.
type timeoutContextKey struct{}

// Timeout returns middleware that bounds a request. Raster exports get a
// longer budget than the rest of the API, so it is usually applied per
// route group.
//
// The handler keeps running after the deadline; long operations must take
// their context from GetTimeoutContext and stop on ctx.Done().
func Timeout(timeout time.Duration) internal.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			c.Set(timeoutContextKey{}, ctx)

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					c.LogWarn("request timeout", "timeout", timeout.String())
					return &TimeoutError{Duration: timeout}
				}
				return ctx.Err()
			}
		}
	}
}

// GetTimeoutContext returns the deadline-bound context set by Timeout, or the
// request context when the middleware is not installed.
func GetTimeoutContext(c internal.Context) context.Context {
	if ctx := internal.ContextValue[context.Context](c, timeoutContextKey{}); ctx != nil {
		return ctx
	}
	return c.Context()
}
