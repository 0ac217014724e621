package middlewares

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/mailsig/internal"
	"github.com/dmitrymomot/mailsig/pkg/htmx"
	"github.com/dmitrymomot/mailsig/pkg/logger"
)

// PanicError represents a recovered panic.
type PanicError struct {
	Value any
	Stack []byte // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// TimeoutError represents a request timeout.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// AsTimeoutError extracts the TimeoutError from an error if present.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// ErrorTarget is the element HTMX error fragments are swapped into.
const ErrorTarget = "#flash"

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler renders handler errors. API requests (paths under /api/ or
// asking for JSON) get {"error": ...}; HTMX requests get an alert fragment
// swapped into ErrorTarget; everything else gets plain text.
//
// Unknown errors are logged and reported as a bare 500 without internals.
func ErrorHandler() internal.ErrorHandler {
	return func(c internal.Context, err error) error {
		httpErr := classify(c, err)
		httpErr.RequestID = GetRequestID(c)

		switch {
		case wantsJSON(c.Request()):
			return c.JSON(httpErr.Code, errorBody{
				Error:     httpErr.Message,
				Details:   httpErr.Detail,
				RequestID: httpErr.RequestID,
			})
		case c.IsHTMX():
			return c.Render(httpErr.Code, alert(httpErr),
				htmx.WithRetarget(ErrorTarget),
				htmx.WithReswap(htmx.SwapInnerHTML),
			)
		default:
			return c.String(httpErr.Code, httpErr.Message)
		}
	}
}

func classify(c internal.Context, err error) *internal.HTTPError {
	if httpErr := internal.AsHTTPError(err); httpErr != nil {
		if httpErr.Code >= http.StatusInternalServerError {
			c.LogError("request failed", logger.Error(err))
		}
		// Copy so the shared sentinel values are never mutated.
		out := *httpErr
		return &out
	}
	if _, ok := AsPanicError(err); ok {
		return internal.ErrInternal("Internal Server Error", internal.WithError(err))
	}
	if te, ok := AsTimeoutError(err); ok {
		return internal.ErrServiceUnavailable("Request timed out", internal.WithError(te))
	}

	c.LogError("unhandled error", logger.Error(err))
	return internal.ErrInternal("Internal Server Error", internal.WithError(err))
}

func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func alert(e *internal.HTTPError) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="alert alert-error" role="alert">%s</div>`, html.EscapeString(e.Message))
		return err
	})
}
