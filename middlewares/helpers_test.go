package middlewares_test

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/mailsig/internal"
	"github.com/dmitrymomot/mailsig/middlewares"
)

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

// newApp wires the middleware stack the server uses around fn.
func newApp(fn routes, mw ...internal.Middleware) *internal.App {
	return internal.New(
		internal.WithErrorHandler(middlewares.ErrorHandler()),
		internal.WithMiddleware(mw...),
		internal.WithHandlers(fn),
	)
}

func do(app http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func get(target string, body io.Reader) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, body)
}

func httptestRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}
