package internal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailsig/internal"
)

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

func serve(app *internal.App, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestApp_ErrorHandling(t *testing.T) {
	t.Parallel()

	h := routes(func(r internal.Router) {
		r.GET("/http", func(c internal.Context) error {
			return internal.ErrBadRequest("URL parameter is required")
		})
		r.GET("/plain", func(c internal.Context) error {
			return errors.New("boom")
		})
		r.GET("/late", func(c internal.Context) error {
			_ = c.String(http.StatusOK, "done")
			return errors.New("after write")
		})
	})

	t.Run("default handler", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithHandlers(h))

		w := serve(app, http.MethodGet, "/http")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "URL parameter is required")

		w = serve(app, http.MethodGet, "/plain")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")

		w = serve(app, http.MethodGet, "/late")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "done", w.Body.String())
	})

	t.Run("custom handler", func(t *testing.T) {
		t.Parallel()

		var got error
		app := internal.New(
			internal.WithHandlers(h),
			internal.WithErrorHandler(func(c internal.Context, err error) error {
				got = err
				return c.JSON(http.StatusTeapot, map[string]string{"error": err.Error()})
			}),
		)

		w := serve(app, http.MethodGet, "/plain")
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.JSONEq(t, `{"error":"boom"}`, w.Body.String())
		assert.EqualError(t, got, "boom")
	})
}

func TestApp_NotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithHandlers(routes(func(r internal.Router) {
			r.POST("/signature/preview", func(c internal.Context) error { return c.NoContent(http.StatusOK) })
		})),
		internal.WithNotFoundHandler(func(c internal.Context) error {
			return c.String(http.StatusNotFound, "no such page")
		}),
		internal.WithMethodNotAllowedHandler(func(c internal.Context) error {
			return c.String(http.StatusMethodNotAllowed, "wrong method")
		}),
	)

	w := serve(app, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no such page", w.Body.String())

	w = serve(app, http.MethodGet, "/signature/preview")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "wrong method", w.Body.String())
}

func TestApp_MiddlewareOrder(t *testing.T) {
	t.Parallel()

	var trail []string
	mark := func(name string) internal.Middleware {
		return func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				trail = append(trail, name)
				return next(c)
			}
		}
	}

	app := internal.New(
		internal.WithMiddleware(mark("global-1"), mark("global-2")),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.Group(func(r internal.Router) {
				r.Use(mark("group"))
				r.GET("/", func(c internal.Context) error {
					trail = append(trail, "handler")
					return c.NoContent(http.StatusOK)
				}, mark("route-1"), mark("route-2"))
			})
		})),
	)

	w := serve(app, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"global-1", "global-2", "group", "route-1", "route-2", "handler"}, trail)
}

func TestApp_MiddlewareError(t *testing.T) {
	t.Parallel()

	deny := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			return internal.ErrForbidden("nope")
		}
	}

	app := internal.New(
		internal.WithMiddleware(deny),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error { return c.NoContent(http.StatusOK) })
		})),
	)

	w := serve(app, http.MethodGet, "/")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestApp_StaticFiles(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"static/clipboard.js": &fstest.MapFile{Data: []byte("window.mailsig = {};")},
	}
	app := internal.New(internal.WithStaticFiles("/assets/", fsys, "static"))

	w := serve(app, http.MethodGet, "/assets/clipboard.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "window.mailsig = {};", w.Body.String())
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = serve(app, http.MethodGet, "/assets/")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApp_HealthChecks(t *testing.T) {
	t.Parallel()

	failing := func(context.Context) error { return errors.New("chrome is gone") }

	app := internal.New(internal.WithHealthChecks(
		internal.WithReadinessCheck("browser", failing),
		internal.WithReadinessCheck("redis", nil),
	))

	w := serve(app, http.MethodGet, "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = serve(app, http.MethodGet, "/health/ready?format=json")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "chrome is gone"))
	assert.NotContains(t, w.Body.String(), "redis")
}

func TestApp_RunStartupHookFailure(t *testing.T) {
	t.Parallel()

	app := internal.New()
	err := app.Run("127.0.0.1:0", internal.StartupHook(func(context.Context) error {
		return errors.New("background asset unavailable")
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "background asset unavailable")
}
