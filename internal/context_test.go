package internal_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailsig/internal"
	"github.com/dmitrymomot/mailsig/pkg/cookie"
	"github.com/dmitrymomot/mailsig/pkg/htmx"
	"github.com/dmitrymomot/mailsig/pkg/storage"
	"github.com/dmitrymomot/mailsig/pkg/validator"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// requestVia creates an App with the given options, registers a handler at
// GET and POST /, executes fn inside that handler and sends req.
func requestVia(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	h := &captureHandler{fn: fn}
	opts = append(opts, internal.WithHandlers(h))
	app := internal.New(opts...)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

type captureHandler struct {
	fn func(c internal.Context)
}

func (h *captureHandler) Routes(r internal.Router) {
	handle := func(c internal.Context) error {
		h.fn(c)
		return nil
	}
	r.GET("/", handle)
	r.POST("/", handle)
	r.GET("/items/{id}", handle)
}

func text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func TestContext_Delegation(t *testing.T) {
	t.Parallel()

	t.Run("deadline and values come from the request", func(t *testing.T) {
		t.Parallel()

		type key struct{}
		ctx, cancel := context.WithTimeout(context.WithValue(context.Background(), key{}, "v"), time.Minute)
		defer cancel()

		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		requestVia(t, req, nil, func(c internal.Context) {
			_, ok := c.Deadline()
			assert.True(t, ok)
			assert.Equal(t, "v", c.Value(key{}))
			assert.NoError(t, c.Err())
		})
	})

	t.Run("Set is visible through Get and Value", func(t *testing.T) {
		t.Parallel()

		type key struct{}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			c.Set(key{}, 42)
			assert.Equal(t, 42, c.Get(key{}))
			assert.Equal(t, 42, c.Value(key{}))
			assert.Equal(t, 42, internal.ContextValue[int](c, key{}))
		})
	})

	t.Run("params and query", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/items/banner?ratio=3", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			assert.Equal(t, "banner", c.Param("id"))
			assert.Equal(t, "3", c.Query("ratio"))
			assert.Equal(t, "png", c.QueryDefault("format", "png"))
		})
	})
}

func TestContext_Responses(t *testing.T) {
	t.Parallel()

	t.Run("JSON", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.JSON(http.StatusCreated, map[string]string{"url": "https://cdn.example.com/a.png"}))
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"url":"https://cdn.example.com/a.png"}`, w.Body.String())
	})

	t.Run("String", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.String(http.StatusOK, "<table></table>"))
		})

		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "<table></table>", w.Body.String())
	})

	t.Run("Redirect for htmx sets HX-Redirect", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(htmx.HeaderHXRequest, "true")
		w := requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.Redirect(http.StatusSeeOther, "/"))
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "/", w.Header().Get(htmx.HeaderHXRedirect))
	})

	t.Run("Written tracks the first write", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			assert.False(t, c.Written())
			require.NoError(t, c.NoContent(http.StatusNoContent))
			assert.True(t, c.Written())
			assert.Equal(t, http.StatusNoContent, c.ResponseWriter().Status())
		})
	})
}

func TestContext_Render(t *testing.T) {
	t.Parallel()

	t.Run("full page ignores htmx options", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.RenderPartial(http.StatusOK, text("<html>page</html>"), text("<div>partial</div>"),
				htmx.WithOOB(text(`<pre id="code" hx-swap-oob="true">x</pre>`)),
				htmx.WithTrigger("signature:rendered"),
			))
		})

		assert.Equal(t, "<html>page</html>", w.Body.String())
		assert.Empty(t, w.Header().Get(htmx.HeaderHXTrigger))
	})

	t.Run("htmx renders the partial and out-of-band components", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(htmx.HeaderHXRequest, "true")
		w := requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.RenderPartial(http.StatusUnprocessableEntity, text("<html>page</html>"), text("<div>partial</div>"),
				htmx.WithOOB(text(`<pre id="code" hx-swap-oob="true">x</pre>`)),
				htmx.WithTrigger("signature:rendered"),
			))
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `<div>partial</div><pre id="code" hx-swap-oob="true">x</pre>`, w.Body.String())
		assert.Equal(t, "signature:rendered", w.Header().Get(htmx.HeaderHXTrigger))
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	})
}

type bindTarget struct {
	Name string `form:"name" json:"name"`
	Role string `form:"role" json:"role"`

	normalized bool
}

func (b *bindTarget) Normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.normalized = true
}

func (b *bindTarget) Validate() error {
	return validator.Apply(
		validator.RequiredString("name", b.Name),
		validator.RequiredString("role", b.Role),
	)
}

func TestContext_Bind(t *testing.T) {
	t.Parallel()

	formRequest := func(v url.Values) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(v.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	t.Run("normalizes before validating", func(t *testing.T) {
		t.Parallel()

		req := formRequest(url.Values{"name": {"   "}, "role": {"VP Sales"}})
		requestVia(t, req, nil, func(c internal.Context) {
			var in bindTarget
			errs, err := c.Bind(&in)
			require.NoError(t, err)
			assert.True(t, in.normalized)
			assert.True(t, errs.Has("name"))
			assert.False(t, errs.Has("role"))
		})
	})

	t.Run("valid form", func(t *testing.T) {
		t.Parallel()

		req := formRequest(url.Values{"name": {" Ada "}, "role": {"CTO"}})
		requestVia(t, req, nil, func(c internal.Context) {
			var in bindTarget
			errs, err := c.Bind(&in)
			require.NoError(t, err)
			assert.Empty(t, errs)
			assert.Equal(t, "Ada", in.Name)
		})
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ada","role":""}`))
		req.Header.Set("Content-Type", "application/json")
		requestVia(t, req, nil, func(c internal.Context) {
			var in bindTarget
			errs, err := c.BindJSON(&in)
			require.NoError(t, err)
			assert.Equal(t, []string{"role"}, errs.Fields())
		})
	})

	t.Run("wrong content type is an error", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "text/plain")
		requestVia(t, req, nil, func(c internal.Context) {
			var in bindTarget
			errs, err := c.Bind(&in)
			require.Error(t, err)
			assert.Nil(t, errs)
		})
	})
}

func TestContext_EncryptedCookie(t *testing.T) {
	t.Parallel()

	opts := []internal.Option{internal.WithCookieOptions(cookie.WithSecret(testSecret))}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := requestVia(t, req, opts, func(c internal.Context) {
		require.NoError(t, c.SetCookieEncrypted("draft", `{"name":"Ada"}`, 3600))
	})

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotContains(t, cookies[0].Value, "Ada")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	requestVia(t, req, opts, func(c internal.Context) {
		v, err := c.CookieEncrypted("draft")
		require.NoError(t, err)
		assert.Equal(t, `{"name":"Ada"}`, v)
	})

	t.Run("without a secret", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			assert.ErrorIs(t, c.SetCookieEncrypted("draft", "x", 60), cookie.ErrNoSecret)
		})
	})
}

type memStorage struct {
	puts []storage.PutOptions
	body []byte
	err  error
}

func (m *memStorage) Put(_ context.Context, r io.Reader, size int64, opts ...storage.Option) (*storage.FileInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	o := storage.ResolveOptions(opts...)
	m.puts = append(m.puts, o)
	m.body, _ = io.ReadAll(r)
	return &storage.FileInfo{Key: o.Prefix + "/photo.png", ContentType: o.ContentType, ACL: o.ACL, Size: size}, nil
}

func (m *memStorage) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (m *memStorage) Delete(context.Context, string) error { return nil }

func (m *memStorage) URL(_ context.Context, key string, _ ...storage.URLOption) (string, error) {
	return "https://cdn.example.com/" + key, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func multipartRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestContext_Storage(t *testing.T) {
	t.Parallel()

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()

		req := multipartRequest(t, "file", "me.png", pngHeader)
		requestVia(t, req, nil, func(c internal.Context) {
			s, err := c.Storage()
			assert.Nil(t, s)
			assert.ErrorIs(t, err, storage.ErrNotConfigured)

			_, fh, err := c.FormFile("file")
			require.NoError(t, err)
			_, err = c.Upload(fh)
			assert.ErrorIs(t, err, storage.ErrNotConfigured)

			_, err = c.FileURL("k")
			assert.ErrorIs(t, err, storage.ErrNotConfigured)
		})
	})

	t.Run("upload with rules", func(t *testing.T) {
		t.Parallel()

		mem := &memStorage{}
		req := multipartRequest(t, "file", "me.png", pngHeader)
		requestVia(t, req, []internal.Option{internal.WithStorage(mem)}, func(c internal.Context) {
			_, fh, err := c.FormFile("file")
			require.NoError(t, err)

			info, err := c.Upload(fh,
				storage.WithPrefix("email-signatures"),
				storage.WithACL(storage.ACLPublicRead),
				storage.WithValidation(storage.ImageOnly(), storage.MaxSize(2<<20)),
			)
			require.NoError(t, err)
			assert.Equal(t, "email-signatures/photo.png", info.Key)
			assert.Equal(t, "image/png", info.ContentType)

			u, err := c.FileURL(info.Key, storage.WithPublic())
			require.NoError(t, err)
			assert.Equal(t, "https://cdn.example.com/email-signatures/photo.png", u)
		})
		require.Len(t, mem.puts, 1)
		assert.Equal(t, pngHeader, mem.body)
	})

	t.Run("rule rejection does not reach storage", func(t *testing.T) {
		t.Parallel()

		mem := &memStorage{}
		req := multipartRequest(t, "file", "notes.txt", []byte("plain text, not an image"))
		requestVia(t, req, []internal.Option{internal.WithStorage(mem)}, func(c internal.Context) {
			_, fh, err := c.FormFile("file")
			require.NoError(t, err)

			_, err = c.Upload(fh, storage.WithValidation(storage.ImageOnly()))
			var verr *storage.FileValidationError
			assert.True(t, errors.As(err, &verr))
		})
		assert.Empty(t, mem.puts)
	})
}
