package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailsig/pkg/cookie"
)

const testSecret = "this-is-a-32-byte-secret-key!!!!"

func roundTrip(t *testing.T, w *httptest.ResponseRecorder) *http.Request {
	t.Helper()

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	return r
}

func TestPlainCookies(t *testing.T) {
	t.Parallel()

	m := cookie.New()

	_, err := m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "template")
	require.ErrorIs(t, err, cookie.ErrNotFound)

	w := httptest.NewRecorder()
	m.Set(w, "template", "banner", 3600)
	assert.Equal(t, 3600, w.Result().Cookies()[0].MaxAge)

	v, err := m.Get(roundTrip(t, w), "template")
	require.NoError(t, err)
	assert.Equal(t, "banner", v)

	w = httptest.NewRecorder()
	m.Delete(w, "template")
	assert.Equal(t, -1, w.Result().Cookies()[0].MaxAge)
}

func TestEncryptedCookies(t *testing.T) {
	t.Parallel()

	t.Run("secret required", func(t *testing.T) {
		t.Parallel()

		for _, m := range []*cookie.Manager{cookie.New(), cookie.New(cookie.WithSecret("short"))} {
			assert.False(t, m.Encrypted())
			assert.ErrorIs(t, m.SetEncrypted(httptest.NewRecorder(), "draft", "x", 60), cookie.ErrNoSecret)

			_, err := m.GetEncrypted(httptest.NewRequest(http.MethodGet, "/", nil), "draft")
			assert.ErrorIs(t, err, cookie.ErrNoSecret)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		m := cookie.New(cookie.WithSecret(testSecret))
		require.True(t, m.Encrypted())

		w := httptest.NewRecorder()
		require.NoError(t, m.SetEncrypted(w, "draft", `{"name":"Ada Lovelace"}`, 3600))
		assert.NotContains(t, w.Result().Cookies()[0].Value, "Ada")

		v, err := m.GetEncrypted(roundTrip(t, w), "draft")
		require.NoError(t, err)
		assert.Equal(t, `{"name":"Ada Lovelace"}`, v)
	})

	t.Run("nonce differs per write", func(t *testing.T) {
		t.Parallel()

		m := cookie.New(cookie.WithSecret(testSecret))
		w1, w2 := httptest.NewRecorder(), httptest.NewRecorder()
		require.NoError(t, m.SetEncrypted(w1, "draft", "same", 60))
		require.NoError(t, m.SetEncrypted(w2, "draft", "same", 60))
		assert.NotEqual(t, w1.Result().Cookies()[0].Value, w2.Result().Cookies()[0].Value)
	})

	t.Run("other secret cannot read", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		require.NoError(t, cookie.New(cookie.WithSecret(testSecret)).SetEncrypted(w, "draft", "x", 60))

		other := cookie.New(cookie.WithSecret(strings.Repeat("z", 32)))
		_, err := other.GetEncrypted(roundTrip(t, w), "draft")
		assert.ErrorIs(t, err, cookie.ErrDecrypt)
	})

	t.Run("tampered values", func(t *testing.T) {
		t.Parallel()

		m := cookie.New(cookie.WithSecret(testSecret))
		for _, value := range []string{"%%%", "c2hvcnQ", "dGFtcGVyZWR2YWx1ZXRoYXRpc2xvbmdlbm91Z2g"} {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.AddCookie(&http.Cookie{Name: "draft", Value: value})
			_, err := m.GetEncrypted(r, "draft")
			assert.ErrorIs(t, err, cookie.ErrDecrypt, value)
		}
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()

		m := cookie.New(cookie.WithSecret(testSecret))
		w := httptest.NewRecorder()
		err := m.SetEncrypted(w, "draft", strings.Repeat("a", cookie.MaxValueSize), 60)
		assert.ErrorIs(t, err, cookie.ErrTooLarge)
		assert.Empty(t, w.Result().Cookies())
	})
}

func TestCookieAttributes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		m    *cookie.Manager
		want http.Cookie
	}{
		{
			name: "defaults",
			m:    cookie.New(),
			want: http.Cookie{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode},
		},
		{
			name: "configured",
			m: cookie.New(
				cookie.WithDomain("mailsig.example.com"),
				cookie.WithPath("/signature"),
				cookie.WithSecure(true),
				cookie.WithHTTPOnly(false),
				cookie.WithSameSite(http.SameSiteStrictMode),
			),
			want: http.Cookie{Domain: "mailsig.example.com", Path: "/signature", Secure: true, SameSite: http.SameSiteStrictMode},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			tt.m.Set(w, "k", "v", 60)
			c := w.Result().Cookies()[0]

			assert.Equal(t, tt.want.Domain, c.Domain)
			assert.Equal(t, tt.want.Path, c.Path)
			assert.Equal(t, tt.want.Secure, c.Secure)
			assert.Equal(t, tt.want.HttpOnly, c.HttpOnly)
			assert.Equal(t, tt.want.SameSite, c.SameSite)
		})
	}
}
