package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailsig/handlers"
	"github.com/dmitrymomot/mailsig/internal"
	"github.com/dmitrymomot/mailsig/middlewares"
	"github.com/dmitrymomot/mailsig/pkg/browser"
	"github.com/dmitrymomot/mailsig/pkg/clipboard"
	"github.com/dmitrymomot/mailsig/pkg/composite"
	"github.com/dmitrymomot/mailsig/pkg/cookie"
	"github.com/dmitrymomot/mailsig/pkg/imageproxy"
	"github.com/dmitrymomot/mailsig/pkg/rasterexport"
	"github.com/dmitrymomot/mailsig/pkg/storage"
	"github.com/dmitrymomot/mailsig/pkg/templates"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// anySource answers every URL with the same image unless it is listed as broken.
type anySource struct {
	img    imageproxy.Image
	broken map[string]bool
}

func (s anySource) Fetch(_ context.Context, url string) (imageproxy.Image, error) {
	if s.broken[url] {
		return imageproxy.Image{}, errors.New("upstream 404")
	}
	return s.img, nil
}

type fakePage struct {
	shot  []byte
	ratio float64
}

func (p *fakePage) Attached(context.Context, string) (bool, error)          { return true, nil }
func (p *fakePage) Origin() string                                          { return "http://localhost:8080" }
func (p *fakePage) Images(context.Context, string) ([]string, error)        { return nil, nil }
func (p *fakePage) ReplaceImage(context.Context, string, int, string) error { return nil }
func (p *fakePage) WaitImages(context.Context, string) error                { return nil }
func (p *fakePage) Capture(_ context.Context, _ string, ratio float64, _ color.Color) ([]byte, error) {
	p.ratio = ratio
	return p.shot, nil
}

type fakePages struct {
	mu       sync.Mutex
	page     *fakePage
	docs     []browser.Doc
	released int
}

func (f *fakePages) OpenPage(_ context.Context, doc browser.Doc) (rasterexport.Page, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, doc)
	return f.page, func() {
		f.mu.Lock()
		f.released++
		f.mu.Unlock()
	}, nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	lastACL storage.ACL
	failPut error
}

func (m *memStorage) Put(_ context.Context, r io.Reader, _ int64, opts ...storage.Option) (*storage.FileInfo, error) {
	if m.failPut != nil {
		return nil, m.failPut
	}
	o := storage.ResolveOptions(opts...)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	key := o.Prefix + "/photo.png"

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = data
	m.lastACL = o.ACL
	return &storage.FileInfo{Key: key, ContentType: o.ContentType, ACL: o.ACL, Size: int64(len(data))}, nil
}

func (m *memStorage) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (m *memStorage) Delete(context.Context, string) error { return nil }

func (m *memStorage) URL(_ context.Context, key string, _ ...storage.URLOption) (string, error) {
	return "https://cdn.example.com/" + key, nil
}

type testServer struct {
	app   *internal.App
	pages *fakePages
	store *memStorage
}

type serverOptions struct {
	noExport  bool
	noStorage bool
	broken    map[string]bool
}

func newServer(t *testing.T, so serverOptions) *testServer {
	t.Helper()

	photo := pngBytes(t, 64, 64)
	src := anySource{img: imageproxy.Image{ContentType: "image/png", Data: photo}, broken: so.broken}
	resolver := imageproxy.NewResolver(src, nil)
	reg := templates.Builtin()

	ts := &testServer{
		pages: &fakePages{page: &fakePage{shot: pngBytes(t, 120, 40)}},
		store: &memStorage{},
	}

	sigOpts := []handlers.SignatureOption{handlers.WithBaseURL("http://localhost:8080")}
	if !so.noExport {
		sigOpts = append(sigOpts, handlers.WithRasterExport(rasterexport.New(resolver), ts.pages, 0))
	}

	opts := []internal.Option{
		internal.WithErrorHandler(middlewares.ErrorHandler()),
		internal.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
		internal.WithCookieOptions(cookie.WithSecret(testSecret)),
		internal.WithHandlers(
			handlers.NewSignatureHandler(reg, clipboard.New(resolver), sigOpts...),
			handlers.NewAPIHandler(reg,
				composite.New(composite.NewBackground(composite.FromImage(image.NewNRGBA(image.Rect(0, 0, 200, 100)))),
					composite.WithSource(src),
				),
				src, nil,
			),
		),
	}
	if !so.noStorage {
		opts = append(opts, internal.WithStorage(ts.store))
	}

	ts.app = internal.New(opts...)
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.app.ServeHTTP(w, req)
	return w
}

type errorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details"`
	RequestID string `json:"request_id"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func formRequest(target string, fields map[string]string) *http.Request {
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func validForm() map[string]string {
	return map[string]string{
		"template_id":      "default",
		"name":             "Jane Doe",
		"role":             "Head of Growth",
		"phone":            "+1 555 0100",
		"linkedin_profile": "linkedin.com/in/janedoe",
	}
}
