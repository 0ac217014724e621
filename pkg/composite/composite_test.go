package composite_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailsig/pkg/composite"
	"github.com/dmitrymomot/mailsig/pkg/imageproxy"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeDataURI(t *testing.T, uri string) image.Image {
	t.Helper()
	raw, err := imageproxy.ParseDataURI(uri)
	require.NoError(t, err)
	require.Equal(t, "image/png", raw.ContentType)
	img, err := png.Decode(bytes.NewReader(raw.Data))
	require.NoError(t, err)
	return img
}

func assertColor(t *testing.T, img image.Image, x, y int, want color.NRGBA) {
	t.Helper()
	got := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	assert.InDelta(t, want.R, got.R, 2, "R at %d,%d", x, y)
	assert.InDelta(t, want.G, got.G, 2, "G at %d,%d", x, y)
	assert.InDelta(t, want.B, got.B, 2, "B at %d,%d", x, y)
	assert.InDelta(t, want.A, got.A, 2, "A at %d,%d", x, y)
}

func TestDraw(t *testing.T) {
	t.Parallel()

	out := composite.Draw(solid(320, 300, red), solid(400, 120, blue)).Image()

	assert.Equal(t, 320, out.Bounds().Dx())
	assert.Equal(t, 380, out.Bounds().Dy())

	assertColor(t, out, 147, 147, blue)         // circle center
	assertColor(t, out, 147, 40, blue)          // inside near the top edge
	assertColor(t, out, 34, 34, red)            // square corner, outside the circle
	assertColor(t, out, 300, 150, red)          // background only
	assertColor(t, out, 10, 340, color.NRGBA{}) // extra band stays transparent
	assertColor(t, out, 147, 32+230+5, red)     // below the photo square
}

func TestCompositor_Composite(t *testing.T) {
	t.Parallel()

	photo := encodePNG(t, solid(50, 80, blue))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(photo)
	}))
	t.Cleanup(srv.Close)

	c := composite.New(
		composite.NewBackground(composite.FromImage(solid(300, 300, red))),
		composite.WithBaseURL(srv.URL),
	)
	ctx := context.Background()

	cases := map[string]string{
		"data uri": imageproxy.Image{ContentType: "image/png", Data: photo}.DataURI(),
		"absolute": srv.URL + "/me.png",
		"relative": "/me.png",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			uri, err := c.Composite(ctx, src)
			require.NoError(t, err)

			out := decodeDataURI(t, uri)
			assert.Equal(t, image.Rect(0, 0, 300, 380), out.Bounds())
			assertColor(t, out, 147, 147, blue)
			assertColor(t, out, 33, 33, red)
		})
	}
}

func TestCompositor_Errors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	photo := imageproxy.Image{ContentType: "image/png", Data: encodePNG(t, solid(10, 10, blue))}.DataURI()
	okBG := composite.NewBackground(composite.FromImage(solid(300, 300, red)))
	badBG := composite.NewBackground(func(context.Context) (image.Image, error) {
		return nil, errors.New("asset gone")
	})
	ctx := context.Background()

	tests := []struct {
		name string
		c    *composite.Compositor
		src  string
		want error
	}{
		{"background failure", composite.New(badBG), photo, composite.ErrBackground},
		{"photo upstream failure", composite.New(okBG), srv.URL + "/missing.png", composite.ErrPhoto},
		{"undecodable photo", composite.New(okBG), "data:image/png;base64,aGVsbG8=", composite.ErrDecode},
		{"blob reference", composite.New(okBG), "blob:http://localhost/1", composite.ErrUnsupportedSource},
		{"relative without base", composite.New(okBG), "/me.png", composite.ErrUnsupportedSource},
		{"empty", composite.New(okBG), "", composite.ErrUnsupportedSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.c.Composite(ctx, tt.src)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBackground_SingleLoad(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	bg := composite.NewBackground(func(context.Context) (image.Image, error) {
		calls.Add(1)
		<-release
		return solid(4, 4, red), nil
	})

	var wg sync.WaitGroup
	results := make([]image.Image, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := bg.Get(context.Background())
			assert.NoError(t, err)
			results[i] = img
		}()
	}
	close(release)
	wg.Wait()

	_, err := bg.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())
	for _, img := range results {
		assert.Same(t, results[0], img)
	}
}

func TestBackground_FailureNotCached(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	bg := composite.NewBackground(func(context.Context) (image.Image, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("transient")
		}
		return solid(2, 2, red), nil
	})

	_, err := bg.Get(context.Background())
	require.Error(t, err)

	img, err := bg.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, img)
	assert.EqualValues(t, 2, calls.Load())
}

func TestLoaders(t *testing.T) {
	t.Parallel()

	data := encodePNG(t, solid(6, 3, red))

	t.Run("file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bg.png")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		img, err := composite.FromFile(path)(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 6, img.Bounds().Dx())

		_, err = composite.FromFile(filepath.Join(t.TempDir(), "nope.png"))(context.Background())
		assert.ErrorIs(t, err, composite.ErrDecode)
	})

	t.Run("url", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(data)
		}))
		t.Cleanup(srv.Close)

		img, err := composite.FromURL(srv.Client(), srv.URL+"/signature-asset.png")(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, img.Bounds().Dy())
	})
}
