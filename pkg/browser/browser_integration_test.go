//go:build integration

package browser_test

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailsig/pkg/browser"
)

// Requires Chrome; set CHROME_PATH when it is not on PATH.
func newBrowser(t *testing.T) *browser.Browser {
	t.Helper()

	opts := []browser.Option{browser.WithNoSandbox()}
	if p := os.Getenv("CHROME_PATH"); p != "" {
		opts = append(opts, browser.WithExecPath(p))
	}
	b, err := browser.New(context.Background(), opts...)
	if err != nil {
		t.Skipf("chrome unavailable: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

const fragment = `<table data-signature style="width:200px;height:50px;background:#ff0000">
<tr><td><img src="data:image/gif;base64,R0lGODlhAQABAAAAACw=" alt=""><img src="/missing.png" alt=""></td></tr>
</table>`

func TestTab_Page(t *testing.T) {
	b := newBrowser(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tab, err := b.Open(ctx, browser.Document("http://127.0.0.1:1/", fragment))
	require.NoError(t, err)
	defer tab.Close()

	assert.Equal(t, "http://127.0.0.1:1", tab.Origin())

	ok, err := tab.Attached(ctx, "[data-signature]")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tab.Attached(ctx, "#nope")
	require.NoError(t, err)
	assert.False(t, ok)

	srcs, err := tab.Images(ctx, "[data-signature]")
	require.NoError(t, err)
	require.Len(t, srcs, 2)
	assert.Equal(t, "http://127.0.0.1:1/missing.png", srcs[1], "relative src resolves against the base")

	require.NoError(t, tab.ReplaceImage(ctx, "[data-signature]", 1, srcs[0]))
	assert.ErrorIs(t, tab.ReplaceImage(ctx, "[data-signature]", 5, srcs[0]), browser.ErrNoElement)

	require.NoError(t, tab.WaitImages(ctx, "[data-signature]"))

	shot, err := tab.Capture(ctx, "[data-signature]", 2, color.White)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(shot))
	require.NoError(t, err)
	assert.InDelta(t, 400, img.Bounds().Dx(), 2)
}

func TestBrowser_Healthcheck(t *testing.T) {
	b := newBrowser(t)
	require.NoError(t, b.Healthcheck(context.Background()))

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	_, err := b.Open(context.Background(), browser.Document("http://localhost/", ""))
	assert.ErrorIs(t, err, browser.ErrClosed)
}
