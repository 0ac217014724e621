package composite

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/mailsig/pkg/imageproxy"
)

// Loader produces the background image.
type Loader func(ctx context.Context) (image.Image, error)

// FromURL downloads and decodes the background. A nil client uses the
// imageproxy defaults.
func FromURL(client *http.Client, url string) Loader {
	f := imageproxy.NewFetcher(imageproxy.WithHTTPClient(client))
	return func(ctx context.Context) (image.Image, error) {
		img, err := f.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		return decode(img.Data)
	}
}

// FromFile decodes the background from disk.
func FromFile(path string) Loader {
	return func(context.Context) (image.Image, error) {
		img, err := imaging.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return img, nil
	}
}

// FromImage serves an already decoded image.
func FromImage(img image.Image) Loader {
	return func(context.Context) (image.Image, error) { return img, nil }
}

// Background memoizes the first successful load for the life of the process.
// Concurrent first callers share one in-flight load; a failed load is
// forgotten so the next caller retries.
type Background struct {
	load  Loader
	group singleflight.Group

	mu  sync.RWMutex
	img image.Image
}

func NewBackground(load Loader) *Background {
	return &Background{load: load}
}

func (b *Background) Get(ctx context.Context) (image.Image, error) {
	b.mu.RLock()
	img := b.img
	b.mu.RUnlock()
	if img != nil {
		return img, nil
	}

	ch := b.group.DoChan("background", func() (any, error) {
		b.mu.RLock()
		cached := b.img
		b.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		// Detached so one caller giving up does not fail the others.
		loaded, err := b.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		b.mu.Lock()
		b.img = loaded
		b.mu.Unlock()
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	}
}

func decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return img, nil
}
