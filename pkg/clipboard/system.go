package clipboard

import (
	"context"

	"github.com/atotto/clipboard"
)

// SystemText writes to the operating system clipboard. On Linux it needs
// xclip, xsel or wl-clipboard on PATH.
type SystemText struct{}

func (SystemText) WriteText(_ context.Context, text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}
