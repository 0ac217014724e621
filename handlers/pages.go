package handlers

import (
	"context"

	"github.com/dmitrymomot/mailsig/pkg/browser"
	"github.com/dmitrymomot/mailsig/pkg/rasterexport"
)

// PageOpener loads a rendered signature into a live page for capture.
// The returned func releases the page and must always be called.
type PageOpener interface {
	OpenPage(ctx context.Context, doc browser.Doc) (rasterexport.Page, func(), error)
}

// BrowserPages opens pages as tabs of a shared headless browser.
type BrowserPages struct {
	Browser *browser.Browser
}

func (b BrowserPages) OpenPage(ctx context.Context, doc browser.Doc) (rasterexport.Page, func(), error) {
	tab, err := b.Browser.Open(ctx, doc)
	if err != nil {
		return nil, func() {}, err
	}
	return tab, tab.Close, nil
}
