// Package browser drives a headless Chrome through chromedp.
//
// A Browser owns one Chrome process. Each Open call loads a signature
// document into a fresh tab; the returned Tab satisfies rasterexport.Page
// and the rich and legacy clipboard writers.
//
//	b, err := browser.New(ctx, browser.WithNoSandbox())
//	defer b.Close()
//
//	tab, err := b.Open(ctx, browser.Document(baseURL, html))
//	defer tab.Close()
package browser
