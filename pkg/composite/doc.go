// Package composite frames a profile photo onto the decorative signature
// background: the photo is cover-fit into a 230x230 square at (32,32),
// clipped to the inscribed circle and drawn over the background on a canvas
// 80px taller than the background. The result is a PNG data URI.
//
// The background is loaded once per process through a Background cache:
//
//	bg := composite.NewBackground(composite.FromURL(nil, signature.AccentURL))
//	c := composite.New(bg, composite.WithSource(fetcher))
//	uri, err := c.Composite(ctx, photoURL)
package composite
