// Package rasterexport turns a rendered signature element into a PNG or JPEG
// file.
//
// The exporter drives a Page (a live document, see pkg/browser) through a
// fixed sequence: confirm the target element is attached, inline every
// cross-origin image so the capture is not tainted, wait for images to
// settle, capture at the requested pixel ratio and hand the file to a Sink.
//
//	exp := rasterexport.New(resolver, rasterexport.WithLogger(log))
//	f, err := exp.Export(ctx, page, "[data-signature]", rasterexport.Options{
//		Format:   rasterexport.JPEG,
//		Filename: signature.ExportFilename(d.Name),
//	}, rasterexport.HTTPSink{W: w})
//
// All failures are returned as *Error, whose message is suitable for showing
// to a user. Use errors.Is with ErrTargetMissing, ErrEmptyImage or
// ErrDownload to branch on the cause.
package rasterexport
