// Package htmx holds the small slice of the HTMX protocol the signature
// editor speaks: request detection, response headers and out-of-band swaps.
//
// The editor form posts to the preview endpoint on every change. The handler
// answers with the rendered preview and pushes the refreshed HTML code box
// out of band:
//
//	c.Render(http.StatusOK, views.Preview(html),
//	    htmx.WithOOB(views.CodeBox(html)),
//	    htmx.WithTriggerDetail("signature:rendered", map[string]string{
//	        "filename": signature.ExportFilename(d.Name),
//	    }),
//	)
//
// Headers are applied only for HTMX requests; a plain request to the same
// endpoint gets the full page.
//
// Redirect and RedirectWithStatus send HX-Redirect to HTMX clients and a
// regular Location redirect to everyone else.
package htmx
