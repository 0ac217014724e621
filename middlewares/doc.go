// Package middlewares provides the HTTP middleware stack of the signature
// server.
//
// The server installs it like this:
//
//	app := internal.New(
//	    internal.WithLogger("mailsig", middlewares.RequestIDExtractor()),
//	    internal.WithErrorHandler(middlewares.ErrorHandler()),
//	    internal.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	    ),
//	    internal.WithHandlers(...),
//	)
//
// CORS and Timeout are applied per route group: the JSON API is callable
// cross-origin, and raster exports get a longer deadline than the rest.
//
// # Request ID
//
// RequestID keeps an upstream X-Request-ID or X-Correlation-ID when it is a
// UUID and generates a UUIDv7 otherwise. RequestIDExtractor adds the ID to
// every log line written with the request context.
//
// # Errors
//
// Recover converts panics into *PanicError and Timeout returns *TimeoutError.
// ErrorHandler turns those and internal.HTTPError values into responses:
// JSON under /api/, an alert fragment for HTMX requests, plain text
// otherwise.
package middlewares
