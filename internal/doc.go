// Package internal is the HTTP runtime of the mailsig server.
//
// # Core Types
//
//   - App: chi router, middleware, health endpoints and graceful shutdown
//   - Context: request/response access plus render, bind, cookie and storage helpers
//   - Router: interface handlers use to declare routes
//   - Handler: implemented by types that declare routes on a router
//   - HandlerFunc: route handler signature; a returned error goes to the ErrorHandler
//   - Middleware: wraps a HandlerFunc
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to the
// compositor, the image resolver or the exporter:
//
//	func (h *Signature) composite(c internal.Context) error {
//	    uri, err := h.compositor.Composite(c, photoURL)
//	    ...
//	}
//
// # Binding
//
// Bind and BindJSON decode the body, then call Normalize and Validate when the
// target implements Normalizer and Validatable. Field errors come back as
// ValidationErrors with a nil error so the form can be re-rendered with them:
//
//	var req requests.Signature
//	errs, err := c.Bind(&req)
//	if err != nil {
//	    return err
//	}
//	if len(errs) > 0 {
//	    return c.Render(http.StatusUnprocessableEntity, views.Errors(errs))
//	}
//
// # htmx
//
// Render and RenderPartial apply htmx response headers and out-of-band
// components only to htmx requests. The ResponseWriter turns non-200 statuses
// into 200 for htmx so the swap still happens.
//
// # Running
//
//	app := internal.New(
//	    internal.WithLogger("mailsig", middlewares.RequestIDExtractor()),
//	    internal.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    internal.WithHandlers(sig, api),
//	    internal.WithHealthChecks(internal.WithReadinessCheck("browser", b.Healthcheck)),
//	)
//	err := app.Run(":8080", internal.ShutdownHook(b.Shutdown))
package internal
