package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/mailsig/internal"
	"github.com/dmitrymomot/mailsig/middlewares"
	"github.com/dmitrymomot/mailsig/pkg/browser"
	"github.com/dmitrymomot/mailsig/pkg/clipboard"
	"github.com/dmitrymomot/mailsig/pkg/htmx"
	"github.com/dmitrymomot/mailsig/pkg/logger"
	"github.com/dmitrymomot/mailsig/pkg/rasterexport"
	"github.com/dmitrymomot/mailsig/pkg/signature"
	"github.com/dmitrymomot/mailsig/pkg/templates"
	"github.com/dmitrymomot/mailsig/views"
)

// ExportSelector matches the root element of every rendered template.
const ExportSelector = "[data-signature]"

// SignatureHandler serves the editor and every signature output.
type SignatureHandler struct {
	registry      *templates.Registry
	clipboard     *clipboard.Exporter
	exporter      *rasterexport.Exporter
	pages         PageOpener
	baseURL       string
	exportTimeout time.Duration
	uploads       bool
}

// SignatureOption configures SignatureHandler.
type SignatureOption func(*SignatureHandler)

// WithRasterExport enables PNG/JPEG exports. Without it the export routes
// answer 503.
func WithRasterExport(e *rasterexport.Exporter, pages PageOpener, timeout time.Duration) SignatureOption {
	return func(h *SignatureHandler) {
		h.exporter = e
		h.pages = pages
		if timeout > 0 {
			h.exportTimeout = timeout
		}
	}
}

// WithBaseURL is the URL exported documents resolve relative references
// against. It must be absolute.
func WithBaseURL(u string) SignatureOption {
	return func(h *SignatureHandler) {
		h.baseURL = strings.TrimSuffix(u, "/") + "/"
	}
}

// WithUploads shows the photo upload control.
func WithUploads(enabled bool) SignatureOption {
	return func(h *SignatureHandler) {
		h.uploads = enabled
	}
}

// NewSignatureHandler creates the editor handler.
func NewSignatureHandler(reg *templates.Registry, cb *clipboard.Exporter, opts ...SignatureOption) *SignatureHandler {
	h := &SignatureHandler{
		registry:      reg,
		clipboard:     cb,
		baseURL:       "http://localhost:8080/",
		exportTimeout: 45 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *SignatureHandler) Routes(r internal.Router) {
	r.GET("/", h.editor)
	r.Route("/signature", func(r internal.Router) {
		r.POST("/preview", h.preview)
		r.POST("/html", h.html)
		r.POST("/clipboard", h.copy)
		r.POST("/export/{format}", h.export, middlewares.Timeout(h.exportTimeout))
	})
}

// editor renders the full page from the draft cookie, or the example
// signature on a first visit.
func (h *SignatureHandler) editor(c internal.Context) error {
	req, ok := loadDraft(c)
	if !ok {
		req = SignatureRequest{Data: signature.Example()}
	}
	if id := internal.Query[string](c, "template"); id != "" {
		req.TemplateID = id
	}

	e, err := views.NewEditor(c, h.registry, req.TemplateID, req.Data)
	if err != nil {
		return err
	}
	e.UploadsEnabled = h.uploads
	return c.Render(http.StatusOK, views.Page(e))
}

// preview re-renders on every form change. Invalid input keeps the last
// preview and lists the errors instead.
func (h *SignatureHandler) preview(c internal.Context) error {
	var req SignatureRequest
	errs, err := c.Bind(&req)
	if err != nil {
		return internal.ErrBadRequest("Invalid form data", internal.WithError(err))
	}

	if len(errs) > 0 {
		errs.Translate(views.Message)
		e := views.Editor{Errors: errs, ErrorsID: views.ErrorsID}
		return c.Render(http.StatusUnprocessableEntity, views.Errors(e),
			htmx.WithRetarget("#"+views.ErrorsID),
			htmx.WithReswap(htmx.SwapOuterHTML),
		)
	}

	e, err := views.NewEditor(c, h.registry, req.TemplateID, req.Data)
	if err != nil {
		return err
	}
	saveDraft(c, req)
	c.LogDebug("preview rendered",
		slog.String("template", e.TemplateID),
		slog.String("trigger", htmx.TriggerName(c.Request())),
	)

	return c.RenderPartial(http.StatusOK, views.Page(e), views.Preview(e),
		htmx.WithOOB(views.CodeBox(e), views.ErrorsOOB(e)),
		htmx.WithTriggerDetail("signature:rendered", map[string]string{
			"template": e.TemplateID,
			"filename": e.Filename,
		}),
	)
}

type htmlResponse struct {
	HTML string `json:"html"`
}

// html returns the email-safe fragment.
func (h *SignatureHandler) html(c internal.Context) error {
	req, err := bindSignature(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, htmlResponse{HTML: h.registry.ExportHTML(req.TemplateID, req.Data)})
}

// copy returns the self-contained clipboard payload: the email-safe
// fragment with every remote image inlined.
func (h *SignatureHandler) copy(c internal.Context) error {
	req, err := bindSignature(c)
	if err != nil {
		return err
	}

	markup := h.registry.ExportHTML(req.TemplateID, req.Data)
	processed, err := h.clipboard.Process(c, markup)
	if err != nil {
		c.LogWarn("clipboard processing failed, returning original markup", logger.Error(err))
		processed = markup
	}
	return c.JSON(http.StatusOK, htmlResponse{HTML: processed})
}

// export captures the preview markup in the headless browser and streams
// the image as an attachment.
func (h *SignatureHandler) export(c internal.Context) error {
	format, ok := rasterexport.ParseFormat(internal.Param[string](c, "format"))
	if !ok {
		return internal.ErrNotFound("Unknown export format")
	}
	ratio := internal.QueryDefault(c, "pixel_ratio", float64(rasterexport.DefaultPixelRatio))
	if ratio < 1 || ratio > rasterexport.MaxPixelRatio {
		return internal.ErrBadRequest(fmt.Sprintf("pixel_ratio must be between 1 and %d", rasterexport.MaxPixelRatio))
	}
	if h.exporter == nil || h.pages == nil {
		return internal.ErrServiceUnavailable("Image export is not available")
	}

	req, err := bindSignature(c)
	if err != nil {
		return err
	}

	ctx := middlewares.GetTimeoutContext(c)
	body, err := templates.RenderString(ctx, h.registry.Lookup(req.TemplateID).Render(req.Data))
	if err != nil {
		return err
	}

	page, release, err := h.pages.OpenPage(ctx, browser.Document(h.baseURL, body))
	defer release()
	if err != nil {
		return internal.ErrServiceUnavailable("Image export is not available", internal.WithError(err))
	}

	_, err = h.exporter.Export(ctx, page, ExportSelector, rasterexport.Options{
		Format:     format,
		PixelRatio: ratio,
		Filename:   signature.ExportFilename(req.Name),
		Key:        clientKey(c.Request()),
	}, rasterexport.HTTPSink{W: c.Response()})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rasterexport.ErrBusy):
		return internal.NewHTTPError(http.StatusTooManyRequests, "An export is already in progress")
	default:
		return internal.ErrInternal("Failed to export image", internal.WithDetail(err.Error()), internal.WithError(err))
	}
}

// bindSignature accepts both the editor form and JSON bodies. Validation
// failures become a 422 carrying the first message.
func bindSignature(c internal.Context) (SignatureRequest, error) {
	var req SignatureRequest

	bind := c.Bind
	if strings.HasPrefix(c.Header("Content-Type"), "application/json") {
		bind = c.BindJSON
	}

	errs, err := bind(&req)
	if err != nil {
		return req, internal.ErrBadRequest("Invalid request body", internal.WithError(err))
	}
	if len(errs) > 0 {
		errs.Translate(views.Message)
		return req, internal.ErrUnprocessable(errs[0].Message, internal.WithError(errs))
	}
	return req, nil
}

// clientKey limits each client to one running export.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
