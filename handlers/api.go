package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mailsig/internal"
	"github.com/dmitrymomot/mailsig/middlewares"
	"github.com/dmitrymomot/mailsig/pkg/composite"
	"github.com/dmitrymomot/mailsig/pkg/imageproxy"
	"github.com/dmitrymomot/mailsig/pkg/logger"
	"github.com/dmitrymomot/mailsig/pkg/storage"
	"github.com/dmitrymomot/mailsig/pkg/templates"
)

const (
	// MaxUploadSize caps photo uploads.
	MaxUploadSize = 2 << 20
	// UploadPrefix is the storage prefix for uploaded photos.
	UploadPrefix = "email-signatures"
)

// APIHandler serves the JSON API used by the editor and by pages that embed
// signatures.
type APIHandler struct {
	registry   *templates.Registry
	compositor *composite.Compositor
	relay      http.Handler
}

// NewAPIHandler creates the API handler. Images are relayed through src.
func NewAPIHandler(reg *templates.Registry, c *composite.Compositor, src imageproxy.Source, l *slog.Logger) *APIHandler {
	return &APIHandler{
		registry:   reg,
		compositor: c,
		relay:      imageproxy.Handler(src, l),
	}
}

func (h *APIHandler) Routes(r internal.Router) {
	r.Route("/api", func(r internal.Router) {
		r.Use(middlewares.CORS(), middlewares.Timeout(middlewares.DefaultTimeout))

		r.OPTIONS("/*", func(c internal.Context) error { return c.NoContent(http.StatusNoContent) })
		r.GET("/templates", h.templates)
		r.GET("/image-proxy", h.imageProxy)
		r.POST("/composite", h.composite)
		r.POST("/upload", h.upload)
	})
}

func (h *APIHandler) templates(c internal.Context) error {
	return c.JSON(http.StatusOK, h.registry.Metadata())
}

func (h *APIHandler) imageProxy(c internal.Context) error {
	h.relay.ServeHTTP(c.Response(), c.Request())
	return nil
}

type compositeResponse struct {
	URL     string `json:"url"`
	Warning string `json:"warning,omitempty"`
}

// composite frames the photo on the signature background. Any failure
// degrades to the original URL with a warning, so the editor keeps working.
func (h *APIHandler) composite(c internal.Context) error {
	var req CompositeRequest
	errs, err := c.BindJSON(&req)
	if err != nil {
		return internal.ErrBadRequest("Invalid request body", internal.WithError(err))
	}
	if len(errs) > 0 {
		return internal.ErrBadRequest("URL parameter is required")
	}

	uri, err := h.compositor.Composite(middlewares.GetTimeoutContext(c), req.URL)
	if err != nil {
		c.LogWarn("composite failed, using original photo",
			slog.String("url", truncate(req.URL, 200)),
			logger.Error(err),
		)
		return c.JSON(http.StatusOK, compositeResponse{
			URL:     req.URL,
			Warning: "Could not frame the photo; using it as is",
		})
	}
	return c.JSON(http.StatusOK, compositeResponse{URL: uri})
}

type uploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// upload stores a photo as a public object and returns its URL.
func (h *APIHandler) upload(c internal.Context) error {
	if _, err := c.Storage(); err != nil {
		return internal.ErrInternal("Storage is not configured", internal.WithError(err))
	}

	f, fh, err := c.FormFile("file")
	if err != nil {
		return internal.ErrBadRequest("No file provided", internal.WithError(err))
	}
	_ = f.Close()

	info, err := c.Upload(fh,
		storage.WithPrefix(UploadPrefix),
		storage.WithACL(storage.ACLPublicRead),
		storage.WithValidation(storage.ImageOnly(), storage.MaxSize(MaxUploadSize)),
	)
	if err != nil {
		return uploadError(err)
	}

	u, err := c.FileURL(info.Key, storage.WithPublic())
	if err != nil {
		return uploadError(err)
	}

	c.LogInfo("photo uploaded", slog.String("key", info.Key), slog.Int64("size", info.Size))
	return c.JSON(http.StatusOK, uploadResponse{URL: u, Key: info.Key})
}

func uploadError(err error) error {
	var verr *storage.FileValidationError
	if errors.As(err, &verr) {
		switch verr.Code {
		case storage.ErrCodeInvalidMIME:
			return internal.ErrBadRequest("File must be an image", internal.WithError(err))
		case storage.ErrCodeFileTooLarge:
			return internal.ErrBadRequest("File size must be less than 2MB", internal.WithError(err))
		}
	}
	if errors.Is(err, storage.ErrEmptyFile) {
		return internal.ErrBadRequest("No file provided", internal.WithError(err))
	}
	if errors.Is(err, storage.ErrNotConfigured) {
		return internal.ErrInternal("Storage is not configured", internal.WithError(err))
	}
	return internal.ErrInternal("Failed to upload image", internal.WithDetail(err.Error()), internal.WithError(err))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
