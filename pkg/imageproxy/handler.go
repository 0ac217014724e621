package imageproxy

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/mailsig/pkg/logger"
)

const contentPolicy = "default-src 'none'; style-src 'unsafe-inline'; sandbox"

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves GET ?url=<absolute image url> by fetching through src and
// replying with the original bytes and content type. Only images are relayed.
// Responses are marked immutable so browsers and CDNs keep them.
func Handler(src Source, l *slog.Logger) http.HandlerFunc {
	if l == nil {
		l = logger.NewNope()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")
		if target == "" {
			writeError(w, http.StatusBadRequest, "URL parameter is required")
			return
		}

		img, err := src.Fetch(r.Context(), target)
		if err != nil {
			l.ErrorContext(r.Context(), "image proxy fetch failed",
				slog.String("url", target),
				logger.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "Failed to proxy image")
			return
		}

		ct := img.ContentType
		if ct == "" {
			ct = DefaultContentType
		}
		if !strings.HasPrefix(ct, "image/") {
			l.ErrorContext(r.Context(), "image proxy refused non-image",
				slog.String("url", target),
				slog.String("content_type", ct),
			)
			writeError(w, http.StatusInternalServerError, "Failed to proxy image")
			return
		}

		h := w.Header()
		h.Set("Content-Type", ct)
		h.Set("X-Content-Type-Options", "nosniff")
		// Relayed bytes come from arbitrary hosts; never let them run as a document.
		h.Set("Content-Security-Policy", contentPolicy)
		h.Set("Content-Length", strconv.Itoa(len(img.Data)))
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET")
		h.Set("Cache-Control", "public, max-age=31536000, immutable")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(img.Data)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
