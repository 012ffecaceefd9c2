package handler

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pingme/pingme/internal/middleware"
)

// StickerHandler serves the downloadable sticker asset.
type StickerHandler struct {
	stickerPath string
	logger      *slog.Logger
}

// NewStickerHandler creates a new StickerHandler.
func NewStickerHandler(stickerPath string, logger *slog.Logger) *StickerHandler {
	return &StickerHandler{stickerPath: stickerPath, logger: logger}
}

// Download handles GET /download-sticker. The route sits behind the auth
// guard; any logged-in user may download, regardless of payment outcome.
func (h *StickerHandler) Download(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.stickerPath); err != nil {
		h.logger.Error("sticker asset unavailable",
			slog.String("path", h.stickerPath),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusNotFound, "Sticker not available")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(h.stickerPath)+`"`)
	http.ServeFile(w, r, h.stickerPath)
}
