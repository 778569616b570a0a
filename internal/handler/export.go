package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/service"
)

// ExportHandler serves note exports as file downloads.
type ExportHandler struct {
	svc    *service.NoteService
	logger *slog.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(svc *service.NoteService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		svc:    svc,
		logger: logger,
	}
}

// Export handles GET /api/export/{format}.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	format := chi.URLParam(r, "format")

	export, err := h.svc.ExportNotes(r.Context(), userID, format)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedFormat) {
			writeError(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "Format must be json, txt, md or csv")
			return
		}
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("notes_exported", "user_id", userID, "format", format)

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Content)
}
