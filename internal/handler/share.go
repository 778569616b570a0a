package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/handler/dto"
	"github.com/inkpad/inkpad/internal/model"
	"github.com/inkpad/inkpad/internal/service"
)

// ShareHandler handles share grant management and the public routes
// reached through a share token. The public routes never see a
// session: the token in the path is the whole authorization.
type ShareHandler struct {
	svc    *service.ShareService
	logger *slog.Logger
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(svc *service.ShareService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/notes/{id}/share.
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	noteID, ok := noteIDParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "NOTE_NOT_FOUND", "Note not found")
		return
	}

	var req dto.CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	permission := model.Permission(req.Permission)
	if req.Permission == "" {
		permission = model.PermissionRead
	}

	issued, err := h.svc.Issue(r.Context(), service.IssueInput{
		NoteID:     noteID,
		OwnerID:    userID,
		Permission: permission,
		TTLDays:    req.ExpiresIn,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("share_created",
		"grant_id", issued.Grant.ID,
		"note_id", noteID,
		"permission", issued.Grant.Permission,
	)

	writeJSON(w, http.StatusCreated, dto.ToShareResponse(issued))
}

// List handles GET /api/shares.
func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	items, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToShareListResponse(items))
}

// Revoke handles DELETE /api/shares/{id}.
func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	grantID := chi.URLParam(r, "id")
	if grantID == "" {
		writeError(w, http.StatusNotFound, "SHARE_NOT_FOUND", "Share not found")
		return
	}

	if err := h.svc.Revoke(r.Context(), userID, grantID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("share_revoked", "grant_id", grantID, "user_id", userID)

	w.WriteHeader(http.StatusNoContent)
}

// ViewShared handles GET /shared/{token}. Missing, revoked and expired
// links all produce the same response, so the route leaks nothing
// about which grants have existed.
func (h *ShareHandler) ViewShared(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	shared, err := h.svc.ViewShared(r.Context(), token)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSharedNoteResponse(shared))
}

// UpdateShared handles PUT /shared/{token}. The grant itself carries
// the write permission; there is no session to check.
func (h *ShareHandler) UpdateShared(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req dto.UpdateSharedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	note, err := h.svc.UpdateShared(r.Context(), token, req.Title, req.Content)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToNoteResponse(note))
}

// handleServiceError maps share service errors to HTTP responses.
// ErrNotOwner deliberately reads as a missing note, and an expired
// link reads the same as one that never existed.
func (h *ShareHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusNotFound, "NOTE_NOT_FOUND", "Note not found")
	case errors.Is(err, service.ErrInvalidPerm):
		writeError(w, http.StatusBadRequest, "INVALID_PERMISSION", "Permission must be read or write")
	case errors.Is(err, service.ErrInvalidTTL):
		writeError(w, http.StatusBadRequest, "INVALID_EXPIRY", "Expiry must be a positive number of days")
	case errors.Is(err, service.ErrShareNotFound), errors.Is(err, service.ErrShareExpired):
		writeError(w, http.StatusNotFound, "SHARE_NOT_FOUND", "Share link is invalid or expired")
	case errors.Is(err, service.ErrShareForbidden):
		writeError(w, http.StatusForbidden, "SHARE_READ_ONLY", "Share link does not permit editing")
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Note title is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
