package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/handler/dto"
	"github.com/inkpad/inkpad/internal/service"
)

// NoteHandler handles HTTP requests for note operations. Every route
// here sits behind RequireAuth, so a missing identity is a wiring bug,
// not a client error.
type NoteHandler struct {
	svc    *service.NoteService
	logger *slog.Logger
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(svc *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	note, err := h.svc.Create(r.Context(), userID, req.Title, req.Content)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("note_created", "note_id", note.ID, "user_id", userID)

	writeJSON(w, http.StatusCreated, dto.ToNoteResponse(note))
}

// Get handles GET /api/notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	note, err := h.svc.Get(r.Context(), userID, noteID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToNoteResponse(note))
}

// List handles GET /api/notes. A non-empty q parameter switches to
// search.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	if term := r.URL.Query().Get("q"); term != "" {
		found, err := h.svc.Search(r.Context(), userID, term)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.ToNoteListResponse(found))
		return
	}

	all, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToNoteListResponse(all))
}

// Update handles PUT /api/notes/{id}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req dto.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	note, err := h.svc.Update(r.Context(), userID, noteID, req.Title, req.Content)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("note_updated", "note_id", note.ID, "user_id", userID)

	writeJSON(w, http.StatusOK, dto.ToNoteResponse(note))
}

// Delete handles DELETE /api/notes/{id}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.Delete(r.Context(), userID, noteID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("note_deleted", "note_id", noteID, "user_id", userID)

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/notes/stats.
func (h *NoteHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	stats, err := h.svc.Stats(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatsResponse{
		TotalNotes:    stats.TotalNotes,
		NotesToday:    stats.NotesToday,
		NotesThisWeek: stats.NotesThisWeek,
	})
}

// noteIDParam parses the {id} route parameter. A malformed ID reads
// the same as a note that does not exist.
func noteIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// handleServiceError maps note service errors to HTTP responses.
func (h *NoteHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoteNotFound):
		writeError(w, http.StatusNotFound, "NOTE_NOT_FOUND", "Note not found")
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Note title is required")
	case errors.Is(err, service.ErrEmptySearch):
		writeError(w, http.StatusBadRequest, "EMPTY_SEARCH", "Search term is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
