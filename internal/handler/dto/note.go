package dto

import (
	"time"

	"github.com/inkpad/inkpad/internal/model"
)

// NoteRequest represents the request body for creating or updating a note.
type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NoteResponse represents a note in API responses.
type NoteResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteListResponse represents a list of notes.
type NoteListResponse struct {
	Notes []NoteResponse `json:"notes"`
	Count int            `json:"count"`
}

// StatsResponse represents per-user note statistics.
type StatsResponse struct {
	TotalNotes    int64 `json:"total_notes"`
	NotesToday    int64 `json:"notes_today"`
	NotesThisWeek int64 `json:"notes_this_week"`
}

// ToNoteResponse converts a note model to its API representation.
func ToNoteResponse(n *model.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// ToNoteListResponse converts a slice of notes to a list response.
func ToNoteListResponse(notes []*model.Note) NoteListResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, ToNoteResponse(n))
	}
	return NoteListResponse{Notes: out, Count: len(out)}
}
