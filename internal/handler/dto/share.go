package dto

import (
	"time"

	"github.com/inkpad/inkpad/internal/service"
)

// CreateShareRequest represents the request body for sharing a note.
type CreateShareRequest struct {
	Permission string `json:"permission,omitempty"` // "read" (default) or "write"
	ExpiresIn  int    `json:"expires_in,omitempty"` // days, 0 means server default
}

// ShareResponse represents an issued share grant.
type ShareResponse struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	NoteID     int64     `json:"note_id"`
	NoteTitle  string    `json:"note_title"`
	Permission string    `json:"permission"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// ShareListResponse represents the caller's live shares.
type ShareListResponse struct {
	Shares []ShareResponse `json:"shares"`
	Count  int             `json:"count"`
}

// SharedNoteResponse is the public view of a shared note.
type SharedNoteResponse struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	SharedBy  string    `json:"shared_by"`
	CanEdit   bool      `json:"can_edit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateSharedRequest represents an edit submitted through a write grant.
type UpdateSharedRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ToShareResponse converts an issued share to its API representation.
func ToShareResponse(s *service.IssuedShare) ShareResponse {
	return ShareResponse{
		ID:         s.Grant.ID,
		URL:        s.ShareURL,
		NoteID:     s.Grant.NoteID,
		NoteTitle:  s.NoteTitle,
		Permission: string(s.Grant.Permission),
		ExpiresAt:  s.Grant.ExpiresAt,
		CreatedAt:  s.Grant.CreatedAt,
	}
}

// ToShareListResponse converts share list items to a list response.
func ToShareListResponse(items []*service.ShareListItem) ShareListResponse {
	out := make([]ShareResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ShareResponse{
			ID:         item.Grant.ID,
			URL:        item.ShareURL,
			NoteID:     item.Grant.NoteID,
			NoteTitle:  item.NoteTitle,
			Permission: string(item.Grant.Permission),
			ExpiresAt:  item.Grant.ExpiresAt,
			CreatedAt:  item.Grant.CreatedAt,
		})
	}
	return ShareListResponse{Shares: out, Count: len(out)}
}

// ToSharedNoteResponse converts a resolved shared note to its public view.
func ToSharedNoteResponse(sn *service.SharedNote) SharedNoteResponse {
	return SharedNoteResponse{
		Title:     sn.Note.Title,
		Content:   sn.Note.Content,
		SharedBy:  sn.SharedBy,
		CanEdit:   sn.CanEdit,
		CreatedAt: sn.Note.CreatedAt,
		UpdatedAt: sn.Note.UpdatedAt,
	}
}
