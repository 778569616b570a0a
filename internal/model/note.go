package model

import "time"

// Note represents a user-owned note.
type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteStats summarizes a user's note activity.
type NoteStats struct {
	TotalNotes    int64 `json:"total_notes"`
	NotesToday    int64 `json:"notes_today"`
	NotesThisWeek int64 `json:"notes_this_week"`
}
