package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/inkpad/inkpad/internal/model"
)

// ErrNoteNotFound is returned when a note does not exist or is not
// visible to the caller.
var ErrNoteNotFound = errors.New("note not found")

// CreateNote inserts a new note and fills in the generated ID and
// timestamps.
func (r *Repository) CreateNote(ctx context.Context, note *model.Note) error {
	query := `
		INSERT INTO notes (user_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, note.UserID, note.Title, note.Content).
		Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// GetNoteByID retrieves a note regardless of owner. The returned
// UserID identifies the owning user; callers on the private path must
// use GetNoteForOwner instead.
func (r *Repository) GetNoteByID(ctx context.Context, id int64) (*model.Note, error) {
	query := `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM notes
		WHERE id = $1
	`

	note, err := scanNote(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note by ID: %w", err)
	}

	return note, nil
}

// GetNoteForOwner retrieves a note only if it belongs to the given
// user. A note owned by someone else reads as not found.
func (r *Repository) GetNoteForOwner(ctx context.Context, id, userID int64) (*model.Note, error) {
	query := `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM notes
		WHERE id = $1 AND user_id = $2
	`

	note, err := scanNote(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note for owner: %w", err)
	}

	return note, nil
}

// ListNotes retrieves all notes of a user, most recently updated first.
func (r *Repository) ListNotes(ctx context.Context, userID int64) ([]*model.Note, error) {
	query := `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM notes
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	return r.queryNotes(ctx, query, userID)
}

// SearchNotes retrieves a user's notes whose title or content contains
// the given term, case-insensitively.
func (r *Repository) SearchNotes(ctx context.Context, userID int64, term string) ([]*model.Note, error) {
	query := `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM notes
		WHERE user_id = $1 AND (title ILIKE '%' || $2 || '%' OR content ILIKE '%' || $2 || '%')
		ORDER BY updated_at DESC
	`

	return r.queryNotes(ctx, query, userID, term)
}

// UpdateNote updates a note's title and content by ID. Authorization
// (ownership or a write-capable share grant) is the caller's concern.
func (r *Repository) UpdateNote(ctx context.Context, note *model.Note) error {
	query := `
		UPDATE notes
		SET title = $2, content = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, note.ID, note.Title, note.Content).Scan(&note.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

// DeleteNote removes a note owned by the given user. Share grants on
// the note go with it via the foreign key cascade.
func (r *Repository) DeleteNote(ctx context.Context, id, userID int64) error {
	query := `DELETE FROM notes WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNoteNotFound
	}

	return nil
}

// NoteStats computes the activity summary for a user.
func (r *Repository) NoteStats(ctx context.Context, userID int64) (*model.NoteStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now())),
			COUNT(*) FILTER (WHERE created_at >= now() - INTERVAL '7 days')
		FROM notes
		WHERE user_id = $1
	`

	var stats model.NoteStats
	err := r.pool.QueryRow(ctx, query, userID).
		Scan(&stats.TotalNotes, &stats.NotesToday, &stats.NotesThisWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to get note stats: %w", err)
	}

	return &stats, nil
}

func (r *Repository) queryNotes(ctx context.Context, query string, args ...any) ([]*model.Note, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []*model.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return notes, nil
}

func scanNote(row pgx.Row) (*model.Note, error) {
	var note model.Note
	err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Content,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	return &note, err
}
