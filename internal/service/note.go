package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inkpad/inkpad/internal/model"
	"github.com/inkpad/inkpad/internal/repository"
)

// Note service errors.
var (
	ErrNoteNotFound  = errors.New("note not found")
	ErrTitleRequired = errors.New("note title is required")
	ErrEmptySearch   = errors.New("search term is required")
)

// NoteStore is the slice of the repository the note and share
// services need.
type NoteStore interface {
	CreateNote(ctx context.Context, note *model.Note) error
	GetNoteByID(ctx context.Context, id int64) (*model.Note, error)
	GetNoteForOwner(ctx context.Context, id, userID int64) (*model.Note, error)
	ListNotes(ctx context.Context, userID int64) ([]*model.Note, error)
	SearchNotes(ctx context.Context, userID int64, term string) ([]*model.Note, error)
	UpdateNote(ctx context.Context, note *model.Note) error
	DeleteNote(ctx context.Context, id, userID int64) error
	NoteStats(ctx context.Context, userID int64) (*model.NoteStats, error)
}

// NoteService handles note CRUD, search and stats. All operations are
// scoped to the owning user.
type NoteService struct {
	notes  NoteStore
	logger *slog.Logger
}

// NewNoteService creates a new NoteService.
func NewNoteService(notes NoteStore, logger *slog.Logger) *NoteService {
	return &NoteService{
		notes:  notes,
		logger: logger.With("component", "service.note"),
	}
}

// Create adds a new note for the user. Title is required; content may
// be empty.
func (s *NoteService) Create(ctx context.Context, userID int64, title, content string) (*model.Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}

	note := &model.Note{
		UserID:  userID,
		Title:   title,
		Content: content,
	}

	if err := s.notes.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	s.logger.Info("note created", "note_id", note.ID, "user_id", userID)

	return note, nil
}

// Get retrieves one of the user's notes.
func (s *NoteService) Get(ctx context.Context, userID, noteID int64) (*model.Note, error) {
	note, err := s.notes.GetNoteForOwner(ctx, noteID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	return note, nil
}

// List retrieves all of the user's notes, most recently updated first.
func (s *NoteService) List(ctx context.Context, userID int64) ([]*model.Note, error) {
	notes, err := s.notes.ListNotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return notes, nil
}

// Search finds the user's notes matching the term in title or content.
func (s *NoteService) Search(ctx context.Context, userID int64, term string) ([]*model.Note, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptySearch
	}

	notes, err := s.notes.SearchNotes(ctx, userID, term)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}

	return notes, nil
}

// Update replaces the title and content of one of the user's notes.
func (s *NoteService) Update(ctx context.Context, userID, noteID int64, title, content string) (*model.Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}

	note, err := s.notes.GetNoteForOwner(ctx, noteID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	note.Title = title
	note.Content = content
	if err := s.notes.UpdateNote(ctx, note); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("update note: %w", err)
	}

	s.logger.Info("note updated", "note_id", note.ID, "user_id", userID)

	return note, nil
}

// Delete removes one of the user's notes. Outstanding share grants on
// the note are removed by the storage layer's cascade.
func (s *NoteService) Delete(ctx context.Context, userID, noteID int64) error {
	if err := s.notes.DeleteNote(ctx, noteID, userID); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("delete note: %w", err)
	}

	s.logger.Info("note deleted", "note_id", noteID, "user_id", userID)

	return nil
}

// Stats summarizes the user's note activity.
func (s *NoteService) Stats(ctx context.Context, userID int64) (*model.NoteStats, error) {
	stats, err := s.notes.NoteStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get note stats: %w", err)
	}

	return stats, nil
}
