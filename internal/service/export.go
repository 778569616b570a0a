package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/inkpad/inkpad/internal/model"
)

// ErrUnsupportedFormat is returned for unknown export formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Export is a rendered download of a user's notes.
type Export struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportNotes renders all of the user's notes in the requested format:
// json, txt, md or csv.
func (s *NoteService) ExportNotes(ctx context.Context, userID int64, format string) (*Export, error) {
	format = strings.ToLower(format)

	notes, err := s.notes.ListNotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes for export: %w", err)
	}

	now := time.Now().UTC()
	stamp := now.Format("2006-01-02")

	switch format {
	case "json":
		content, err := renderJSON(notes, now)
		if err != nil {
			return nil, err
		}
		return &Export{Content: content, ContentType: "application/json", Filename: "notes_" + stamp + ".json"}, nil
	case "txt":
		return &Export{Content: renderText(notes), ContentType: "text/plain", Filename: "notes_" + stamp + ".txt"}, nil
	case "md":
		return &Export{Content: renderMarkdown(notes), ContentType: "text/markdown", Filename: "notes_" + stamp + ".md"}, nil
	case "csv":
		content, err := renderCSV(notes)
		if err != nil {
			return nil, err
		}
		return &Export{Content: content, ContentType: "text/csv", Filename: "notes_" + stamp + ".csv"}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

type jsonExport struct {
	ExportDate time.Time     `json:"export_date"`
	NotesCount int           `json:"notes_count"`
	Notes      []*model.Note `json:"notes"`
}

func renderJSON(notes []*model.Note, now time.Time) ([]byte, error) {
	out, err := json.MarshalIndent(jsonExport{
		ExportDate: now,
		NotesCount: len(notes),
		Notes:      notes,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json export: %w", err)
	}
	return out, nil
}

func renderText(notes []*model.Note) []byte {
	var b strings.Builder
	for _, note := range notes {
		b.WriteString("TITLE: " + note.Title + "\n")
		b.WriteString("DATE: " + note.CreatedAt.Format(time.RFC1123) + "\n")
		b.WriteString("CONTENT:\n" + note.Content + "\n")
		b.WriteString(strings.Repeat("=", 50) + "\n\n")
	}
	return []byte(b.String())
}

func renderMarkdown(notes []*model.Note) []byte {
	var b strings.Builder
	for _, note := range notes {
		b.WriteString("# " + note.Title + "\n\n")
		b.WriteString("*Created: " + note.CreatedAt.Format(time.RFC1123) + "*\n\n")
		b.WriteString(note.Content + "\n\n---\n\n")
	}
	return []byte(b.String())
}

func renderCSV(notes []*model.Note) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "title", "content", "created_at", "updated_at"}); err != nil {
		return nil, fmt.Errorf("render csv export: %w", err)
	}
	for _, note := range notes {
		record := []string{
			strconv.FormatInt(note.ID, 10),
			note.Title,
			note.Content,
			note.CreatedAt.Format(time.RFC3339),
			note.UpdatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("render csv export: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("render csv export: %w", err)
	}

	return buf.Bytes(), nil
}
