package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportNotes_JSON(t *testing.T) {
	t.Parallel()

	svc, _ := newTestNoteService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "First", "one")
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, "Second", "two")
	require.NoError(t, err)

	export, err := svc.ExportNotes(ctx, 1, "json")
	require.NoError(t, err)

	assert.Equal(t, "application/json", export.ContentType)
	assert.True(t, strings.HasSuffix(export.Filename, ".json"))

	var payload struct {
		NotesCount int `json:"notes_count"`
	}
	require.NoError(t, json.Unmarshal(export.Content, &payload))
	assert.Equal(t, 2, payload.NotesCount)
}

func TestExportNotes_Formats(t *testing.T) {
	t.Parallel()

	svc, _ := newTestNoteService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "Only note", "body text")
	require.NoError(t, err)

	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"txt", "text/plain", "TITLE: Only note"},
		{"md", "text/markdown", "# Only note"},
		{"csv", "text/csv", "Only note"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			export, err := svc.ExportNotes(ctx, 1, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.contentType, export.ContentType)
			assert.Contains(t, string(export.Content), tt.contains)
		})
	}
}

func TestExportNotes_CaseInsensitiveFormat(t *testing.T) {
	t.Parallel()

	svc, _ := newTestNoteService()

	export, err := svc.ExportNotes(context.Background(), 1, "JSON")
	require.NoError(t, err)
	assert.Equal(t, "application/json", export.ContentType)
}

func TestExportNotes_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	svc, _ := newTestNoteService()

	_, err := svc.ExportNotes(context.Background(), 1, "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
