package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRawDocument_Fields tests RawDocument structure fields
func TestRawDocument_Fields(t *testing.T) {
	raw := RawDocument{
		SourcePath: "/notes/plan.md",
		MIMEType:   "text/markdown",
		Content:    []byte("# Plan\n\nShip it."),
		FileSizeMB: 0.001,
		Metadata:   map[string]any{"modified": "2026-01-01T00:00:00Z"},
	}

	assert.Equal(t, "/notes/plan.md", raw.SourcePath)
	assert.Equal(t, "text/markdown", raw.MIMEType)
	assert.Equal(t, []byte("# Plan\n\nShip it."), raw.Content)
	assert.InDelta(t, 0.001, raw.FileSizeMB, 1e-9)
	assert.Equal(t, "2026-01-01T00:00:00Z", raw.Metadata["modified"])
}

// TestRawDocument_EmptyContent tests RawDocument with empty content
func TestRawDocument_EmptyContent(t *testing.T) {
	raw := RawDocument{
		SourcePath: "/notes/empty.txt",
		MIMEType:   "text/plain",
		Content:    []byte{},
	}

	assert.NotNil(t, raw.Content)
	assert.Empty(t, raw.Content)
}

// TestRawDocument_MIMETypes tests the text MIME types ingestion accepts
func TestRawDocument_MIMETypes(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		content  []byte
	}{
		{"plain text", "text/plain", []byte("text content")},
		{"markdown", "text/markdown", []byte("# heading")},
		{"empty mime", "", []byte("content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawDocument{
				SourcePath: "/notes/test",
				MIMEType:   tt.mimeType,
				Content:    tt.content,
			}
			assert.Equal(t, tt.mimeType, raw.MIMEType)
			assert.Equal(t, tt.content, raw.Content)
		})
	}
}

// TestChangeType_Constants tests all ChangeType constants
func TestChangeType_Constants(t *testing.T) {
	assert.Equal(t, ChangeType(0), ChangeCreated)
	assert.Equal(t, ChangeType(1), ChangeUpdated)
	assert.Equal(t, ChangeType(2), ChangeDeleted)
}

// TestRawDocumentChange_Fields tests RawDocumentChange structure
func TestRawDocumentChange_Fields(t *testing.T) {
	doc := RawDocument{
		SourcePath: "/notes/test.txt",
		MIMEType:   "text/plain",
		Content:    []byte("content"),
	}

	change := RawDocumentChange{
		Type:     ChangeCreated,
		Document: doc,
	}

	assert.Equal(t, ChangeCreated, change.Type)
	assert.Equal(t, doc, change.Document)
}

// TestRawDocumentChange_Deleted tests change with deleted type
func TestRawDocumentChange_Deleted(t *testing.T) {
	change := RawDocumentChange{
		Type: ChangeDeleted,
		Document: RawDocument{
			SourcePath: "/notes/deleted.txt",
			Content:    nil, // Content may be nil for deleted documents
		},
	}

	assert.Equal(t, ChangeDeleted, change.Type)
	assert.Nil(t, change.Document.Content)
}

// TestRawDocumentChange_MultipleChanges tests sequence of changes
func TestRawDocumentChange_MultipleChanges(t *testing.T) {
	changes := []RawDocumentChange{
		{
			Type: ChangeCreated,
			Document: RawDocument{
				SourcePath: "/notes/file1.txt",
				Content:    []byte("content1"),
			},
		},
		{
			Type: ChangeUpdated,
			Document: RawDocument{
				SourcePath: "/notes/file1.txt",
				Content:    []byte("updated content1"),
			},
		},
		{
			Type: ChangeDeleted,
			Document: RawDocument{
				SourcePath: "/notes/file1.txt",
			},
		},
	}

	assert.Len(t, changes, 3)
	assert.Equal(t, ChangeCreated, changes[0].Type)
	assert.Equal(t, ChangeUpdated, changes[1].Type)
	assert.Equal(t, ChangeDeleted, changes[2].Type)
}
