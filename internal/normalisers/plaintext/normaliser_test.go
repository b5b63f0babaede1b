package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	normaliser := New()
	mimeTypes := normaliser.SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/markdown")
}

func TestPriority(t *testing.T) {
	normaliser := New()
	assert.Equal(t, 5, normaliser.Priority())
}

func TestNormalise_Success(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	raw := &domain.RawDocument{
		SourcePath: "/path/to/document.txt",
		MIMEType:   "text/plain",
		Content:    []byte("This is plain text content."),
		FileSizeMB: 0.01,
	}

	result, err := normaliser.Normalise(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	doc := result.Document
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, raw.SourcePath, doc.SourcePath)
	assert.Equal(t, "document.txt", doc.Filename)
	assert.Equal(t, "document", doc.Title)
	assert.Equal(t, "This is plain text content.", doc.Content)
	assert.Equal(t, "txt", doc.FileType)
	assert.Equal(t, 0.01, doc.FileSizeMB)
	assert.False(t, doc.CreatedAt.IsZero())
}

func TestNormalise_NilDocument(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	result, err := normaliser.Normalise(ctx, nil)
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_EmptyContent(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	raw := &domain.RawDocument{
		SourcePath: "/path/to/empty.txt",
		MIMEType:   "text/plain",
		Content:    []byte(""),
	}

	result, err := normaliser.Normalise(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Document.Content)
}

func TestNormalise_TitleExtraction(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		expectedTitle string
	}{
		{
			name:          "simple filename",
			path:          "/path/to/document.txt",
			expectedTitle: "document",
		},
		{
			name:          "underscores to spaces",
			path:          "/path/my_document_name.txt",
			expectedTitle: "my document name",
		},
		{
			name:          "dashes to spaces",
			path:          "/path/my-document-name.txt",
			expectedTitle: "my document name",
		},
		{
			name:          "uppercase extension",
			path:          "/path/NOTES.TXT",
			expectedTitle: "NOTES",
		},
	}

	normaliser := New()
	ctx := context.Background()

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := &domain.RawDocument{
				SourcePath: tc.path,
				MIMEType:   "text/plain",
				Content:    []byte("content"),
			}

			result, err := normaliser.Normalise(ctx, raw)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedTitle, result.Document.Title)
		})
	}
}

func TestNormalise_TitleFromMetadata(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	raw := &domain.RawDocument{
		SourcePath: "/path/to/document.txt",
		MIMEType:   "text/plain",
		Content:    []byte("content"),
		Metadata: map[string]any{
			"title": "Supplied Title",
		},
	}

	result, err := normaliser.Normalise(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "Supplied Title", result.Document.Title)
}

func TestNormalise_FileType(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	tests := []struct {
		path     string
		expected string
	}{
		{"/path/notes.txt", "txt"},
		{"/path/NOTES.TXT", "txt"},
		{"/path/readme.md", "md"},
		{"/path/noextension", ""},
	}

	for _, tc := range tests {
		raw := &domain.RawDocument{
			SourcePath: tc.path,
			MIMEType:   "text/plain",
			Content:    []byte("content"),
		}

		result, err := normaliser.Normalise(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, result.Document.FileType, "path %s", tc.path)
	}
}

func TestNormalise_UnicodeContent(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	unicodeContent := `多语言文本测试
こんにちは世界
مرحبا بالعالم
Привет мир
🚀 Emoji test 🎉`

	raw := &domain.RawDocument{
		SourcePath: "/path/unicode.txt",
		MIMEType:   "text/plain",
		Content:    []byte(unicodeContent),
	}

	result, err := normaliser.Normalise(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, unicodeContent, result.Document.Content)
}

func TestNormalise_LargeContent(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	largeContent := make([]byte, 1024*1024) // 1MB
	for i := range largeContent {
		largeContent[i] = byte('A' + (i % 26))
	}

	raw := &domain.RawDocument{
		SourcePath: "/path/large.txt",
		MIMEType:   "text/plain",
		Content:    largeContent,
	}

	result, err := normaliser.Normalise(ctx, raw)
	require.NoError(t, err)
	assert.Len(t, result.Document.Content, 1024*1024)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

func BenchmarkNormalise(b *testing.B) {
	normaliser := New()
	ctx := context.Background()

	raw := &domain.RawDocument{
		SourcePath: "/test/document.txt",
		MIMEType:   "text/plain",
		Content:    []byte("This is test content for benchmarking."),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = normaliser.Normalise(ctx, raw)
	}
}
