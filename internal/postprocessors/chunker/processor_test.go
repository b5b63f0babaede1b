package chunker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		p, err := New(WithChunkSize(500), WithOverlap(100))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
		if p.overlap != 100 {
			t.Errorf("expected overlap 100, got %d", p.overlap)
		}
	})

	t.Run("zero chunk size rejected", func(t *testing.T) {
		_, err := New(WithChunkSize(0))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("negative overlap rejected", func(t *testing.T) {
		_, err := New(WithOverlap(-1))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("overlap equal to chunk size rejected", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(100))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("overlap exceeding chunk size rejected", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(150))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p, _ := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestProcessor_Process_EmptyContent(t *testing.T) {
	p, _ := New()

	for _, content := range []string{"", "   \n\n\t  "} {
		doc := &domain.Document{ID: "test-doc", Content: content}

		chunks, err := p.Process(context.Background(), doc, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chunks) != 0 {
			t.Errorf("expected 0 chunks for blank content %q, got %d", content, len(chunks))
		}
	}
}

func TestProcessor_Process_SmallContent(t *testing.T) {
	p, _ := New(WithChunkSize(100), WithOverlap(20))
	doc := &domain.Document{
		ID:         "test-doc",
		SourcePath: "/notes/small.txt",
		Filename:   "small.txt",
		FileType:   "txt",
		Content:    "This is a small piece of content.",
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for small content, got %d", len(chunks))
	}

	c := chunks[0]
	if c.DocumentID != doc.ID {
		t.Errorf("expected DocumentID '%s', got '%s'", doc.ID, c.DocumentID)
	}
	if c.Content != doc.Content {
		t.Errorf("expected content to match document content")
	}
	if c.Metadata.ChunkIndex != 0 || c.Metadata.ChunkCount != 1 {
		t.Errorf("expected index 0 of 1, got %d of %d", c.Metadata.ChunkIndex, c.Metadata.ChunkCount)
	}
	if c.Metadata.Filename != "small.txt" || c.Metadata.SourcePath != "/notes/small.txt" {
		t.Errorf("expected source metadata propagated, got %+v", c.Metadata)
	}
	if c.Metadata.ContentHash != domain.HashContent(c.Content) {
		t.Errorf("expected content hash of chunk content")
	}
}

func TestProcessor_Process_ParagraphsJoined(t *testing.T) {
	p, _ := New(WithChunkSize(100), WithOverlap(10))
	doc := &domain.Document{
		ID:      "test-doc",
		Content: "First paragraph.\n\nSecond paragraph.",
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected paragraphs to share a chunk, got %d chunks", len(chunks))
	}
	if chunks[0].Content != "First paragraph.\n\nSecond paragraph." {
		t.Errorf("unexpected chunk content: %q", chunks[0].Content)
	}
}

func TestProcessor_Process_OverlapCarry(t *testing.T) {
	p, _ := New(WithChunkSize(50), WithOverlap(10))

	paraA := strings.Repeat("a", 40)
	paraB := strings.Repeat("b", 35)
	doc := &domain.Document{
		ID:      "test-doc",
		Content: paraA + "\n\n" + paraB,
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	if chunks[0].Content != paraA {
		t.Errorf("expected first chunk to be paragraph A, got %q", chunks[0].Content)
	}

	// The second chunk starts with the tail of the first.
	wantPrefix := paraA[len(paraA)-10:]
	if !strings.HasPrefix(chunks[1].Content, wantPrefix) {
		t.Errorf("expected second chunk prefixed with overlap %q, got %q", wantPrefix, chunks[1].Content)
	}
	if !strings.HasSuffix(chunks[1].Content, paraB) {
		t.Errorf("expected second chunk to end with paragraph B")
	}
}

func TestProcessor_Process_OversizedSentenceEmittedWhole(t *testing.T) {
	p, _ := New(WithChunkSize(1000), WithOverlap(200))

	// A single sentence with no boundary to break at stays intact even
	// past the chunk size; it must never be cut mid-sentence.
	content := strings.Repeat("a", 2500)
	doc := &domain.Document{ID: "test-doc", Content: content}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected the unbroken sentence as 1 whole chunk, got %d", len(chunks))
	}
	if chunks[0].Content != content {
		t.Errorf("expected chunk to carry the full %d chars, got %d", len(content), len(chunks[0].Content))
	}
}

func TestProcessor_Process_OversizedSentenceAmongNormalOnes(t *testing.T) {
	p, _ := New(WithChunkSize(100), WithOverlap(20))

	long := strings.Repeat("x", 150)
	doc := &domain.Document{
		ID:      "test-doc",
		Content: "A short opening sentence. " + long + ". A short closing sentence.",
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The long sentence survives intact in exactly one chunk; every
	// other chunk respects the size limit.
	intact := 0
	for i, chunk := range chunks {
		if strings.Contains(chunk.Content, long) {
			intact++
			continue
		}
		if len(chunk.Content) > 100 {
			t.Errorf("chunk %d exceeds size limit: %d chars", i, len(chunk.Content))
		}
	}
	if intact != 1 {
		t.Errorf("expected the oversized sentence whole in 1 chunk, found it in %d", intact)
	}
}

func TestProcessor_Process_SentenceSplit(t *testing.T) {
	p, _ := New(WithChunkSize(100), WithOverlap(20))

	// One paragraph of many sentences, well over the chunk size.
	sentence := "The quick brown fox jumps over the lazy dog."
	doc := &domain.Document{
		ID:      "test-doc",
		Content: strings.Repeat(sentence+" ", 10),
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if len(chunk.Content) > 100 {
			t.Errorf("chunk %d exceeds size limit: %d chars", i, len(chunk.Content))
		}
	}
}

func TestProcessor_Process_Deterministic(t *testing.T) {
	p, _ := New(WithChunkSize(80), WithOverlap(16))
	content := "Alpha beta gamma.\n\nDelta epsilon zeta eta theta iota kappa. Lambda mu nu xi.\n\nOmicron pi rho sigma tau."

	first := p.Split(content)
	second := p.Split(content)

	if len(first) != len(second) {
		t.Fatalf("expected identical chunk counts, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestProcessor_Process_ChunkIndexes(t *testing.T) {
	p, _ := New(WithChunkSize(50), WithOverlap(10))
	doc := &domain.Document{
		ID:      "test-doc",
		Content: strings.Repeat("Short sentence here. ", 20),
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seenIDs := make(map[string]bool)
	for i, chunk := range chunks {
		if chunk.Metadata.ChunkIndex != i {
			t.Errorf("expected index %d, got %d", i, chunk.Metadata.ChunkIndex)
		}
		if chunk.Metadata.ChunkCount != len(chunks) {
			t.Errorf("expected count %d, got %d", len(chunks), chunk.Metadata.ChunkCount)
		}
		if seenIDs[chunk.ID] {
			t.Errorf("duplicate chunk ID: %s", chunk.ID)
		}
		seenIDs[chunk.ID] = true
	}
}

func TestProcessor_Process_IgnoresInputChunks(t *testing.T) {
	p, _ := New(WithChunkSize(100), WithOverlap(20))

	existingChunks := []domain.Chunk{
		{ID: "existing", Content: "should be ignored"},
	}

	doc := &domain.Document{
		ID:      "test-doc",
		Content: "New content to chunk",
	}

	chunks, err := p.Process(context.Background(), doc, existingChunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, chunk := range chunks {
		if chunk.ID == "existing" {
			t.Error("existing chunks should be ignored")
		}
	}
}
