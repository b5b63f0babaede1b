package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-labs/quaero-cli/internal/adapters/driven/storage/memory"
	vectormemory "github.com/tessera-labs/quaero-cli/internal/adapters/driven/vector/memory"
	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
)

// libMockLLM is a no-op driven.LLMService for stats reporting.
type libMockLLM struct{}

func (m *libMockLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return "", nil
}

func (m *libMockLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return "", nil
}

func (m *libMockLLM) ModelName() string            { return "mock" }
func (m *libMockLLM) Ping(_ context.Context) error { return nil }
func (m *libMockLLM) Close() error                 { return nil }

// --- Test fixture ---

type libraryFixture struct {
	docStore  *memory.DocumentStore
	keyword   *ingestMockKeywordIndex
	vectors   *vectormemory.Index
	manifests *memory.IndexManifestStore
	history   *memory.SearchHistoryStore
	service   *LibraryService
}

// newLibraryFixture seeds two documents: notes.txt with five chunks and
// other.txt with three, all present in both indexes.
func newLibraryFixture(t *testing.T) *libraryFixture {
	t.Helper()
	ctx := context.Background()

	f := &libraryFixture{
		docStore:  memory.NewDocumentStore(),
		keyword:   newIngestMockKeywordIndex(),
		vectors:   vectormemory.NewIndex(3, domain.StrategyHashing),
		manifests: memory.NewIndexManifestStore(),
		history:   memory.NewSearchHistoryStore(),
	}
	f.service = NewLibraryService(f.docStore, f.keyword, f.vectors, f.manifests, f.history, nil)

	seed := []struct {
		id       string
		filename string
		chunks   int
		category domain.Category
	}{
		{"doc-notes", "notes.txt", 5, domain.CategoryWork},
		{"doc-other", "other.txt", 3, domain.CategoryStudy},
	}

	for _, d := range seed {
		doc := &domain.Document{
			ID:         d.id,
			SourcePath: "/library/" + d.filename,
			Filename:   d.filename,
			Title:      d.filename,
			FileType:   "txt",
			FileSizeMB: 0.1,
		}
		require.NoError(t, f.docStore.SaveDocument(ctx, doc))

		chunks := make([]domain.Chunk, 0, d.chunks)
		embeddings := make([][]float32, 0, d.chunks)
		for i := 0; i < d.chunks; i++ {
			content := fmt.Sprintf("%s chunk %d", d.filename, i)
			chunk := domain.Chunk{
				ID:         fmt.Sprintf("%s-chunk-%d", d.id, i),
				DocumentID: d.id,
				Content:    content,
				Metadata: domain.ChunkMetadata{
					SourcePath:  "/library/" + d.filename,
					Filename:    d.filename,
					ChunkIndex:  i,
					ChunkCount:  d.chunks,
					FileType:    "txt",
					ContentHash: domain.HashContent(content),
					Category:    d.category,
				},
			}
			chunks = append(chunks, chunk)
			embeddings = append(embeddings, []float32{float32(i), 0, 0})
		}
		require.NoError(t, f.docStore.SaveChunks(ctx, chunks))
		require.NoError(t, f.vectors.Add(ctx, chunks, embeddings))
		require.NoError(t, f.keyword.Index(ctx, chunks))
	}

	return f
}

// --- Tests ---

func TestNewLibraryService(t *testing.T) {
	service := NewLibraryService(memory.NewDocumentStore(), nil, nil, nil, nil, nil)

	require.NotNil(t, service)
}

func TestLibraryService_List(t *testing.T) {
	f := newLibraryFixture(t)

	docs, err := f.service.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestLibraryService_Get(t *testing.T) {
	f := newLibraryFixture(t)

	doc, err := f.service.Get(context.Background(), "notes.txt")

	require.NoError(t, err)
	assert.Equal(t, "doc-notes", doc.ID)
}

func TestLibraryService_Get_NotFound(t *testing.T) {
	f := newLibraryFixture(t)

	_, err := f.service.Get(context.Background(), "ghost.txt")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLibraryService_GetDetails(t *testing.T) {
	f := newLibraryFixture(t)

	details, err := f.service.GetDetails(context.Background(), "notes.txt")

	require.NoError(t, err)
	assert.Equal(t, "doc-notes", details.ID)
	assert.Equal(t, "notes.txt", details.Filename)
	assert.Equal(t, "/library/notes.txt", details.SourcePath)
	assert.Equal(t, "txt", details.FileType)
	assert.Equal(t, 5, details.ChunkCount)
	assert.Equal(t, domain.CategoryWork, details.Category)
}

func TestLibraryService_GetDetails_NotFound(t *testing.T) {
	f := newLibraryFixture(t)

	_, err := f.service.GetDetails(context.Background(), "ghost.txt")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLibraryService_Delete_RemovesAllTraces(t *testing.T) {
	f := newLibraryFixture(t)
	ctx := context.Background()

	// Eight chunks across two documents before the delete.
	stats, err := f.vectors.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 8, stats.RecordCount)

	deleted, err := f.service.Delete(ctx, "notes.txt")

	require.NoError(t, err)
	assert.True(t, deleted)

	// Only the other document's three chunks survive, everywhere.
	count, err := f.docStore.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	chunkCount, err := f.docStore.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, chunkCount)

	stats, err = f.vectors.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.RecordCount)

	assert.Equal(t, 3, f.keyword.size())
}

func TestLibraryService_Delete_UnknownFilename(t *testing.T) {
	f := newLibraryFixture(t)

	deleted, err := f.service.Delete(context.Background(), "ghost.txt")

	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestLibraryService_Stats(t *testing.T) {
	f := newLibraryFixture(t)
	ctx := context.Background()

	require.NoError(t, f.manifests.Save(ctx, domain.IndexManifest{
		Strategy:  domain.StrategyHashing,
		Dimension: 3,
		UpdatedAt: time.Now(),
	}))
	require.NoError(t, f.history.Record(ctx, domain.SearchRecord{Query: "capital of France"}))
	require.NoError(t, f.history.Record(ctx, domain.SearchRecord{Query: "meeting notes"}))

	stats, err := f.service.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 8, stats.Chunks)
	assert.Equal(t, 8, stats.Index.RecordCount)
	assert.Equal(t, 3, stats.Index.Dimension)
	assert.Equal(t, domain.StrategyHashing, stats.Strategy)
	assert.Equal(t, 2, stats.History)
	assert.False(t, stats.LLMConfigured)
}

func TestLibraryService_Stats_BeforeFirstIngest(t *testing.T) {
	f := newLibraryFixture(t)

	stats, err := f.service.Stats(context.Background())

	require.NoError(t, err)
	assert.Empty(t, stats.Strategy)
}

func TestLibraryService_Stats_LLMConfigured(t *testing.T) {
	f := newLibraryFixture(t)
	service := NewLibraryService(f.docStore, f.keyword, f.vectors, f.manifests, nil, &libMockLLM{})

	stats, err := service.Stats(context.Background())

	require.NoError(t, err)
	assert.True(t, stats.LLMConfigured)
}

func TestDominantCategory_Empty(t *testing.T) {
	assert.Equal(t, domain.DefaultCategory, dominantCategory(nil))
}

func TestDominantCategory_MostFrequentWins(t *testing.T) {
	chunks := []domain.Chunk{
		{Metadata: domain.ChunkMetadata{Category: domain.CategoryStudy}},
		{Metadata: domain.ChunkMetadata{Category: domain.CategoryWork}},
		{Metadata: domain.ChunkMetadata{Category: domain.CategoryStudy}},
	}

	assert.Equal(t, domain.CategoryStudy, dominantCategory(chunks))
}

func TestDominantCategory_TieResolvesInFixedOrder(t *testing.T) {
	chunks := []domain.Chunk{
		{Metadata: domain.ChunkMetadata{Category: domain.CategoryStudy}},
		{Metadata: domain.ChunkMetadata{Category: domain.CategoryWork}},
	}

	// Work precedes study in the fixed category order.
	assert.Equal(t, domain.CategoryWork, dominantCategory(chunks))
}
