package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driving"
	"github.com/tessera-labs/quaero-cli/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService manages the indexed document collection.
type LibraryService struct {
	docStore     driven.DocumentStore
	keywordIndex driven.KeywordIndex
	vectorIndex  driven.VectorIndex
	manifests    driven.IndexManifestStore
	history      driven.SearchHistoryStore
	llm          driven.LLMService
}

// NewLibraryService creates a new library service.
// The keywordIndex, history and llm are optional - with a nil
// keywordIndex the keyword cleanup on delete is skipped, with a nil
// history the stats report zero recorded searches, and with a nil llm
// the stats report answer generation as unconfigured.
func NewLibraryService(
	docStore driven.DocumentStore,
	keywordIndex driven.KeywordIndex,
	vectorIndex driven.VectorIndex,
	manifests driven.IndexManifestStore,
	history driven.SearchHistoryStore,
	llm driven.LLMService,
) *LibraryService {
	return &LibraryService{
		docStore:     docStore,
		keywordIndex: keywordIndex,
		vectorIndex:  vectorIndex,
		manifests:    manifests,
		history:      history,
		llm:          llm,
	}
}

// List returns all indexed documents ordered by creation time.
func (s *LibraryService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Get retrieves a document by filename.
func (s *LibraryService) Get(ctx context.Context, filename string) (*domain.Document, error) {
	return s.docStore.GetDocumentByFilename(ctx, filename)
}

// GetDetails returns display metadata for a document.
func (s *LibraryService) GetDetails(ctx context.Context, filename string) (*driving.DocumentDetails, error) {
	doc, err := s.docStore.GetDocumentByFilename(ctx, filename)
	if err != nil {
		return nil, err
	}

	chunks, err := s.docStore.GetChunks(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}

	return &driving.DocumentDetails{
		ID:         doc.ID,
		Filename:   doc.Filename,
		SourcePath: doc.SourcePath,
		Title:      doc.Title,
		FileType:   doc.FileType,
		FileSizeMB: doc.FileSizeMB,
		ChunkCount: len(chunks),
		Category:   dominantCategory(chunks),
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

// Delete removes a document's chunks and vectors by filename.
// Reports whether anything was found to delete; an unknown filename is
// not an error.
func (s *LibraryService) Delete(ctx context.Context, filename string) (bool, error) {
	doc, err := s.docStore.GetDocumentByFilename(ctx, filename)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("look up document: %w", err)
	}

	chunks, err := s.docStore.GetChunks(ctx, doc.ID)
	if err != nil {
		return false, fmt.Errorf("get chunks: %w", err)
	}

	removed, err := s.vectorIndex.Delete(ctx, domain.MetadataFilter{"filename": filename})
	if err != nil {
		return false, fmt.Errorf("delete vectors: %w", err)
	}

	if s.keywordIndex != nil {
		for i := range chunks {
			if err := s.keywordIndex.Delete(ctx, chunks[i].Metadata.ContentHash); err != nil {
				logger.Debug("Failed to delete keyword entry %s: %v", chunks[i].Metadata.ContentHash, err)
			}
		}
	}

	if err := s.docStore.DeleteDocument(ctx, doc.ID); err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}

	logger.Info("Deleted %s: %d chunks, %d vectors", filename, len(chunks), removed)
	return true, nil
}

// Stats summarises the state of the library and its indexes.
func (s *LibraryService) Stats(ctx context.Context) (*driving.LibraryStats, error) {
	docs, err := s.docStore.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	chunks, err := s.docStore.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	index, err := s.vectorIndex.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("index stats: %w", err)
	}

	stats := &driving.LibraryStats{
		Documents:     docs,
		Chunks:        chunks,
		Index:         index,
		LLMConfigured: s.llm != nil,
	}

	manifest, err := s.manifests.Get(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get manifest: %w", err)
	}
	if manifest != nil {
		stats.Strategy = manifest.Strategy
	}

	if s.history != nil {
		searches, err := s.history.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count history: %w", err)
		}
		stats.History = searches
	}

	return stats, nil
}

// dominantCategory returns the most frequent category across chunks.
// Ties resolve in the fixed category order; no chunks means the default.
func dominantCategory(chunks []domain.Chunk) domain.Category {
	if len(chunks) == 0 {
		return domain.DefaultCategory
	}

	counts := make(map[domain.Category]int, len(chunks))
	for i := range chunks {
		counts[chunks[i].Metadata.Category]++
	}

	best := domain.DefaultCategory
	bestCount := 0
	for _, category := range domain.AllCategories() {
		if counts[category] > bestCount {
			best = category
			bestCount = counts[category]
		}
	}
	return best
}
