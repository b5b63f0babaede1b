package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// chunkRecord pairs a stored chunk with its insertion sequence so that
// hash lookups resolve to the oldest copy, matching the SQLite store.
type chunkRecord struct {
	chunk domain.Chunk
	seq   int64
}

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// It mirrors the SQLite adapter's semantics so service tests exercise
// the same contract the real store provides.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string]chunkRecord
	nextSeq   int64
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string]chunkRecord),
	}
}

// SaveDocument stores or updates a document. Timestamps are managed here:
// CreatedAt is filled on first save and preserved on update, UpdatedAt is
// always set to the current time.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("saving document: missing id: %w", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Source paths are unique across documents, as in the SQLite schema.
	for id, existing := range s.documents {
		if id != doc.ID && existing.SourcePath == doc.SourcePath {
			return fmt.Errorf("saving document: source path %q already indexed", doc.SourcePath)
		}
	}

	now := time.Now().UTC()
	if existing, ok := s.documents[doc.ID]; ok {
		doc.CreatedAt = existing.CreatedAt
	} else if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	s.documents[doc.ID] = *doc
	return nil
}

// SaveChunks stores or updates chunks by ID. Chunks from multiple
// documents may share a batch.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		if existing, ok := s.chunks[chunk.ID]; ok {
			existing.chunk = chunk
			s.chunks[chunk.ID] = existing
			continue
		}
		s.nextSeq++
		s.chunks[chunk.ID] = chunkRecord{chunk: chunk, seq: s.nextSeq}
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocumentByFilename retrieves the most recently updated document
// with the given filename.
func (s *DocumentStore) GetDocumentByFilename(_ context.Context, filename string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var match *domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if doc.Filename != filename {
			continue
		}
		if match == nil || doc.UpdatedAt.After(match.UpdatedAt) {
			match = &doc
		}
	}
	if match == nil {
		return nil, domain.ErrNotFound
	}
	return match, nil
}

// GetDocumentBySourcePath retrieves the document ingested from the given path.
func (s *DocumentStore) GetDocumentBySourcePath(_ context.Context, sourcePath string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.documents {
		doc := s.documents[id]
		if doc.SourcePath == sourcePath {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetChunks retrieves all chunks for a document, ordered by chunk index.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for _, rec := range s.chunks {
		if rec.chunk.DocumentID == documentID {
			result = append(result, rec.chunk)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Metadata.ChunkIndex < result[j].Metadata.ChunkIndex
	})
	return result, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	chunk := rec.chunk
	return &chunk, nil
}

// GetChunkByHash retrieves the oldest stored chunk with the given content hash.
func (s *DocumentStore) GetChunkByHash(_ context.Context, contentHash string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *chunkRecord
	for id := range s.chunks {
		rec := s.chunks[id]
		if rec.chunk.Metadata.ContentHash != contentHash {
			continue
		}
		if best == nil || rec.seq < best.seq {
			best = &rec
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	chunk := best.chunk
	return &chunk, nil
}

// AllChunks returns every stored chunk, ordered by document then chunk index.
func (s *DocumentStore) AllChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Chunk, 0, len(s.chunks))
	for _, rec := range s.chunks {
		result = append(result, rec.chunk)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DocumentID != result[j].DocumentID {
			return result[i].DocumentID < result[j].DocumentID
		}
		return result[i].Metadata.ChunkIndex < result[j].Metadata.ChunkIndex
	})
	return result, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	for chunkID, rec := range s.chunks {
		if rec.chunk.DocumentID == id {
			delete(s.chunks, chunkID)
		}
	}
	return nil
}

// ListDocuments returns all documents, ordered by creation time.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		result = append(result, s.documents[id])
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// CountDocuments returns the number of stored documents.
func (s *DocumentStore) CountDocuments(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

// CountChunks returns the number of stored chunks.
func (s *DocumentStore) CountChunks(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}
