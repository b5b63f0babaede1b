package driven

import (
	"context"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

// DocumentStore persists documents and chunks.
// Backed by SQLite for metadata and embedding storage.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document, embeddings included.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByFilename retrieves a document by its filename.
	// Returns domain.ErrNotFound when no document carries the name.
	GetDocumentByFilename(ctx context.Context, filename string) (*domain.Document, error)

	// GetDocumentBySourcePath retrieves a document by its source path.
	// Re-ingesting an existing file replaces its document rather than
	// duplicating it, so ingestion looks the path up first.
	// Returns domain.ErrNotFound when the path was never ingested.
	GetDocumentBySourcePath(ctx context.Context, sourcePath string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document ordered by chunk index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunkByHash retrieves a chunk by its content hash.
	GetChunkByHash(ctx context.Context, contentHash string) (*domain.Chunk, error)

	// AllChunks returns every stored chunk with its embedding.
	// Used to hydrate the in-memory vector index at startup.
	AllChunks(ctx context.Context) ([]domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents ordered by creation time.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)
}
