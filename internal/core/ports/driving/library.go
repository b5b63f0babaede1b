package driving

import (
	"context"
	"time"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

// LibraryService manages the indexed document collection.
type LibraryService interface {
	// List returns all indexed documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by filename.
	Get(ctx context.Context, filename string) (*domain.Document, error)

	// GetDetails returns display metadata for a document.
	GetDetails(ctx context.Context, filename string) (*DocumentDetails, error)

	// Delete removes a document's chunks and vectors by filename.
	// Reports whether anything was found to delete.
	Delete(ctx context.Context, filename string) (bool, error)

	// Stats summarises the state of the library and its indexes.
	Stats(ctx context.Context) (*LibraryStats, error)
}

// DocumentDetails provides a standardised view of document metadata.
type DocumentDetails struct {
	// ID is the unique document identifier.
	ID string

	// Filename is the base name the document is addressed by.
	Filename string

	// SourcePath is the original location on disk.
	SourcePath string

	// Title is the document title.
	Title string

	// FileType is the extension without the dot (e.g., "md").
	FileType string

	// FileSizeMB is the source file size in megabytes.
	FileSizeMB float64

	// ChunkCount is the number of chunks.
	ChunkCount int

	// Category is the dominant category across the document's chunks.
	Category domain.Category

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// LibraryStats summarises the indexed collection.
type LibraryStats struct {
	// Documents is the stored document count.
	Documents int

	// Chunks is the stored chunk count.
	Chunks int

	// Index reports the vector index record count and dimension.
	Index domain.IndexStats

	// Strategy is the embedding strategy pinned by the manifest.
	// Empty before the first ingest.
	Strategy domain.EmbeddingStrategy

	// History is the recorded search count.
	History int

	// LLMConfigured reports whether answer generation has a model.
	LLMConfigured bool
}
