package driven

import (
	"context"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

// VectorIndex provides semantic similarity search operations.
// Distances are Euclidean; implementations convert them to the
// normalised relevance carried on each result.
type VectorIndex interface {
	// Add inserts chunks with their embeddings. The two slices must be
	// the same length and every embedding must match the index
	// dimension, otherwise nothing is inserted and the error wraps
	// domain.ErrInvalidInput.
	Add(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32) error

	// Search finds the k nearest chunks to the query vector, most
	// relevant first. A filter restricts candidates before ranking so
	// filtered searches never starve. Returns at most k results; fewer
	// when the index is smaller.
	Search(ctx context.Context, query []float32, k int, filter domain.MetadataFilter) ([]domain.RetrievalResult, error)

	// Delete removes every chunk matching the filter and reports how
	// many were removed. An empty filter removes nothing.
	Delete(ctx context.Context, filter domain.MetadataFilter) (int, error)

	// Stats reports the record count and the configured dimension.
	Stats(ctx context.Context) (domain.IndexStats, error)

	// Close releases resources.
	Close() error
}
