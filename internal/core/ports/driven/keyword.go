package driven

import (
	"context"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

// KeywordIndex provides full-text keyword search operations.
// The default build ships a null implementation that indexes nothing
// and matches nothing; hybrid search then degrades to vector-only
// fusion. A BM25 engine can be swapped in behind this port.
type KeywordIndex interface {
	// Index adds or updates chunks in the keyword index.
	Index(ctx context.Context, chunks []domain.Chunk) error

	// Delete removes a chunk from the index by content hash.
	Delete(ctx context.Context, contentHash string) error

	// Search performs a keyword search and returns matching content
	// hashes with scores, best first.
	Search(ctx context.Context, query string, limit int) ([]KeywordHit, error)

	// Close releases resources.
	Close() error
}

// KeywordHit represents a keyword search result.
type KeywordHit struct {
	// ContentHash identifies the matched chunk.
	ContentHash string

	// Score is the normalised relevance score in [0, 1].
	Score float64
}
