package driven

import (
	"context"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches vectors.
// EmbeddingService generates vectors; VectorIndex stores them.
//
// Implementations form the fallback chain:
//   - OpenAI (text-embedding-3-small)
//   - Ollama (all-minilm)
//   - Lexical (frequency vectors over a fitted vocabulary)
//   - Hashing (deterministic, dependency-free terminal strategy)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	// The result has exactly one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1000, 1536).
	// This is determined by the strategy and must match the VectorIndex
	// configuration.
	Dimensions() int

	// Strategy returns which fallback chain entry this service implements.
	Strategy() domain.EmbeddingStrategy

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test
	// request. Used at startup when resolving the fallback chain.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
