// Package hashing provides a deterministic hash-based embedding service.
// It is a pure function of the input text with zero external dependencies,
// which makes it the guaranteed terminal strategy of the fallback chain:
// it must never fail.
package hashing

import (
	"context"
	"crypto/md5" //nolint:gosec // feature derivation, not security
	"strconv"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the hash embedding vector size.
const DefaultDimensions = 384

// featureBuckets quantises each hash feature into [0, 1).
const featureBuckets = 1000

// Config holds configuration for the hashing embedding service.
type Config struct {
	// Dimensions is the embedding vector size (default: 384).
	Dimensions int
}

// EmbeddingService generates embeddings by hashing the text once per
// dimension with a per-dimension seed suffix.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a new hashing embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &EmbeddingService{
		dimensions: cfg.Dimensions,
	}
}

// Embed generates a vector embedding for the given text.
// Identical text always yields an identical vector.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	embedding := make([]float32, s.dimensions)
	for i := range embedding {
		embedding[i] = hashFeature(text, i)
	}
	return embedding, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// Strategy identifies this service in the fallback chain.
func (s *EmbeddingService) Strategy() domain.EmbeddingStrategy {
	return domain.StrategyHashing
}

// ModelName returns the name of the embedding method being used.
func (s *EmbeddingService) ModelName() string {
	return "text-hash"
}

// Ping always succeeds; hashing has no external dependency.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// hashFeature derives feature i of the vector: the MD5 digest of the
// text with a per-dimension suffix, taken modulo the bucket count and
// scaled into [0, 1). The digest is reduced as a big-endian integer.
func hashFeature(text string, i int) float32 {
	sum := md5.Sum([]byte(text + "_" + strconv.Itoa(i))) //nolint:gosec // feature derivation
	v := 0
	for _, b := range sum {
		v = (v*256 + int(b)) % featureBuckets
	}
	return float32(v) / featureBuckets
}
