// Package lexical provides a token-frequency embedding service.
// The vocabulary is fitted once, against the first document batch seen,
// and reused for every subsequent call. Tokens outside the fitted
// vocabulary are silently ignored; queries before any fit embed to the
// zero vector.
package lexical

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the token-frequency vector size.
const DefaultDimensions = 1000

// minTokenLength excludes single characters from the vocabulary.
const minTokenLength = 2

// stopwords are excluded from the fitted vocabulary.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "if": true, "then": true, "for": true, "of": true,
	"to": true, "in": true, "on": true, "at": true, "by": true,
	"with": true, "from": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "it": true, "its": true,
	"this": true, "that": true, "these": true, "those": true,
	"as": true, "not": true, "no": true, "so": true, "such": true,
	"will": true, "would": true, "can": true, "could": true,
	"has": true, "have": true, "had": true, "do": true, "does": true,
}

// Config holds configuration for the lexical embedding service.
type Config struct {
	// Dimensions is the vocabulary size (default: 1000).
	Dimensions int
}

// EmbeddingService generates token-frequency vectors over a fitted
// vocabulary. Vectors are L2-normalised, which keeps the Euclidean
// distance between any two non-zero vectors within [0, 2].
type EmbeddingService struct {
	mu         sync.RWMutex
	dimensions int
	vocabulary map[string]int
	fitted     bool
}

// NewEmbeddingService creates a new lexical embedding service.
// The vocabulary is empty until the first EmbedBatch call fits it.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &EmbeddingService{
		dimensions: cfg.Dimensions,
	}
}

// Embed generates a vector embedding for a query text. Before any
// document batch has fitted the vocabulary it returns the zero vector:
// the query then matches nothing, it does not fail the search.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.fitted {
		return make([]float32, s.dimensions), nil
	}
	return s.transform(text), nil
}

// EmbedBatch generates embeddings for multiple texts.
// The first batch fits the vocabulary; later batches reuse it.
func (s *EmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	if !s.fitted {
		s.fit(texts)
	}
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = s.transform(text)
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// Strategy identifies this service in the fallback chain.
func (s *EmbeddingService) Strategy() domain.EmbeddingStrategy {
	return domain.StrategyLexical
}

// ModelName returns the name of the embedding method being used.
func (s *EmbeddingService) ModelName() string {
	return "token-frequency"
}

// Ping always succeeds; the lexical strategy has no external dependency.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// fit builds the vocabulary from the most frequent tokens in the batch.
// Tokens rank by total frequency, ties alphabetically, and vector
// indices follow alphabetical order of the selected tokens so that
// fitting is deterministic. Caller must hold the write lock.
func (s *EmbeddingService) fit(texts []string) {
	freq := make(map[string]int)
	for _, text := range texts {
		for _, token := range tokenize(text) {
			freq[token]++
		}
	}

	tokens := make([]string, 0, len(freq))
	for token := range freq {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if freq[tokens[i]] != freq[tokens[j]] {
			return freq[tokens[i]] > freq[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})

	if len(tokens) > s.dimensions {
		tokens = tokens[:s.dimensions]
	}
	sort.Strings(tokens)

	s.vocabulary = make(map[string]int, len(tokens))
	for i, token := range tokens {
		s.vocabulary[token] = i
	}
	s.fitted = true
}

// transform counts vocabulary tokens in the text and L2-normalises the
// resulting vector. Out-of-vocabulary tokens are ignored. Caller must
// hold at least the read lock.
func (s *EmbeddingService) transform(text string) []float32 {
	vector := make([]float32, s.dimensions)
	for _, token := range tokenize(text) {
		if idx, ok := s.vocabulary[token]; ok {
			vector[idx]++
		}
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector
}

// tokenize lower-cases text and splits it into alphanumeric runs,
// dropping stopwords and single characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= minTokenLength && !stopwords[f] {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
