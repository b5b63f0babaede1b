// Package memory provides a brute-force in-memory vector index ranked
// by Euclidean distance. Records are hydrated from the document store
// at startup and written through to it by the ingest pipeline, so the
// index itself carries no persistence.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// record pairs a chunk with its embedding vector.
type record struct {
	chunk  domain.Chunk
	vector []float32
}

// Index is an exact nearest-neighbour index over chunk embeddings.
// Writers exclude everything; readers run concurrently.
type Index struct {
	mu        sync.RWMutex
	dimension int
	strategy  domain.EmbeddingStrategy
	records   []record
}

// NewIndex creates an empty index with a fixed vector dimension.
// Every vector added later must match it: one index holds vectors from
// exactly one embedding strategy.
func NewIndex(dimension int, strategy domain.EmbeddingStrategy) *Index {
	return &Index{
		dimension: dimension,
		strategy:  strategy,
	}
}

// Add inserts paired chunk and vector records.
// It validates every pair before touching the index, so a failed call
// leaves the record set unchanged.
func (idx *Index) Add(_ context.Context, chunks []domain.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%d chunks with %d embeddings: %w",
			len(chunks), len(embeddings), domain.ErrInvalidInput)
	}
	for i, embedding := range embeddings {
		if len(embedding) != idx.dimension {
			return fmt.Errorf("embedding %d has dimension %d, index expects %d: %w",
				i, len(embedding), idx.dimension, domain.ErrInvalidInput)
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for i := range chunks {
		idx.records = append(idx.records, record{
			chunk:  chunks[i],
			vector: embeddings[i],
		})
	}
	return nil
}

// Search returns the k nearest records to the query vector, optionally
// restricted to records whose metadata matches every filter constraint.
// Filtering happens before ranking, so k counts matching records only.
func (idx *Index) Search(_ context.Context, query []float32, k int, filter domain.MetadataFilter) ([]domain.RetrievalResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidInput)
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("query has dimension %d, index expects %d: %w",
			len(query), idx.dimension, domain.ErrInvalidInput)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	type candidate struct {
		chunk    domain.Chunk
		distance float64
	}

	var candidates []candidate
	for _, rec := range idx.records {
		if !filter.Matches(rec.chunk.Metadata) {
			continue
		}
		candidates = append(candidates, candidate{
			chunk:    rec.chunk,
			distance: euclidean(query, rec.vector),
		})
	}
	if len(candidates) == 0 {
		return []domain.RetrievalResult{}, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	// Normalise distances over the returned set only. The candidates
	// are distance-sorted, so min and max sit at the ends.
	minDist := candidates[0].distance
	maxDist := candidates[len(candidates)-1].distance

	results := make([]domain.RetrievalResult, len(candidates))
	for i, c := range candidates {
		results[i] = domain.RetrievalResult{
			Chunk:          c.chunk,
			VectorScore:    c.distance,
			RelevanceScore: bandedRelevance(c.distance, minDist, maxDist),
		}
	}
	return results, nil
}

// Delete removes all records matching the filter and reports how many
// were removed. An empty filter removes nothing; clearing the whole
// index is Close followed by a rebuild, never an accidental match-all.
func (idx *Index) Delete(_ context.Context, filter domain.MetadataFilter) (int, error) {
	if len(filter) == 0 {
		return 0, nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	kept := idx.records[:0]
	removed := 0
	for _, rec := range idx.records {
		if filter.Matches(rec.chunk.Metadata) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	// Zero the tail so deleted records are collectable.
	for i := len(kept); i < len(idx.records); i++ {
		idx.records[i] = record{}
	}
	idx.records = kept
	return removed, nil
}

// Stats describes the current record set.
func (idx *Index) Stats(_ context.Context) (domain.IndexStats, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return domain.IndexStats{
		RecordCount: len(idx.records),
		Dimension:   idx.dimension,
		Strategy:    idx.strategy.String(),
	}, nil
}

// Close releases resources.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.records = nil
	return nil
}

// euclidean computes the Euclidean distance between two vectors of
// equal length.
func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// bandedRelevance converts a raw distance into a relevance score.
//
// The base score is the candidate's position between the best and worst
// distances in the returned set. That relative score is then clamped
// into an absolute band chosen by the raw distance, so a query with
// only weak matches cannot score one of them as excellent merely
// because it was the closest among bad options.
func bandedRelevance(distance, minDist, maxDist float64) float64 {
	score := 0.5
	if maxDist > minDist {
		relative := (distance - minDist) / (maxDist - minDist)
		score = 1 - relative
	}

	switch {
	case distance > 2.0:
		score = math.Max(0.0, math.Min(0.3, score))
	case distance > 1.5:
		score = math.Max(0.1, math.Min(0.5, score))
	case distance < 0.3:
		score = math.Max(0.7, math.Min(1.0, score))
	default:
		score = math.Max(0.2, math.Min(0.8, score))
	}

	return math.Round(score*1000) / 1000
}
