package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driving"
	"github.com/tessera-labs/quaero-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// fusedCandidate holds one chunk's scores during fusion. vectorRank is
// the position in the vector result list; keyword-only candidates get
// math.MaxInt so ties sort them after vector-ranked ones.
type fusedCandidate struct {
	result     domain.RetrievalResult
	vectorRank int
}

// SearchService provides hybrid and semantic retrieval.
type SearchService struct {
	docStore         driven.DocumentStore
	vectorIndex      driven.VectorIndex
	keywordIndex     driven.KeywordIndex
	embeddingService driven.EmbeddingService
	historyStore     driven.SearchHistoryStore
}

// NewSearchService creates a new search service.
// The historyStore parameter is optional (can be nil); searches then
// run unrecorded.
func NewSearchService(
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	keywordIndex driven.KeywordIndex,
	embeddingService driven.EmbeddingService,
	historyStore driven.SearchHistoryStore,
) *SearchService {
	return &SearchService{
		docStore:         docStore,
		vectorIndex:      vectorIndex,
		keywordIndex:     keywordIndex,
		embeddingService: embeddingService,
		historyStore:     historyStore,
	}
}

// Search retrieves the chunks most relevant to the query.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.RetrievalResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	// Return empty for empty query, without touching the history
	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.RetrievalResult{}, nil
	}

	mode := opts.Mode
	if mode == "" {
		mode = domain.SearchModeHybrid
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("search mode %q: %w", mode, domain.ErrInvalidInput)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	logger.Info("Mode: %s, limit: %d", mode.Description(), limit)

	var results []domain.RetrievalResult
	var err error

	switch mode {
	case domain.SearchModeSemantic:
		logger.Debug("Executing semantic search")
		results, err = s.semanticSearch(ctx, query, limit, opts.Filter)

	default:
		logger.Debug("Executing hybrid search (vector + keyword)")
		results, err = s.hybridSearch(ctx, query, limit, opts)
	}

	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	s.recordSearch(ctx, query, mode, len(results))

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// semanticSearch ranks by vector similarity alone. Combined scores
// equal the relevance scores, so callers can sort either field.
func (s *SearchService) semanticSearch(
	ctx context.Context, query string, limit int, filter domain.MetadataFilter,
) ([]domain.RetrievalResult, error) {
	results, err := s.vectorSearch(ctx, query, limit, filter)
	if err != nil {
		return nil, err
	}

	for i := range results {
		results[i].CombinedScore = results[i].RelevanceScore
	}
	return results, nil
}

// vectorSearch embeds the query and ranks against the vector index.
func (s *SearchService) vectorSearch(
	ctx context.Context, query string, limit int, filter domain.MetadataFilter,
) ([]domain.RetrievalResult, error) {
	if s.vectorIndex == nil {
		logger.Warn("Vector search unavailable: vector index is nil")
		return nil, domain.ErrVectorIndexUnavailable
	}
	if s.embeddingService == nil {
		logger.Warn("Vector search unavailable: embedding service is nil")
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Debug("Vector search: query=%q, limit=%d", query, limit)

	embedding, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := s.vectorIndex.Search(ctx, embedding, limit, filter)
	if err != nil {
		logger.Warn("Vector index search failed: %v", err)
		return nil, fmt.Errorf("vector search: %w", err)
	}

	logger.Debug("Vector search: %d hits", len(hits))
	return hits, nil
}

// keywordSearch queries the keyword index for scored content hashes.
func (s *SearchService) keywordSearch(
	ctx context.Context, query string, limit int,
) ([]driven.KeywordHit, error) {
	if s.keywordIndex == nil {
		logger.Warn("Keyword search unavailable: keyword index is nil")
		return nil, errors.New("keyword index unavailable")
	}

	logger.Debug("Keyword search: query=%q, limit=%d", query, limit)

	hits, err := s.keywordIndex.Search(ctx, query, limit)
	if err != nil {
		logger.Warn("Keyword search error: %v", err)
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	logger.Debug("Keyword search: %d hits", len(hits))
	return hits, nil
}

// hybridSearch runs both legs in parallel and fuses their rankings
// with a weighted sum.
func (s *SearchService) hybridSearch(
	ctx context.Context, query string, limit int, opts domain.SearchOptions,
) ([]domain.RetrievalResult, error) {
	vectorWeight := opts.VectorWeight
	if vectorWeight == 0 {
		vectorWeight = domain.DefaultVectorWeight
	}
	keywordWeight := opts.KeywordWeight
	if keywordWeight == 0 {
		keywordWeight = domain.DefaultKeywordWeight
	}

	// Fetch more candidates than needed so fusion has overlap to rank
	candidateLimit := limit * 2
	logger.Debug("Hybrid search: candidate limit %d, weights vector=%.2f keyword=%.2f",
		candidateLimit, vectorWeight, keywordWeight)

	// Run vector and keyword searches in parallel
	var vectorResults []domain.RetrievalResult
	var keywordResults []driven.KeywordHit
	var vectorErr, keywordErr error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		vectorResults, vectorErr = s.vectorSearch(ctx, query, candidateLimit, opts.Filter)
	}()

	go func() {
		defer wg.Done()
		keywordResults, keywordErr = s.keywordSearch(ctx, query, candidateLimit)
	}()

	wg.Wait()

	// Handle errors gracefully - degrade if one leg fails
	if vectorErr != nil && keywordErr != nil {
		logger.Warn("Hybrid search: both vector and keyword searches failed")
		return nil, fmt.Errorf("hybrid search: vector=%w, keyword=%w", vectorErr, keywordErr)
	}

	if vectorErr != nil {
		logger.Warn("Hybrid search: vector search failed, using keyword results only")
		vectorResults = nil
	}

	if keywordErr != nil {
		logger.Warn("Hybrid search: keyword search failed, using vector results only")
		keywordResults = nil
	}

	logger.Debug("Hybrid search: fusing %d vector + %d keyword results",
		len(vectorResults), len(keywordResults))
	merged, err := s.fuseResults(ctx, vectorResults, keywordResults,
		vectorWeight, keywordWeight, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("fuse results: %w", err)
	}

	if len(merged) > limit {
		merged = merged[:limit]
	}
	logger.Debug("Hybrid search: merged to %d results", len(merged))

	return merged, nil
}

// fuseResults merges both rankings with a weighted sum, deduplicating
// by content hash. A chunk found by both legs scores the sum of its
// weighted contributions. With no keyword hits the output is the
// vector ranking scaled by the vector weight.
func (s *SearchService) fuseResults(
	ctx context.Context,
	vectorResults []domain.RetrievalResult,
	keywordResults []driven.KeywordHit,
	vectorWeight, keywordWeight float64,
	filter domain.MetadataFilter,
) ([]domain.RetrievalResult, error) {
	candidates := make(map[string]*fusedCandidate, len(vectorResults)+len(keywordResults))
	order := make([]string, 0, len(vectorResults)+len(keywordResults))

	for rank, res := range vectorResults {
		res.KeywordScore = 0
		res.CombinedScore = vectorWeight * res.RelevanceScore
		hash := res.Chunk.Metadata.ContentHash
		candidates[hash] = &fusedCandidate{result: res, vectorRank: rank}
		order = append(order, hash)
	}

	for _, hit := range keywordResults {
		if existing, ok := candidates[hit.ContentHash]; ok {
			existing.result.KeywordScore = hit.Score
			existing.result.CombinedScore += keywordWeight * hit.Score
			continue
		}

		// Keyword-only hit: hydrate the chunk from the document store.
		// Hashes indexed before a delete may be stale, skip those.
		chunk, err := s.docStore.GetChunkByHash(ctx, hit.ContentHash)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Debug("Skipping stale keyword hit: %s", hit.ContentHash)
				continue
			}
			return nil, fmt.Errorf("hydrate chunk %s: %w", hit.ContentHash, err)
		}

		// The keyword index carries no metadata, so the filter applies
		// after hydration
		if !filter.Matches(chunk.Metadata) {
			continue
		}

		candidates[hit.ContentHash] = &fusedCandidate{
			result: domain.RetrievalResult{
				Chunk:         *chunk,
				KeywordScore:  hit.Score,
				CombinedScore: keywordWeight * hit.Score,
			},
			vectorRank: math.MaxInt,
		}
		order = append(order, hit.ContentHash)
	}

	fused := make([]fusedCandidate, 0, len(order))
	for _, hash := range order {
		fused = append(fused, *candidates[hash])
	}

	// Sort by combined score; break ties by original vector rank, then
	// by chunk index
	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].result.CombinedScore != fused[j].result.CombinedScore {
			return fused[i].result.CombinedScore > fused[j].result.CombinedScore
		}
		if fused[i].vectorRank != fused[j].vectorRank {
			return fused[i].vectorRank < fused[j].vectorRank
		}
		return fused[i].result.Chunk.Metadata.ChunkIndex < fused[j].result.Chunk.Metadata.ChunkIndex
	})

	results := make([]domain.RetrievalResult, len(fused))
	for i, c := range fused {
		results[i] = c.result
	}
	return results, nil
}

// recordSearch appends the query to the history. Failures are logged
// and swallowed; history must never break a search.
func (s *SearchService) recordSearch(
	ctx context.Context, query string, mode domain.SearchMode, resultCount int,
) {
	if s.historyStore == nil {
		return
	}

	rec := domain.SearchRecord{
		Query:       query,
		Mode:        mode,
		ResultCount: resultCount,
		SearchedAt:  time.Now().Unix(),
	}
	if err := s.historyStore.Record(ctx, rec); err != nil {
		logger.Warn("Failed to record search history: %v", err)
	}
}
