package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driving"
	"github.com/tessera-labs/quaero-cli/internal/logger"
)

// Ensure AnswerService implements the interfaces.
var (
	_ driving.AnswerService   = (*AnswerService)(nil)
	_ driven.PromptStoreAware = (*AnswerService)(nil)
)

// Confidence term weights. The blend is tunable; note the overlap term
// contributes nothing for queries without a single qualifying token.
const (
	confidenceRelevanceWeight = 0.4
	confidenceCountWeight     = 0.2
	confidenceLengthWeight    = 0.2
	confidenceOverlapWeight   = 0.2

	// confidenceCountTarget is the chunk count at which the count term
	// saturates.
	confidenceCountTarget = 5.0

	// confidenceLengthTarget is the answer length at which the length
	// term saturates.
	confidenceLengthTarget = 500.0
)

// noInformationAnswer is the fixed reply when retrieval finds nothing.
const noInformationAnswer = "No relevant information found in the indexed documents. " +
	"Try ingesting more documents or rephrasing the question."

// excerptCount is how many passages the template fallback quotes.
const excerptCount = 3

// Default generation bounds, overridable via SetGenerationOptions.
const (
	defaultAnswerMaxTokens   = 500
	defaultAnswerTemperature = 0.7
)

// defaultAnswerPrompt grounds the model in retrieved context. Used when
// no prompt store is injected. Expects %s (context) and %s (question).
const defaultAnswerPrompt = `Answer the question using ONLY the context below. Do not use outside knowledge.
If the context does not contain enough information to answer, say so plainly.
Reference the numbered sources you drew from, e.g. [1].

Context:
%s

Question: %s

Answer:`

// AnswerService generates grounded answers from retrieved chunks.
type AnswerService struct {
	searchService driving.SearchService
	llmService    driven.LLMService
	promptStore   driven.PromptStore
	maxTokens     int
	temperature   float64
}

// NewAnswerService creates a new answer service.
// The llmService parameter is optional (can be nil); answers then
// degrade to the excerpt template.
func NewAnswerService(searchService driving.SearchService, llmService driven.LLMService) *AnswerService {
	return &AnswerService{
		searchService: searchService,
		llmService:    llmService,
		maxTokens:     defaultAnswerMaxTokens,
		temperature:   defaultAnswerTemperature,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *AnswerService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// SetGenerationOptions overrides the default generation bounds.
func (s *AnswerService) SetGenerationOptions(maxTokens int, temperature float64) {
	if maxTokens > 0 {
		s.maxTokens = maxTokens
	}
	s.temperature = temperature
}

// Ask retrieves context for the question and generates a grounded,
// confidence-scored answer from it.
func (s *AnswerService) Ask(
	ctx context.Context, question string, opts domain.SearchOptions,
) (*domain.AnswerResult, error) {
	logger.Section("Answer Generation")
	logger.Debug("Question: %q", question)

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is empty: %w", domain.ErrInvalidInput)
	}

	results, err := s.searchService.Search(ctx, question, opts)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	logger.Debug("Retrieved %d chunk(s) for grounding", len(results))

	// Nothing to ground on: answer without consulting the model.
	if len(results) == 0 {
		logger.Info("No relevant chunks, returning fixed answer")
		return &domain.AnswerResult{
			Answer:     noInformationAnswer,
			Confidence: 0,
			Sources:    []domain.AnswerSource{},
		}, nil
	}

	answer := s.generateAnswer(ctx, question, results)

	result := &domain.AnswerResult{
		Answer:         answer,
		Confidence:     s.confidence(question, results, answer),
		Sources:        collectSources(results),
		RetrievedCount: len(results),
	}

	logger.Info("Answer generated: confidence=%.2f, sources=%d",
		result.Confidence, len(result.Sources))
	return result, nil
}

// generateAnswer asks the model for a grounded answer, falling back to
// the excerpt template when no model is available or it fails.
func (s *AnswerService) generateAnswer(
	ctx context.Context, question string, results []domain.RetrievalResult,
) string {
	if s.llmService == nil {
		logger.Info("No LLM configured, using excerpt template")
		return templateAnswer(results)
	}

	prompt := fmt.Sprintf(s.loadPrompt(driven.PromptAnswer, defaultAnswerPrompt),
		buildContext(results), question)

	messages := []driven.ChatMessage{
		{Role: "system", Content: prompt},
		{Role: "user", Content: question},
	}

	answer, err := s.llmService.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		logger.Warn("Generation failed, falling back to excerpts: %v", err)
		return templateAnswer(results)
	}
	if strings.TrimSpace(answer) == "" {
		logger.Warn("Model returned an empty answer, falling back to excerpts")
		return templateAnswer(results)
	}

	return strings.TrimSpace(answer)
}

// loadPrompt fetches a prompt from the store, falling back to the
// hardcoded default when no store is set or loading fails.
func (s *AnswerService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// confidence grades the answer as a weighted blend of retrieval
// quality, context volume, answer length and query-term coverage,
// clamped to [0,1].
func (s *AnswerService) confidence(
	question string, results []domain.RetrievalResult, answer string,
) float64 {
	var relevanceSum float64
	for _, r := range results {
		relevanceSum += r.RelevanceScore
	}
	meanRelevance := relevanceSum / float64(len(results))

	countTerm := math.Min(float64(len(results))/confidenceCountTarget, 1)
	lengthTerm := math.Min(float64(len(answer))/confidenceLengthTarget, 1)
	overlapTerm := overlapRatio(tokenise(question), tokenise(answer))

	score := confidenceRelevanceWeight*meanRelevance +
		confidenceCountWeight*countTerm +
		confidenceLengthWeight*lengthTerm +
		confidenceOverlapWeight*overlapTerm

	return math.Max(0, math.Min(1, score))
}

// buildContext renders the retrieved chunks as numbered, source-tagged
// blocks the prompt template embeds.
func buildContext(results []domain.RetrievalResult) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		meta := r.Chunk.Metadata
		blocks[i] = fmt.Sprintf("[%d] %s\nSource [%d]: %s (part %d/%d)",
			i+1, r.Chunk.Content, i+1, meta.Filename, meta.ChunkIndex+1, meta.ChunkCount)
	}
	return strings.Join(blocks, "\n\n")
}

// templateAnswer stitches the top excerpts into a readable reply when
// no model is available. Always succeeds.
func templateAnswer(results []domain.RetrievalResult) string {
	count := len(results)
	if count > excerptCount {
		count = excerptCount
	}

	var b strings.Builder
	b.WriteString("No answer model is available. The most relevant passages are:\n")
	for i := 0; i < count; i++ {
		r := results[i]
		fmt.Fprintf(&b, "\n[%d] %s (relevance %.2f)\n%s\n",
			i+1, r.Chunk.Metadata.Filename, r.RelevanceScore,
			strings.TrimSpace(r.Chunk.Content))
	}
	return strings.TrimSpace(b.String())
}

// collectSources gathers one attribution per distinct filename. The
// input is already ranked, so the first chunk seen for a file is its
// attribution; output is ordered by relevance descending.
func collectSources(results []domain.RetrievalResult) []domain.AnswerSource {
	seen := make(map[string]struct{}, len(results))
	sources := make([]domain.AnswerSource, 0, len(results))

	for _, r := range results {
		meta := r.Chunk.Metadata
		if _, ok := seen[meta.Filename]; ok {
			continue
		}
		seen[meta.Filename] = struct{}{}
		sources = append(sources, domain.AnswerSource{
			Filename:       meta.Filename,
			RelevanceScore: r.RelevanceScore,
			ChunkIndex:     meta.ChunkIndex,
		})
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].RelevanceScore > sources[j].RelevanceScore
	})
	return sources
}

// tokenise lower-cases the text and collects its alphanumeric runs.
func tokenise(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		tokens[tok] = struct{}{}
	}
	return tokens
}

// overlapRatio is the fraction of query tokens that appear in the
// answer. Zero when the query has no tokens at all.
func overlapRatio(query, answer map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	matched := 0
	for tok := range query {
		if _, ok := answer[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}
