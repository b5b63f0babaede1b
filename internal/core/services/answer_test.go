package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driving"
)

// --- Mock implementations for answer testing ---

type answerMockSearch struct {
	results   []domain.RetrievalResult
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *answerMockSearch) Search(
	_ context.Context, query string, opts domain.SearchOptions,
) ([]domain.RetrievalResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

type answerMockLLM struct {
	chatResponse string
	chatErr      error
	chatCalls    int
	lastMessages []driven.ChatMessage
	lastOpts     driven.ChatOptions
}

func (m *answerMockLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return "", nil
}

func (m *answerMockLLM) Chat(
	_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions,
) (string, error) {
	m.chatCalls++
	m.lastMessages = messages
	m.lastOpts = opts
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.chatResponse, nil
}

func (m *answerMockLLM) ModelName() string {
	return "mock-llm"
}

func (m *answerMockLLM) Ping(_ context.Context) error {
	return nil
}

func (m *answerMockLLM) Close() error {
	return nil
}

type answerMockPromptStore struct {
	prompts map[string]string
	loadErr error
}

func (m *answerMockPromptStore) Load(name string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	return m.prompts[name], nil
}

func (m *answerMockPromptStore) Reload() {}

// Ensure mocks implement interfaces
var (
	_ driving.SearchService = (*answerMockSearch)(nil)
	_ driven.LLMService     = (*answerMockLLM)(nil)
	_ driven.PromptStore    = (*answerMockPromptStore)(nil)
)

func retrieved(filename string, chunkIndex int, relevance float64, content string) domain.RetrievalResult {
	return domain.RetrievalResult{
		Chunk: domain.Chunk{
			ID:      filename + "-chunk",
			Content: content,
			Metadata: domain.ChunkMetadata{
				Filename:   filename,
				ChunkIndex: chunkIndex,
				ChunkCount: 3,
			},
		},
		CombinedScore:  relevance,
		RelevanceScore: relevance,
	}
}

// ==================== AnswerService Tests ====================

func TestNewAnswerService(t *testing.T) {
	service := NewAnswerService(&answerMockSearch{}, nil)

	require.NotNil(t, service)
}

func TestAnswerService_Ask_EmptyQuestion(t *testing.T) {
	service := NewAnswerService(&answerMockSearch{}, nil)

	_, err := service.Ask(context.Background(), "   ", domain.SearchOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnswerService_Ask_SearchError(t *testing.T) {
	search := &answerMockSearch{err: assert.AnError}
	service := NewAnswerService(search, nil)

	_, err := service.Ask(context.Background(), "anything", domain.SearchOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieve context")
}

func TestAnswerService_Ask_NoResults(t *testing.T) {
	search := &answerMockSearch{results: nil}
	llm := &answerMockLLM{chatResponse: "should never be used"}
	service := NewAnswerService(search, llm)

	result, err := service.Ask(context.Background(), "unknown topic", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Contains(t, result.Answer, "No relevant information found")
	assert.Zero(t, result.Confidence)
	assert.Empty(t, result.Sources)
	assert.Zero(t, result.RetrievedCount)
	// The model must not be consulted without grounding context
	assert.Zero(t, llm.chatCalls)
}

func TestAnswerService_Ask_WithLLM(t *testing.T) {
	search := &answerMockSearch{results: []domain.RetrievalResult{
		retrieved("notes.txt", 0, 0.9, "Paris is the capital of France."),
		retrieved("cities.txt", 1, 0.7, "France borders Spain and Italy."),
	}}
	llm := &answerMockLLM{chatResponse: "  The capital of France is Paris [1].  "}
	service := NewAnswerService(search, llm)

	result, err := service.Ask(context.Background(), "What is the capital of France?", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Equal(t, "The capital of France is Paris [1].", result.Answer)
	assert.Equal(t, 2, result.RetrievedCount)
	assert.Greater(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)

	require.Len(t, result.Sources, 2)
	assert.Equal(t, "notes.txt", result.Sources[0].Filename)
	assert.Equal(t, "cities.txt", result.Sources[1].Filename)

	// Grounding prompt goes in as system, raw question as user
	require.Len(t, llm.lastMessages, 2)
	assert.Equal(t, "system", llm.lastMessages[0].Role)
	assert.Contains(t, llm.lastMessages[0].Content, "Paris is the capital of France.")
	assert.Contains(t, llm.lastMessages[0].Content, "What is the capital of France?")
	assert.Equal(t, "user", llm.lastMessages[1].Role)
	assert.Equal(t, "What is the capital of France?", llm.lastMessages[1].Content)

	assert.Equal(t, defaultAnswerMaxTokens, llm.lastOpts.MaxTokens)
	assert.InDelta(t, defaultAnswerTemperature, llm.lastOpts.Temperature, 1e-9)
}

func TestAnswerService_Ask_LLMFailureFallsBackToExcerpts(t *testing.T) {
	search := &answerMockSearch{results: []domain.RetrievalResult{
		retrieved("notes.txt", 0, 0.9, "Paris is the capital of France."),
	}}
	llm := &answerMockLLM{chatErr: errors.New("connection refused")}
	service := NewAnswerService(search, llm)

	result, err := service.Ask(context.Background(), "capital of France", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Contains(t, result.Answer, "No answer model is available")
	assert.Contains(t, result.Answer, "Paris is the capital of France.")
	assert.Contains(t, result.Answer, "notes.txt")
}

func TestAnswerService_Ask_EmptyModelAnswerFallsBack(t *testing.T) {
	search := &answerMockSearch{results: []domain.RetrievalResult{
		retrieved("notes.txt", 0, 0.9, "Paris is the capital of France."),
	}}
	llm := &answerMockLLM{chatResponse: "   \n  "}
	service := NewAnswerService(search, llm)

	result, err := service.Ask(context.Background(), "capital of France", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Contains(t, result.Answer, "No answer model is available")
}

func TestAnswerService_Ask_NoLLMUsesTemplate(t *testing.T) {
	search := &answerMockSearch{results: []domain.RetrievalResult{
		retrieved("a.txt", 0, 0.9, "first passage"),
		retrieved("b.txt", 0, 0.8, "second passage"),
		retrieved("c.txt", 0, 0.7, "third passage"),
		retrieved("d.txt", 0, 0.6, "fourth passage"),
	}}
	service := NewAnswerService(search, nil)

	result, err := service.Ask(context.Background(), "passages", domain.SearchOptions{})

	require.NoError(t, err)
	// Template quotes the top three excerpts only
	assert.Contains(t, result.Answer, "first passage")
	assert.Contains(t, result.Answer, "second passage")
	assert.Contains(t, result.Answer, "third passage")
	assert.NotContains(t, result.Answer, "fourth passage")
	assert.Equal(t, 4, result.RetrievedCount)
}

func TestAnswerService_Ask_CustomPrompt(t *testing.T) {
	search := &answerMockSearch{results: []domain.RetrievalResult{
		retrieved("notes.txt", 0, 0.9, "the context"),
	}}
	llm := &answerMockLLM{chatResponse: "answer"}
	service := NewAnswerService(search, llm)
	service.SetPromptStore(&answerMockPromptStore{prompts: map[string]string{
		driven.PromptAnswer: "CUSTOM TEMPLATE\n%s\nQ: %s",
	}})

	_, err := service.Ask(context.Background(), "the question", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, llm.lastMessages, 2)
	system := llm.lastMessages[0].Content
	assert.True(t, strings.HasPrefix(system, "CUSTOM TEMPLATE"))
	assert.Contains(t, system, "the context")
	assert.Contains(t, system, "Q: the question")
}

func TestAnswerService_Ask_PromptStoreErrorUsesDefault(t *testing.T) {
	search := &answerMockSearch{results: []domain.RetrievalResult{
		retrieved("notes.txt", 0, 0.9, "the context"),
	}}
	llm := &answerMockLLM{chatResponse: "answer"}
	service := NewAnswerService(search, llm)
	service.SetPromptStore(&answerMockPromptStore{loadErr: assert.AnError})

	_, err := service.Ask(context.Background(), "the question", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, llm.lastMessages, 2)
	assert.Contains(t, llm.lastMessages[0].Content, "ONLY the context")
}

func TestAnswerService_SetGenerationOptions(t *testing.T) {
	search := &answerMockSearch{results: []domain.RetrievalResult{
		retrieved("notes.txt", 0, 0.9, "content"),
	}}
	llm := &answerMockLLM{chatResponse: "answer"}
	service := NewAnswerService(search, llm)
	service.SetGenerationOptions(200, 0.1)

	_, err := service.Ask(context.Background(), "question", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Equal(t, 200, llm.lastOpts.MaxTokens)
	assert.InDelta(t, 0.1, llm.lastOpts.Temperature, 1e-9)
}

func TestAnswerService_SetGenerationOptions_IgnoresNonPositiveTokens(t *testing.T) {
	service := NewAnswerService(&answerMockSearch{}, nil)

	service.SetGenerationOptions(0, 0.5)

	assert.Equal(t, defaultAnswerMaxTokens, service.maxTokens)
	assert.InDelta(t, 0.5, service.temperature, 1e-9)
}

// ==================== Confidence Tests ====================

func TestAnswerService_Confidence_ExactBlend(t *testing.T) {
	service := NewAnswerService(&answerMockSearch{}, nil)

	results := []domain.RetrievalResult{
		retrieved("notes.txt", 0, 1.0, "irrelevant for scoring"),
	}
	answer := "The capital of France is Paris"

	// 0.4*1.0 (relevance) + 0.2*(1/5) (count) + 0.2*(30/500) (length)
	// + 0.2*1.0 (all three query tokens appear in the answer)
	score := service.confidence("capital of France", results, answer)

	assert.InDelta(t, 0.652, score, 1e-9)
}

func TestAnswerService_Confidence_ClampedToOne(t *testing.T) {
	service := NewAnswerService(&answerMockSearch{}, nil)

	// Relevance beyond 1 must not push the blend past the ceiling
	results := []domain.RetrievalResult{
		retrieved("notes.txt", 0, 3.0, "content"),
	}

	score := service.confidence("question", results, strings.Repeat("question ", 80))

	assert.Equal(t, 1.0, score)
}

func TestAnswerService_Confidence_NoQueryTokens(t *testing.T) {
	service := NewAnswerService(&answerMockSearch{}, nil)

	results := []domain.RetrievalResult{
		retrieved("notes.txt", 0, 0.5, "content"),
	}

	// Punctuation-only question tokenises to nothing: the overlap term
	// contributes zero rather than NaN
	score := service.confidence("?!?", results, "some answer")

	assert.False(t, score != score, "score must not be NaN")
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

// ==================== Helper Tests ====================

func TestCollectSources_DedupesByFilename(t *testing.T) {
	results := []domain.RetrievalResult{
		retrieved("a.txt", 0, 0.5, "one"),
		retrieved("b.txt", 1, 0.9, "two"),
		retrieved("a.txt", 2, 0.8, "three"),
	}

	sources := collectSources(results)

	require.Len(t, sources, 2)
	assert.Equal(t, "b.txt", sources[0].Filename)
	assert.InDelta(t, 0.9, sources[0].RelevanceScore, 1e-9)
	assert.Equal(t, 1, sources[0].ChunkIndex)
	// a.txt is attributed to its first-ranked chunk, not a later one
	assert.Equal(t, "a.txt", sources[1].Filename)
	assert.InDelta(t, 0.5, sources[1].RelevanceScore, 1e-9)
	assert.Equal(t, 0, sources[1].ChunkIndex)
}

func TestBuildContext_NumbersBlocks(t *testing.T) {
	results := []domain.RetrievalResult{
		retrieved("a.txt", 0, 0.9, "content one"),
		retrieved("b.txt", 1, 0.8, "content two"),
	}

	rendered := buildContext(results)

	assert.Contains(t, rendered, "[1] content one")
	assert.Contains(t, rendered, "Source [1]: a.txt (part 1/3)")
	assert.Contains(t, rendered, "[2] content two")
	assert.Contains(t, rendered, "Source [2]: b.txt (part 2/3)")
}

func TestTemplateAnswer_QuotesRelevance(t *testing.T) {
	results := []domain.RetrievalResult{
		retrieved("a.txt", 0, 0.87, "  padded content  "),
	}

	answer := templateAnswer(results)

	assert.Contains(t, answer, "a.txt (relevance 0.87)")
	assert.Contains(t, answer, "padded content")
	assert.NotContains(t, answer, "  padded content  ")
}

func TestTokenise(t *testing.T) {
	tokens := tokenise("Hello, World! Go 1.22 go")

	assert.Contains(t, tokens, "hello")
	assert.Contains(t, tokens, "world")
	assert.Contains(t, tokens, "go")
	assert.Contains(t, tokens, "1")
	assert.Contains(t, tokens, "22")
	assert.Len(t, tokens, 5)
}

func TestOverlapRatio(t *testing.T) {
	query := tokenise("capital of france")
	answer := tokenise("the capital is paris, france")

	assert.InDelta(t, 2.0/3.0, overlapRatio(query, answer), 1e-9)
	assert.Zero(t, overlapRatio(tokenise(""), answer))
}
