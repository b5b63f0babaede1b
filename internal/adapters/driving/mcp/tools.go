package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find relevant passages"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (defaults to the configured top-k)"`
	Mode  string `json:"mode,omitempty" jsonschema:"search mode: hybrid or semantic (default hybrid)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved chunk.
type SearchResultOutput struct {
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	ChunkCount int     `json:"chunk_count"`
	Relevance  float64 `json:"relevance"`
	Score      float64 `json:"score"`
	Category   string  `json:"category,omitempty"`
	Content    string  `json:"content"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of context chunks to retrieve"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer         string            `json:"answer"`
	Confidence     float64           `json:"confidence"`
	Sources        []AskSourceOutput `json:"sources"`
	RetrievedCount int               `json:"retrieved_count"`
}

// AskSourceOutput identifies one cited document.
type AskSourceOutput struct {
	Filename  string  `json:"filename"`
	Relevance float64 `json:"relevance"`
}

// StatsInput is the (empty) input schema for the stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	Documents      int    `json:"documents"`
	Chunks         int    `json:"chunks"`
	IndexRecords   int    `json:"index_records"`
	IndexDimension int    `json:"index_dimension"`
	Strategy       string `json:"strategy,omitempty"`
	History        int    `json:"history"`
	LLMConfigured  bool   `json:"llm_configured"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the indexed documents for relevant passages",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed documents, with sources and a confidence score",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Report index statistics: document, chunk and vector counts",
	}, s.handleStats)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		Limit: input.Limit,
		Mode:  domain.SearchMode(input.Mode),
	}

	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		meta := results[i].Chunk.Metadata
		output.Results[i] = SearchResultOutput{
			Filename:   meta.Filename,
			ChunkIndex: meta.ChunkIndex,
			ChunkCount: meta.ChunkCount,
			Relevance:  results[i].RelevanceScore,
			Score:      results[i].CombinedScore,
			Category:   string(meta.Category),
			Content:    results[i].Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Answer == nil {
		return nil, AskOutput{}, errors.New("answer service is not configured")
	}

	opts := domain.SearchOptions{Limit: input.Limit}
	answer, err := s.ports.Answer.Ask(ctx, input.Question, opts)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:         answer.Answer,
		Confidence:     answer.Confidence,
		Sources:        make([]AskSourceOutput, len(answer.Sources)),
		RetrievedCount: answer.RetrievedCount,
	}
	for i, src := range answer.Sources {
		output.Sources[i] = AskSourceOutput{
			Filename:  src.Filename,
			Relevance: src.RelevanceScore,
		}
	}

	return nil, output, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	if s.ports.Library == nil {
		return nil, StatsOutput{}, errors.New("library service is not configured")
	}

	stats, err := s.ports.Library.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}

	output := StatsOutput{
		Documents:      stats.Documents,
		Chunks:         stats.Chunks,
		IndexRecords:   stats.Index.RecordCount,
		IndexDimension: stats.Index.Dimension,
		Strategy:       stats.Strategy.String(),
		History:        stats.History,
		LLMConfigured:  stats.LLMConfigured,
	}

	return nil, output, nil
}
