package mcp

import (
	"context"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results   []domain.RetrievalResult
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.RetrievalResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer       *domain.AnswerResult
	err          error
	lastQuestion string
}

func (m *mockAnswerService) Ask(
	_ context.Context,
	question string,
	_ domain.SearchOptions,
) (*domain.AnswerResult, error) {
	m.lastQuestion = question
	return m.answer, m.err
}

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	documents []domain.Document
	document  *domain.Document
	details   *driving.DocumentDetails
	stats     *driving.LibraryStats
	deleted   bool
	err       error
}

func (m *mockLibraryService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockLibraryService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockLibraryService) GetDetails(_ context.Context, _ string) (*driving.DocumentDetails, error) {
	return m.details, m.err
}

func (m *mockLibraryService) Delete(_ context.Context, _ string) (bool, error) {
	return m.deleted, m.err
}

func (m *mockLibraryService) Stats(_ context.Context) (*driving.LibraryStats, error) {
	return m.stats, m.err
}
