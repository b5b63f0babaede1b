package cli

import (
	"context"
	"time"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driving"
)

// setupTestServices installs mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	oldSearch := searchService
	oldAnswer := answerService
	oldIngest := ingestService
	oldLibrary := libraryService
	oldHistory := historyService
	oldSettings := settingsService
	oldConfigure := configureChunking

	searchService = &mockSearchService{results: testResults()}
	answerService = &mockAnswerService{answer: testAnswer()}
	ingestService = &mockIngestService{report: &driving.IngestReport{
		DocumentsIngested: 2,
		ChunksIndexed:     7,
		Elapsed:           120 * time.Millisecond,
	}}
	libraryService = &mockLibraryService{
		documents: []domain.Document{testDocument()},
		document:  ptrDocument(testDocument()),
		details:   testDetails(),
		stats: &driving.LibraryStats{
			Documents: 1,
			Chunks:    3,
			Index:     domain.IndexStats{RecordCount: 3, Dimension: 384, Strategy: "hashing"},
			History:   2,
		},
		deleted: true,
	}
	historyService = &mockHistoryService{records: []domain.SearchRecord{
		{ID: 1, Query: "test query", Mode: domain.SearchModeHybrid, ResultCount: 3, SearchedAt: time.Now().Unix()},
	}}
	settingsService = &mockSettingsService{settings: domain.DefaultAppSettings()}
	configureChunking = func(_, _ int) error { return nil }

	return func() {
		searchService = oldSearch
		answerService = oldAnswer
		ingestService = oldIngest
		libraryService = oldLibrary
		historyService = oldHistory
		settingsService = oldSettings
		configureChunking = oldConfigure
	}
}

func testDocument() domain.Document {
	return domain.Document{
		ID:         "doc-1",
		SourcePath: "/tmp/notes/alpha.md",
		Filename:   "alpha.md",
		Title:      "alpha",
		Content:    "Alpha document content for testing.",
		FileType:   "md",
		FileSizeMB: 0.01,
	}
}

func ptrDocument(d domain.Document) *domain.Document { return &d }

func testDetails() *driving.DocumentDetails {
	return &driving.DocumentDetails{
		ID:         "doc-1",
		Filename:   "alpha.md",
		SourcePath: "/tmp/notes/alpha.md",
		Title:      "alpha",
		FileType:   "md",
		FileSizeMB: 0.01,
		ChunkCount: 3,
		Category:   domain.CategoryReference,
	}
}

func testResults() []domain.RetrievalResult {
	return []domain.RetrievalResult{
		{
			Chunk: domain.Chunk{
				ID:      "chunk-1",
				Content: "Alpha chunk content.",
				Metadata: domain.ChunkMetadata{
					Filename:   "alpha.md",
					ChunkIndex: 0,
					ChunkCount: 3,
					Category:   domain.CategoryReference,
					Summary:    "Alpha chunk content.",
				},
			},
			RelevanceScore: 0.82,
			CombinedScore:  0.57,
		},
	}
}

func testAnswer() *domain.AnswerResult {
	return &domain.AnswerResult{
		Answer:     "Alpha is documented in alpha.md [source: alpha.md].",
		Confidence: 0.74,
		Sources: []domain.AnswerSource{
			{Filename: "alpha.md", RelevanceScore: 0.82, ChunkIndex: 0},
		},
		RetrievedCount: 1,
	}
}

// Mock driving ports.

type mockSearchService struct {
	results  []domain.RetrievalResult
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context, _ string, opts domain.SearchOptions,
) ([]domain.RetrievalResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

type mockAnswerService struct {
	answer   *domain.AnswerResult
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockAnswerService) Ask(
	_ context.Context, _ string, opts domain.SearchOptions,
) (*domain.AnswerResult, error) {
	m.lastOpts = opts
	return m.answer, m.err
}

type mockIngestService struct {
	report    *driving.IngestReport
	err       error
	lastPath  string
	resetDone bool
}

func (m *mockIngestService) Ingest(_ context.Context, path string) (*driving.IngestReport, error) {
	m.lastPath = path
	return m.report, m.err
}

func (m *mockIngestService) Watch(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockIngestService) Reset(_ context.Context) error {
	m.resetDone = true
	return m.err
}

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

type mockHistoryService struct {
	records []domain.SearchRecord
	err     error
	cleared bool
}

func (m *mockHistoryService) List(_ context.Context, _ int) ([]domain.SearchRecord, error) {
	return m.records, m.err
}

func (m *mockHistoryService) Clear(_ context.Context) error {
	m.cleared = true
	return m.err
}

type mockSettingsService struct {
	settings    domain.AppSettings
	err         error
	savedMode   domain.SearchMode
	savedVector float64
	savedKw     float64
	savedChunk  int
	savedOver   int
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return m.err
}

func (m *mockSettingsService) SetSearchMode(mode domain.SearchMode) error {
	m.savedMode = mode
	return m.err
}

func (m *mockSettingsService) SetSearchWeights(vector, keyword float64) error {
	m.savedVector = vector
	m.savedKw = keyword
	return m.err
}

func (m *mockSettingsService) SetChunking(chunkSize, overlap int) error {
	m.savedChunk = chunkSize
	m.savedOver = overlap
	return m.err
}

func (m *mockSettingsService) SetOpenAIKey(_ string) error { return m.err }

func (m *mockSettingsService) SetLLMProvider(_ domain.AIProvider, _, _ string) error {
	return m.err
}

func (m *mockSettingsService) Validate() error { return m.err }

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateLLMConfig() error { return m.err }
