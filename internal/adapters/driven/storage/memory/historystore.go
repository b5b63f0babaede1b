package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
)

// Ensure SearchHistoryStore implements the interface.
var _ driven.SearchHistoryStore = (*SearchHistoryStore)(nil)

// SearchHistoryStore is an in-memory implementation of driven.SearchHistoryStore.
type SearchHistoryStore struct {
	mu      sync.RWMutex
	records []domain.SearchRecord
	nextID  int64
}

// NewSearchHistoryStore creates a new in-memory search history store.
func NewSearchHistoryStore() *SearchHistoryStore {
	return &SearchHistoryStore{}
}

// Record appends a search to the history. The timestamp is filled when unset.
func (s *SearchHistoryStore) Record(_ context.Context, rec domain.SearchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec.ID = s.nextID
	if rec.SearchedAt == 0 {
		rec.SearchedAt = time.Now().Unix()
	}
	s.records = append(s.records, rec)
	return nil
}

// List returns the most recent searches, newest first.
func (s *SearchHistoryStore) List(_ context.Context, limit int) ([]domain.SearchRecord, error) {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.SearchRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, s.records[i])
	}
	return result, nil
}

// Count returns the number of recorded searches.
func (s *SearchHistoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Clear removes all recorded searches.
func (s *SearchHistoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}
