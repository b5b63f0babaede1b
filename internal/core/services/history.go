package services

import (
	"context"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService exposes the search history.
type HistoryService struct {
	store driven.SearchHistoryStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(store driven.SearchHistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns the most recent searches, newest first.
// A non-positive limit falls back to the default.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.SearchRecord, error) {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	return s.store.List(ctx, limit)
}

// Clear removes all history entries.
func (s *HistoryService) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
