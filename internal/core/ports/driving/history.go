package driving

import (
	"context"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

// HistoryService exposes the search history.
type HistoryService interface {
	// List returns the most recent searches, newest first.
	List(ctx context.Context, limit int) ([]domain.SearchRecord, error)

	// Clear removes all history entries.
	Clear(ctx context.Context) error
}
