package driven

import (
	"context"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

// SearchHistoryStore persists executed queries for the history command.
type SearchHistoryStore interface {
	// Record appends a search to the history.
	Record(ctx context.Context, rec domain.SearchRecord) error

	// List returns the most recent searches, newest first.
	List(ctx context.Context, limit int) ([]domain.SearchRecord, error)

	// Count returns the number of stored history entries.
	Count(ctx context.Context) (int, error)

	// Clear removes all history entries.
	Clear(ctx context.Context) error
}
