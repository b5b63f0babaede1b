package driving

import (
	"context"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

// SearchService provides retrieval capabilities to external actors.
type SearchService interface {
	// Search retrieves the chunks most relevant to the query.
	// The mode in opts selects hybrid fusion or pure semantic ranking.
	// Executed searches are recorded in the history.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.RetrievalResult, error)
}
