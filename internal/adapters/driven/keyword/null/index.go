// Package null provides a keyword index that indexes nothing and
// matches nothing. Hybrid search treats an empty keyword result set as
// a signal to fuse vector results only, so wiring this implementation
// degrades search to pure vector ranking without any code path changes.
package null

import (
	"context"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.KeywordIndex = (*Index)(nil)

// Index is the no-op keyword index.
type Index struct{}

// NewIndex creates a keyword index that accepts writes and returns no
// matches.
func NewIndex() *Index {
	return &Index{}
}

// Index accepts and discards the chunks.
func (i *Index) Index(_ context.Context, _ []domain.Chunk) error {
	return nil
}

// Delete accepts and ignores the deletion.
func (i *Index) Delete(_ context.Context, _ string) error {
	return nil
}

// Search never matches.
func (i *Index) Search(_ context.Context, _ string, _ int) ([]driven.KeywordHit, error) {
	return nil, nil
}

// Close releases nothing.
func (i *Index) Close() error {
	return nil
}
