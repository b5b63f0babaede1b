package driven

import (
	"context"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

// IndexManifestStore persists the embedding strategy manifest.
// The manifest is written on first ingest and read at startup to pin
// the resolved strategy to the one the stored vectors were built with.
type IndexManifestStore interface {
	// Get retrieves the manifest.
	// Returns domain.ErrNotFound before the first ingest.
	Get(ctx context.Context) (*domain.IndexManifest, error)

	// Save stores or replaces the manifest.
	Save(ctx context.Context, manifest domain.IndexManifest) error

	// Clear removes the manifest. Used when the library is reset.
	Clear(ctx context.Context) error
}
