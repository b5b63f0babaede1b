package driven

import (
	"context"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

// DocumentLoader reads raw documents from the filesystem.
// It enforces the supported file types and the size limit so the
// ingestion service never sees a document it cannot process.
type DocumentLoader interface {
	// Validate checks the path exists and is readable.
	Validate(ctx context.Context, path string) error

	// Load walks the path, a single file or a directory tree, and
	// streams raw documents. Files with unsupported extensions and
	// files over the size limit are reported on the error channel,
	// wrapping domain.ErrUnsupportedType or domain.ErrFileTooLarge,
	// and skipped. Both channels close when the walk finishes.
	Load(ctx context.Context, path string) (<-chan domain.RawDocument, <-chan error)

	// Watch emits change events for supported files under root until
	// the context is cancelled.
	Watch(ctx context.Context, root string) (<-chan domain.RawDocumentChange, <-chan error)
}
