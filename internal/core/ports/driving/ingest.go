package driving

import (
	"context"
	"time"
)

// IngestOrchestrator coordinates document ingestion from the filesystem.
type IngestOrchestrator interface {
	// Ingest processes the path, a single file or a directory tree,
	// through the full pipeline: load, normalise, chunk, classify,
	// embed, index. Re-ingesting a known source path replaces the
	// previous version. Skipped files are counted, not fatal.
	Ingest(ctx context.Context, path string) (*IngestReport, error)

	// Watch ingests the root, then keeps it synchronised as files
	// change. Blocks until the context is cancelled.
	Watch(ctx context.Context, root string) error

	// Reset removes every document, chunk, vector and the strategy
	// manifest. The next ingest starts from a clean slate.
	Reset(ctx context.Context) error
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// DocumentsIngested is the count of new documents indexed.
	DocumentsIngested int

	// DocumentsUpdated is the count of re-ingested documents replaced.
	DocumentsUpdated int

	// ChunksIndexed is the total chunks written to the indexes.
	ChunksIndexed int

	// FilesSkipped counts unsupported or oversized files.
	FilesSkipped int

	// Errors lists per-file failures that did not abort the run.
	Errors []string

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}
