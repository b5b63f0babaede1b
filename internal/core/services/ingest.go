package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driving"
	"github.com/tessera-labs/quaero-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestOrchestrator = (*IngestService)(nil)

const (
	// embedBatchSize bounds how many chunk texts go into one EmbedBatch call.
	embedBatchSize = 32

	// defaultEmbedWorkers bounds concurrent embedding batches when no
	// worker count is configured.
	defaultEmbedWorkers = 4
)

// ingestOutcome reports what processing one document did.
type ingestOutcome int

const (
	outcomeIngested ingestOutcome = iota
	outcomeUpdated
	outcomeUnchanged
)

// IngestService coordinates document ingestion: load, normalise, chunk,
// classify, embed, index.
type IngestService struct {
	loader       driven.DocumentLoader
	registry     driven.NormaliserRegistry
	pipeline     driven.PostProcessorPipeline
	embedder     driven.EmbeddingService
	docStore     driven.DocumentStore
	keywordIndex driven.KeywordIndex
	vectorIndex  driven.VectorIndex
	manifests    driven.IndexManifestStore

	// workers is a buffered-channel semaphore bounding concurrent
	// embedding batches across all ingestion runs.
	workers chan struct{}
}

// NewIngestService creates a new ingestion orchestrator.
// The keywordIndex is optional - if nil, keyword indexing is skipped and
// hybrid search degrades to vector-only fusion.
func NewIngestService(
	loader driven.DocumentLoader,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	docStore driven.DocumentStore,
	keywordIndex driven.KeywordIndex,
	vectorIndex driven.VectorIndex,
	manifests driven.IndexManifestStore,
	workerCount int,
) *IngestService {
	if workerCount <= 0 {
		workerCount = defaultEmbedWorkers
	}
	return &IngestService{
		loader:       loader,
		registry:     registry,
		pipeline:     pipeline,
		embedder:     embedder,
		docStore:     docStore,
		keywordIndex: keywordIndex,
		vectorIndex:  vectorIndex,
		manifests:    manifests,
		workers:      make(chan struct{}, workerCount),
	}
}

// SetPipeline replaces the post-processing pipeline. Used when chunking
// configuration changes after construction.
func (s *IngestService) SetPipeline(pipeline driven.PostProcessorPipeline) {
	s.pipeline = pipeline
}

// Ingest processes the path, a single file or a directory tree, through
// the full pipeline. Unsupported and oversized files are counted as
// skipped; per-file failures are collected, not fatal.
func (s *IngestService) Ingest(ctx context.Context, path string) (*driving.IngestReport, error) {
	start := time.Now()

	if err := s.loader.Validate(ctx, path); err != nil {
		return nil, fmt.Errorf("validate path: %w", err)
	}

	logger.Section("Ingest")
	logger.Info("Ingesting %s", path)

	report := &driving.IngestReport{}
	docsCh, errsCh := s.loader.Load(ctx, path)

	if err := s.consume(ctx, docsCh, errsCh, report); err != nil {
		return nil, err
	}

	if report.ChunksIndexed > 0 {
		if err := s.writeManifest(ctx); err != nil {
			return nil, err
		}
	}

	report.Elapsed = time.Since(start)
	logger.Info("Ingest complete: %d new, %d updated, %d chunks, %d skipped, %d errors",
		report.DocumentsIngested, report.DocumentsUpdated,
		report.ChunksIndexed, report.FilesSkipped, len(report.Errors))
	return report, nil
}

// Watch ingests the root, then keeps the index synchronised as files
// change. Blocks until the context is cancelled.
func (s *IngestService) Watch(ctx context.Context, root string) error {
	report, err := s.Ingest(ctx, root)
	if err != nil {
		return fmt.Errorf("initial ingest: %w", err)
	}

	logger.Info("Watching %s (%d documents indexed)",
		root, report.DocumentsIngested+report.DocumentsUpdated)

	changesCh, errsCh := s.loader.Watch(ctx, root)

	for changesCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			// Cancellation is the normal shutdown path for watch mode.
			return nil

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if isSkippable(err) {
				logger.Debug("Skipping: %v", err)
				continue
			}
			logger.Warn("Watch error: %v", err)

		case change, ok := <-changesCh:
			if !ok {
				changesCh = nil
				continue
			}
			s.applyChange(ctx, &change)
		}
	}
	return nil
}

// Reset removes every document, chunk, vector and the strategy manifest.
// The next ingest starts from a clean slate.
func (s *IngestService) Reset(ctx context.Context) error {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	for i := range docs {
		if err := s.removeDocument(ctx, &docs[i]); err != nil {
			return fmt.Errorf("remove %s: %w", docs[i].Filename, err)
		}
	}

	if err := s.manifests.Clear(ctx); err != nil {
		return fmt.Errorf("clear manifest: %w", err)
	}

	logger.Info("Library reset: %d documents removed", len(docs))
	return nil
}

// consume drains the loader channels, processing each raw document as
// it arrives. It returns when both channels are closed so no trailing
// skip reports are lost.
func (s *IngestService) consume(
	ctx context.Context,
	docsCh <-chan domain.RawDocument,
	errsCh <-chan error,
	report *driving.IngestReport,
) error {
	for docsCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if isSkippable(err) {
				report.FilesSkipped++
				logger.Debug("Skipping: %v", err)
				continue
			}
			report.Errors = append(report.Errors, err.Error())
			logger.Warn("Load error: %v", err)

		case raw, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}

			logger.Debug("Processing: %s", raw.SourcePath)
			outcome, chunks, err := s.processOne(ctx, &raw)
			if err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", raw.SourcePath, err))
				logger.Warn("Failed to process %s: %v", raw.SourcePath, err)
				continue
			}

			switch outcome {
			case outcomeIngested:
				report.DocumentsIngested++
			case outcomeUpdated:
				report.DocumentsUpdated++
			case outcomeUnchanged:
				report.FilesSkipped++
			}
			report.ChunksIndexed += chunks
		}
	}
	return nil
}

// processOne runs one raw document through the pipeline: normalise,
// chunk, classify, embed, store, index. Re-ingesting a known source
// path with identical content is a no-op; with changed content it
// replaces the previous version under the same document identity.
func (s *IngestService) processOne(ctx context.Context, raw *domain.RawDocument) (ingestOutcome, int, error) {
	outcome := outcomeIngested

	// 1. NORMALISE (produces a Document with Content)
	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return outcome, 0, fmt.Errorf("normalise: %w", err)
	}
	doc := result.Document

	// 2. LOOK UP PREVIOUS VERSION of the same source path
	existing, err := s.docStore.GetDocumentBySourcePath(ctx, doc.SourcePath)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return outcome, 0, fmt.Errorf("look up source path: %w", err)
	}
	if existing != nil {
		if domain.HashContent(doc.Content) == domain.HashContent(existing.Content) {
			logger.Debug("Unchanged: %s", doc.Filename)
			return outcomeUnchanged, 0, nil
		}
		// Content changed: remove the old version but keep its identity.
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
		if err := s.removeDocument(ctx, existing); err != nil {
			return outcome, 0, err
		}
		outcome = outcomeUpdated
	}

	// 3. RUN POST-PROCESSOR PIPELINE (chunker then classifier)
	chunks, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		return outcome, 0, fmt.Errorf("post-process: %w", err)
	}
	chunks = dedupeChunks(chunks)

	// 4. GENERATE EMBEDDINGS through the bounded worker pool
	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return outcome, 0, fmt.Errorf("embed: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	// 5. SAVE TO DOCUMENT STORE
	if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
		return outcome, 0, fmt.Errorf("save document: %w", err)
	}
	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		return outcome, 0, fmt.Errorf("save chunks: %w", err)
	}

	// 6. INDEX FOR KEYWORD SEARCH (optional engine)
	if s.keywordIndex != nil {
		if err := s.keywordIndex.Index(ctx, chunks); err != nil {
			return outcome, 0, fmt.Errorf("keyword index: %w", err)
		}
	}

	// 7. INDEX FOR VECTOR SEARCH
	if err := s.vectorIndex.Add(ctx, chunks, vectors); err != nil {
		return outcome, 0, fmt.Errorf("vector index: %w", err)
	}

	return outcome, len(chunks), nil
}

// embedChunks generates embeddings for all chunks in batches. Batches
// run concurrently, bounded by the worker semaphore; each writes to a
// disjoint range of the result slice.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	vectors := make([][]float32, len(texts))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			select {
			case s.workers <- struct{}{}:
			case <-ctx.Done():
				mu.Lock()
				if firstErr == nil {
					firstErr = ctx.Err()
				}
				mu.Unlock()
				return
			}
			defer func() { <-s.workers }()

			batch, err := s.embedder.EmbedBatch(ctx, texts[start:end])
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			copy(vectors[start:end], batch)
		}(start, end)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// applyChange handles one filesystem change event in watch mode.
func (s *IngestService) applyChange(ctx context.Context, change *domain.RawDocumentChange) {
	switch change.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		logger.Debug("Change: %s", change.Document.SourcePath)
		outcome, chunks, err := s.processOne(ctx, &change.Document)
		if err != nil {
			logger.Warn("Failed to process %s: %v", change.Document.SourcePath, err)
			return
		}
		switch outcome {
		case outcomeIngested:
			logger.Info("Indexed %s (%d chunks)", change.Document.SourcePath, chunks)
		case outcomeUpdated:
			logger.Info("Updated %s (%d chunks)", change.Document.SourcePath, chunks)
		case outcomeUnchanged:
			logger.Debug("Unchanged: %s", change.Document.SourcePath)
		}
		if chunks > 0 {
			if err := s.writeManifest(ctx); err != nil {
				logger.Warn("Failed to write manifest: %v", err)
			}
		}

	case domain.ChangeDeleted:
		logger.Debug("Deleting: %s", change.Document.SourcePath)
		if err := s.deleteBySourcePath(ctx, change.Document.SourcePath); err != nil {
			logger.Warn("Failed to delete %s: %v", change.Document.SourcePath, err)
		}
	}
}

// deleteBySourcePath removes the document for a source path, if any.
func (s *IngestService) deleteBySourcePath(ctx context.Context, sourcePath string) error {
	doc, err := s.docStore.GetDocumentBySourcePath(ctx, sourcePath)
	if errors.Is(err, domain.ErrNotFound) {
		return nil // Already gone
	}
	if err != nil {
		return fmt.Errorf("look up source path: %w", err)
	}
	return s.removeDocument(ctx, doc)
}

// removeDocument removes a document's chunks from every index and then
// the document itself from the store.
func (s *IngestService) removeDocument(ctx context.Context, doc *domain.Document) error {
	chunks, err := s.docStore.GetChunks(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("get chunks: %w", err)
	}

	if _, err := s.vectorIndex.Delete(ctx, domain.MetadataFilter{"source_path": doc.SourcePath}); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}

	if s.keywordIndex != nil {
		for i := range chunks {
			if err := s.keywordIndex.Delete(ctx, chunks[i].Metadata.ContentHash); err != nil {
				logger.Debug("Failed to delete keyword entry %s: %v", chunks[i].Metadata.ContentHash, err)
			}
		}
	}

	if err := s.docStore.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// writeManifest pins the embedding strategy the index is built with.
// The first ingest writes it; later runs refresh it only when the
// resolved strategy changed.
func (s *IngestService) writeManifest(ctx context.Context) error {
	current, err := s.manifests.Get(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get manifest: %w", err)
	}
	if current != nil &&
		current.Strategy == s.embedder.Strategy() &&
		current.Dimension == s.embedder.Dimensions() {
		return nil
	}

	manifest := domain.IndexManifest{
		Strategy:  s.embedder.Strategy(),
		Dimension: s.embedder.Dimensions(),
		UpdatedAt: time.Now(),
	}
	if err := s.manifests.Save(ctx, manifest); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}

	logger.Debug("Index manifest pinned to %s (%d dimensions)", manifest.Strategy, manifest.Dimension)
	return nil
}

// dedupeChunks drops chunks whose content hash duplicates an earlier
// chunk in the same document. Both search indexes key on the content
// hash, so duplicate windows would collide there. Survivors are
// renumbered so ChunkIndex stays gapless and ChunkCount reflects what
// is actually stored.
func dedupeChunks(chunks []domain.Chunk) []domain.Chunk {
	if len(chunks) < 2 {
		return chunks
	}

	seen := make(map[string]struct{}, len(chunks))
	out := chunks[:0]
	for _, chunk := range chunks {
		hash := chunk.Metadata.ContentHash
		if _, dup := seen[hash]; dup {
			logger.Debug("Duplicate chunk content in %s (index %d)", chunk.Metadata.Filename, chunk.Metadata.ChunkIndex)
			continue
		}
		seen[hash] = struct{}{}
		out = append(out, chunk)
	}

	if len(out) < len(chunks) {
		for i := range out {
			out[i].Metadata.ChunkIndex = i
			out[i].Metadata.ChunkCount = len(out)
		}
	}
	return out
}

// isSkippable reports whether a loader error means the file was
// deliberately not ingested rather than failed.
func isSkippable(err error) bool {
	return errors.Is(err, domain.ErrUnsupportedType) || errors.Is(err, domain.ErrFileTooLarge)
}
