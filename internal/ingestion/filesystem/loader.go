package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
	"github.com/tessera-labs/quaero-cli/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

const bytesPerMB = 1024 * 1024

// mimeTypes maps file extensions to the MIME type handed to the
// normaliser registry. Unknown extensions fall back to text/plain.
var mimeTypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
}

// Loader reads raw documents from the local filesystem.
// It enforces the configured extension allow-list and size limit so the
// ingestion pipeline never sees a file it cannot process.
type Loader struct {
	extensions    map[string]struct{}
	maxFileSizeMB float64
}

// New creates a loader from the ingest settings.
func New(cfg domain.IngestSettings) *Loader {
	extensions := make(map[string]struct{}, len(cfg.SupportedTypes))
	for _, ext := range cfg.SupportedTypes {
		extensions[strings.ToLower(ext)] = struct{}{}
	}
	return &Loader{
		extensions:    extensions,
		maxFileSizeMB: cfg.MaxFileSizeMB,
	}
}

// Validate checks the path exists and is readable.
func (l *Loader) Validate(_ context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s", path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return f.Close()
}

// Load walks the path and streams raw documents. Unsupported and
// oversized files are reported on the error channel and skipped. Both
// channels close when the walk finishes.
func (l *Loader) Load(ctx context.Context, path string) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error)

	go func() {
		defer close(docs)
		defer close(errs)

		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				sendErr(ctx, errs, fmt.Errorf("path does not exist: %s", path))
				return
			}
			sendErr(ctx, errs, fmt.Errorf("stat %s: %w", path, err))
			return
		}

		if !info.IsDir() {
			l.loadOne(ctx, path, docs, errs)
			return
		}

		walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				sendErr(ctx, errs, fmt.Errorf("walk %s: %w", p, err))
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if p != path && hidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			l.loadOne(ctx, p, docs, errs)
			return nil
		})
		if walkErr != nil && !errors.Is(walkErr, context.Canceled) {
			sendErr(ctx, errs, fmt.Errorf("walk %s: %w", path, walkErr))
		}
	}()

	return docs, errs
}

// loadOne validates and reads a single file, sending the document or
// the reason it was skipped.
func (l *Loader) loadOne(ctx context.Context, path string, docs chan<- domain.RawDocument, errs chan<- error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := l.extensions[ext]; !ok {
		sendErr(ctx, errs, fmt.Errorf("%s: extension %q: %w", path, ext, domain.ErrUnsupportedType))
		return
	}

	doc, err := l.read(path)
	if err != nil {
		sendErr(ctx, errs, err)
		return
	}

	select {
	case docs <- doc:
	case <-ctx.Done():
	}
}

// read builds a raw document from a file on disk, enforcing the size
// limit before touching the content.
func (l *Loader) read(path string) (domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("stat %s: %w", path, err)
	}

	sizeMB := float64(info.Size()) / bytesPerMB
	if l.maxFileSizeMB > 0 && sizeMB > l.maxFileSizeMB {
		return domain.RawDocument{}, fmt.Errorf("%s: %.2f MB exceeds %.2f MB limit: %w",
			path, sizeMB, l.maxFileSizeMB, domain.ErrFileTooLarge)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("read %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	return domain.RawDocument{
		SourcePath: absolute(path),
		MIMEType:   mimeTypeFor(ext),
		Content:    content,
		FileSizeMB: sizeMB,
		Metadata: map[string]any{
			"filename":    filepath.Base(path),
			"extension":   strings.TrimPrefix(ext, "."),
			"modified_at": info.ModTime().UTC().Format(time.RFC3339),
		},
	}, nil
}

// Watch emits change events for supported files under root until the
// context is cancelled. The watch is registered before Watch returns,
// so a file created immediately afterwards is already seen.
func (l *Loader) Watch(ctx context.Context, root string) (<-chan domain.RawDocumentChange, <-chan error) {
	changes := make(chan domain.RawDocumentChange)
	errs := make(chan error, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		errs <- fmt.Errorf("create watcher: %w", err)
		close(changes)
		close(errs)
		return changes, errs
	}

	if err := l.watchTree(watcher, root); err != nil {
		watcher.Close() //nolint:errcheck
		errs <- fmt.Errorf("watch %s: %w", root, err)
		close(changes)
		close(errs)
		return changes, errs
	}

	go func() {
		defer close(changes)
		defer close(errs)
		defer watcher.Close() //nolint:errcheck

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				l.handleEvent(ctx, watcher, event, changes)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				sendErr(ctx, errs, fmt.Errorf("watch: %w", err))
			}
		}
	}()

	return changes, errs
}

// watchTree registers the watcher on root and every visible
// subdirectory. fsnotify watches are not recursive.
func (l *Loader) watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && hidden(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

// handleEvent translates one fsnotify event into a document change.
func (l *Loader) handleEvent(
	ctx context.Context,
	watcher *fsnotify.Watcher,
	event fsnotify.Event,
	changes chan<- domain.RawDocumentChange,
) {
	if hidden(filepath.Base(event.Name)) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// New subtree: register it so files created inside are seen.
			if err := l.watchTree(watcher, event.Name); err != nil {
				logger.Debug("Watch new directory %s: %v", event.Name, err)
			}
			return
		}
		l.emitChange(ctx, domain.ChangeCreated, event.Name, changes)

	case event.Op.Has(fsnotify.Write):
		l.emitChange(ctx, domain.ChangeUpdated, event.Name, changes)

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		if !l.supported(event.Name) {
			return
		}
		change := domain.RawDocumentChange{
			Type: domain.ChangeDeleted,
			Document: domain.RawDocument{
				SourcePath: absolute(event.Name),
				Metadata: map[string]any{
					"filename": filepath.Base(event.Name),
				},
			},
		}
		select {
		case changes <- change:
		case <-ctx.Done():
		}
	}
}

// emitChange reads the changed file and sends the event. Unsupported
// files and read failures are dropped quietly; watch mode should not
// turn every editor temp file into an error.
func (l *Loader) emitChange(
	ctx context.Context, typ domain.ChangeType, path string, changes chan<- domain.RawDocumentChange,
) {
	if !l.supported(path) {
		return
	}

	doc, err := l.read(path)
	if err != nil {
		logger.Debug("Watch skipping %s: %v", path, err)
		return
	}

	select {
	case changes <- domain.RawDocumentChange{Type: typ, Document: doc}:
	case <-ctx.Done():
	}
}

// supported reports whether the file's extension is on the allow-list.
func (l *Loader) supported(path string) bool {
	_, ok := l.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func absolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func mimeTypeFor(ext string) string {
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return "text/plain"
}

func sendErr(ctx context.Context, errs chan<- error, err error) {
	select {
	case errs <- err:
	case <-ctx.Done():
	}
}
