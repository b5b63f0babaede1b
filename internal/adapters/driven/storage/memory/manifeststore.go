package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
)

// Ensure IndexManifestStore implements the interface.
var _ driven.IndexManifestStore = (*IndexManifestStore)(nil)

// IndexManifestStore is an in-memory implementation of driven.IndexManifestStore.
// It holds at most one manifest, like the single-row SQLite table.
type IndexManifestStore struct {
	mu       sync.RWMutex
	manifest *domain.IndexManifest
}

// NewIndexManifestStore creates a new in-memory index manifest store.
func NewIndexManifestStore() *IndexManifestStore {
	return &IndexManifestStore{}
}

// Get returns the stored manifest, or domain.ErrNotFound before the first save.
func (s *IndexManifestStore) Get(_ context.Context) (*domain.IndexManifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.manifest == nil {
		return nil, domain.ErrNotFound
	}
	manifest := *s.manifest
	return &manifest, nil
}

// Save stores the manifest, replacing any previous one.
func (s *IndexManifestStore) Save(_ context.Context, manifest domain.IndexManifest) error {
	if manifest.UpdatedAt.IsZero() {
		manifest.UpdatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest = &manifest
	return nil
}

// Clear removes the stored manifest.
func (s *IndexManifestStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest = nil
	return nil
}
