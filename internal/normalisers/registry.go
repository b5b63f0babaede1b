package normalisers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry routes raw documents to the highest priority normaliser
// registered for their MIME type. Register all normalisers during
// startup; Register is not safe to call concurrently with Normalise.
type Registry struct {
	normalisers []driven.Normaliser
}

// NewRegistry creates a registry with the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	return &Registry{
		normalisers: normalisers,
	}
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.normalisers = append(r.normalisers, normaliser)
}

// Normalise transforms a raw document using the best matching normaliser.
// Returns domain.ErrUnsupportedType when no normaliser handles the
// document's MIME type.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	normaliser := r.match(raw.MIMEType)
	if normaliser == nil {
		return nil, fmt.Errorf("no normaliser for %q: %w", raw.MIMEType, domain.ErrUnsupportedType)
	}

	return normaliser.Normalise(ctx, raw)
}

// SupportedMIMETypes returns all MIME types that can be normalised,
// sorted and deduplicated.
func (r *Registry) SupportedMIMETypes() []string {
	seen := make(map[string]bool)
	var types []string
	for _, n := range r.normalisers {
		for _, mt := range n.SupportedMIMETypes() {
			if !seen[mt] {
				seen[mt] = true
				types = append(types, mt)
			}
		}
	}
	sort.Strings(types)
	return types
}

// match returns the highest priority normaliser supporting the MIME
// type, or nil when none does. Ties go to the earliest registered.
func (r *Registry) match(mimeType string) driven.Normaliser {
	mimeType = canonicalMIME(mimeType)

	var best driven.Normaliser
	for _, n := range r.normalisers {
		if !supports(n, mimeType) {
			continue
		}
		if best == nil || n.Priority() > best.Priority() {
			best = n
		}
	}
	return best
}

// supports reports whether the normaliser lists the MIME type.
func supports(n driven.Normaliser, mimeType string) bool {
	for _, mt := range n.SupportedMIMETypes() {
		if mt == mimeType {
			return true
		}
	}
	return false
}

// canonicalMIME lower-cases a MIME type and drops parameters such as
// "; charset=utf-8".
func canonicalMIME(mimeType string) string {
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
