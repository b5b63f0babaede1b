package normalisers

import (
	"github.com/tessera-labs/quaero-cli/internal/normalisers/markdown"
	"github.com/tessera-labs/quaero-cli/internal/normalisers/plaintext"
)

// NewDefaultRegistry creates a registry with all built-in normalisers.
// The markdown normaliser takes precedence over the plaintext fallback
// for markdown documents.
func NewDefaultRegistry() *Registry {
	return NewRegistry(
		plaintext.New(),
		markdown.New(),
	)
}
