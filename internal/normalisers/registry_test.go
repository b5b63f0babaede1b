package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
)

// stubNormaliser is a configurable test normaliser.
type stubNormaliser struct {
	name     string
	mimes    []string
	priority int
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.mimes }
func (s *stubNormaliser) Priority() int                { return s.priority }

func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{
		Document: domain.Document{
			ID:      s.name,
			Content: string(raw.Content),
		},
	}, nil
}

func TestRegistry_Normalise_SelectsByMIME(t *testing.T) {
	registry := NewRegistry(
		&stubNormaliser{name: "text", mimes: []string{"text/plain"}, priority: 5},
		&stubNormaliser{name: "md", mimes: []string{"text/markdown"}, priority: 50},
	)

	result, err := registry.Normalise(context.Background(), &domain.RawDocument{
		MIMEType: "text/markdown",
		Content:  []byte("# hi"),
	})
	require.NoError(t, err)
	assert.Equal(t, "md", result.Document.ID)
}

func TestRegistry_Normalise_PriorityWins(t *testing.T) {
	registry := NewRegistry(
		&stubNormaliser{name: "fallback", mimes: []string{"text/markdown"}, priority: 5},
		&stubNormaliser{name: "specific", mimes: []string{"text/markdown"}, priority: 50},
	)

	result, err := registry.Normalise(context.Background(), &domain.RawDocument{
		MIMEType: "text/markdown",
	})
	require.NoError(t, err)
	assert.Equal(t, "specific", result.Document.ID)
}

func TestRegistry_Normalise_TieKeepsRegistrationOrder(t *testing.T) {
	registry := NewRegistry(
		&stubNormaliser{name: "first", mimes: []string{"text/plain"}, priority: 5},
		&stubNormaliser{name: "second", mimes: []string{"text/plain"}, priority: 5},
	)

	result, err := registry.Normalise(context.Background(), &domain.RawDocument{
		MIMEType: "text/plain",
	})
	require.NoError(t, err)
	assert.Equal(t, "first", result.Document.ID)
}

func TestRegistry_Normalise_UnsupportedType(t *testing.T) {
	registry := NewRegistry(
		&stubNormaliser{name: "text", mimes: []string{"text/plain"}, priority: 5},
	)

	_, err := registry.Normalise(context.Background(), &domain.RawDocument{
		MIMEType: "application/pdf",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_Normalise_NilDocument(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Normalise(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_Normalise_MIMEParameters(t *testing.T) {
	registry := NewRegistry(
		&stubNormaliser{name: "text", mimes: []string{"text/plain"}, priority: 5},
	)

	result, err := registry.Normalise(context.Background(), &domain.RawDocument{
		MIMEType: "Text/Plain; charset=utf-8",
	})
	require.NoError(t, err)
	assert.Equal(t, "text", result.Document.ID)
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubNormaliser{name: "text", mimes: []string{"text/plain"}, priority: 5})

	_, err := registry.Normalise(context.Background(), &domain.RawDocument{
		MIMEType: "text/plain",
	})
	require.NoError(t, err)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	registry := NewRegistry(
		&stubNormaliser{name: "a", mimes: []string{"text/plain", "text/markdown"}, priority: 5},
		&stubNormaliser{name: "b", mimes: []string{"text/markdown"}, priority: 50},
	)

	types := registry.SupportedMIMETypes()
	assert.Equal(t, []string{"text/markdown", "text/plain"}, types)
}

func TestNewDefaultRegistry(t *testing.T) {
	registry := NewDefaultRegistry()

	types := registry.SupportedMIMETypes()
	assert.Contains(t, types, "text/plain")
	assert.Contains(t, types, "text/markdown")

	// Markdown routing goes to the format-specific normaliser: heading
	// markers are stripped from the content.
	result, err := registry.Normalise(context.Background(), &domain.RawDocument{
		SourcePath: "/notes/readme.md",
		MIMEType:   "text/markdown",
		Content:    []byte("# Title\n\nBody text."),
	})
	require.NoError(t, err)
	assert.Equal(t, "Title", result.Document.Title)
	assert.NotContains(t, result.Document.Content, "#")
}
