package mcp

import (
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides retrieval capabilities.
	Search driving.SearchService

	// Answer generates grounded answers.
	Answer driving.AnswerService

	// Library manages the indexed document collection.
	Library driving.LibraryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Answer and Library are optional; their tools and resources report
	// when they are absent.
	return nil
}
