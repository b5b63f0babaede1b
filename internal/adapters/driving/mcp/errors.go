// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Quaero. It lets AI assistants search the local index, ask grounded
// questions and inspect the document library.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
