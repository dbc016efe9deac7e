package mcp

import (
	"github.com/custodia-labs/docsearch-mcp/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search answers similarity queries over the loaded corpus.
	Search driving.SearchService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
