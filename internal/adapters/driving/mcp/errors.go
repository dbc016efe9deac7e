// Package mcp provides an MCP (Model Context Protocol) server adapter for
// docsearch. It exposes documentation search to AI assistants through the
// searchDocs tool.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
