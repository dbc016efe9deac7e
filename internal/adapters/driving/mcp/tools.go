package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docsearch-mcp/internal/core/domain"
	"github.com/custodia-labs/docsearch-mcp/internal/core/ports/driving"
)

// Bounds enforced at the protocol boundary; the core trusts its inputs.
const (
	defaultTopK     = 10
	maxTopK         = 50
	defaultMinScore = 0.1
)

// SearchDocsInput is the input schema for the searchDocs tool.
type SearchDocsInput struct {
	Query    string  `json:"query" jsonschema:"the text to search the documentation for"`
	TopK     int     `json:"topK,omitempty" jsonschema:"maximum number of results, 1-50 (default 10)"`
	MinScore float64 `json:"minScore,omitempty" jsonschema:"minimum similarity score, 0-1 (default 0.1)"`
}

// SearchDocsOutput is the structured output of the searchDocs tool.
type SearchDocsOutput struct {
	Results []SearchDocsResult `json:"results"`
	Count   int                `json:"count"`
}

// SearchDocsResult is a single ranked hit.
type SearchDocsResult struct {
	Rank     int     `json:"rank"`
	Score    float64 `json:"score"`
	PageName string  `json:"pageName"`
	Href     string  `json:"href"`
	Content  string  `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "searchDocs",
		Description: "Search the indexed documentation by semantic similarity",
	}, s.handleSearchDocs)
}

// handleSearchDocs handles the searchDocs tool invocation.
//
// Core failures are rendered as an error message inside a well-formed
// result envelope rather than propagated as protocol errors, so the
// calling client always receives a response it can display.
func (s *Server) handleSearchDocs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchDocsInput,
) (*mcp.CallToolResult, SearchDocsOutput, error) {
	topK := input.TopK
	if topK == 0 {
		topK = defaultTopK
	}
	if topK < 1 || topK > maxTopK {
		return errorResult(fmt.Sprintf("topK must be between 1 and %d", maxTopK)), SearchDocsOutput{}, nil
	}

	minScore := input.MinScore
	if minScore == 0 {
		minScore = defaultMinScore
	}
	if minScore < 0 || minScore > 1 {
		return errorResult("minScore must be between 0 and 1"), SearchDocsOutput{}, nil
	}

	results, err := s.ports.Search.Search(ctx, input.Query, driving.SearchOptions{
		TopK:     topK,
		MinScore: minScore,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("Search failed: %v", err)), SearchDocsOutput{}, nil
	}

	output := SearchDocsOutput{
		Results: make([]SearchDocsResult, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchDocsResult{
			Rank:     i + 1,
			Score:    results[i].Score,
			PageName: results[i].Chunk.PageName,
			Href:     results[i].Chunk.Href,
			Content:  results[i].Chunk.FullContent,
		}
	}

	text := renderResults(input.Query, minScore, results)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, output, nil
}

// renderResults produces the human-readable ranked rendering.
func renderResults(query string, minScore float64, results []domain.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for %q (minScore %.2f). Try a different query or a lower minScore.", query, minScore)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d result(s) for %q:\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. [%.3f] %s\n", i+1, r.Score, r.Chunk.PageName)
		fmt.Fprintf(&b, "   Source: %s\n", r.Chunk.Href)
		fmt.Fprintf(&b, "   %s\n", r.Chunk.FullContent)
	}
	return b.String()
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}
