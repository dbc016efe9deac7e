package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsearch-mcp/internal/core/domain"
	"github.com/custodia-labs/docsearch-mcp/internal/core/ports/driving"
)

// mockSearchService is a hand-rolled driving.SearchService double.
type mockSearchService struct {
	results  []domain.SearchResult
	err      error
	lastOpts driving.SearchOptions
	lastQry  string
}

func (m *mockSearchService) Search(_ context.Context, query string, opts driving.SearchOptions) ([]domain.SearchResult, error) {
	m.lastQry = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockSearchService) Reload(context.Context) error { return nil }

func (m *mockSearchService) Stats() domain.EngineStats {
	return domain.EngineStats{TotalChunks: len(m.results), IsLoaded: true}
}

func result(id, pageName, href, content string, score float64) domain.SearchResult {
	return domain.SearchResult{
		Chunk: domain.EmbeddedChunk{
			Chunk: domain.Chunk{
				ID:          id,
				PageName:    pageName,
				Href:        href,
				FullContent: content,
			},
			Embedding: []float32{1},
		},
		Score: score,
	}
}

func newTestServer(t *testing.T, search *mockSearchService) *Server {
	t.Helper()
	srv, err := NewServer(&Ports{Search: search})
	require.NoError(t, err)
	return srv
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleSearchDocs_DefaultsApplied(t *testing.T) {
	search := &mockSearchService{}
	srv := newTestServer(t, search)

	res, _, err := srv.handleSearchDocs(context.Background(), nil, SearchDocsInput{Query: "install"})

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "install", search.lastQry)
	assert.Equal(t, 10, search.lastOpts.TopK)
	assert.InDelta(t, 0.1, search.lastOpts.MinScore, 1e-12)
}

func TestHandleSearchDocs_ExplicitOptions(t *testing.T) {
	search := &mockSearchService{}
	srv := newTestServer(t, search)

	_, _, err := srv.handleSearchDocs(context.Background(), nil, SearchDocsInput{
		Query:    "install",
		TopK:     3,
		MinScore: 0.42,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, search.lastOpts.TopK)
	assert.InDelta(t, 0.42, search.lastOpts.MinScore, 1e-12)
}

func TestHandleSearchDocs_TopKOutOfRange(t *testing.T) {
	for _, topK := range []int{-1, 51, 1000} {
		search := &mockSearchService{}
		srv := newTestServer(t, search)

		res, out, err := srv.handleSearchDocs(context.Background(), nil, SearchDocsInput{
			Query: "install",
			TopK:  topK,
		})

		require.NoError(t, err, "validation failures stay inside the result envelope")
		assert.True(t, res.IsError, "topK=%d", topK)
		assert.Contains(t, textOf(t, res), "topK must be between 1 and 50")
		assert.Empty(t, out.Results)
		assert.Empty(t, search.lastQry, "the core is never reached")
	}
}

func TestHandleSearchDocs_MinScoreOutOfRange(t *testing.T) {
	for _, minScore := range []float64{-0.5, 1.5} {
		srv := newTestServer(t, &mockSearchService{})

		res, _, err := srv.handleSearchDocs(context.Background(), nil, SearchDocsInput{
			Query:    "install",
			MinScore: minScore,
		})

		require.NoError(t, err)
		assert.True(t, res.IsError, "minScore=%f", minScore)
		assert.Contains(t, textOf(t, res), "minScore must be between 0 and 1")
	}
}

func TestHandleSearchDocs_SearchFailure(t *testing.T) {
	search := &mockSearchService{err: errors.New("no cache loaded")}
	srv := newTestServer(t, search)

	res, out, err := srv.handleSearchDocs(context.Background(), nil, SearchDocsInput{Query: "install"})

	require.NoError(t, err, "core failures render as an error result, not a protocol error")
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "Search failed: no cache loaded")
	assert.Empty(t, out.Results)
}

func TestHandleSearchDocs_RendersResults(t *testing.T) {
	search := &mockSearchService{results: []domain.SearchResult{
		result("guide#install", "Guide", "guide.html", "Install the binary.", 0.92),
		result("faq#general", "FAQ", "faq.html", "General questions.", 0.55),
	}}
	srv := newTestServer(t, search)

	res, out, err := srv.handleSearchDocs(context.Background(), nil, SearchDocsInput{Query: "install"})

	require.NoError(t, err)
	assert.False(t, res.IsError)

	require.Len(t, out.Results, 2)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, SearchDocsResult{
		Rank:     1,
		Score:    0.92,
		PageName: "Guide",
		Href:     "guide.html",
		Content:  "Install the binary.",
	}, out.Results[0])
	assert.Equal(t, 2, out.Results[1].Rank)

	text := textOf(t, res)
	assert.Contains(t, text, `Found 2 result(s) for "install":`)
	assert.Contains(t, text, "1. [0.920] Guide")
	assert.Contains(t, text, "Source: guide.html")
	assert.Contains(t, text, "2. [0.550] FAQ")
}

func TestHandleSearchDocs_NoResults(t *testing.T) {
	srv := newTestServer(t, &mockSearchService{})

	res, out, err := srv.handleSearchDocs(context.Background(), nil, SearchDocsInput{Query: "nonexistent"})

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Zero(t, out.Count)
	assert.Contains(t, textOf(t, res), `No results found for "nonexistent" (minScore 0.10)`)
}

func TestNewServer_RequiresSearchService(t *testing.T) {
	_, err := NewServer(&Ports{})
	assert.ErrorIs(t, err, ErrMissingSearchService)
}
