package driving

import (
	"context"

	"github.com/custodia-labs/docsearch-mcp/internal/core/domain"
)

// SearchOptions configures a similarity query.
type SearchOptions struct {
	// TopK is the maximum number of results.
	TopK int

	// MinScore is the minimum cosine similarity for a result to be kept.
	MinScore float64
}

// SearchService answers nearest-neighbour queries over the loaded corpus.
//
// Bounds on TopK and MinScore are enforced at the protocol boundary
// (CLI flags, MCP tool schema), not here.
type SearchService interface {
	// Search embeds the query text and returns results ordered by
	// descending similarity, filtered to MinScore and truncated to TopK.
	Search(ctx context.Context, query string, opts SearchOptions) ([]domain.SearchResult, error)

	// Reload replaces the in-memory corpus from the cache store.
	// The swap is atomic: concurrent searches observe either the old or
	// the new corpus, never a partial load.
	Reload(ctx context.Context) error

	// Stats reports corpus size and load state. No side effects.
	Stats() domain.EngineStats
}
