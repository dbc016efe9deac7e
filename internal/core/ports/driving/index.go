package driving

import (
	"context"

	"github.com/custodia-labs/docsearch-mcp/internal/core/domain"
)

// Indexer runs the full ingestion pipeline: fetch every configured page,
// segment into chunks, split oversized chunks, embed, and persist the cache.
type Indexer interface {
	// Run executes one ingestion run. Per-page fetch failures are skipped
	// and reported in the summary; an embedding failure after retries
	// aborts the run and no cache is written.
	Run(ctx context.Context) (domain.RunSummary, error)
}
