package driven

import (
	"context"

	"github.com/custodia-labs/docsearch-mcp/internal/core/domain"
)

// CacheStore persists and loads the embedded corpus.
//
// Save must be atomic: a reader never observes a partial write, and a
// failed save leaves the previous good cache intact.
type CacheStore interface {
	// Save writes the cache data durably.
	Save(ctx context.Context, data domain.CacheData) error

	// Load reads the cache data. Missing, malformed, or structurally
	// invalid data is reported as an error wrapping
	// domain.ErrCacheUnavailable.
	Load(ctx context.Context) (domain.CacheData, error)
}
