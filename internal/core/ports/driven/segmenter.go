package driven

import "github.com/custodia-labs/docsearch-mcp/internal/core/domain"

// Segmenter converts a raw page body into an ordered sequence of chunks.
type Segmenter interface {
	// Segment returns the heading-bounded chunks of one page. Chunks that
	// normalise to empty content are never returned.
	Segment(pageName, href string, body []byte) ([]domain.Chunk, error)
}
