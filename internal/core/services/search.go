package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/custodia-labs/docsearch-mcp/internal/core/domain"
	"github.com/custodia-labs/docsearch-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/docsearch-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/docsearch-mcp/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// corpus is one fully loaded, immutable snapshot of the embedded chunks.
// Norms are precomputed once per load.
type corpus struct {
	chunks []domain.EmbeddedChunk
	norms  []float64
	dims   int
}

// SearchEngine holds the loaded corpus in memory and answers top-K
// similarity queries by exact cosine-similarity ranking.
//
// The corpus sits behind an atomic pointer: Load builds the full snapshot
// before swapping it in, so concurrent searches observe either the old or
// the new corpus and never a partial load. Reload is idempotent.
type SearchEngine struct {
	cache  driven.CacheStore
	corpus atomic.Pointer[corpus]
}

// NewSearchEngine creates an engine over the given cache store.
// Load must succeed before the engine answers queries.
func NewSearchEngine(cache driven.CacheStore) *SearchEngine {
	return &SearchEngine{cache: cache}
}

// Load reads and validates the cache, then atomically swaps the in-memory
// corpus. A structurally invalid cache leaves any previously loaded corpus
// in place.
func (e *SearchEngine) Load(ctx context.Context) error {
	data, err := e.cache.Load(ctx)
	if err != nil {
		return err
	}

	c := &corpus{
		chunks: data.Chunks,
		norms:  make([]float64, len(data.Chunks)),
	}
	for i := range data.Chunks {
		ch := &data.Chunks[i]
		if ch.ID == "" || ch.PageName == "" || ch.Href == "" || ch.FullContent == "" || len(ch.Embedding) == 0 {
			return fmt.Errorf("chunk %d is structurally invalid: %w", i, domain.ErrCacheUnavailable)
		}
		if c.dims == 0 {
			c.dims = len(ch.Embedding)
		} else if len(ch.Embedding) != c.dims {
			return fmt.Errorf("chunk %q has %d dimensions, corpus has %d: %w",
				ch.ID, len(ch.Embedding), c.dims, domain.ErrCacheUnavailable)
		}
		c.norms[i] = norm(ch.Embedding)
	}

	e.corpus.Store(c)
	logger.Info("loaded %d chunks (%d dimensions)", len(c.chunks), c.dims)
	return nil
}

// Search ranks every stored chunk against the query vector and returns at
// most topK results with score >= minScore, in descending score order.
// Equal scores keep original corpus order as the tie-break, so rankings
// are deterministic across runs.
func (e *SearchEngine) Search(query []float32, topK int, minScore float64) ([]domain.SearchResult, error) {
	c := e.corpus.Load()
	if c == nil {
		return nil, domain.ErrNotLoaded
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive: %w", domain.ErrInvalidInput)
	}
	if len(c.chunks) > 0 && len(query) != c.dims {
		return nil, fmt.Errorf("query has %d dimensions, corpus has %d: %w",
			len(query), c.dims, domain.ErrDimensionMismatch)
	}

	type scored struct {
		idx   int
		score float64
	}
	qn := norm(query)
	hits := make([]scored, 0, len(c.chunks))
	for i := range c.chunks {
		score := cosine(query, c.chunks[i].Embedding, qn, c.norms[i])
		if score >= minScore {
			hits = append(hits, scored{idx: i, score: score})
		}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return hits[a].idx < hits[b].idx
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}

	results := make([]domain.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = domain.SearchResult{Chunk: c.chunks[h.idx], Score: h.score}
	}
	return results, nil
}

// Stats reports corpus size and load state. Introspection only.
func (e *SearchEngine) Stats() domain.EngineStats {
	c := e.corpus.Load()
	if c == nil {
		return domain.EngineStats{}
	}
	return domain.EngineStats{TotalChunks: len(c.chunks), IsLoaded: true}
}

// cosine is dot(a,b) / (|a|*|b|), defined as 0 when either norm is 0.
// Not a true cosine for zero vectors, but the stable contract.
func cosine(a, b []float32, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (normA * normB)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// SearchService is the driving-port facade: it embeds query text and
// delegates ranking to the engine.
type SearchService struct {
	engine   *SearchEngine
	embedder driven.EmbeddingService
}

// NewSearchService creates a search service over the engine and embedder.
func NewSearchService(engine *SearchEngine, embedder driven.EmbeddingService) *SearchService {
	return &SearchService{engine: engine, embedder: embedder}
}

// Search embeds the query and runs a similarity search.
func (s *SearchService) Search(ctx context.Context, query string, opts driving.SearchOptions) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}
	// Fail before spending an embedding call on an unloaded engine.
	if !s.engine.Stats().IsLoaded {
		return nil, domain.ErrNotLoaded
	}

	logger.Section("Search Execution")
	logger.Debug("query: %q topK=%d minScore=%.2f", query, opts.TopK, opts.MinScore)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.engine.Search(vector, opts.TopK, opts.MinScore)
	if err != nil {
		return nil, err
	}
	logger.Debug("results: %d", len(results))
	return results, nil
}

// Reload replaces the in-memory corpus from the cache store.
func (s *SearchService) Reload(ctx context.Context) error {
	return s.engine.Load(ctx)
}

// Stats reports corpus size and load state.
func (s *SearchService) Stats() domain.EngineStats {
	return s.engine.Stats()
}
