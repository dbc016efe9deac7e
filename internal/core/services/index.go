package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docsearch-mcp/internal/core/domain"
	"github.com/custodia-labs/docsearch-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/docsearch-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/docsearch-mcp/internal/logger"
	"github.com/custodia-labs/docsearch-mcp/internal/postprocessors/splitter"
)

// Ensure IndexService implements the interface.
var _ driving.Indexer = (*IndexService)(nil)

// DefaultSplitTokens is the token budget applied to chunks as they leave
// the segmenter. It is deliberately smaller than the batcher's per-item
// ceiling so most chunks never need a second split.
const DefaultSplitTokens = 2000

// IndexConfig configures one ingestion run.
type IndexConfig struct {
	// Pages is the fixed set of documentation pages to ingest.
	Pages []domain.Page

	// SplitTokens is the token budget for the chunk splitter.
	// Zero selects DefaultSplitTokens.
	SplitTokens int
}

// IndexService runs the ingestion pipeline: fetch, segment, split, embed,
// persist.
type IndexService struct {
	source    driven.DocumentSource
	segmenter driven.Segmenter
	embed     *EmbedService
	cache     driven.CacheStore
	cfg       IndexConfig
}

// NewIndexService creates an indexer over the given collaborators.
func NewIndexService(
	source driven.DocumentSource,
	segmenter driven.Segmenter,
	embed *EmbedService,
	cache driven.CacheStore,
	cfg IndexConfig,
) *IndexService {
	if cfg.SplitTokens <= 0 {
		cfg.SplitTokens = DefaultSplitTokens
	}
	return &IndexService{
		source:    source,
		segmenter: segmenter,
		embed:     embed,
		cache:     cache,
		cfg:       cfg,
	}
}

// Run executes one ingestion run.
//
// A page that fails to fetch or parse is skipped and reported in the
// summary; the run continues with the remaining pages. An embedding batch
// that fails after retries aborts the run, and no cache file is written:
// the previous good cache, if any, stays intact.
func (s *IndexService) Run(ctx context.Context) (domain.RunSummary, error) {
	summary := domain.RunSummary{
		RunID: uuid.New().String(),
		Pages: len(s.cfg.Pages),
	}
	start := time.Now()

	logger.Section("Ingestion Run")
	logger.Info("run %s: %d pages", summary.RunID, len(s.cfg.Pages))

	var chunks []domain.Chunk
	for _, page := range s.cfg.Pages {
		body, err := s.source.Fetch(ctx, page.Href)
		if err != nil {
			logger.Warn("page %s: %v: %v", page.Href, domain.ErrFetchFailed, err)
			summary.FailedPages = append(summary.FailedPages, page.Href)
			continue
		}

		pageChunks, err := s.segmenter.Segment(page.Name, page.Href, body)
		if err != nil {
			logger.Warn("page %s: segment: %v", page.Href, err)
			summary.FailedPages = append(summary.FailedPages, page.Href)
			continue
		}

		for _, chunk := range pageChunks {
			chunks = append(chunks, splitter.Split(chunk, s.cfg.SplitTokens)...)
		}
		logger.Debug("page %s: %d chunks", page.Href, len(pageChunks))
	}

	if len(chunks) == 0 {
		summary.Duration = time.Since(start)
		return summary, fmt.Errorf("run %s produced no chunks: %w", summary.RunID, domain.ErrInvalidInput)
	}

	embedded, err := s.embed.EmbedAll(ctx, chunks)
	if err != nil {
		summary.Duration = time.Since(start)
		return summary, fmt.Errorf("run %s: %w", summary.RunID, err)
	}

	data := domain.CacheData{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     domain.CacheVersion,
		Chunks:      embedded,
		TotalChunks: len(embedded),
	}
	if err := s.cache.Save(ctx, data); err != nil {
		summary.Duration = time.Since(start)
		return summary, fmt.Errorf("run %s: save cache: %w", summary.RunID, err)
	}

	summary.Chunks = len(embedded)
	summary.Duration = time.Since(start)
	logger.Info("run %s: %d chunks embedded in %s (%d pages failed)",
		summary.RunID, summary.Chunks, summary.Duration.Round(time.Millisecond), len(summary.FailedPages))
	return summary, nil
}
