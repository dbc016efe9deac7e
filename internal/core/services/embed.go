package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docsearch-mcp/internal/core/domain"
	"github.com/custodia-labs/docsearch-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/docsearch-mcp/internal/logger"
	"github.com/custodia-labs/docsearch-mcp/internal/postprocessors/splitter"
	"github.com/custodia-labs/docsearch-mcp/internal/tokens"
)

// Default batching limits. The token limits are heuristic estimates, kept
// well inside provider request limits.
const (
	DefaultMaxBatchItems  = 50
	DefaultMaxBatchTokens = 8000
	DefaultMaxItemTokens  = 6000
	DefaultMaxRetries     = 5

	// DefaultPacing spaces successive embedding requests to respect
	// provider rate limits.
	DefaultPacing = 200 * time.Millisecond

	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 30 * time.Second
	maxRetryJitter = 500 * time.Millisecond
)

// EmbedConfig bounds the embedding batcher. Zero values select defaults.
type EmbedConfig struct {
	// MaxBatchItems caps the number of texts per request.
	MaxBatchItems int

	// MaxBatchTokens caps the estimated token sum per request.
	MaxBatchTokens int

	// MaxItemTokens is the hard per-item ceiling. Chunks above it are
	// re-split before batching so no single input can exceed the
	// provider's per-input limit.
	MaxItemTokens int

	// MaxRetries is the attempt count per batch before the run fails.
	MaxRetries int

	// Pacing is the minimum interval between embedding requests.
	Pacing time.Duration
}

func (c EmbedConfig) withDefaults() EmbedConfig {
	if c.MaxBatchItems <= 0 {
		c.MaxBatchItems = DefaultMaxBatchItems
	}
	if c.MaxBatchTokens <= 0 {
		c.MaxBatchTokens = DefaultMaxBatchTokens
	}
	if c.MaxItemTokens <= 0 {
		c.MaxItemTokens = DefaultMaxItemTokens
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.Pacing <= 0 {
		c.Pacing = DefaultPacing
	}
	return c
}

// EmbedService groups chunks into token-budgeted batches, invokes the
// embedding service per batch, retries failed batches, and reassembles
// embedded chunks in input order.
type EmbedService struct {
	embedder driven.EmbeddingService
	cfg      EmbedConfig
	limiter  *rate.Limiter

	// sleep is swappable so tests do not wait out real backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEmbedService creates an embedding batcher over the given service.
func NewEmbedService(embedder driven.EmbeddingService, cfg EmbedConfig) *EmbedService {
	cfg = cfg.withDefaults()
	return &EmbedService{
		embedder: embedder,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Every(cfg.Pacing), 1),
		sleep:    sleepCtx,
	}
}

// EmbedAll embeds every chunk and returns the embedded corpus in input
// order. Chunks above the per-item ceiling are re-split in place via an
// explicit work queue, so the output may be longer than the input.
//
// Batches run strictly in sequence: later stages depend on output order
// matching input order for deterministic IDs and cache reproducibility.
func (s *EmbedService) EmbedAll(ctx context.Context, chunks []domain.Chunk) ([]domain.EmbeddedChunk, error) {
	queue := make([]domain.Chunk, len(chunks))
	copy(queue, chunks)

	out := make([]domain.EmbeddedChunk, 0, len(chunks))
	var batch []domain.Chunk
	batchTokens := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		embedded, err := s.embedBatch(ctx, batch)
		if err != nil {
			return err
		}
		out = append(out, embedded...)
		batch = batch[:0]
		batchTokens = 0
		return nil
	}

	for len(queue) > 0 {
		next := queue[0]
		t := tokens.Estimate(next.FullContent)

		if t > s.cfg.MaxItemTokens {
			// Re-split with a tighter budget and re-evaluate from the
			// first resulting piece, preserving order. The budget never
			// drops below one token: a zero budget would return the chunk
			// unchanged and stall the queue.
			budget := s.cfg.MaxItemTokens * 9 / 10
			if budget < 1 {
				budget = 1
			}
			pieces := splitter.Split(next, budget)
			logger.Debug("re-split oversized chunk %s (%d tokens) into %d pieces", next.ID, t, len(pieces))
			queue = append(pieces, queue[1:]...)
			continue
		}

		if len(batch) >= s.cfg.MaxBatchItems || (len(batch) > 0 && batchTokens+t > s.cfg.MaxBatchTokens) {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		batch = append(batch, next)
		batchTokens += t
		queue = queue[1:]
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return out, nil
}

// embedBatch embeds one batch, retrying the same batch with exponential
// backoff and jitter. Exhausting retries is fatal to the run.
func (s *EmbedService) embedBatch(ctx context.Context, batch []domain.Chunk) ([]domain.EmbeddedChunk, error) {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].FullContent
	}

	// Pacing applies before every request, not as part of the retry
	// backoff.
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var vectors [][]float32
	delay := baseRetryDelay
	for attempt := 1; ; attempt++ {
		var err error
		vectors, err = s.embedder.EmbedBatch(ctx, texts)
		if err == nil && len(vectors) != len(texts) {
			err = fmt.Errorf("expected %d vectors, got %d", len(texts), len(vectors))
		}
		if err == nil {
			break
		}
		logger.Warn("embedding batch of %d failed (attempt %d/%d): %v", len(batch), attempt, s.cfg.MaxRetries, err)
		if attempt >= s.cfg.MaxRetries {
			return nil, fmt.Errorf("batch of %d texts after %d attempts: %w: %v",
				len(batch), attempt, domain.ErrEmbeddingFailed, err)
		}
		wait := delay + rand.N(maxRetryJitter)
		if err := s.sleep(ctx, wait); err != nil {
			return nil, err
		}
		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}

	embedded := make([]domain.EmbeddedChunk, len(batch))
	for i := range batch {
		embedded[i] = domain.EmbeddedChunk{Chunk: batch[i], Embedding: vectors[i]}
	}
	logger.Debug("embedded batch of %d chunks", len(batch))
	return embedded, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
