package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFetchFailed indicates a single page could not be fetched.
	// Ingestion recovers locally: the page is skipped and the run continues.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrEmbeddingFailed indicates an embedding batch failed after
	// exhausting retries. This is fatal to the ingestion run; no cache
	// file is written for a failed run.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrCacheUnavailable indicates the cache file is missing, malformed,
	// or structurally invalid. The search engine refuses queries until a
	// valid load succeeds.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrDimensionMismatch indicates a query vector whose length differs
	// from the corpus embedding length. It is a query-level error and does
	// not invalidate the engine's loaded state.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNotLoaded indicates a search before a successful load. This is a
	// sequencing error and is surfaced immediately, never silently
	// answered with empty results.
	ErrNotLoaded = errors.New("search engine not loaded")
)
