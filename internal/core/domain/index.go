package domain

import "time"

// Page identifies one documentation page to ingest.
type Page struct {
	// Name is the human-readable page name carried onto every chunk.
	Name string `json:"name" toml:"name"`

	// Href is the page location relative to the documentation base URL.
	Href string `json:"href" toml:"href"`
}

// RunSummary reports the outcome of one ingestion run.
type RunSummary struct {
	// RunID uniquely identifies the run in logs and summaries.
	RunID string

	// Pages is the number of pages configured for the run.
	Pages int

	// FailedPages lists the hrefs that could not be fetched.
	FailedPages []string

	// Chunks is the number of embedded chunks written to the cache.
	Chunks int

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}
