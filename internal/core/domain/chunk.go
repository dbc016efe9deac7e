package domain

import (
	"regexp"
	"strings"
)

// CacheVersion is the format version written to cache files.
const CacheVersion = "1.0"

// Chunk represents a contiguous, heading-bounded (or whole-page) unit of
// extracted documentation text. Chunks are produced by the HTML segmenter
// and may be divided further by the splitter before embedding.
type Chunk struct {
	// ID is derived from the page href plus a heading slug or positional
	// index. Split children append a "_part_N" suffix.
	ID string `json:"id"`

	// PageName is the human-readable name of the source page.
	PageName string `json:"pageName"`

	// Href is the source page location relative to the documentation root.
	Href string `json:"href"`

	// FullContent is the whitespace-normalised text of the chunk.
	// It is never empty for a chunk that leaves the segmenter.
	FullContent string `json:"fullContent"`
}

// EmbeddedChunk is a Chunk enriched with its embedding vector.
// Every embedding in one corpus has the same length.
type EmbeddedChunk struct {
	Chunk
	Embedding []float32 `json:"embedding"`
}

// CacheData is the persisted corpus. It is owned by the cache store and
// written atomically; the search engine holds a read-only copy after load.
type CacheData struct {
	// Timestamp is the ISO-8601 time the cache was written.
	Timestamp string `json:"timestamp"`

	// Version is the cache format version.
	Version string `json:"version"`

	// Chunks is the ordered corpus of embedded chunks.
	Chunks []EmbeddedChunk `json:"chunks"`

	// TotalChunks duplicates len(Chunks) for quick inspection of the file.
	TotalChunks int `json:"totalChunks"`
}

// SearchResult represents a single similarity search hit.
// Results are ephemeral and never persisted.
type SearchResult struct {
	// Chunk is the matched corpus entry.
	Chunk EmbeddedChunk

	// Score is the cosine similarity against the query vector, in [-1, 1].
	Score float64
}

// EngineStats reports the state of the search engine.
type EngineStats struct {
	TotalChunks int
	IsLoaded    bool
}

// Pre-compiled expressions for content normalisation.
var (
	horizontalSpaces = regexp.MustCompile(`[ \t]+`)
	spacedNewlines   = regexp.MustCompile(` *\n *`)
	multiNewlines    = regexp.MustCompile(`\n{3,}`)
)

// NormaliseContent collapses runs of spaces and tabs to a single space,
// collapses runs of three or more newlines to exactly two, and trims
// leading and trailing whitespace. A chunk whose content is empty after
// normalisation must be discarded by the caller.
func NormaliseContent(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = horizontalSpaces.ReplaceAllString(text, " ")
	text = spacedNewlines.ReplaceAllString(text, "\n")
	text = multiNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
