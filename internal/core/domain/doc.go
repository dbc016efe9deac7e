// Package domain defines the core business entities for docsearch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A heading-bounded unit of extracted documentation text
//   - EmbeddedChunk: A Chunk plus its embedding vector
//   - CacheData: The persisted corpus of embedded chunks
//   - SearchResult: A single similarity search hit
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
