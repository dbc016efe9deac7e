// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - EmbeddingService: Generates vector embeddings (OpenAI adapter)
//   - DocumentSource: Fetches raw documentation pages (HTTP adapter)
//   - CacheStore: Persists and loads the embedded corpus (file adapter)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
