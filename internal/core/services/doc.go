// Package services implements the driving port interfaces.
// Services contain the core business logic - batching, similarity search,
// and the ingestion pipeline - and orchestrate calls to driven ports
// (adapters).
package services
