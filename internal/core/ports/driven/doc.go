// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for indexing and retrieval to work:
//
//   - DocumentExtractor: Reads cleaned per-page text from a PDF
//   - Chunker: Splits pages into overlapping chunks
//   - EmbeddingService: Maps text to fixed-length vectors
//   - IndexRepository: Persists and restores indexes (chunks, vectors, manifest)
//   - VectorIndex: Nearest neighbour search over chunk vectors
//   - ChunkStore: Chunk and manifest persistence
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, retrieval still works but
//     answering fails with a configuration error.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, normaliser, or postprocessor package
package driven
