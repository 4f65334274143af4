package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested file or persisted index does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExtraction indicates a PDF could not be read or yielded no text.
	// It is fatal for that document; no partial recovery is attempted.
	ErrExtraction = errors.New("extraction failed")

	// ErrInvalidInput indicates malformed or invalid input, such as an empty query.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates missing or invalid configuration,
	// most commonly an absent API credential.
	ErrConfiguration = errors.New("configuration error")

	// ErrQuery indicates an embedding or language model call failed while answering.
	// No automatic retry or fallback is attempted.
	ErrQuery = errors.New("query failed")

	// ErrNotImplemented indicates functionality is not available in this build.
	ErrNotImplemented = errors.New("not implemented")

	// ErrLLMUnavailable indicates the LLM service could not be reached.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service could not be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Index Errors.

	// ErrIndexIncompatible indicates a persisted index was built with a different
	// embedding model or vector size than the one currently configured.
	ErrIndexIncompatible = errors.New("index incompatible with embedding model")

	// ErrIndexCorrupt indicates an index directory exists but holds no committed index.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrIndexLocked indicates another process is rebuilding the same index directory.
	ErrIndexLocked = errors.New("index locked")
)
