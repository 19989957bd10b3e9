package domain

import "errors"

// Index load failures. All are fatal at startup: query serving cannot
// proceed without a valid index, and there is no fallback to an empty one.
var (
	ErrIndexNotFound      = errors.New("vector index not found")
	ErrIndexCorrupt       = errors.New("vector index corrupt")
	ErrIndexCompatibility = errors.New("vector index incompatible with configured embedder")
)

// Per-question failures. The cycle aborts, the session survives.
var (
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	ErrEmptyQuestion        = errors.New("question is empty")
)

// External service failures, retryable at the caller's discretion.
var (
	ErrEmbedding         = errors.New("embedding failed")
	ErrGeneration        = errors.New("generation failed")
	ErrGenerationTimeout = errors.New("generation timed out")
)
