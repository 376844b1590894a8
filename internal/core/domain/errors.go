package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrConfiguration indicates invalid chunker or classifier
	// parameters. Fatal, surfaced immediately, never retried.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrDimensionMismatch indicates an embedding vector length that
	// disagrees with the store's configured dimension. Fatal for that
	// insertion; the store itself is left untouched.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingUnavailable indicates the embedding provider failed
	// or timed out. Per-chunk failures are retried with backoff; the
	// chunk's text is kept and the chunk stays queryable-after-retry.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrNotFound indicates a requested chunk or document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates malformed query parameters, rejected
	// before touching the store.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAnswerUnavailable indicates the answer generator is not
	// configured. Retrieval still works; only composition is disabled.
	ErrAnswerUnavailable = errors.New("answer generator unavailable")
)
