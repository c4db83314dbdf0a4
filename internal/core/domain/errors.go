package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a component was constructed with
	// parameters that violate its contract (e.g. chunk overlap >= chunk size).
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedFormat indicates no extractor handles the document format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrDocumentUnreadable indicates the raw bytes could not be decoded
	// into text. Ingestion of the affected document is aborted.
	ErrDocumentUnreadable = errors.New("document unreadable")

	// ErrIngestInProgress indicates the document is already being ingested.
	ErrIngestInProgress = errors.New("ingest in progress")

	// Embedding Errors.

	// ErrEmbeddingUnavailable indicates the embedding provider failed or is
	// not configured. The condition is transient; callers may retry.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDimensionMismatch indicates a vector's dimensionality does not
	// match the index. This is a caller bug and is never retried.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Retrieval Errors.

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrSearchUnavailable indicates the keyword engine is not configured.
	// Keyword and hybrid query modes are disabled without it.
	ErrSearchUnavailable = errors.New("keyword engine unavailable")

	// ErrResponderUnavailable indicates no answer backend is configured.
	// Retrieval still works; ask operations are disabled.
	ErrResponderUnavailable = errors.New("responder unavailable")
)
