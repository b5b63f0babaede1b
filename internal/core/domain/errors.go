package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid caller input.
	// Validation failures (bad chunk parameters, dimension mismatches,
	// malformed filters) wrap this sentinel and are surfaced immediately,
	// never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type no normaliser handles.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrFileTooLarge indicates a file exceeds the ingestion size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrLLMUnavailable indicates the LLM service is not configured or
	// unreachable. Answer generation degrades to the excerpt template.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates an embedding strategy's prerequisite
	// is missing or unreachable. Resolved internally by the fallback chain;
	// callers never see it once a provider is resolved.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrRateLimited indicates an API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
