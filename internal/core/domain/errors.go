package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a malformed topic or reference document,
	// rejected before any embedding work is attempted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates engine configuration that fails eager
	// validation: weights not summing to 1, thresholds outside [0,1],
	// or unknown source types / domains.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingUnavailable indicates the embedding backend failed or
	// the text was empty after normalisation. Callers must propagate it;
	// substituting a zero vector would corrupt every downstream cosine
	// similarity toward spurious near-zero scores.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrIndexUnavailable indicates the vector index is unreachable.
	// This is a degraded-mode signal and must never be masked as
	// "no matches found".
	ErrIndexUnavailable = errors.New("reference index unavailable")
)
