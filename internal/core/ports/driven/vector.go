package driven

import (
	"context"

	"github.com/custodia-labs/notecheck/internal/core/domain"
)

// ChunkMetadata travels with every indexed chunk so ranking can apply
// trust adjustment and filtering without a store round-trip.
type ChunkMetadata struct {
	// SourceType is the parent document's reliability grade.
	SourceType domain.SourceType

	// TrustScore is the parent document's trust score. Zero or below
	// means "not set"; ranking falls back to the source-type default.
	TrustScore float64

	// Domain is the parent document's subject area.
	Domain domain.KnowledgeDomain

	// ChunkIndex is the chunk's ordinal position in the document.
	ChunkIndex int
}

// IndexEntry is one chunk submitted to the index.
type IndexEntry struct {
	// ChunkID is the unique identifier of the chunk.
	ChunkID string

	// Text is the chunk's text, returned verbatim in hits so ranking
	// can build snippets without a second lookup.
	Text string

	// Embedding is the chunk's vector.
	Embedding []float32

	// Metadata carries ranking inputs.
	Metadata ChunkMetadata
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// ParentID is the owning reference document.
	ParentID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64

	// Text is the matched chunk's text.
	Text string

	// Metadata carries the chunk's ranking inputs.
	Metadata ChunkMetadata
}

// QueryFilter restricts a query by metadata. A nil filter matches
// every entry.
type QueryFilter struct {
	// Domain, when non-empty, restricts hits to one knowledge domain.
	Domain domain.KnowledgeDomain
}

// VectorIndex provides nearest-neighbour search over reference chunks.
//
// Failure contract: when the backing store is unreachable, Query
// returns an error wrapping domain.ErrIndexUnavailable rather than an
// empty result, so callers can distinguish degraded mode from
// "no matches found".
type VectorIndex interface {
	// Upsert replaces all chunks of the given parent document with the
	// supplied entries in one atomic step: a concurrent Query never
	// observes a document with only some chunks replaced, and no stale
	// chunks survive a re-index.
	Upsert(ctx context.Context, parentID string, entries []IndexEntry) error

	// Delete removes all chunks of the given parent document.
	Delete(ctx context.Context, parentID string) error

	// Query finds the k nearest chunks to the query vector, optionally
	// filtered by metadata. Results are ordered by similarity descending.
	Query(ctx context.Context, query []float32, k int, filter *QueryFilter) ([]VectorHit, error)

	// Count returns the number of indexed chunks.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
