package driving

import (
	"context"

	"github.com/custodia-labs/notecheck/internal/core/domain"
)

// ValidationService validates topics against the indexed reference
// corpus.
type ValidationService interface {
	// ValidateTopic runs the full pipeline for one topic: compose,
	// embed, rank, score. The result is self-contained and immutable.
	ValidateTopic(ctx context.Context, topic domain.Topic) (*domain.ValidationResult, error)

	// ValidateTopics validates many topics concurrently. Results are
	// returned in input order. The first error aborts the batch.
	ValidateTopics(ctx context.Context, topics []domain.Topic) ([]*domain.ValidationResult, error)
}

// IndexService maintains the reference corpus.
type IndexService interface {
	// IndexDocument chunks, embeds and indexes a reference document.
	// Re-indexing an existing document replaces its chunks everywhere.
	IndexDocument(ctx context.Context, doc domain.ReferenceDocument) error

	// RemoveDocument removes a document from the store and the index.
	RemoveDocument(ctx context.Context, id string) error

	// ListDocuments returns the indexed documents.
	ListDocuments(ctx context.Context) ([]domain.ReferenceDocument, error)

	// RebuildIndex reloads every stored document's chunks into the
	// vector index. Used at startup with non-persistent indexes.
	RebuildIndex(ctx context.Context) error
}
