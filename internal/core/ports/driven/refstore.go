package driven

import (
	"context"

	"github.com/custodia-labs/notecheck/internal/core/domain"
)

// ReferenceStore persists reference documents and their chunks.
// The engine writes through it at indexing time and reads it back to
// rebuild the vector index at startup.
type ReferenceStore interface {
	// SaveDocument stores or replaces a reference document.
	SaveDocument(ctx context.Context, doc domain.ReferenceDocument) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.ReferenceDocument, error)

	// ListDocuments returns all stored documents.
	ListDocuments(ctx context.Context) ([]domain.ReferenceDocument, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ReplaceChunks atomically replaces all chunks of a document.
	ReplaceChunks(ctx context.Context, parentID string, chunks []domain.ReferenceChunk) error

	// GetChunks returns a document's chunks ordered by index.
	GetChunks(ctx context.Context, parentID string) ([]domain.ReferenceChunk, error)

	// Close releases resources.
	Close() error
}
