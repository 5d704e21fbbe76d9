// Package memory provides an in-memory reference store, used in tests
// and in ephemeral setups where persistence across runs is not needed.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/notecheck/internal/core/domain"
	"github.com/custodia-labs/notecheck/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ReferenceStore = (*Store)(nil)

// Store is an in-memory ReferenceStore. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	docs   map[string]domain.ReferenceDocument
	chunks map[string][]domain.ReferenceChunk
	closed bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		docs:   make(map[string]domain.ReferenceDocument),
		chunks: make(map[string][]domain.ReferenceChunk),
	}
}

// SaveDocument stores or replaces a reference document.
func (s *Store) SaveDocument(_ context.Context, doc domain.ReferenceDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}
	if doc.IndexedAt.IsZero() {
		doc.IndexedAt = time.Now().UTC()
	}
	s.docs[doc.ID] = doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(_ context.Context, id string) (*domain.ReferenceDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return &doc, nil
}

// ListDocuments returns all stored documents ordered by ID.
func (s *Store) ListDocuments(_ context.Context) ([]domain.ReferenceDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.ReferenceDocument, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// DeleteDocument removes a document and its chunks.
func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, id)
	delete(s.chunks, id)
	return nil
}

// ReplaceChunks atomically replaces all chunks of a document.
func (s *Store) ReplaceChunks(_ context.Context, parentID string, chunks []domain.ReferenceChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}
	copied := make([]domain.ReferenceChunk, len(chunks))
	copy(copied, chunks)
	sort.Slice(copied, func(i, j int) bool {
		return copied[i].Index < copied[j].Index
	})
	s.chunks[parentID] = copied
	return nil
}

// GetChunks returns a document's chunks ordered by index.
func (s *Store) GetChunks(_ context.Context, parentID string) ([]domain.ReferenceChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.chunks[parentID]
	chunks := make([]domain.ReferenceChunk, len(stored))
	copy(chunks, stored)
	return chunks, nil
}

// Close marks the store closed. Reads keep working so callers can
// drain state during shutdown.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
