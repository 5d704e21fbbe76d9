package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/notecheck/internal/core/domain"
	"github.com/custodia-labs/notecheck/internal/core/ports/driven"
)

// mockVectorIndex returns canned hits and records queries.
type mockVectorIndex struct {
	hits     []driven.VectorHit
	queryErr error

	mu       sync.Mutex
	queries  int
	lastK    int
	upserted map[string][]driven.IndexEntry
	deleted  []string
}

func newMockVectorIndex() *mockVectorIndex {
	return &mockVectorIndex{upserted: make(map[string][]driven.IndexEntry)}
}

func (m *mockVectorIndex) Upsert(_ context.Context, parentID string, entries []driven.IndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted[parentID] = entries
	return nil
}

func (m *mockVectorIndex) Delete(_ context.Context, parentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, parentID)
	delete(m.upserted, parentID)
	return nil
}

func (m *mockVectorIndex) Query(_ context.Context, _ []float32, k int, _ *driven.QueryFilter) ([]driven.VectorHit, error) {
	m.mu.Lock()
	m.queries++
	m.lastK = k
	m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.hits, nil
}

func (m *mockVectorIndex) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, entries := range m.upserted {
		total += len(entries)
	}
	return total, nil
}

func (m *mockVectorIndex) Close() error { return nil }

// mockEmbeddingService returns deterministic vectors derived from the
// input length, so distinct texts yield distinct embeddings.
type mockEmbeddingService struct {
	err error

	mu         sync.Mutex
	embedCalls int
	batchCalls int
	lastTexts  []string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.lastTexts = texts
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1, 0}
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return 3 }
func (m *mockEmbeddingService) ModelName() string            { return "mock-model" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return m.err }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockCache is a map-backed EmbeddingCache recording hits and misses.
type mockCache struct {
	mu      sync.Mutex
	entries map[string][]float32
	gets    int
	hits    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]float32)}
}

func (m *mockCache) Get(key string) ([]float32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	v, ok := m.entries[key]
	if ok {
		m.hits++
	}
	return v, ok
}

func (m *mockCache) Set(key string, embedding []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = embedding
}

func (m *mockCache) Invalidate(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// mockReferenceStore is a map-backed ReferenceStore.
type mockReferenceStore struct {
	mu     sync.Mutex
	docs   map[string]domain.ReferenceDocument
	chunks map[string][]domain.ReferenceChunk

	saveErr error
}

func newMockReferenceStore() *mockReferenceStore {
	return &mockReferenceStore{
		docs:   make(map[string]domain.ReferenceDocument),
		chunks: make(map[string][]domain.ReferenceChunk),
	}
}

func (m *mockReferenceStore) SaveDocument(_ context.Context, doc domain.ReferenceDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockReferenceStore) GetDocument(_ context.Context, id string) (*domain.ReferenceDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return &doc, nil
}

func (m *mockReferenceStore) ListDocuments(_ context.Context) ([]domain.ReferenceDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := make([]domain.ReferenceDocument, 0, len(m.docs))
	for _, doc := range m.docs {
		docs = append(docs, doc)
	}
	return docs, nil
}

func (m *mockReferenceStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	delete(m.chunks, id)
	return nil
}

func (m *mockReferenceStore) ReplaceChunks(_ context.Context, parentID string, chunks []domain.ReferenceChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[parentID] = chunks
	return nil
}

func (m *mockReferenceStore) GetChunks(_ context.Context, parentID string) ([]domain.ReferenceChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chunks[parentID], nil
}

func (m *mockReferenceStore) Close() error { return nil }
