package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notecheck/internal/core/domain"
)

func validDocument(content string) domain.ReferenceDocument {
	return domain.ReferenceDocument{
		ID:         "doc-1",
		Title:      "Grammar Primer",
		SourceType: domain.SourceTypeBook,
		Domain:     domain.DomainLanguage,
		Content:    content,
		TrustScore: 0.9,
	}
}

func TestIndexDocument(t *testing.T) {
	store := newMockReferenceStore()
	index := newMockVectorIndex()
	embedder := &mockEmbeddingService{}
	ix := NewIndexer(store, index, embedder, domain.DefaultConfig())

	doc := validDocument("Particles attach to nouns to mark grammatical roles.")
	require.NoError(t, ix.IndexDocument(context.Background(), doc))

	// Persisted document and chunks.
	saved, err := store.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.False(t, saved.IndexedAt.IsZero())

	chunks, err := store.GetChunks(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.NotEmpty(t, chunks[0].Embedding)

	// Indexed entries carry ranking metadata.
	entries := index.upserted["doc-1"]
	require.Len(t, entries, 1)
	assert.Equal(t, domain.SourceTypeBook, entries[0].Metadata.SourceType)
	assert.InDelta(t, 0.9, entries[0].Metadata.TrustScore, 1e-9)
	assert.Equal(t, domain.DomainLanguage, entries[0].Metadata.Domain)
}

func TestIndexDocumentChunksLongContent(t *testing.T) {
	store := newMockReferenceStore()
	index := newMockVectorIndex()
	embedder := &mockEmbeddingService{}

	cfg := domain.DefaultConfig()
	cfg.Chunking.SizeThreshold = 100
	cfg.Chunking.Overlap = 10
	ix := NewIndexer(store, index, embedder, cfg)

	doc := validDocument(strings.Repeat("Sentence about particles. ", 30))
	require.NoError(t, ix.IndexDocument(context.Background(), doc))

	chunks, err := store.GetChunks(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)

	// One embedding request per indexing run covers all chunks.
	assert.Equal(t, 1, embedder.batchCalls)
	assert.Len(t, embedder.lastTexts, len(chunks))
}

func TestIndexDocumentDefaultTrustInMetadata(t *testing.T) {
	store := newMockReferenceStore()
	index := newMockVectorIndex()
	ix := NewIndexer(store, index, &mockEmbeddingService{}, domain.DefaultConfig())

	doc := validDocument("content")
	doc.TrustScore = 0 // falls back to the book default
	require.NoError(t, ix.IndexDocument(context.Background(), doc))

	entries := index.upserted["doc-1"]
	require.Len(t, entries, 1)
	assert.InDelta(t, 1.0, entries[0].Metadata.TrustScore, 1e-9)
}

func TestIndexDocumentRejectsInvalid(t *testing.T) {
	ix := NewIndexer(newMockReferenceStore(), newMockVectorIndex(), &mockEmbeddingService{}, domain.DefaultConfig())
	ctx := context.Background()

	tests := []struct {
		name string
		doc  domain.ReferenceDocument
	}{
		{"no id", domain.ReferenceDocument{SourceType: domain.SourceTypeBook, Domain: domain.DomainGeneral, Content: "x"}},
		{"bad source type", domain.ReferenceDocument{ID: "d", SourceType: "scroll", Domain: domain.DomainGeneral, Content: "x"}},
		{"bad domain", domain.ReferenceDocument{ID: "d", SourceType: domain.SourceTypeBook, Domain: "astrology", Content: "x"}},
		{"trust out of range", domain.ReferenceDocument{ID: "d", SourceType: domain.SourceTypeBook, Domain: domain.DomainGeneral, Content: "x", TrustScore: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ix.IndexDocument(ctx, tt.doc)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}
}

func TestIndexDocumentEmbeddingFailure(t *testing.T) {
	store := newMockReferenceStore()
	embedder := &mockEmbeddingService{err: domain.ErrEmbeddingUnavailable}
	ix := NewIndexer(store, newMockVectorIndex(), embedder, domain.DefaultConfig())

	err := ix.IndexDocument(context.Background(), validDocument("content"))
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))

	// Nothing persisted on failure.
	_, err = store.GetDocument(context.Background(), "doc-1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRemoveDocument(t *testing.T) {
	store := newMockReferenceStore()
	index := newMockVectorIndex()
	ix := NewIndexer(store, index, &mockEmbeddingService{}, domain.DefaultConfig())
	ctx := context.Background()

	require.NoError(t, ix.IndexDocument(ctx, validDocument("content")))
	require.NoError(t, ix.RemoveDocument(ctx, "doc-1"))

	assert.Contains(t, index.deleted, "doc-1")
	_, err := store.GetDocument(ctx, "doc-1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRemoveDocumentEmptyID(t *testing.T) {
	ix := NewIndexer(newMockReferenceStore(), newMockVectorIndex(), &mockEmbeddingService{}, domain.DefaultConfig())

	err := ix.RemoveDocument(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRebuildIndexReusesStoredEmbeddings(t *testing.T) {
	store := newMockReferenceStore()
	index := newMockVectorIndex()
	embedder := &mockEmbeddingService{}
	ix := NewIndexer(store, index, embedder, domain.DefaultConfig())
	ctx := context.Background()

	require.NoError(t, ix.IndexDocument(ctx, validDocument("content")))
	callsAfterIndexing := embedder.batchCalls

	// Simulate a fresh process with an empty index.
	fresh := newMockVectorIndex()
	rebuilt := NewIndexer(store, fresh, embedder, domain.DefaultConfig())
	require.NoError(t, rebuilt.RebuildIndex(ctx))

	assert.Len(t, fresh.upserted["doc-1"], 1)
	// Rebuild reads embeddings from the store; no new embedding calls.
	assert.Equal(t, callsAfterIndexing, embedder.batchCalls)
}
