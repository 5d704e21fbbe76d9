package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/notecheck/internal/chunker"
	"github.com/custodia-labs/notecheck/internal/core/domain"
	"github.com/custodia-labs/notecheck/internal/core/ports/driven"
	"github.com/custodia-labs/notecheck/internal/core/ports/driving"
	"github.com/custodia-labs/notecheck/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexService = (*Indexer)(nil)

// Indexer maintains the reference corpus: it chunks, embeds, persists
// and indexes reference documents. Indexing one document is atomic from
// the index's perspective; a concurrent ranking never observes a
// half-replaced document.
type Indexer struct {
	store     driven.ReferenceStore
	index     driven.VectorIndex
	embedding driven.EmbeddingService
	splitter  *chunker.Splitter
}

// NewIndexer creates an indexer from a validated configuration.
func NewIndexer(
	store driven.ReferenceStore,
	index driven.VectorIndex,
	embedding driven.EmbeddingService,
	cfg domain.Config,
) *Indexer {
	return &Indexer{
		store:     store,
		index:     index,
		embedding: embedding,
		splitter: chunker.New(
			chunker.WithSizeThreshold(cfg.Chunking.SizeThreshold),
			chunker.WithOverlap(cfg.Chunking.Overlap),
		),
	}
}

// IndexDocument chunks, embeds, persists and indexes one reference
// document. Re-indexing an existing document replaces its previous
// chunks in both the store and the index; no stale chunks survive.
func (ix *Indexer) IndexDocument(ctx context.Context, doc domain.ReferenceDocument) error {
	if err := validateDocument(doc); err != nil {
		return err
	}

	logger.Section("Index Document")
	logger.Debug("Document %s (%s, %s), %d characters", doc.ID, doc.SourceType, doc.Domain, len(doc.Content))

	chunks, err := ix.splitter.ChunkDocument(doc)
	if err != nil {
		return err
	}
	logger.Debug("Chunked into %d pieces", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := ix.embedding.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks for %s: %w", doc.ID, err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingUnavailable, len(embeddings), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	doc.IndexedAt = time.Now().UTC()
	if err := ix.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	if err := ix.store.ReplaceChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("save chunks for %s: %w", doc.ID, err)
	}

	if err := ix.index.Upsert(ctx, doc.ID, indexEntries(doc, chunks)); err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}

	logger.Info("Indexed document %s with %d chunks", doc.ID, len(chunks))
	return nil
}

// RemoveDocument removes a document from the store and the index.
func (ix *Indexer) RemoveDocument(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: document ID is empty", domain.ErrInvalidInput)
	}
	if err := ix.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove %s from index: %w", id, err)
	}
	if err := ix.store.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("remove %s from store: %w", id, err)
	}
	return nil
}

// ListDocuments returns the indexed documents.
func (ix *Indexer) ListDocuments(ctx context.Context) ([]domain.ReferenceDocument, error) {
	return ix.store.ListDocuments(ctx)
}

// RebuildIndex reloads every stored document's chunks into the vector
// index. Embeddings are read from the store, not recomputed.
func (ix *Indexer) RebuildIndex(ctx context.Context) error {
	docs, err := ix.store.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	logger.Section("Rebuild Index")
	for _, doc := range docs {
		chunks, err := ix.store.GetChunks(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("load chunks for %s: %w", doc.ID, err)
		}
		if err := ix.index.Upsert(ctx, doc.ID, indexEntries(doc, chunks)); err != nil {
			return fmt.Errorf("index document %s: %w", doc.ID, err)
		}
	}
	logger.Info("Rebuilt index from %d documents", len(docs))
	return nil
}

func indexEntries(doc domain.ReferenceDocument, chunks []domain.ReferenceChunk) []driven.IndexEntry {
	entries := make([]driven.IndexEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = driven.IndexEntry{
			ChunkID:   c.ID,
			Text:      c.Text,
			Embedding: c.Embedding,
			Metadata: driven.ChunkMetadata{
				SourceType: doc.SourceType,
				TrustScore: doc.EffectiveTrustScore(),
				Domain:     doc.Domain,
				ChunkIndex: c.Index,
			},
		}
	}
	return entries
}

func validateDocument(doc domain.ReferenceDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: reference document has no ID", domain.ErrInvalidInput)
	}
	if !doc.SourceType.IsValid() {
		return fmt.Errorf("%w: unknown source type %q", domain.ErrInvalidInput, doc.SourceType)
	}
	if !doc.Domain.IsValid() {
		return fmt.Errorf("%w: unknown domain %q", domain.ErrInvalidInput, doc.Domain)
	}
	if doc.TrustScore < 0 || doc.TrustScore > 1 {
		return fmt.Errorf("%w: trust score %v outside [0,1]", domain.ErrInvalidInput, doc.TrustScore)
	}
	return nil
}
