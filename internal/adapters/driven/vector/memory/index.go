// Package memory provides an in-memory vector index using brute-force
// cosine similarity. It is the default backend for small corpora and
// for tests; any engine satisfying the VectorIndex contract can replace
// it.
package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/notecheck/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// entry is one indexed chunk with its L2-normalised vector.
type entry struct {
	chunkID  string
	parentID string
	text     string
	vector   []float32
	metadata driven.ChunkMetadata
}

// Index stores chunk vectors in memory. All vectors are normalised at
// insert so queries reduce to a dot product.
type Index struct {
	mu        sync.RWMutex
	closed    bool
	dimension int
	byParent  map[string][]entry
}

// New creates an empty index. The dimension is fixed by the first
// upsert; later entries must match it.
func New() *Index {
	return &Index{
		byParent: make(map[string][]entry),
	}
}

// Upsert replaces all chunks of parentID with the supplied entries.
// The swap happens under one write lock, so a concurrent Query sees
// either all old chunks or all new ones, never a mix.
func (ix *Index) Upsert(_ context.Context, parentID string, entries []driven.IndexEntry) error {
	if parentID == "" {
		return errors.New("memory index: parent ID is empty")
	}

	prepared := make([]entry, len(entries))
	for i, e := range entries {
		if len(e.Embedding) == 0 {
			return errors.New("memory index: entry has no embedding")
		}
		prepared[i] = entry{
			chunkID:  e.ChunkID,
			parentID: parentID,
			text:     e.Text,
			vector:   normalise(e.Embedding),
			metadata: e.Metadata,
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return errors.New("memory index: closed")
	}
	if ix.dimension == 0 && len(prepared) > 0 {
		ix.dimension = len(prepared[0].vector)
	}
	for _, e := range prepared {
		if len(e.vector) != ix.dimension {
			return errors.New("memory index: embedding dimension mismatch")
		}
	}

	ix.byParent[parentID] = prepared
	return nil
}

// Delete removes all chunks of parentID.
func (ix *Index) Delete(_ context.Context, parentID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return errors.New("memory index: closed")
	}
	delete(ix.byParent, parentID)
	return nil
}

// Query returns the k nearest chunks to the query vector, ordered by
// similarity descending with chunk ID as a deterministic tie-break.
func (ix *Index) Query(
	_ context.Context, query []float32, k int, filter *driven.QueryFilter,
) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, errors.New("memory index: k must be positive")
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.closed {
		return nil, errors.New("memory index: closed")
	}
	if ix.dimension > 0 && len(query) != ix.dimension {
		return nil, errors.New("memory index: query dimension mismatch")
	}

	q := normalise(query)

	var hits []driven.VectorHit
	for _, entries := range ix.byParent {
		for _, e := range entries {
			if filter != nil && filter.Domain != "" && e.metadata.Domain != filter.Domain {
				continue
			}
			hits = append(hits, driven.VectorHit{
				ChunkID:    e.chunkID,
				ParentID:   e.parentID,
				Similarity: dot(q, e.vector),
				Text:       e.text,
				Metadata:   e.metadata,
			})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of indexed chunks.
func (ix *Index) Count(_ context.Context) (int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.closed {
		return 0, errors.New("memory index: closed")
	}
	total := 0
	for _, entries := range ix.byParent {
		total += len(entries)
	}
	return total, nil
}

// Close releases resources. Further calls fail.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.closed = true
	ix.byParent = nil
	return nil
}

func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return append([]float32(nil), v...)
	}
	inv := 1 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
