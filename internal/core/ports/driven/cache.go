package driven

// EmbeddingCache caches computed embeddings by key. It is an optional
// dependency: when nil, every validation re-embeds its topic.
//
// Caching policy (capacity, TTL, eviction) belongs to the adapter; the
// engine only gets, sets and invalidates.
type EmbeddingCache interface {
	// Get returns the cached embedding for key, if present.
	Get(key string) ([]float32, bool)

	// Set stores an embedding under key.
	Set(key string, embedding []float32)

	// Invalidate removes the entry for key.
	Invalidate(key string)
}
