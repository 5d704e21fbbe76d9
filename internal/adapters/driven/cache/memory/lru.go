// Package memory provides an in-memory LRU implementation of the
// embedding cache port. Eviction policy lives here, not in the engine.
package memory

import (
	"container/list"
	"sync"

	"github.com/custodia-labs/notecheck/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// DefaultCapacity is the default number of cached embeddings.
const DefaultCapacity = 1024

type item struct {
	key       string
	embedding []float32
}

// Cache is a fixed-capacity LRU cache for embeddings.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

// New creates a cache with the given capacity. Non-positive capacities
// fall back to the default.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached embedding for key, marking it recently used.
func (c *Cache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*item).embedding, true
}

// Set stores an embedding under key, evicting the least recently used
// entry when the cache is full.
func (c *Cache) Set(key string, embedding []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*item).embedding = embedding
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&item{key: key, embedding: embedding})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*item).key)
	}
}

// Invalidate removes the entry for key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
