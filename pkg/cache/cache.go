// Package cache provides a thread-safe LRU cache for compiled JMESPath
// expressions.
//
// The runtime façade uses this cache so that repeatedly searching with the
// same expression string doesn't re-lex and re-parse it every time,
// which matters when the same query is applied to a stream of documents.
//
// # Example
//
//	c := cache.New(1024, cache.WithLogger(slog.Default()))
//	expr, err := c.GetOrCompile("items[?price > `100`].name", compile)
package cache

import (
	"container/list"
	"log/slog"
	"sync"

	"github.com/halvorsen/jmespath/pkg/types"
)

// entry is a cache entry stored in the doubly-linked list.
type entry struct {
	key  string
	expr *types.Expression
}

// Cache is a thread-safe LRU (Least Recently Used) cache for compiled expressions.
// Once the capacity is reached, the least recently accessed entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
	logger   *slog.Logger
}

// Option configures a Cache at construction time.
type Option func(*Cache)

// WithLogger attaches a structured logger; hits, misses, and evictions are
// reported at debug level, mirroring the Runtime façade's own logging of
// Search-level cache activity.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// New creates a new LRU cache with the given capacity.
// capacity must be > 0; if <= 0, a default of 256 is used.
func New(capacity int, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	c := &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a compiled expression from the cache.
// Returns (expr, true) if found and moves the entry to front (MRU).
// Returns (nil, false) if not present.
func (c *Cache) Get(key string) (*types.Expression, bool) {
	c.mu.RLock()
	el, ok := c.items[key]
	atFront := ok && c.ll.Front() == el
	var expr *types.Expression
	if ok {
		expr = el.Value.(*entry).expr
	}
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	// A hit that's already MRU never needs the write lock; every other hit
	// promotes under the write lock and re-checks for a concurrent eviction.
	if !atFront {
		c.mu.Lock()
		el, ok = c.items[key]
		if ok {
			c.ll.MoveToFront(el)
			expr = el.Value.(*entry).expr
		}
		c.mu.Unlock()

		if !ok {
			return nil, false
		}
	}
	return expr, true
}

// Set inserts or replaces an expression in the cache.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache) Set(key string, expr *types.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).expr = expr
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	el := c.ll.PushFront(&entry{key: key, expr: expr})
	c.items[key] = el
}

// GetOrCompile retrieves the expression for key from cache, or calls compile()
// to create it, caches the result, and returns it.
// compile runs on every miss: errors are not cached, and concurrent misses
// on the same key may each call it.
func (c *Cache) GetOrCompile(key string, compile func() (*types.Expression, error)) (*types.Expression, error) {
	if expr, ok := c.Get(key); ok {
		c.logger.Debug("parse cache hit", "expression", key)
		return expr, nil
	}
	expr, err := compile()
	if err != nil {
		c.logger.Debug("parse cache miss: compile failed", "expression", key, "error", err)
		return nil, err
	}
	c.logger.Debug("parse cache miss: compiled", "expression", key)
	c.Set(key, expr)
	return expr, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held for writing.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	evicted := el.Value.(*entry)
	c.ll.Remove(el)
	delete(c.items, evicted.key)
	c.logger.Debug("parse cache evicted entry", "expression", evicted.key, "capacity", c.capacity)
}
