// Package cache wraps groupcache's LRU with a mutex so it can be shared
// across the goroutines that read and write loose objects concurrently.
package cache

import (
	"sync"

	lru "github.com/golang/groupcache/lru"
)

// LRUKey is anything comparable; groupcache uses it as a map key internally.
type LRUKey = lru.Key

// LRU is a fixed-capacity, least-recently-used cache safe for concurrent use.
type LRU struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// NewLRU builds a cache holding at most maxEntries items. A maxEntries of
// zero disables eviction entirely, leaving that to the caller.
func NewLRU(maxEntries int) *LRU {
	return &LRU{cache: lru.New(maxEntries)}
}

// Get returns the cached value for key, if any.
func (c *LRU) Get(key LRUKey) (value interface{}, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Get(key)
}

// Add stores value under key, evicting the oldest entry if full.
func (c *LRU) Add(key LRUKey, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, value)
}

// Clear empties the cache.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Clear()
}

// Len reports how many items are currently cached.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}
