package web

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultCacheTTL      = 15 * time.Minute
	defaultCacheCapacity = 100
)

type cacheEntry struct {
	results   []SearchResult
	expiresAt time.Time
}

// SearchCache is an insertion-ordered, TTL-lazy-expiring cache of search
// results, backed by hashicorp/golang-lru/v2 for the eviction policy
// (grounded on the teacher's go.mod, which carries golang-lru for exactly
// this kind of bounded-size caching concern).
type SearchCache struct {
	mu    sync.Mutex
	lru   *lru.Cache[string, cacheEntry]
	ttl   time.Duration
}

// NewSearchCache builds a cache with the given capacity and TTL. A
// capacity of zero falls back to the documented default of 100 entries;
// a ttl of exactly zero falls back to the documented default of 15
// minutes (pass a negative ttl to construct an always-expired cache).
func NewSearchCache(capacity int, ttl time.Duration) *SearchCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	c, _ := lru.New[string, cacheEntry](capacity)
	return &SearchCache{lru: c, ttl: ttl}
}

// Get returns the cached results for key, evicting them (as a miss) if
// their TTL has lapsed.
func (c *SearchCache) Get(key string) ([]SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lru.Peek(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return entry.results, true
}

// Put stores results under key with this cache's configured TTL.
func (c *SearchCache) Put(key string, results []SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, cacheEntry{results: results, expiresAt: time.Now().Add(c.ttl)})
}

// Len reports the number of entries currently held (including any that
// are expired but not yet evicted by a Get).
func (c *SearchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
