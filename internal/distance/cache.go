package distance

import (
	"sync"
	"time"

	"github.com/gearswap/gearswap/internal/geo"
)

// DefaultCacheTTL is how long a computed pair stays fresh.
const DefaultCacheTTL = 24 * time.Hour

// Cache is an in-memory TTL cache of resolved origin|destination pairs.
// Keys are case-insensitive. The cache is process-local and lost on restart;
// it is a performance optimization, not a correctness-bearing store.
// Construct one per process and inject it where needed.
type Cache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	result    Result
	createdAt time.Time
}

// NewCache creates a cache with the given TTL (DefaultCacheTTL if zero).
func NewCache(ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached result for a pair if present and younger than the
// TTL. Expired entries are evicted lazily on lookup.
func (c *Cache) Get(origin, destination string) (*Result, bool) {
	key := cacheKey(origin, destination)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Since(entry.createdAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if current, stillThere := c.entries[key]; stillThere && time.Since(current.createdAt) >= c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	result := entry.result
	return &result, true
}

// Set stores a result for a pair with the current timestamp.
func (c *Cache) Set(origin, destination string, result Result) {
	key := cacheKey(origin, destination)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		result:    result,
		createdAt: time.Now(),
	}
}

// Clear empties the cache unconditionally.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheKey(origin, destination string) string {
	return geo.NormalizeAddress(origin) + "|" + geo.NormalizeAddress(destination)
}
