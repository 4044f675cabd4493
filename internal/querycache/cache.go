package querycache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a fetched query stays fresh when a key has no TTL of its own
const DefaultTTL = 30 * time.Second

// Cache memoizes API queries by key. Keys are namespaced with ':' ("routes:2026-03-14")
// so Invalidate("routes") drops every variant of a query at once.
type Cache struct {
	cache      map[string]*CacheEntry
	mutex      sync.RWMutex
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	stats      CacheStats
}

// CacheEntry is one cached query result
type CacheEntry struct {
	Value        interface{}
	CreatedAt    time.Time
	LastAccessed time.Time
	HitCount     int
}

// CacheStats tracks cache performance
type CacheStats struct {
	Hits          int64
	Misses        int64
	Evictions     int64
	Invalidations int64
	mutex         sync.RWMutex
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		cache:      make(map[string]*CacheEntry),
		maxEntries: 256,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Key joins a query name with its parameters
func Key(name string, params ...interface{}) string {
	if len(params) == 0 {
		return name
	}
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, name)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ":")
}

// Get returns a fresh cached value
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, found := c.cache[key]
	if !found {
		c.recordMiss()
		return nil, false
	}

	if c.now().Sub(entry.CreatedAt) > c.ttl {
		delete(c.cache, key)
		c.recordMiss()
		c.recordEviction()
		return nil, false
	}

	entry.LastAccessed = c.now()
	entry.HitCount++
	c.recordHit()
	return entry.Value, true
}

func (c *Cache) Set(key string, value interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.cache[key]; !exists && len(c.cache) >= c.maxEntries {
		c.evictOldest()
	}

	now := c.now()
	c.cache[key] = &CacheEntry{
		Value:        value,
		CreatedAt:    now,
		LastAccessed: now,
	}
}

// Invalidate drops every entry whose key is one of names or starts with "<name>:"
func (c *Cache) Invalidate(names ...string) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for key := range c.cache {
		for _, name := range names {
			if key == name || strings.HasPrefix(key, name+":") {
				delete(c.cache, key)
				removed++
				break
			}
		}
	}

	c.stats.mutex.Lock()
	c.stats.Invalidations += int64(removed)
	c.stats.mutex.Unlock()
	return removed
}

// Fetch returns the cached value for key or loads, stores and returns it.
// Failed loads are not cached.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if c != nil {
		if cached, found := c.Get(key); found {
			if value, ok := cached.(T); ok {
				return value, nil
			}
		}
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if c != nil {
		c.Set(key, value)
	}
	return value, nil
}

// evictOldest removes the least recently used entry
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.cache {
		if oldestKey == "" || entry.LastAccessed.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.LastAccessed
		}
	}

	if oldestKey != "" {
		delete(c.cache, oldestKey)
		c.recordEviction()
	}
}

func (c *Cache) recordHit() {
	c.stats.mutex.Lock()
	defer c.stats.mutex.Unlock()
	c.stats.Hits++
}

func (c *Cache) recordMiss() {
	c.stats.mutex.Lock()
	defer c.stats.mutex.Unlock()
	c.stats.Misses++
}

func (c *Cache) recordEviction() {
	c.stats.mutex.Lock()
	defer c.stats.mutex.Unlock()
	c.stats.Evictions++
}

// GetStats returns cache statistics
func (c *Cache) GetStats() map[string]interface{} {
	c.stats.mutex.RLock()
	defer c.stats.mutex.RUnlock()

	c.mutex.RLock()
	cacheSize := len(c.cache)
	c.mutex.RUnlock()

	hitRate := 0.0
	total := c.stats.Hits + c.stats.Misses
	if total > 0 {
		hitRate = float64(c.stats.Hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"cache_size":    cacheSize,
		"max_entries":   c.maxEntries,
		"hits":          c.stats.Hits,
		"misses":        c.stats.Misses,
		"hit_rate":      fmt.Sprintf("%.2f%%", hitRate),
		"evictions":     c.stats.Evictions,
		"invalidations": c.stats.Invalidations,
		"ttl_seconds":   int(c.ttl.Seconds()),
	}
}
