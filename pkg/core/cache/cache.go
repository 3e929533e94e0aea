package cache

import (
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// Entry represents a cached item with expiration
type Entry struct {
	Value      interface{}
	Expiration time.Time
}

// IsExpired checks if the entry has expired
func (e *Entry) IsExpired() bool {
	if e.Expiration.IsZero() {
		return false // Never expires
	}
	return time.Now().After(e.Expiration)
}

// Cache is a thread-safe, size-bounded LRU cache with TTL support
type Cache struct {
	items *lru.Cache
	ttl   time.Duration

	// Metrics
	hits      int64
	misses    int64
	evictions int64
	expired   int64
}

// Config holds cache configuration
type Config struct {
	MaxItems int
	TTL      time.Duration
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxItems: 1024,
		TTL:      10 * time.Minute,
	}
}

// New creates a new cache instance
func New(cfg Config) (*Cache, error) {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultConfig().MaxItems
	}
	if cfg.TTL < 0 {
		cfg.TTL = 0
	}

	items, err := lru.New(cfg.MaxItems)
	if err != nil {
		return nil, err
	}
	return &Cache{items: items, ttl: cfg.TTL}, nil
}

// Get retrieves a value from the cache
func (c *Cache) Get(key string) (interface{}, bool) {
	raw, ok := c.items.Get(key)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	entry := raw.(*Entry)
	if entry.IsExpired() {
		c.items.Remove(key)
		atomic.AddInt64(&c.expired, 1)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&c.hits, 1)
	return entry.Value, true
}

// Set stores a value in the cache with the default TTL
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL, zero means no expiry
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	if c.items.Add(key, &Entry{Value: value, Expiration: exp}) {
		atomic.AddInt64(&c.evictions, 1)
	}
}

// Delete removes a value from the cache
func (c *Cache) Delete(key string) {
	c.items.Remove(key)
}

// Clear removes all items from the cache
func (c *Cache) Clear() {
	c.items.Purge()
}

// Size returns the number of items in the cache, expired ones included
func (c *Cache) Size() int {
	return c.items.Len()
}

// Stats returns cache statistics
func (c *Cache) Stats() (hits, misses int64, hitRate float64) {
	hits = atomic.LoadInt64(&c.hits)
	misses = atomic.LoadInt64(&c.misses)
	total := hits + misses
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return
}

// Evictions returns how many entries were pushed out to make room
func (c *Cache) Evictions() int64 {
	return atomic.LoadInt64(&c.evictions)
}

// Expired returns how many entries were dropped after their TTL ran out
func (c *Cache) Expired() int64 {
	return atomic.LoadInt64(&c.expired)
}

// Cleanup removes all expired entries and returns how many were removed
func (c *Cache) Cleanup() int {
	removed := 0
	for _, key := range c.items.Keys() {
		raw, ok := c.items.Peek(key)
		if ok && raw.(*Entry).IsExpired() {
			c.items.Remove(key)
			removed++
		}
	}
	atomic.AddInt64(&c.expired, int64(removed))
	return removed
}

// GetOrSet gets a value or computes and stores it if not present
func (c *Cache) GetOrSet(key string, fn func() (interface{}, error)) (interface{}, error) {
	return c.GetOrSetWithTTL(key, c.ttl, fn)
}

// GetOrSetWithTTL is like GetOrSet but with custom TTL
func (c *Cache) GetOrSetWithTTL(key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	if val, ok := c.Get(key); ok {
		return val, nil
	}

	val, err := fn()
	if err != nil {
		return nil, err
	}

	c.SetWithTTL(key, val, ttl)
	return val, nil
}
