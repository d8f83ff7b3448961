// Package cache memoizes codec results for repeated sentence pairs.
//
// Parallel corpora repeat short sentences often (titles, boilerplate, single
// word lines), so the CLI keeps an LRU of encoded sequences keyed by a BLAKE3
// fingerprint of the inputs that determine them.
package cache

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// Stats contains cache statistics.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
}

// HitRate returns hits / (hits + misses), or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Config contains cache configuration options.
type Config struct {
	// MaxSize is the maximum number of entries (0 = unlimited).
	MaxSize int

	// OnEvict is called when an entry is evicted or removed.
	OnEvict func(key string, value any)
}

// LRU is a thread-safe least recently used cache keyed by fingerprint.
type LRU[V any] struct {
	mu       sync.Mutex
	config   Config
	entries  *lru.Cache
	stats    Stats
	removing bool
}

// NewLRU creates an LRU cache with the given configuration.
func NewLRU[V any](config Config) *LRU[V] {
	if config.MaxSize < 0 {
		config.MaxSize = 0
	}
	c := &LRU[V]{config: config, entries: lru.New(config.MaxSize)}
	c.entries.OnEvicted = func(key lru.Key, value interface{}) {
		if !c.removing {
			c.stats.Evictions++
		}
		if c.config.OnEvict != nil {
			c.config.OnEvict(key.(string), value)
		}
	}
	return c
}

// Get retrieves a value and marks it most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries.Get(key)
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	return v.(V), true
}

// Put stores a value, evicting the least recently used entry when full.
func (c *LRU[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(key, value)
}

// Remove deletes key if present.
func (c *LRU[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removing = true
	c.entries.Remove(key)
	c.removing = false
}

// Len returns the number of entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Stats returns a snapshot of the cache statistics.
func (c *LRU[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.entries.Len()
	s.MaxSize = c.config.MaxSize
	return s
}

// Do returns the cached value for key, computing and storing it with fn on a
// miss. Errors are not cached. A nil cache always calls fn.
func (c *LRU[V]) Do(key string, fn func() (V, error)) (V, error) {
	if c == nil {
		return fn()
	}
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		return v, err
	}
	c.Put(key, v)
	return v, nil
}
