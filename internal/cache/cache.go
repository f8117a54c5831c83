// Package cache provides a generic thread-safe TTL cache. Each instance is
// parameterized with its own TTL and optional maximum entry count; entries
// expire on read and are swept opportunistically once the store grows past
// a small threshold.
package cache

import (
	"sort"
	"sync"
	"time"
)

// defaultCleanupThreshold is the entry count past which Set sweeps expired
// entries. Kept small so a rarely-read cache cannot grow without bound
// between explicit invalidations.
const defaultCleanupThreshold = 128

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Cache is a thread-safe keyed store mapping string keys to values with an
// insertion timestamp. A value is served only while its age is below the
// cache's TTL.
type Cache[V any] struct {
	mu               sync.Mutex
	data             map[string]entry[V]
	ttl              time.Duration
	maxEntries       int
	cleanupThreshold int
	timeFunc         func() time.Time // Injectable for testing
}

// Option customizes a Cache at construction time.
type Option[V any] func(*Cache[V])

// WithMaxEntries bounds the cache to at most n entries. When a sweep leaves
// the cache over the bound, the oldest-inserted entries are evicted first.
func WithMaxEntries[V any](n int) Option[V] {
	return func(c *Cache[V]) {
		c.maxEntries = n
		if n > 0 && n < c.cleanupThreshold {
			c.cleanupThreshold = n
		}
	}
}

// WithTimeFunc overrides the clock used for expiry checks.
func WithTimeFunc[V any](fn func() time.Time) Option[V] {
	return func(c *Cache[V]) {
		c.timeFunc = fn
	}
}

// New creates a cache whose entries expire after the given TTL.
func New[V any](ttl time.Duration, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		data:             make(map[string]entry[V]),
		ttl:              ttl,
		cleanupThreshold: defaultCleanupThreshold,
		timeFunc:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value by key. An entry whose age has reached the TTL is
// removed and reported as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if !ok {
		var zero V
		return zero, false
	}

	if c.timeFunc().Sub(e.insertedAt) >= c.ttl {
		delete(c.data, key)
		var zero V
		return zero, false
	}

	return e.value, true
}

// Set stores a value by key, recording the insertion time. Once the entry
// count exceeds the cleanup threshold, expired entries are swept and, if the
// cache is still over its configured maximum, the oldest entries evicted.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = entry[V]{value: value, insertedAt: c.timeFunc()}

	if len(c.data) > c.cleanupThreshold {
		c.sweep()
	}
}

// InvalidateAll removes every entry from the cache.
func (c *Cache[V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]entry[V])
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// sweep removes expired entries and enforces maxEntries by evicting the
// oldest-inserted survivors. Caller must hold the lock.
func (c *Cache[V]) sweep() {
	now := c.timeFunc()
	for k, e := range c.data {
		if now.Sub(e.insertedAt) >= c.ttl {
			delete(c.data, k)
		}
	}

	if c.maxEntries <= 0 || len(c.data) <= c.maxEntries {
		return
	}

	type aged struct {
		key        string
		insertedAt time.Time
	}
	entries := make([]aged, 0, len(c.data))
	for k, e := range c.data {
		entries = append(entries, aged{key: k, insertedAt: e.insertedAt})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].insertedAt.Before(entries[j].insertedAt)
	})

	for _, e := range entries[:len(entries)-c.maxEntries] {
		delete(c.data, e.key)
	}
}
