// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import "sync"

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithEvict sets a function called with every entry that leaves the
// cache through capacity eviction, replacement, Remove or Purge. It runs
// after the cache lock is released.
func WithEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.onEvict = fn
	}
}

// Cache is a thread-safe LRU cache holding at most capacity entries.
//
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*entry[K, V]
	order    recency[K, V]
	capacity int
	onEvict  func(K, V)

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache. A capacity of 0 or less means unbounded.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		entries:  make(map[K]*entry[K, V]),
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.touch(e)
	return e.value, true
}

// Put stores value under key, evicting the least recently used entries
// while over capacity. A replaced value is passed to the evict callback.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	dropped := c.put(key, value)
	c.mu.Unlock()
	c.release(dropped)
}

// GetOrLoad returns the cached value for key, or calls load and caches
// its result. Errors are returned without caching. load runs under the
// cache lock, so concurrent callers for the same key load once.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.hits++
		c.order.touch(e)
		c.mu.Unlock()
		return e.value, nil
	}
	c.misses++

	value, err := load()
	if err != nil {
		c.mu.Unlock()
		return value, err
	}
	dropped := c.put(key, value)
	c.mu.Unlock()
	c.release(dropped)
	return value, nil
}

// Remove deletes key. Returns true if it was present.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
		c.order.unlink(e)
	}
	c.mu.Unlock()

	if ok {
		c.release([]*entry[K, V]{e})
	}
	return ok
}

// Purge removes every entry.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	dropped := make([]*entry[K, V], 0, len(c.entries))
	for e := c.order.popBack(); e != nil; e = c.order.popBack() {
		dropped = append(dropped, e)
	}
	c.entries = make(map[K]*entry[K, V])
	c.mu.Unlock()
	c.release(dropped)
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the configured bound.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// put inserts under c.mu and returns the entries that fell out.
func (c *Cache[K, V]) put(key K, value V) []*entry[K, V] {
	var dropped []*entry[K, V]
	if old, ok := c.entries[key]; ok {
		c.order.unlink(old)
		dropped = append(dropped, old)
	}
	e := &entry[K, V]{key: key, value: value}
	c.entries[key] = e
	c.order.pushFront(e)

	for c.capacity > 0 && len(c.entries) > c.capacity {
		victim := c.order.popBack()
		delete(c.entries, victim.key)
		c.evictions++
		dropped = append(dropped, victim)
	}
	return dropped
}

func (c *Cache[K, V]) release(dropped []*entry[K, V]) {
	if c.onEvict == nil {
		return
	}
	for _, e := range dropped {
		c.onEvict(e.key, e.value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the configured bound, 0 for unbounded.
	Capacity int
	// Hits and Misses count Get and GetOrLoad lookups.
	Hits   uint64
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0 before any lookup.
	HitRate float64
	// Evictions counts entries dropped for capacity.
	Evictions uint64
}
