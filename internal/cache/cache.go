// Package cache provides a small sharded LRU used for glyph masks and
// other derived raster data. Shards cut lock contention when a cache
// is shared across goroutines; within one shard, eviction is plain LRU.
package cache

import (
	"hash/maphash"
	"sync"
	"sync/atomic"
)

const (
	shardCount = 8
	shardMask  = shardCount - 1

	// defaultCapacity is the per-shard entry limit when the caller
	// passes a non-positive capacity.
	defaultCapacity = 128
)

// Hasher computes the shard hash for a key.
type Hasher[K any] func(K) uint64

var seed = maphash.MakeSeed()

// StringHasher hashes string keys.
func StringHasher(s string) uint64 {
	return maphash.String(seed, s)
}

// Uint64Hasher is the identity hash for integer keys.
func Uint64Hasher(u uint64) uint64 { return u }

// LRU is a sharded least-recently-used cache.
type LRU[K comparable, V any] struct {
	shards   [shardCount]shard[K, V]
	hasher   Hasher[K]
	capacity int

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Stats is a point-in-time snapshot of cache behavior.
type Stats struct {
	Len    int
	Hits   uint64
	Misses uint64
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*node[K, V]
	head    *node[K, V] // most recent
	tail    *node[K, V] // eviction candidate
}

type node[K comparable, V any] struct {
	key        K
	value      V
	prev, next *node[K, V]
}

// NewLRU creates a cache with the given per-shard capacity.
func NewLRU[K comparable, V any](capacity int, hasher Hasher[K]) *LRU[K, V] {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	c := &LRU[K, V]{hasher: hasher, capacity: capacity}
	for i := range c.shards {
		c.shards[i].entries = make(map[K]*node[K, V])
	}
	return c
}

func (c *LRU[K, V]) shardFor(key K) *shard[K, V] {
	return &c.shards[c.hasher(key)&shardMask]
}

// Get returns the cached value and refreshes its recency.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	n, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.moveToFront(n)
	v := n.value
	s.mu.Unlock()
	c.hits.Add(1)
	return v, true
}

// GetOrCreate returns the cached value, building and inserting it on a
// miss. create runs with the shard locked, so concurrent callers for
// the same key build it once.
func (c *LRU[K, V]) GetOrCreate(key K, create func() V) V {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.entries[key]; ok {
		s.moveToFront(n)
		c.hits.Add(1)
		return n.value
	}
	c.misses.Add(1)
	v := create()
	s.insert(key, v, c.capacity)
	return v
}

// Set stores a value, evicting the shard's oldest entry when full.
func (c *LRU[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.entries[key]; ok {
		n.value = value
		s.moveToFront(n)
		return
	}
	s.insert(key, value, c.capacity)
}

// Delete removes an entry, reporting whether it existed.
func (c *LRU[K, V]) Delete(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.entries[key]
	if !ok {
		return false
	}
	s.unlink(n)
	delete(s.entries, key)
	return true
}

// Clear drops every entry.
func (c *LRU[K, V]) Clear() {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		s.entries = make(map[K]*node[K, V])
		s.head, s.tail = nil, nil
		s.mu.Unlock()
	}
}

// Len returns the entry count across all shards.
func (c *LRU[K, V]) Len() int {
	total := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Stats returns hit/miss counters and the current size.
func (c *LRU[K, V]) Stats() Stats {
	return Stats{Len: c.Len(), Hits: c.hits.Load(), Misses: c.misses.Load()}
}

func (s *shard[K, V]) insert(key K, value V, capacity int) {
	for len(s.entries) >= capacity && s.tail != nil {
		oldest := s.tail
		s.unlink(oldest)
		delete(s.entries, oldest.key)
	}
	n := &node[K, V]{key: key, value: value}
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
	s.entries[key] = n
}

func (s *shard[K, V]) moveToFront(n *node[K, V]) {
	if s.head == n {
		return
	}
	s.unlink(n)
	n.prev, n.next = nil, s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

func (s *shard[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else if s.head == n {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else if s.tail == n {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
