// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package cache

import (
	"sync"
	"time"
)

// lruEntry is a node of the LRU's doubly-linked list.
type lruEntry[V any] struct {
	key       string
	value     V
	prev      *lruEntry[V]
	next      *lruEntry[V]
	expiresAt time.Time
}

// LRU is a thread-safe least recently used cache with TTL support.
//
// Key features:
//   - O(1) Get, Add, Remove operations
//   - O(1) LRU eviction when capacity is reached
//   - TTL support with lazy expiration
//
// A hashmap provides lookups and a doubly-linked list keeps recency order.
type LRU[V any] struct {
	mu sync.Mutex

	// capacity is the maximum number of entries
	capacity int

	// ttl is the time-to-live for entries
	ttl time.Duration

	// items maps keys to list nodes
	items map[string]*lruEntry[V]

	// head and tail are sentinel nodes.
	// head.next is the most recently used, tail.prev the least recently used.
	head *lruEntry[V]
	tail *lruEntry[V]

	// now is replaceable in tests
	now func() time.Time

	hits   int64
	misses int64
}

// NewLRU creates a new LRU cache with the specified capacity and TTL.
func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 1000 // Default capacity
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute // Default TTL
	}

	c := &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*lruEntry[V], capacity),
		head:     &lruEntry[V]{},
		tail:     &lruEntry[V]{},
		now:      time.Now,
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get returns the value stored under key if present and not expired.
// Found entries become the most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, exists := c.items[key]
	if !exists {
		c.misses++
		return zero, false
	}

	if c.now().After(entry.expiresAt) {
		c.removeEntry(entry)
		c.misses++
		return zero, false
	}

	c.moveToFront(entry)
	c.hits++
	return entry.value, true
}

// Add adds or updates an entry, evicting the least recently used entry
// when the cache is at capacity.
func (c *LRU[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)

	if entry, exists := c.items[key]; exists {
		entry.value = value
		entry.expiresAt = expiresAt
		c.moveToFront(entry)
		return
	}

	entry := &lruEntry[V]{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	}
	c.addToFront(entry)
	c.items[key] = entry

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Remove removes an entry. Returns true if the entry was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.items[key]; exists {
		c.removeEntry(entry)
		return true
	}
	return false
}

// Len returns the current number of entries, expired ones included.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*lruEntry[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// CleanupExpired removes all expired entries and returns how many were removed.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0

	// Walk from tail (oldest) to head (newest)
	for entry := c.tail.prev; entry != c.head; {
		prev := entry.prev
		if now.After(entry.expiresAt) {
			c.removeEntry(entry)
			removed++
		}
		entry = prev
	}

	return removed
}

// Stats returns cache hit/miss statistics.
func (c *LRU[V]) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Internal methods (must be called with lock held)

func (c *LRU[V]) addToFront(entry *lruEntry[V]) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *LRU[V]) moveToFront(entry *lruEntry[V]) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *LRU[V]) removeEntry(entry *lruEntry[V]) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}

func (c *LRU[V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}
