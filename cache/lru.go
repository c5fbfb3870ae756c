// Package cache provides a bounded, concurrency-safe LRU cache with
// predicate eviction.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a bounded cache evicting the least recently used entry when
// full. Keys are typically small composite structs.
type LRU[K comparable, V any] struct {
	c *lru.Cache[K, V]
}

// New creates a cache holding at most size entries.
func New[K comparable, V any](size int) (*LRU[K, V], error) {
	c, err := lru.New[K, V](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LRU[K, V]{c: c}, nil
}

// Get returns the value for key and marks it most recently used.
func (l *LRU[K, V]) Get(key K) (V, bool) {
	return l.c.Get(key)
}

// Put stores value under key, evicting the oldest entry if needed. It
// reports whether an eviction happened.
func (l *LRU[K, V]) Put(key K, value V) bool {
	return l.c.Add(key, value)
}

// Evict removes every entry for which pred returns true and returns how
// many were removed. Entries are visited oldest first; visiting does
// not change their recency.
func (l *LRU[K, V]) Evict(pred func(K, V) bool) int {
	n := 0
	for _, k := range l.c.Keys() {
		v, ok := l.c.Peek(k)
		if ok && pred(k, v) && l.c.Remove(k) {
			n++
		}
	}
	return n
}

// Keys returns the keys from oldest to newest.
func (l *LRU[K, V]) Keys() []K {
	return l.c.Keys()
}

// Len returns the number of entries.
func (l *LRU[K, V]) Len() int {
	return l.c.Len()
}

// Purge removes every entry.
func (l *LRU[K, V]) Purge() {
	l.c.Purge()
}
