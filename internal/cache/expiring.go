package cache

import (
	"sync"
	"time"
)

// entry stores a cached value and its absolute expiration timestamp.
type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiration
}

// Expiring is a goroutine-safe map with per-entry TTL. Expired entries are
// invisible to readers and dropped lazily or by PurgeExpired.
type Expiring[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]entry[V]
	now   func() time.Time
}

// New constructs an empty Expiring map using the wall clock.
func New[K comparable, V any]() *Expiring[K, V] {
	return NewWithClock[K, V](time.Now)
}

// NewWithClock is New with an injectable clock for tests.
func NewWithClock[K comparable, V any](now func() time.Time) *Expiring[K, V] {
	return &Expiring[K, V]{items: make(map[K]entry[V]), now: now}
}

func (c *Expiring[K, V]) live(e entry[V], at time.Time) bool {
	return e.expiresAt.IsZero() || at.Before(e.expiresAt)
}

// Get returns the value and whether it was present and not expired.
func (c *Expiring[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	e, ok := c.items[key]
	if !ok || !c.live(e, c.now()) {
		return zero, false
	}
	return e.value, true
}

// Set stores the value. If ttl <= 0 the entry does not expire.
func (c *Expiring[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.items[key] = entry[V]{value: value, expiresAt: exp}
}

// SetIfAbsent stores the value only when no live entry exists for key and
// reports whether it did. Used as a throttle gate.
func (c *Expiring[K, V]) SetIfAbsent(key K, value V, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	at := c.now()
	if e, ok := c.items[key]; ok && c.live(e, at) {
		return false
	}
	var exp time.Time
	if ttl > 0 {
		exp = at.Add(ttl)
	}
	c.items[key] = entry[V]{value: value, expiresAt: exp}
	return true
}

// Delete removes a key if present.
func (c *Expiring[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Range calls fn for every live entry until fn returns false.
func (c *Expiring[K, V]) Range(fn func(key K, value V) bool) {
	c.mu.RLock()
	at := c.now()
	snapshot := make(map[K]V, len(c.items))
	for k, e := range c.items {
		if c.live(e, at) {
			snapshot[k] = e.value
		}
	}
	c.mu.RUnlock()

	for k, v := range snapshot {
		if !fn(k, v) {
			return
		}
	}
}

// Len returns the number of live entries.
func (c *Expiring[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	at := c.now()
	count := 0
	for _, e := range c.items {
		if c.live(e, at) {
			count++
		}
	}
	return count
}

// PurgeExpired scans and removes expired entries, returning how many it dropped.
func (c *Expiring[K, V]) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	at := c.now()
	n := 0
	for k, e := range c.items {
		if !c.live(e, at) {
			delete(c.items, k)
			n++
		}
	}
	return n
}
