// Package cache provides small injectable time-to-live caches for
// read-mostly shared values (credential tokens, the approved-code list).
// Staleness only costs an extra fetch, never correctness, so invalidation
// is TTL-based rather than locked around the producer.
package cache

import (
	"sync"
	"time"
)

// TTL is a single-value cache with time-to-live invalidation. The zero
// value is not usable; construct with NewTTL. Safe for concurrent use.
type TTL[T any] struct {
	mu      sync.Mutex
	val     T
	set     bool
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewTTL creates a cache whose entries live for ttl. A non-positive ttl
// disables expiry (entries live until invalidated).
func NewTTL[T any](ttl time.Duration) *TTL[T] {
	return &TTL[T]{ttl: ttl, now: time.Now}
}

// Get returns the cached value and whether it is present and fresh.
func (c *TTL[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if !c.set {
		return zero, false
	}
	if c.ttl > 0 && c.now().After(c.expires) {
		c.set = false
		c.val = zero
		return zero, false
	}
	return c.val, true
}

// Set stores a value and restarts its TTL.
func (c *TTL[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.val = v
	c.set = true
	if c.ttl > 0 {
		c.expires = c.now().Add(c.ttl)
	}
}

// Invalidate drops the cached value immediately.
func (c *TTL[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.val = zero
	c.set = false
}

// GetOrFill returns the cached value if fresh, otherwise calls fill, caches
// the result on success, and returns it. Concurrent callers may race to
// fill; the last writer wins, which is acceptable for read-mostly values.
func (c *TTL[T]) GetOrFill(fill func() (T, error)) (T, error) {
	if v, ok := c.Get(); ok {
		return v, nil
	}
	v, err := fill()
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(v)
	return v, nil
}

// SetClock overrides the time source, for tests.
func (c *TTL[T]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
