// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package cache provides byte caches with TTL support and a typed,
// deduplicating loader on top of them.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cache stores opaque byte values with a TTL. Implementations are safe for
// concurrent use; Loader layers typed values on top.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
	// Clear drops every entry this cache owns.
	Clear()
	Stats() Stats
	Close() error
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits        int64
	Misses      int64 // includes expired entries
	Sets        int64
	Evictions   int64 // entries dropped by the sweep
	CurrentSize int
}

type counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
}

func (c *counters) snapshot(size int) Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Sets:        c.sets.Load(),
		Evictions:   c.evictions.Load(),
		CurrentSize: size,
	}
}

type entry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

func (e entry) live(now time.Time) bool {
	return e.expires.IsZero() || !now.After(e.expires)
}

// memoryCache keeps entries in a map guarded by mu. A background sweep
// removes expired entries when an interval is configured.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	stats   counters
	now     func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryCache returns an in-process cache. A positive sweepInterval starts
// a goroutine that drops expired entries until Close.
func NewMemoryCache(sweepInterval time.Duration) Cache {
	return newMemoryCache(sweepInterval)
}

func newMemoryCache(sweepInterval time.Duration) *memoryCache {
	c := &memoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go c.sweepEvery(sweepInterval)
	}
	return c
}

func (c *memoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !e.live(c.now()) {
		c.stats.misses.Add(1)
		return nil, false
	}
	c.stats.hits.Add(1)
	return e.value, true
}

// Set stores value. A non-positive ttl keeps the entry until it is deleted.
func (c *memoryCache) Set(key string, value []byte, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	c.stats.sets.Add(1)
}

func (c *memoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *memoryCache) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

func (c *memoryCache) Stats() Stats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return c.stats.snapshot(n)
}

// sweep drops expired entries and reports how many went.
func (c *memoryCache) sweep() int {
	now := c.now()
	removed := 0

	c.mu.Lock()
	for k, e := range c.entries {
		if !e.live(now) {
			delete(c.entries, k)
			removed++
		}
	}
	c.mu.Unlock()

	c.stats.evictions.Add(int64(removed))
	return removed
}

func (c *memoryCache) sweepEvery(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

// Close stops the sweep goroutine. It is safe to call more than once.
func (c *memoryCache) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// noOpCache backs the "none" cache backend.
type noOpCache struct{}

// NewNoOpCache returns a Cache that stores nothing.
func NewNoOpCache() Cache {
	return noOpCache{}
}

func (noOpCache) Get(string) ([]byte, bool)          { return nil, false }
func (noOpCache) Set(string, []byte, time.Duration) {}
func (noOpCache) Delete(string)                     {}
func (noOpCache) Clear()                            {}
func (noOpCache) Stats() Stats                      { return Stats{} }
func (noOpCache) Close() error                      { return nil }
