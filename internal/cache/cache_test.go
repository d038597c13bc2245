// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemoryCache_GetSet(t *testing.T) {
	cache := NewMemoryCache(0)

	cache.Set("key1", []byte("value1"), 5*time.Minute)

	val, ok := cache.Get("key1")
	require.True(t, ok, "expected to find key1")
	assert.Equal(t, []byte("value1"), val)

	_, ok = cache.Get("nonexistent")
	assert.False(t, ok, "expected not to find nonexistent key")

	stats := cache.Stats()
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 1, stats.Sets)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestMemoryCache_Expiration(t *testing.T) {
	c := newMemoryCache(0)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("shortlived", []byte("value"), time.Second)
	_, ok := c.Get("shortlived")
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("shortlived")
	assert.False(t, ok, "expected key to be expired")

	assert.Equal(t, 1, c.sweep())
	assert.EqualValues(t, 1, c.Stats().Evictions)
	assert.Equal(t, 0, c.Stats().CurrentSize)
}

func TestMemoryCache_NoTTLNeverExpires(t *testing.T) {
	c := newMemoryCache(0)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("pinned", []byte("v"), 0)
	now = now.Add(24 * time.Hour)
	_, ok := c.Get("pinned")
	assert.True(t, ok)
	assert.Zero(t, c.sweep())
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	cache := NewMemoryCache(0)
	cache.Set("a", []byte("1"), time.Minute)
	cache.Set("b", []byte("2"), time.Minute)

	cache.Delete("a")
	_, ok := cache.Get("a")
	assert.False(t, ok)

	cache.Clear()
	assert.Equal(t, 0, cache.Stats().CurrentSize)
}

func TestMemoryCache_JanitorStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cache := NewMemoryCache(10 * time.Millisecond)
	cache.Set("x", []byte("y"), time.Millisecond)
	require.Eventually(t, func() bool {
		return cache.Stats().CurrentSize == 0
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())
}

func TestNoOpCache(t *testing.T) {
	cache := NewNoOpCache()
	cache.Set("k", []byte("v"), time.Minute)
	_, ok := cache.Get("k")
	assert.False(t, ok)
	assert.Equal(t, Stats{}, cache.Stats())
}
