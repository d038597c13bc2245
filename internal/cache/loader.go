// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManuGH/storefront/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// Loader reads typed values through a Cache. Concurrent misses for the same
// key share one call to the load function.
type Loader[T any] struct {
	name  string
	cache Cache
	group singleflight.Group
}

// NewLoader creates a loader. name labels the lookup metrics.
func NewLoader[T any](name string, c Cache) *Loader[T] {
	if c == nil {
		c = NewNoOpCache()
	}
	return &Loader[T]{name: name, cache: c}
}

// Load returns the cached value for key or calls fn and caches its result.
// Errors from fn are never cached.
func (l *Loader[T]) Load(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if raw, ok := l.cache.Get(key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.RecordCacheLookup(l.name, "hit")
			return v, nil
		}
		l.cache.Delete(key)
	}

	res, err, shared := l.group.Do(key, func() (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return v, err
		}
		if raw, mErr := json.Marshal(v); mErr == nil {
			l.cache.Set(key, raw, ttl)
		}
		return v, nil
	})
	if shared {
		metrics.RecordCacheLookup(l.name, "shared")
	} else {
		metrics.RecordCacheLookup(l.name, "miss")
	}
	if err != nil {
		var zero T
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache %s: unexpected value type %T", l.name, res)
	}
	return v, nil
}

// Invalidate drops key from the cache.
func (l *Loader[T]) Invalidate(key string) {
	l.cache.Delete(key)
}
