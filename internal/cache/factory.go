// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cache

import (
	"fmt"
	"time"

	"github.com/ManuGH/storefront/internal/config"
	"github.com/rs/zerolog"
)

// New builds the configured cache backend.
func New(cfg config.CacheSettings, logger zerolog.Logger) (Cache, error) {
	switch cfg.Backend {
	case config.CacheBackendNone:
		return NewNoOpCache(), nil
	case "", config.CacheBackendMemory:
		return NewMemoryCache(time.Minute), nil
	case config.CacheBackendRedis:
		c, err := NewRedisCache(RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB}, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}
