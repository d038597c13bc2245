// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"fmt"

	"github.com/ManuGH/storefront/internal/config"
)

// OpenStore creates a Store based on the backend configuration.
func OpenStore(ctx context.Context, cfg config.SessionSettings) (Store, error) {
	switch cfg.Backend {
	case "", config.SessionBackendMemory:
		return NewMemoryStore(), nil
	case config.SessionBackendRedis:
		s, err := NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.SessionBackendBadger:
		s, err := OpenBadgerStore(cfg.BadgerDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown session backend: %s", cfg.Backend)
	}
}
