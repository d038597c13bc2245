// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Keys live under this prefix so the cache can share a database with the
// session store.
const redisKeyPrefix = "storefront:cache:"

const (
	redisOpTimeout   = 2 * time.Second
	redisScanTimeout = 5 * time.Second
	redisScanBatch   = 100
)

// RedisConfig selects the Redis database backing a RedisCache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache stores entries in Redis. Backend errors degrade to cache misses
// and are logged at warn level.
type RedisCache struct {
	client *redis.Client
	logger zerolog.Logger
	stats  counters
}

// NewRedisCache connects to Redis and fails if the server does not answer a PING.
func NewRedisCache(cfg RedisConfig, logger zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisScanTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: redis at %s unreachable: %w", cfg.Addr, err)
	}

	logger.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("redis cache connected")
	return newRedisCache(client, logger), nil
}

func newRedisCache(client *redis.Client, logger zerolog.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

func (c *RedisCache) op() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisOpTimeout)
}

func (c *RedisCache) warn(err error, action, key string) {
	c.logger.Warn().Err(err).Str("key", key).Msgf("redis %s failed", action)
}

func (c *RedisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := c.op()
	defer cancel()

	val, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warn(err, "get", key)
		}
		c.stats.misses.Add(1)
		return nil, false
	}
	c.stats.hits.Add(1)
	return val, true
}

func (c *RedisCache) Set(key string, value []byte, ttl time.Duration) {
	ctx, cancel := c.op()
	defer cancel()

	if err := c.client.Set(ctx, redisKeyPrefix+key, value, ttl).Err(); err != nil {
		c.warn(err, "set", key)
		return
	}
	c.stats.sets.Add(1)
}

func (c *RedisCache) Delete(key string) {
	ctx, cancel := c.op()
	defer cancel()

	if err := c.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		c.warn(err, "delete", key)
	}
}

// eachKey calls fn for every key under the cache prefix.
func (c *RedisCache) eachKey(fn func(ctx context.Context, key string)) {
	ctx, cancel := context.WithTimeout(context.Background(), redisScanTimeout)
	defer cancel()

	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", redisScanBatch).Iterator()
	for iter.Next(ctx) {
		fn(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.warn(err, "scan", redisKeyPrefix+"*")
	}
}

// Clear removes only keys under the cache prefix.
func (c *RedisCache) Clear() {
	c.eachKey(func(ctx context.Context, key string) {
		if err := c.client.Del(ctx, key).Err(); err != nil {
			c.warn(err, "delete", key)
		}
	})
}

func (c *RedisCache) Stats() Stats {
	size := 0
	c.eachKey(func(context.Context, string) { size++ })
	return c.stats.snapshot(size)
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// HealthCheck pings the server.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
