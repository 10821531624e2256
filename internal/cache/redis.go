// Package cache is the Redis-backed session cache. Verified bearer tokens
// are mapped to caller identities so hot requests skip signature checks.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds the Redis connection shared by the session operations and
// the readiness probe.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection before returning.
// The traffic is single-key GETs and SETs of short values on the request
// path, so the pool stays small with one warm connection; a slow pool
// checkout fails fast and the middleware falls through to verification.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opt.PoolSize = 8
	opt.MinIdleConns = 1
	opt.PoolTimeout = 2 * time.Second
	opt.ConnMaxIdleTime = 10 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Ping reports connectivity. The readiness endpoint calls it.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the raw client for test helpers that need to flush the
// keyspace between runs.
func (c *Cache) Client() *redis.Client {
	return c.client
}
