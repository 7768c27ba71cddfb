package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RosterCache implements ports.RosterCache using Redis. It holds
// serialized account listings only; balance-bearing preconditions always
// read PostgreSQL inside their own transaction.
type RosterCache struct {
	client *goredis.Client
	prefix string
}

// NewRosterCache creates a new Redis-backed roster cache.
func NewRosterCache(client *goredis.Client) *RosterCache {
	return &RosterCache{
		client: client,
		prefix: "roster:",
	}
}

// Get retrieves a cached roster by key. Returns nil, nil if the key does
// not exist.
func (c *RosterCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis roster get: %w", err)
	}
	return val, nil
}

// Set stores a roster in the cache with TTL.
func (c *RosterCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+key, value, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis roster set: %w", err)
	}
	return nil
}

// Invalidate drops the given roster keys.
func (c *RosterCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.prefix + k
	}
	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis roster del: %w", err)
	}
	return nil
}
