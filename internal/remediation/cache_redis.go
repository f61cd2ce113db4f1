package remediation

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on top of go-redis. Eviction scans rather than
// KEYS so a large keyspace does not block the server.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an established Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// DeleteByPattern removes every key matching the pattern and returns how many
// were deleted. Deleting zero keys is success: the fix is idempotent.
func (c *RedisCache) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	var deleted int64
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("delete cache key %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scan cache keys: %w", err)
	}
	return deleted, nil
}
