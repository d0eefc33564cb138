package filestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// URLCache stores signed URLs for less than their remaining lifetime.
type URLCache interface {
	// Get returns the cached URL and its remaining lifetime.
	Get(ctx context.Context, filename string) (url string, ttl time.Duration, ok bool, err error)
	// Set stores url for a file whose signature expires after expiresIn.
	Set(ctx context.Context, filename, url string, expiresIn time.Duration) error
}

// DefaultCacheMargin is subtracted from the signature lifetime so a cached
// URL is never served close to its expiry.
const DefaultCacheMargin = 30 * time.Second

const cacheKeyPrefix = "signed-url:"

// RedisCache is a URLCache on Redis.
type RedisCache struct {
	client *redis.Client
	margin time.Duration
}

// NewRedisCache creates a Redis-backed signed-URL cache.
func NewRedisCache(client *redis.Client, margin time.Duration) *RedisCache {
	if margin < 0 {
		margin = DefaultCacheMargin
	}
	return &RedisCache{client: client, margin: margin}
}

func cacheKey(filename string) string {
	return cacheKeyPrefix + filename
}

// Get implements URLCache.
func (c *RedisCache) Get(ctx context.Context, filename string) (string, time.Duration, bool, error) {
	key := cacheKey(filename)
	pipe := c.client.Pipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return "", 0, false, fmt.Errorf("read signed url: %w", err)
	}

	signed, err := getCmd.Result()
	if errors.Is(err, redis.Nil) {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, fmt.Errorf("read signed url: %w", err)
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}
	return signed, ttl, true, nil
}

// Set implements URLCache. URLs that expire within the margin are skipped.
func (c *RedisCache) Set(ctx context.Context, filename, url string, expiresIn time.Duration) error {
	ttl := expiresIn - c.margin
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, cacheKey(filename), url, ttl).Err(); err != nil {
		return fmt.Errorf("write signed url: %w", err)
	}
	return nil
}
