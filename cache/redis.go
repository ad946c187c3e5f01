package cache

import (
	"context"
	"time"

	"github.com/ZaguanLabs/modtl"
	"github.com/redis/go-redis/v9"
)

// RedisCache is a Redis-backed translation memory. A namespace is one hash:
// the field is the source string, the value its translation.
type RedisCache struct {
	client *redis.Client
	key    string
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix string // Prefix for the hash key (default: "modtl:tm:")
	Namespace string // Language pair, see Namespace
}

// NewRedisCache creates a new Redis cache with the given configuration.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, &modtl.CacheError{Message: "parse redis url", Cause: err}
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, &modtl.CacheError{Message: "connect to redis", Cause: err}
	}

	return NewRedisCacheFromClient(client, cfg.KeyPrefix, cfg.Namespace), nil
}

// NewRedisCacheFromClient creates a RedisCache from an existing Redis client.
func NewRedisCacheFromClient(client *redis.Client, keyPrefix, namespace string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = "modtl:tm:"
	}

	return &RedisCache{
		client: client,
		key:    keyPrefix + namespace,
	}
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(key string) (string, bool) {
	ctx := context.Background()
	val, err := c.client.HGet(ctx, c.key, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		// Treat connection errors as a cache miss
		return "", false
	}
	return val, true
}

// Set stores a value in Redis.
func (c *RedisCache) Set(key string, value string) error {
	ctx := context.Background()
	if err := c.client.HSet(ctx, c.key, key, value).Err(); err != nil {
		return &modtl.CacheError{Message: "store translation", Cause: err}
	}
	return nil
}

// Entries returns every field of the namespace hash.
func (c *RedisCache) Entries() (map[string]string, error) {
	ctx := context.Background()
	entries, err := c.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, &modtl.CacheError{Message: "list translations", Cause: err}
	}
	return entries, nil
}

// Key returns the Redis key of the namespace hash.
func (c *RedisCache) Key() string {
	return c.key
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping() error {
	ctx := context.Background()
	return c.client.Ping(ctx).Err()
}
