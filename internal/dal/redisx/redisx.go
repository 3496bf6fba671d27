package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// Cache is a short-TTL cache for backend listings. Inventory reads are never
// cached; the composition workflow requires a fresh lookup per variant change.
type Cache struct {
	client *redis.Client
}

// MustNewCache creates a new Redis-backed cache from configuration.
func MustNewCache() *Cache {
	addr := viper.GetString("redis.addr")
	if addr == "" {
		addr = "redis:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		panic("failed to connect to redis: " + err.Error())
	}

	return &Cache{client: client}
}

// Set stores a value under the given key.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Get returns the cached value, or an empty string on a miss.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return value, nil
}

// GenerateKey namespaces a cache key by operation.
func (c *Cache) GenerateKey(operation, key string) string {
	return "salesdesk:" + operation + ":" + key
}

// Close closes the underlying connection for graceful shutdown.
func (c *Cache) Close() error {
	return c.client.Close()
}
