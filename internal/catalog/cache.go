package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "catalog:version"
	bumpChannel     = "catalog.bump"
)

// Cache wraps Redis-based price caching with versioning controls. Entries are
// written under versioned keys, so invalidation is a single version bump: stale
// keys simply age out with the TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client degrades to a no-op
// cache, every lookup falls through to the loader.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes a cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	if c == nil || c.client == nil {
		return strings.Join(parts, ":"), nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", strings.Join(parts, ":"), ver), nil
}

// Fetch loads a cached value or populates it using the loader.
func (c *Cache) Fetch(ctx context.Context, key string, loader func(context.Context) (string, error)) (string, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	value, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return value, nil
	}
	if err != redis.Nil {
		return "", err
	}
	value, err = loader(ctx)
	if err != nil {
		return "", err
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return "", err
	}
	return value, nil
}

// Put primes a key directly, used by the warmup job.
func (c *Cache) Put(ctx context.Context, key, value string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, key, value, c.ttl).Err()
}

// Bump invalidates the cache by incrementing the version and publishing the
// new value for other processes.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

func priceKeyParts(key PriceKey) []string {
	return []string{
		"catalog", "price",
		strconv.FormatInt(key.VehicleModelID, 10),
		int64Token(key.FeatureCategoryID),
		int64Token(key.FeatureTypeID),
	}
}

func int64Token(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}
