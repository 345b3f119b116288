// Package cache holds rendered read views and session projections.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/templui/folio/internal/config"
)

// Cache is a byte-valued key/value store with TTLs. Implementations must be
// safe for concurrent use.
type Cache interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value. A zero ttl uses the cache default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key starting with prefix and reports how many went.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	Close() error
}

var (
	ErrCacheMiss   = errors.New("cache miss")
	ErrCacheClosed = errors.New("cache closed")
)

// New returns a Redis cache when REDIS_URL is configured and a memory cache otherwise.
func New(cfg *config.Config) (Cache, error) {
	if cfg.UseRedisCache() {
		return NewRedisCache(RedisOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.CachePrefix,
			DefaultTTL: cfg.CacheTTL,
		})
	}
	return NewMemoryCache(cfg.CacheTTL, time.Minute), nil
}

// GetJSON decodes the cached value at key into a T.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, error) {
	var v T
	b, err := c.Get(ctx, key)
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(b, &v)
	return v, err
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, b, ttl)
}
