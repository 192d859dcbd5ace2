// Package cache stores computed results behind a small key/value interface.
//
// The server caches arrangement results so that repeated layout requests
// for the same boxes skip the overlap solver. Three backends are available:
//
//   - [FileCache]: JSON entry files under a directory, for the local CLI
//   - [RedisCache]: a shared Redis instance, for server deployments
//   - [NullCache]: stores nothing, for tests or when caching is disabled
//
// Keys are produced by a [Keyer] so that every backend sees the same
// namespaced, hashed keys. [WithHooks] reports hits, misses and writes to
// the observability cache hooks.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/worktime/pkg/config"
	"github.com/matzehuels/worktime/pkg/errors"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Open creates the cache backend selected by cfg.Backend.
func Open(cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case config.CacheFile:
		return NewFileCache(cfg.LayoutDir())
	case config.CacheRedis:
		return NewRedisCache(cfg.RedisAddr), nil
	case config.CacheNone, "":
		return NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.Backend)
	}
}
