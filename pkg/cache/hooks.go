package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/worktime/pkg/observability"
)

// hookedCache reports cache traffic to the observability cache hooks.
type hookedCache struct {
	Cache
}

// WithHooks wraps c so that hits, misses and writes are reported to the
// registered observability.CacheHooks. The key type passed to the hooks is
// the key's prefix up to the first colon.
func WithHooks(c Cache) Cache {
	return hookedCache{Cache: c}
}

func (c hookedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err != nil {
		return data, ok, err
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, keyType(key))
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType(key))
	}
	return data, ok, nil
}

func (c hookedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
