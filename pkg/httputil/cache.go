package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] when a cached entry exists but has
// exceeded its time-to-live (TTL). Use [Cache.GetStale] to read it anyway.
var ErrExpired = errors.New("cache entry expired")

// Cache provides file-based caching of arbitrary JSON-marshalable data.
//
// Each entry is a JSON file named by the SHA-256 hash of its key. Entries
// expire based on file modification time; a TTL of 0 means they never do.
//
// Cache operations are not goroutine-safe.
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// NewCache creates a Cache that stores entries in dir with the given TTL.
// If dir is empty, NewCache uses ~/.cache/worktime/http.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "worktime", "http")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the time-to-live duration for cache entries.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get retrieves a cached value by key and unmarshals it into v.
//
//   - (true, nil): hit, v holds the value
//   - (false, nil): miss, v is unchanged
//   - (false, ErrExpired): the entry exceeded its TTL, v is unchanged
func (c *Cache) Get(key string, v any) (bool, error) {
	info, err := os.Stat(c.keyPath(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return false, ErrExpired
	}
	return c.read(key, v)
}

// GetStale is like Get but ignores the TTL. It also returns when the entry
// was written.
func (c *Cache) GetStale(key string, v any) (time.Time, bool, error) {
	info, err := os.Stat(c.keyPath(key))
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	ok, err := c.read(key, v)
	return info.ModTime(), ok, err
}

// Set stores a value in the cache under the given key, refreshing its TTL.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(key), data, 0o644)
}

// Namespace returns a new Cache that automatically prefixes all keys with
// prefix. It shares the directory and TTL of c.
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{
		dir:    c.dir,
		ttl:    c.ttl,
		prefix: c.prefix + prefix,
	}
}

func (c *Cache) read(key string, v any) (bool, error) {
	data, err := os.ReadFile(c.keyPath(key))
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, v)
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(c.prefix + key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
