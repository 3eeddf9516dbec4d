// Package cache provides small byte caches used to keep snapshots of mapping
// tables between CLI runs.
//
// Mapping tables that live in Redis or MongoDB are read once per process.
// For short-lived CLI invocations that is still one network round trip per
// command, so the CLI wraps remote sources in a cache backed by files under
// the XDG cache directory (~/.cache/apilink/). The HTTP server reloads
// with snapshots bypassed but still refreshes them for later CLI runs.
//
// # Keys
//
// Keys are produced by a [Keyer] so that different deployments sharing a
// cache directory (or a future shared backend) stay isolated:
//
//	k := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
//	key := k.MappingKey("redis:localhost:6379/apilink:mapping")
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores opaque byte values with an optional TTL.
type Cache interface {
	// Get returns the value for key and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// MappingKey returns the key for a mapping table snapshot of source.
	MappingKey(source string) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// MappingKey generates a key for a mapping table snapshot.
func (DefaultKeyer) MappingKey(source string) string {
	return hashKey("mapping", source)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// NullCache stores nothing: every Get misses. It stands in for the file
// cache when snapshots are disabled with --no-cache or [cache] enabled = false.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
