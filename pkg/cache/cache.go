package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
)

var (
	// ErrClosed is returned by every Store operation after Close.
	ErrClosed = errors.New("cache: store closed")
	// ErrInvalidCacheName is returned for an empty cache name or one containing the key separator.
	ErrInvalidCacheName = errors.New("cache: invalid cache name")
)

// Store is a key-value backing store with per-entry TTL, partitioned by cache name.
// Implementations must be safe for concurrent use by multiple goroutines.
type Store interface {
	// Get returns None when the key is absent or expired.
	Get(ctx context.Context, cacheName, key string) (mo.Option[[]byte], error)
	// Set stores value under key. A ttl <= 0 stores the entry without expiration.
	Set(ctx context.Context, cacheName, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, cacheName, key string) error
	// Clear removes every entry of the named partition and nothing else.
	// Every operation rejects a cache name that fails ValidateCacheName.
	Clear(ctx context.Context, cacheName string) error
	Close() error
}

// keySeparator joins a cache name and an entry key into a flat store key.
const keySeparator = "::"

// ValidateCacheName reports whether name can be used as a partition. Names may not be
// empty or contain "::", which would let one partition's keys reach into another's.
func ValidateCacheName(name string) error {
	if name == "" || strings.Contains(name, keySeparator) {
		return fmt.Errorf("%w: %q", ErrInvalidCacheName, name)
	}
	return nil
}

func flatKey(prefix, cacheName, key string) string {
	var b strings.Builder
	b.Grow(len(prefix) + len(cacheName) + len(keySeparator) + len(key))
	b.WriteString(prefix)
	b.WriteString(cacheName)
	b.WriteString(keySeparator)
	b.WriteString(key)
	return b.String()
}
