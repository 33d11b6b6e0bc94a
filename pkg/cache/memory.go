package cache

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/samber/mo"
)

// MemoryStore is an in-process Store. Entries do not survive a restart and are not shared
// between instances.
type MemoryStore struct {
	items  *ttlcache.Cache[string, []byte]
	closed atomic.Bool
}

// NewMemoryStore creates a MemoryStore and starts its expiry loop.
func NewMemoryStore() *MemoryStore {
	items := ttlcache.New[string, []byte](
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go items.Start()
	return &MemoryStore{items: items}
}

func (s *MemoryStore) Get(_ context.Context, cacheName, key string) (mo.Option[[]byte], error) {
	if s.closed.Load() {
		return mo.None[[]byte](), ErrClosed
	}
	if err := ValidateCacheName(cacheName); err != nil {
		return mo.None[[]byte](), err
	}
	item := s.items.Get(flatKey("", cacheName, key))
	if item == nil {
		return mo.None[[]byte](), nil
	}
	return mo.Some(append([]byte{}, item.Value()...)), nil
}

func (s *MemoryStore) Set(_ context.Context, cacheName, key string, value []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := ValidateCacheName(cacheName); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	s.items.Set(flatKey("", cacheName, key), append([]byte{}, value...), ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, cacheName, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := ValidateCacheName(cacheName); err != nil {
		return err
	}
	s.items.Delete(flatKey("", cacheName, key))
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, cacheName string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := ValidateCacheName(cacheName); err != nil {
		return err
	}
	prefix := cacheName + keySeparator
	for _, k := range s.items.Keys() {
		if strings.HasPrefix(k, prefix) {
			s.items.Delete(k)
		}
	}
	return nil
}

// Close stops the expiry loop.
func (s *MemoryStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.items.Stop()
	return nil
}
