package cachepolicy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samber/mo"
)

var errStoreDown = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

type storedValue struct {
	data []byte
	ttl  time.Duration
}

// fakeStore is an in-memory cache.Store that can be switched into failing mode.
type fakeStore struct {
	mu      sync.Mutex
	data    map[string]storedValue
	failing bool
	closed  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]storedValue)}
}

func (s *fakeStore) setFailing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = v
}

func (s *fakeStore) entry(cacheName, key string) (storedValue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[cacheName+"::"+key]
	return v, ok
}

func (s *fakeStore) Get(_ context.Context, cacheName, key string) (mo.Option[[]byte], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return mo.None[[]byte](), errStoreDown
	}
	v, ok := s.data[cacheName+"::"+key]
	if !ok {
		return mo.None[[]byte](), nil
	}
	return mo.Some(v.data), nil
}

func (s *fakeStore) Set(_ context.Context, cacheName, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	s.data[cacheName+"::"+key] = storedValue{data: value, ttl: ttl}
	return nil
}

func (s *fakeStore) Delete(_ context.Context, cacheName, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	delete(s.data, cacheName+"::"+key)
	return nil
}

func (s *fakeStore) Clear(_ context.Context, cacheName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	prefix := cacheName + "::"
	for k := range s.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(s.data, k)
		}
	}
	return nil
}

func (s *fakeStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
