package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/samber/mo"
	bolt "go.etcd.io/bbolt"
)

// expiryHeaderLen is the size of the big-endian unix-nano expiry stored ahead of each value.
const expiryHeaderLen = 8

// BoltStore is a persistent Store backed by a single bbolt file, one bucket per cache name.
type BoltStore struct {
	db     *bolt.DB
	now    func() time.Time
	closed atomic.Bool
}

// BoltOptions configures OpenBoltStore.
type BoltOptions struct {
	// Timeout bounds how long Open waits for the file lock.
	Timeout time.Duration
}

// OpenBoltStore initializes or opens a BoltStore at path, creating parent directories.
func OpenBoltStore(path string, opts BoltOptions) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	return &BoltStore{db: db, now: time.Now}, nil
}

// Get returns the cached value if present and not expired.
func (s *BoltStore) Get(_ context.Context, cacheName, key string) (mo.Option[[]byte], error) {
	if s.closed.Load() {
		return mo.None[[]byte](), ErrClosed
	}
	if err := ValidateCacheName(cacheName); err != nil {
		return mo.None[[]byte](), err
	}
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cacheName))
		if b == nil {
			return nil
		}
		v := b.Get([]byte(key))
		if len(v) < expiryHeaderLen {
			return nil
		}
		expiresAt := int64(binary.BigEndian.Uint64(v[:expiryHeaderLen]))
		if expiresAt > 0 && s.now().UnixNano() > expiresAt {
			return nil
		}
		out = append([]byte{}, v[expiryHeaderLen:]...)
		return nil
	})
	if err != nil {
		return mo.None[[]byte](), err
	}
	if out == nil {
		return mo.None[[]byte](), nil
	}
	return mo.Some(out), nil
}

// Set stores value with an absolute expiration of now+ttl; ttl <= 0 never expires.
func (s *BoltStore) Set(_ context.Context, cacheName, key string, value []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := ValidateCacheName(cacheName); err != nil {
		return err
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).UnixNano()
	}
	buf := make([]byte, expiryHeaderLen+len(value))
	binary.BigEndian.PutUint64(buf[:expiryHeaderLen], uint64(expiresAt))
	copy(buf[expiryHeaderLen:], value)

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(cacheName))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), buf)
	})
}

// Delete removes a key.
func (s *BoltStore) Delete(_ context.Context, cacheName, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := ValidateCacheName(cacheName); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cacheName))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// Clear drops the partition's bucket.
func (s *BoltStore) Clear(_ context.Context, cacheName string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := ValidateCacheName(cacheName); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(cacheName))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
