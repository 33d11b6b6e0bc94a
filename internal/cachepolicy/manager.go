// Package cachepolicy decides how long cache entries live, how their keys are built and
// what happens when the backing store fails. Store failures never reach the caller: reads
// degrade to misses and writes to no-ops.
package cachepolicy

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/bluesky/zoom/pkg/cache"
)

// Manager applies a Policy to a backing store. It holds no entries itself and is safe for
// concurrent use.
type Manager struct {
	store    cache.Store
	policy   atomic.Pointer[Policy]
	errors   ErrorHandler
	recorder Recorder
	timeout  time.Duration
	logger   *zap.Logger
}

// Option customizes a Manager built by Configure.
type Option func(*Manager)

// WithErrorHandler replaces the default logging error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Manager) {
		if h != nil {
			m.errors = h
		}
	}
}

func WithMetrics(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// WithOperationTimeout bounds every store round trip. Zero disables the bound.
func WithOperationTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Configure builds a Manager over store with the given default TTL and per-cache overrides.
func Configure(store cache.Store, defaultTTL time.Duration, overrides map[string]time.Duration, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("cachepolicy: store is required")
	}
	policy, err := NewPolicy(defaultTTL, overrides)
	if err != nil {
		return nil, err
	}
	m := &Manager{
		store:    store,
		recorder: NoopRecorder{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.errors == nil {
		m.errors = NewLoggingErrorHandler(m.logger)
	}
	m.policy.Store(policy)
	return m, nil
}

// TTL resolves the entry lifetime for cacheName.
func (m *Manager) TTL(cacheName string) time.Duration {
	return m.policy.Load().TTL(cacheName)
}

// Policy returns the policy currently in effect.
func (m *Manager) Policy() *Policy {
	return m.policy.Load()
}

// UpdatePolicy swaps the TTL policy. Entries already stored keep their old expiry.
func (m *Manager) UpdatePolicy(p *Policy) {
	if p == nil {
		return
	}
	m.policy.Store(p)
	m.logger.Info("Cache policy updated",
		zap.Duration("default_ttl", p.DefaultTTL()), zap.Int("overrides", len(p.overrides)))
}

// Get returns the stored value and true on a hit. A store failure is reported to the
// error handler and reads as a miss.
func (m *Manager) Get(ctx context.Context, cacheName, key string) ([]byte, bool) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	val, err := m.store.Get(ctx, cacheName, key)
	if err != nil {
		m.recorder.Error(cacheName, OpGet)
		m.errors.HandleGetError(&CacheError{Op: OpGet, Cache: cacheName, Key: key, Err: err}, cacheName, key)
		return nil, false
	}
	data, ok := val.Get()
	return data, ok
}

// Put stores value with the TTL configured for cacheName.
func (m *Manager) Put(ctx context.Context, cacheName, key string, value []byte) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	if err := m.store.Set(ctx, cacheName, key, value, m.TTL(cacheName)); err != nil {
		m.recorder.Error(cacheName, OpPut)
		m.errors.HandlePutError(&CacheError{Op: OpPut, Cache: cacheName, Key: key, Err: err}, cacheName, key, value)
	}
}

// Evict removes one entry.
func (m *Manager) Evict(ctx context.Context, cacheName, key string) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	if err := m.store.Delete(ctx, cacheName, key); err != nil {
		m.recorder.Error(cacheName, OpEvict)
		m.errors.HandleEvictError(&CacheError{Op: OpEvict, Cache: cacheName, Key: key, Err: err}, cacheName, key)
	}
}

// Clear removes every entry of cacheName.
func (m *Manager) Clear(ctx context.Context, cacheName string) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	if err := m.store.Clear(ctx, cacheName); err != nil {
		m.recorder.Error(cacheName, OpClear)
		m.errors.HandleClearError(&CacheError{Op: OpClear, Cache: cacheName, Err: err}, cacheName)
	}
}

// Close releases the backing store connection.
func (m *Manager) Close() error {
	return m.store.Close()
}

func (m *Manager) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.timeout)
}
