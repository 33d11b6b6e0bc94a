package cache

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/samber/mo"
	"go.uber.org/zap"
)

// clearBatchSize bounds the number of keys fetched per SCAN and removed per DEL.
const clearBatchSize = 500

// RedisStore is an implementation of the Store interface using Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
	closed atomic.Bool
}

// NewRedisStoreConfig contains options for creating a new RedisStore.
type NewRedisStoreConfig struct {
	Address  string
	Password string
	DB       int
	// Prefix is prepended to every key, e.g. "configclient:".
	Prefix      string
	DialTimeout time.Duration
}

// NewRedisStore creates a new RedisStore and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg NewRedisStoreConfig, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", zap.String("address", cfg.Address), zap.Error(err))
		_ = rdb.Close()
		return nil, err
	}

	logger.Info("Successfully connected to Redis", zap.String("address", cfg.Address), zap.Int("db", cfg.DB))
	return &RedisStore{client: rdb, prefix: cfg.Prefix, logger: logger}, nil
}

// Get retrieves a value from Redis.
func (r *RedisStore) Get(ctx context.Context, cacheName, key string) (mo.Option[[]byte], error) {
	if r.closed.Load() {
		return mo.None[[]byte](), ErrClosed
	}
	if err := ValidateCacheName(cacheName); err != nil {
		return mo.None[[]byte](), err
	}
	val, err := r.client.Get(ctx, flatKey(r.prefix, cacheName, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return mo.None[[]byte](), nil
	}
	if err != nil {
		return mo.None[[]byte](), err
	}
	return mo.Some(val), nil
}

// Set stores a value in Redis. Redis treats a zero expiration as "no TTL".
func (r *RedisStore) Set(ctx context.Context, cacheName, key string, value []byte, ttl time.Duration) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if err := ValidateCacheName(cacheName); err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, flatKey(r.prefix, cacheName, key), value, ttl).Err()
}

// Delete removes a value from Redis.
func (r *RedisStore) Delete(ctx context.Context, cacheName, key string) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if err := ValidateCacheName(cacheName); err != nil {
		return err
	}
	return r.client.Del(ctx, flatKey(r.prefix, cacheName, key)).Err()
}

// Clear scans the partition's keys and deletes them in batches.
func (r *RedisStore) Clear(ctx context.Context, cacheName string) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if err := ValidateCacheName(cacheName); err != nil {
		return err
	}
	pattern := escapeGlob(r.prefix) + escapeGlob(cacheName) + keySeparator + "*"

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, clearBatchSize).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close closes the Redis client.
func (r *RedisStore) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	return r.client.Close()
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
