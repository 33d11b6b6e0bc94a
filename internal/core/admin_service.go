package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bluesky/zoom/configs"
	"github.com/bluesky/zoom/internal/cachepolicy"
)

// Publisher broadcasts administrative actions to other instances.
type Publisher interface {
	PublishRefresh(ctx context.Context) error
	PublishEvict(ctx context.Context, cacheName, key string) error
	PublishClear(ctx context.Context, cacheName string) error
}

// AdminService performs configuration refreshes and cache invalidations. Actions are
// applied locally first and then broadcast when a Publisher is set; broadcast failures
// are logged, not returned.
type AdminService struct {
	config    *configs.Holder
	cache     *cachepolicy.Manager
	publisher Publisher
	logger    *zap.Logger
}

func NewAdminService(config *configs.Holder, cache *cachepolicy.Manager, publisher Publisher, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{config: config, cache: cache, publisher: publisher, logger: logger}
}

// Config returns the configuration currently in effect.
func (s *AdminService) Config() *configs.Config {
	return s.config.Current()
}

// Refresh reloads configuration and applies the new cache TTL policy.
func (s *AdminService) Refresh(ctx context.Context, broadcast bool) (*configs.Config, error) {
	cfg, err := s.config.Reload()
	if err != nil {
		s.logger.Error("Configuration refresh failed", zap.Error(err))
		return nil, fmt.Errorf("reload config: %w", err)
	}
	policy, err := cachepolicy.NewPolicy(cfg.Cache.DefaultTTL, cfg.Cache.TTLs)
	if err != nil {
		return nil, err
	}
	s.cache.UpdatePolicy(policy)
	s.logger.Info("Configuration refreshed", zap.String("port", cfg.Server.Port))

	if broadcast && s.publisher != nil {
		if err := s.publisher.PublishRefresh(ctx); err != nil {
			s.logger.Warn("Refresh broadcast failed", zap.Error(err))
		}
	}
	return cfg, nil
}

// Evict removes one cache entry here and on every other instance.
func (s *AdminService) Evict(ctx context.Context, cacheName, key string) {
	s.cache.Evict(ctx, cacheName, key)
	if s.publisher != nil {
		if err := s.publisher.PublishEvict(ctx, cacheName, key); err != nil {
			s.logger.Warn("Evict broadcast failed", zap.String("cache", cacheName), zap.String("key", key), zap.Error(err))
		}
	}
}

// Clear empties a cache partition here and on every other instance.
func (s *AdminService) Clear(ctx context.Context, cacheName string) {
	s.cache.Clear(ctx, cacheName)
	if s.publisher != nil {
		if err := s.publisher.PublishClear(ctx, cacheName); err != nil {
			s.logger.Warn("Clear broadcast failed", zap.String("cache", cacheName), zap.Error(err))
		}
	}
}

// OnRefresh applies a refresh received from another instance.
func (s *AdminService) OnRefresh(ctx context.Context) {
	_, _ = s.Refresh(ctx, false)
}

func (s *AdminService) OnEvict(ctx context.Context, cacheName, key string) {
	s.cache.Evict(ctx, cacheName, key)
}

func (s *AdminService) OnClear(ctx context.Context, cacheName string) {
	s.cache.Clear(ctx, cacheName)
}
