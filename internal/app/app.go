// Package app assembles the pieces each service's main needs from its configuration.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bluesky/zoom/configs"
	"github.com/bluesky/zoom/internal/db"
	"github.com/bluesky/zoom/internal/models"
	"github.com/bluesky/zoom/pkg/cache"
)

// NewLogger returns a production logger in gin release mode and a development one otherwise.
func NewLogger(ginMode string) (*zap.Logger, error) {
	if strings.ToLower(ginMode) == gin.ReleaseMode {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// MetricsNamespace turns a service name into a valid Prometheus namespace.
func MetricsNamespace(service string) string {
	if service == "" {
		return "zoom"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, service)
}

// OpenStore connects the cache backend selected by cfg.Store.
func OpenStore(ctx context.Context, cfg *configs.Config, logger *zap.Logger) (cache.Store, error) {
	switch cfg.Cache.Store {
	case configs.StoreRedis:
		store, err := cache.NewRedisStore(ctx, cache.NewRedisStoreConfig{
			Address:     cfg.Redis.Address,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			Prefix:      cfg.Cache.Prefix,
			DialTimeout: cfg.Redis.DialTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case configs.StoreBolt:
		store, err := cache.OpenBoltStore(cfg.Cache.BoltPath, cache.BoltOptions{})
		if err != nil {
			return nil, err
		}
		logger.Info("Opened bolt cache store", zap.String("path", cfg.Cache.BoltPath))
		return store, nil
	case configs.StoreMemory:
		logger.Info("Using in-memory cache store")
		return cache.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache store %q", cfg.Cache.Store)
	}
}

// OpenUserRepository returns the user repository selected by cfg.Users.Store. The memory
// repository is seeded from cfg.Users.Seed.
func OpenUserRepository(ctx context.Context, cfg *configs.Config, logger *zap.Logger) (db.UserRepository, error) {
	switch cfg.Users.Store {
	case configs.UsersMemory:
		users := make([]models.User, 0, len(cfg.Users.Seed))
		for _, u := range cfg.Users.Seed {
			users = append(users, models.User{ID: u.ID, Name: u.Name})
		}
		logger.Info("Using in-memory user repository", zap.Int("seeded", len(users)))
		return db.NewMemoryUserRepository(users...), nil
	case configs.UsersFirestore:
		client, err := db.NewFirestoreClient(ctx, db.FirestoreConfig{
			ProjectID:             cfg.Firestore.ProjectID,
			CredentialsFile:       cfg.Firestore.CredentialsFile,
			CredentialsJSONBase64: cfg.Firestore.CredentialsJSONBase64,
		}, logger)
		if err != nil {
			return nil, err
		}
		return db.NewFirestoreUserRepository(client)
	default:
		return nil, fmt.Errorf("unknown users store %q", cfg.Users.Store)
	}
}
