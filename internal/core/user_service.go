package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bluesky/zoom/internal/cachepolicy"
	"github.com/bluesky/zoom/internal/db"
	"github.com/bluesky/zoom/internal/models"
)

// ErrUserNotFound is returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

const (
	// UserCacheName is the cache partition holding user lookups.
	UserCacheName = "BasicDataCache"
	userTarget    = "core.UserService"
)

// userService implements the UserService interface.
type userService struct {
	userRepo    db.UserRepository
	cache       *cachepolicy.Manager
	lookupDelay time.Duration
	logger      *zap.Logger
}

// NewUserService creates a new UserService. lookupDelay simulates a slow backing query.
func NewUserService(userRepo db.UserRepository, cache *cachepolicy.Manager, lookupDelay time.Duration, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		userRepo:    userRepo,
		cache:       cache,
		lookupDelay: lookupDelay,
		logger:      logger,
	}
}

// UserCacheKey declares the cache entry of the primary-key lookup for id.
func UserCacheKey(id int) cachepolicy.KeySpec {
	return cachepolicy.KeySpec{
		Cache:  UserCacheName,
		Target: userTarget,
		Method: "SelectByPrimaryKey",
		Args:   []any{id},
	}
}

func (s *userService) SelectByPrimaryKey(ctx context.Context, id int) (*models.User, error) {
	return cachepolicy.Cached(ctx, s.cache, UserCacheKey(id), func(ctx context.Context) (*models.User, error) {
		return s.selectFromRepository(ctx, id)
	})
}

func (s *userService) selectFromRepository(ctx context.Context, id int) (*models.User, error) {
	s.logger.Debug("Querying user", zap.Int("id", id))
	start := time.Now()

	if s.lookupDelay > 0 {
		timer := time.NewTimer(s.lookupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	s.logger.Debug("Query finished", zap.Int("id", id), zap.Duration("took", time.Since(start)))
	return user, nil
}
