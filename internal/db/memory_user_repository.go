package db

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bluesky/zoom/internal/models"
)

// memoryUserRepository keeps users in a map. It backs local runs and tests.
type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[int]models.User
}

// NewMemoryUserRepository returns a repository seeded with users.
func NewMemoryUserRepository(users ...models.User) UserRepository {
	r := &memoryUserRepository{users: make(map[int]models.User, len(users))}
	for _, u := range users {
		if u.CreatedAt.IsZero() {
			u.CreatedAt = time.Now().UTC()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *memoryUserRepository) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memoryUserRepository) Save(_ context.Context, user *models.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	u := *user
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *memoryUserRepository) Close() error { return nil }
