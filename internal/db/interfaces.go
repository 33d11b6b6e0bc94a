package db

import (
	"context"
	"errors"

	"github.com/bluesky/zoom/internal/models"
)

// ErrNotFound is returned when no user exists for an ID.
var ErrNotFound = errors.New("document not found")

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Close() error
}
