package core

import (
	"context"

	"github.com/bluesky/zoom/internal/models"
)

// UserService defines the operations for user lookups.
type UserService interface {
	// SelectByPrimaryKey returns the user with the given ID, served from BasicDataCache
	// when possible.
	SelectByPrimaryKey(ctx context.Context, id int) (*models.User, error)
}
