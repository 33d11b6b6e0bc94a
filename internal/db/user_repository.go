package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bluesky/zoom/internal/models"
)

const usersCollection = "users"

// firestoreUserRepository implements the UserRepository interface using Firestore.
// Documents are keyed by the decimal user ID.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) (UserRepository, error) {
	if client == nil {
		return nil, errors.New("firestore client is not initialized for UserRepository")
	}
	return &firestoreUserRepository{client: client}, nil
}

// GetByID retrieves a user document by its ID.
func (r *firestoreUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	docID := strconv.Itoa(id)
	snap, err := r.client.Collection(usersCollection).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", docID, err)
	}

	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", docID, err)
	}
	user.ID = id
	return &user, nil
}

// Save creates or replaces the user document.
func (r *firestoreUserRepository) Save(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	docID := strconv.Itoa(user.ID)
	if _, err := r.client.Collection(usersCollection).Doc(docID).Set(ctx, user); err != nil {
		return fmt.Errorf("failed to save user %s: %w", docID, err)
	}
	return nil
}

func (r *firestoreUserRepository) Close() error {
	return r.client.Close()
}
