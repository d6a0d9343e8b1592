package store

import (
	"context"
	"errors"

	"github.com/wolfeidau/pacsgate/internal/models"
)

// Sentinel errors for user store operations
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserEmailTaken = errors.New("user email already in use")
)

// UserStore defines the interface for user storage operations.
type UserStore interface {
	// Create inserts a user and assigns its ID and timestamps.
	// Returns ErrUserEmailTaken if the email is already registered.
	Create(ctx context.Context, user *models.User) error

	// Get retrieves a user by ID.
	// Returns ErrUserNotFound if the user doesn't exist.
	Get(ctx context.Context, id int64) (*models.User, error)

	// List returns users ordered by name. A nil unitID lists every user.
	List(ctx context.Context, unitID *int64) ([]*models.User, error)

	// Update replaces the mutable fields of a user.
	// Returns ErrUserNotFound if the user doesn't exist.
	Update(ctx context.Context, user *models.User) error
}
