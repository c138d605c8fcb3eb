package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/readcircle/book-recommendation-service/internal/domain"
)

// UserRepository defines data access operations for user accounts.
type UserRepository interface {
	// Create inserts a new user.
	// Returns domain.AlreadyExistsError if the username is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its internal identifier.
	// Returns domain.NotFoundError if no such user exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	// Returns domain.NotFoundError if no such user exists.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
