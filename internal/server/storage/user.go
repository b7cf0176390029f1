package storage

import (
	"context"

	"github.com/iudanet/securenotes/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user together with its role set.
	// Returns ErrEmailTaken or ErrUsernameTaken on uniqueness conflicts.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves user (with roles) by email.
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves user (with roles) by ID.
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}
