package database

import (
	"context"
	"time"

	"github.com/taskwell/taskwell/internal/models"
)

// UserReader defines read operations for users.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUsersByIDs resolves a set of users with a single query. Used to
	// denormalize author and assignee fields without per-row lookups.
	GetUsersByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	// AnyUserWithEmail reports whether another user (excluding excludeID)
	// already holds the email.
	AnyUserWithEmail(ctx context.Context, email, excludeID string) (bool, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	CreateUser(ctx context.Context, email, firstName, lastName, passwordHash string) (*models.User, error)
	UpdateUser(ctx context.Context, id, email, firstName, lastName string) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	SetRefreshToken(ctx context.Context, id, token string, expiry time.Time) error
	ClearRefreshToken(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
}

// UserRepository combines all user-related operations.
type UserRepository interface {
	UserReader
	UserWriter
}
