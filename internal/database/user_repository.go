package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/errs"
	"github.com/taskwell/taskwell/internal/models"
)

// UserRepo handles all user-related database operations.
type UserRepo struct {
	db *sql.DB
}

const userColumns = `id, email, first_name, last_name, password_hash,
	refresh_token, refresh_token_expiry, created_at, updated_at`

// scanUser scans a single user row
func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	var refreshToken sql.NullString
	var refreshExpiry sql.NullTime

	err := row.Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.PasswordHash,
		&refreshToken, &refreshExpiry, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.RefreshToken = strPtr(refreshToken)
	user.RefreshTokenExpiry = timePtr(refreshExpiry)
	return user, nil
}

// CreateUser inserts a new user and returns it with timestamps populated
func (r *UserRepo) CreateUser(ctx context.Context, email, firstName, lastName, passwordHash string) (*models.User, error) {
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name, password_hash)
		 VALUES (?, ?, ?, ?, ?)`,
		id, email, firstName, lastName, passwordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflict("email already in use")
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return r.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by id
func (r *UserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetUsersByIDs resolves a set of users with a single IN query.
// Missing ids are silently absent from the result.
func (r *UserRepo) GetUsersByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// AnyUserWithEmail reports whether a user other than excludeID holds the email
func (r *UserRepo) AnyUserWithEmail(ctx context.Context, email, excludeID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ? AND id != ?`,
		email, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// UpdateUser updates a user's email and name parts
func (r *UserRepo) UpdateUser(ctx context.Context, id, email, firstName, lastName string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET email = ?, first_name = ?, last_name = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		email, firstName, lastName, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.Conflict("email already in use")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRow(result, "user")
}

// UpdateUserPassword replaces a user's password hash
func (r *UserRepo) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireRow(result, "user")
}

// SetRefreshToken stores the refresh credential and its expiry
func (r *UserRepo) SetRefreshToken(ctx context.Context, id, token string, expiry time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET refresh_token = ?, refresh_token_expiry = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		token, expiry.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}
	return requireRow(result, "user")
}

// ClearRefreshToken nulls the refresh credential, marking the user logged out
func (r *UserRepo) ClearRefreshToken(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET refresh_token = NULL, refresh_token_expiry = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return requireRow(result, "user")
}

// DeleteUser removes a user
func (r *UserRepo) DeleteUser(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRow(result, "user")
}
