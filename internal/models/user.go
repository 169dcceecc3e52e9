package models

import (
	"strings"
	"time"
)

// User represents an account that can own and collaborate on projects
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string

	// Refresh credential state. Both fields are nil when the user is
	// logged out.
	RefreshToken       *string
	RefreshTokenExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns the display name assembled from the name parts.
// Falls back to the email when both parts are empty.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
