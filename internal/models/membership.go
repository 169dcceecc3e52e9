package models

import "time"

// Role represents a user's role within a project
type Role string

// Membership roles
const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ValidRole reports whether r is one of the defined membership roles
func ValidRole(r Role) bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// Membership links a user to a project with a role. The project owner is
// implicitly authorized for everything regardless of membership rows.
type Membership struct {
	ID        string
	ProjectID string
	UserID    string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberDetail is a membership enriched with the member's contact fields
// for display, resolved with one batched lookup when listing.
type MemberDetail struct {
	Membership
	UserName  string
	UserEmail string
}
