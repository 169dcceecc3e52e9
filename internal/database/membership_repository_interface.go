package database

import (
	"context"

	"github.com/taskwell/taskwell/internal/models"
)

// MembershipReader defines read operations for memberships.
type MembershipReader interface {
	GetMembership(ctx context.Context, projectID, userID string) (*models.Membership, error)
	ListMemberships(ctx context.Context, projectID string) ([]*models.Membership, error)

	// ProjectMemberIDs returns the user ids with a membership row on the
	// project. The owner is not included unless explicitly a member.
	ProjectMemberIDs(ctx context.Context, projectID string) ([]string, error)
}

// MembershipWriter defines write operations for memberships.
type MembershipWriter interface {
	AddMembership(ctx context.Context, projectID, userID string, role models.Role) (*models.Membership, error)
	RemoveMembership(ctx context.Context, projectID, userID string) error
}

// MembershipRepository combines all membership-related operations.
type MembershipRepository interface {
	MembershipReader
	MembershipWriter
}
