package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/errs"
	"github.com/taskwell/taskwell/internal/models"
)

// MembershipRepo handles all membership-related database operations.
type MembershipRepo struct {
	db *sql.DB
}

const membershipColumns = `id, project_id, user_id, role, created_at, updated_at`

// scanMembership scans a single membership row
func scanMembership(row interface{ Scan(...any) error }) (*models.Membership, error) {
	m := &models.Membership{}
	err := row.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// AddMembership inserts a membership row for (projectID, userID)
func (r *MembershipRepo) AddMembership(ctx context.Context, projectID, userID string, role models.Role) (*models.Membership, error) {
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (id, project_id, user_id, role) VALUES (?, ?, ?, ?)`,
		id, projectID, userID, role,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflict("user is already a member of this project")
		}
		return nil, fmt.Errorf("failed to insert membership: %w", err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE id = ?`, id)
	m, err := scanMembership(row)
	if err != nil {
		return nil, fmt.Errorf("failed to read membership back: %w", err)
	}
	return m, nil
}

// GetMembership retrieves the membership for (projectID, userID)
func (r *MembershipRepo) GetMembership(ctx context.Context, projectID, userID string) (*models.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE project_id = ? AND user_id = ?`,
		projectID, userID,
	)

	m, err := scanMembership(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("membership")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

// ListMemberships returns all membership rows for a project
func (r *MembershipRepo) ListMemberships(ctx context.Context, projectID string) ([]*models.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE project_id = ? ORDER BY created_at`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// ProjectMemberIDs returns the user ids holding a membership on the project
func (r *MembershipRepo) ProjectMemberIDs(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM memberships WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list member ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RemoveMembership deletes the membership row for (projectID, userID)
func (r *MembershipRepo) RemoveMembership(ctx context.Context, projectID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM memberships WHERE project_id = ? AND user_id = ?`,
		projectID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}
	return requireRow(result, "membership")
}
