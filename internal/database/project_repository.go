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

// ProjectRepo handles all project-related database operations.
type ProjectRepo struct {
	db *sql.DB
}

const projectColumns = `id, name, description, status, owner_id,
	start_date, due_date, created_at, updated_at`

// scanProject scans a single project row
func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	project := &models.Project{}
	var startDate, dueDate sql.NullTime

	err := row.Scan(
		&project.ID, &project.Name, &project.Description, &project.Status,
		&project.OwnerID, &startDate, &dueDate,
		&project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	project.StartDate = timePtr(startDate)
	project.DueDate = timePtr(dueDate)
	return project, nil
}

// CreateProject inserts a new project and returns it with timestamps populated
func (r *ProjectRepo) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, status, owner_id, start_date, due_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, project.Name, project.Description, project.Status, project.OwnerID,
		nullableTime(project.StartDate), nullableTime(project.DueDate),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project %q: %w", project.Name, err)
	}

	return r.GetProjectByID(ctx, id)
}

// GetProjectByID retrieves a project by id
func (r *ProjectRepo) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("project")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// ListProjectsForUser returns projects the user owns or is a member of
func (r *ProjectRepo) ListProjectsForUser(ctx context.Context, userID string) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT p.id, p.name, p.description, p.status, p.owner_id,
			p.start_date, p.due_date, p.created_at, p.updated_at
		 FROM projects p
		 LEFT JOIN memberships m ON m.project_id = p.id
		 WHERE p.owner_id = ? OR m.user_id = ?
		 ORDER BY p.created_at`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// UpdateProject persists all mutable fields of the project
func (r *ProjectRepo) UpdateProject(ctx context.Context, project *models.Project) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects
		 SET name = ?, description = ?, status = ?, start_date = ?, due_date = ?,
			 updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		project.Name, project.Description, project.Status,
		nullableTime(project.StartDate), nullableTime(project.DueDate),
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireRow(result, "project")
}

// DeleteProject removes a project. Tasks and their comments cascade via
// foreign keys.
func (r *ProjectRepo) DeleteProject(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireRow(result, "project")
}
