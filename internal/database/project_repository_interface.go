package database

import (
	"context"

	"github.com/taskwell/taskwell/internal/models"
)

// ProjectReader defines read operations for projects.
type ProjectReader interface {
	GetProjectByID(ctx context.Context, id string) (*models.Project, error)

	// ListProjectsForUser returns the projects the user owns plus the
	// projects the user is a member of, ordered by creation time.
	ListProjectsForUser(ctx context.Context, userID string) ([]*models.Project, error)
}

// ProjectWriter defines write operations for projects.
type ProjectWriter interface {
	CreateProject(ctx context.Context, project *models.Project) (*models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project) error

	// DeleteProject removes the project; tasks and their comments cascade.
	DeleteProject(ctx context.Context, id string) error
}

// ProjectRepository combines all project-related operations.
type ProjectRepository interface {
	ProjectReader
	ProjectWriter
}
