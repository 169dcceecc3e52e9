package database

import (
	"context"

	"github.com/taskwell/taskwell/internal/models"
)

// TaskFilter narrows and pages a task listing. Zero values mean "no
// filter" for the corresponding dimension.
type TaskFilter struct {
	ProjectID  string
	ProjectIDs []string
	Status     models.TaskStatus
	Priority   models.Priority
	AssigneeID string
	Search     string

	// SortBy is one of: created_at, updated_at, due_date, title, status,
	// priority. Invalid keys fall back to created_at.
	SortBy   string
	SortDesc bool

	// Page is 1-based. PageSize of 0 disables paging.
	Page     int
	PageSize int
}

// TaskReader defines read operations for tasks.
type TaskReader interface {
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)

	// ListTasks returns one page of tasks matching the filter plus the
	// total number of matches before paging.
	ListTasks(ctx context.Context, filter TaskFilter) ([]*models.Task, int, error)
}

// TaskWriter defines write operations for tasks.
type TaskWriter interface {
	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error

	// DeleteTask removes the task; its comments cascade.
	DeleteTask(ctx context.Context, id string) error
}

// TaskRepository combines all task-related operations.
type TaskRepository interface {
	TaskReader
	TaskWriter
}
