package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/taskwell/taskwell/internal/database"
	"github.com/taskwell/taskwell/internal/models"
)

// NewTestStore opens an in-memory store with migrations applied.
// The database is closed automatically when the test finishes.
func NewTestStore(t *testing.T) *database.Repository {
	t.Helper()

	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return database.NewRepository(db)
}

// CreateUser inserts a user with a deterministic password hash
func CreateUser(t *testing.T, repo *database.Repository, email, firstName, lastName string) *models.User {
	t.Helper()

	user, err := repo.CreateUser(context.Background(), email, firstName, lastName, "x")
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}

// CreateProject inserts a project owned by ownerID
func CreateProject(t *testing.T, repo *database.Repository, ownerID, name string) *models.Project {
	t.Helper()

	proj, err := repo.CreateProject(context.Background(), &models.Project{
		Name:    name,
		Status:  models.DefaultProjectStatus,
		OwnerID: ownerID,
	})
	if err != nil {
		t.Fatalf("Failed to create project %s: %v", name, err)
	}
	return proj
}

// AddMember links a user to a project with the member role
func AddMember(t *testing.T, repo *database.Repository, projectID, userID string) *models.Membership {
	t.Helper()

	m, err := repo.AddMembership(context.Background(), projectID, userID, models.RoleMember)
	if err != nil {
		t.Fatalf("Failed to add member %s: %v", userID, err)
	}
	return m
}

// CreateTask inserts a task on the project with sensible defaults
func CreateTask(t *testing.T, repo *database.Repository, projectID, title string) *models.Task {
	t.Helper()

	task, err := repo.CreateTask(context.Background(), &models.Task{
		ProjectID: projectID,
		Title:     title,
		Status:    models.DefaultTaskStatus,
		Priority:  models.DefaultTaskPriority,
	})
	if err != nil {
		t.Fatalf("Failed to create task %s: %v", title, err)
	}
	return task
}

// CreateTaskWith inserts a task with explicit status, priority, assignee
// and due date
func CreateTaskWith(t *testing.T, repo *database.Repository, projectID, title string,
	status models.TaskStatus, priority models.Priority, assigneeID *string, dueDate *time.Time) *models.Task {
	t.Helper()

	task, err := repo.CreateTask(context.Background(), &models.Task{
		ProjectID:  projectID,
		Title:      title,
		Status:     status,
		Priority:   priority,
		AssigneeID: assigneeID,
		DueDate:    dueDate,
	})
	if err != nil {
		t.Fatalf("Failed to create task %s: %v", title, err)
	}
	return task
}

// CreateComment inserts a comment on the task
func CreateComment(t *testing.T, repo *database.Repository, taskID, authorID, content string) *models.Comment {
	t.Helper()

	comment, err := repo.CreateComment(context.Background(), taskID, authorID, content)
	if err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}
	return comment
}
