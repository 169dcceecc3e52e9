package app

import (
	"log/slog"

	"github.com/taskwell/taskwell/internal/database"
	"github.com/taskwell/taskwell/internal/events"
	"github.com/taskwell/taskwell/internal/identity"
	"github.com/taskwell/taskwell/internal/pipeline"
	commentservice "github.com/taskwell/taskwell/internal/services/comment"
	dashboardservice "github.com/taskwell/taskwell/internal/services/dashboard"
	profileservice "github.com/taskwell/taskwell/internal/services/profile"
	projectservice "github.com/taskwell/taskwell/internal/services/project"
	taskservice "github.com/taskwell/taskwell/internal/services/task"
)

// App is the application container. It wires the store, the event
// publisher and one shared request pipeline into the services.
type App struct {
	repo      database.DataStore
	publisher events.Publisher

	ProjectService   projectservice.Service
	TaskService      taskservice.Service
	CommentService   commentservice.Service
	ProfileService   profileservice.Service
	DashboardService dashboardservice.Service
}

// New creates the container with all services sharing one pipeline
func New(repo database.DataStore, publisher events.Publisher, tokens *identity.TokenManager, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	chain := pipeline.Default(logger, pipeline.DefaultSlowThreshold)

	return &App{
		repo:      repo,
		publisher: publisher,

		ProjectService:   projectservice.NewService(repo, publisher, chain),
		TaskService:      taskservice.NewService(repo, publisher, chain),
		CommentService:   commentservice.NewService(repo, publisher, chain),
		ProfileService:   profileservice.NewService(repo, tokens, chain),
		DashboardService: dashboardservice.NewService(repo, chain),
	}
}

// Repo returns the underlying store for direct access
func (a *App) Repo() database.DataStore {
	return a.repo
}

// Close releases the container's resources
func (a *App) Close() error {
	if a.publisher != nil {
		return a.publisher.Close()
	}
	return nil
}
