package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/taskwell/taskwell/internal/database"
	"github.com/taskwell/taskwell/internal/errs"
	"github.com/taskwell/taskwell/internal/identity"
	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/pipeline"
)

// SummaryRequest asks for the caller's dashboard
type SummaryRequest struct{}

// RequestName identifies the request in logs and records
func (SummaryRequest) RequestName() string { return "dashboard.summary" }

// Service computes the caller's dashboard. Pure read: no mutation, no
// event emission.
type Service interface {
	Summary(ctx context.Context, req SummaryRequest) (*models.DashboardSummary, error)
}

// service implements Service
type service struct {
	repo  database.DataStore
	chain *pipeline.Chain
	now   func() time.Time
}

// NewService creates a new dashboard service
func NewService(repo database.DataStore, chain *pipeline.Chain) Service {
	return &service{
		repo:  repo,
		chain: chain,
		now:   time.Now,
	}
}

// Summary loads every project the caller can see plus all tasks within
// them, then aggregates in a single pass
func (s *service) Summary(ctx context.Context, req SummaryRequest) (*models.DashboardSummary, error) {
	return pipeline.Execute(ctx, s.chain, req, s.summary)
}

func (s *service) summary(ctx context.Context, _ SummaryRequest) (*models.DashboardSummary, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	projects, err := s.repo.ListProjectsForUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	summary := models.NewDashboardSummary()
	summary.TotalProjects = len(projects)
	for _, p := range projects {
		if p.Status == models.ProjectActive {
			summary.ActiveProjects++
		}
	}

	if len(projects) == 0 {
		return summary, nil
	}

	projectIDs := make([]string, 0, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
	}

	// PageSize 0 disables paging: the aggregation needs every task
	tasks, _, err := s.repo.ListTasks(ctx, database.TaskFilter{ProjectIDs: projectIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	now := s.now()
	for _, t := range tasks {
		summary.TotalTasks++
		summary.TasksByStatus[t.Status]++
		summary.TasksByPriority[t.Priority]++

		switch t.Status {
		case models.StatusTodo, models.StatusInProgress:
			summary.PendingTasks++
		case models.StatusDone:
			summary.CompletedTasks++
		}

		if t.Overdue(now) {
			summary.OverdueTasks++
		}
	}

	return summary, nil
}
