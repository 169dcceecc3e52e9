package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskwell/taskwell/internal/authz"
	"github.com/taskwell/taskwell/internal/database"
	"github.com/taskwell/taskwell/internal/errs"
	"github.com/taskwell/taskwell/internal/events"
	"github.com/taskwell/taskwell/internal/identity"
	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/pipeline"
)

// Service defines all task-related business operations
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*models.Task, error)
	Get(ctx context.Context, req GetRequest) (*models.TaskDetail, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Update(ctx context.Context, req UpdateRequest) (*models.Task, error)
	Delete(ctx context.Context, req DeleteRequest) error
}

// service implements Service
type service struct {
	repo      database.DataStore
	publisher events.Publisher
	chain     *pipeline.Chain
}

// NewService creates a new task service
func NewService(repo database.DataStore, publisher events.Publisher, chain *pipeline.Chain) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		chain:     chain,
	}
}

// Create adds a task to a project the caller can see. Status and
// priority default to todo and medium.
func (s *service) Create(ctx context.Context, req CreateRequest) (*models.Task, error) {
	return pipeline.Execute(ctx, s.chain, req, s.create)
}

func (s *service) create(ctx context.Context, req CreateRequest) (*models.Task, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	proj, err := s.repo.GetProjectByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	memberIDs, err := s.repo.ProjectMemberIDs(ctx, proj.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	if !authz.CanViewProject(callerID, proj.OwnerID, memberIDs) {
		return nil, errs.AccessDenied()
	}

	if req.AssigneeID != nil {
		if _, err := s.repo.GetUserByID(ctx, *req.AssigneeID); err != nil {
			return nil, err
		}
	}

	status := req.Status
	if status == "" {
		status = models.DefaultTaskStatus
	}
	priority := req.Priority
	if priority == "" {
		priority = models.DefaultTaskPriority
	}

	created, err := s.repo.CreateTask(ctx, &models.Task{
		ProjectID:   proj.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if actor, actorErr := s.repo.GetUserByID(ctx, callerID); actorErr == nil {
		recipients := s.recipientIDs(ctx, proj, created)
		events.Emit(s.publisher, events.NewTaskCreated(actor, proj, created, recipients))
	} else {
		slog.Warn("skipping event, actor lookup failed", "error", actorErr)
	}

	return created, nil
}

// Get returns one task with denormalized project and assignee fields
func (s *service) Get(ctx context.Context, req GetRequest) (*models.TaskDetail, error) {
	return pipeline.Execute(ctx, s.chain, req, s.get)
}

func (s *service) get(ctx context.Context, req GetRequest) (*models.TaskDetail, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	task, err := s.repo.GetTaskByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	proj, err := s.repo.GetProjectByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}

	if !authz.CanViewTask(callerID, proj.OwnerID, task.AssigneeID) {
		return nil, errs.AccessDenied()
	}

	detail := &models.TaskDetail{
		Task:        *task,
		ProjectName: proj.Name,
	}
	if task.AssigneeID != nil {
		if assignee, err := s.repo.GetUserByID(ctx, *task.AssigneeID); err == nil {
			detail.AssigneeName = assignee.FullName()
			detail.AssigneeEmail = assignee.Email
		}
	}

	return detail, nil
}

// List returns one page of tasks in the caller's visible projects
func (s *service) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	return pipeline.Execute(ctx, s.chain, req, s.list)
}

func (s *service) list(ctx context.Context, req ListRequest) (*ListResponse, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	filter := database.TaskFilter{
		Status:     req.Status,
		Priority:   req.Priority,
		AssigneeID: req.AssigneeID,
		Search:     req.Search,
		SortBy:     req.SortBy,
		SortDesc:   req.SortDesc,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = models.DefaultPageSize
	}

	if req.ProjectID != "" {
		proj, err := s.repo.GetProjectByID(ctx, req.ProjectID)
		if err != nil {
			return nil, err
		}
		memberIDs, err := s.repo.ProjectMemberIDs(ctx, proj.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load members: %w", err)
		}
		if !authz.CanViewProject(callerID, proj.OwnerID, memberIDs) {
			return nil, errs.AccessDenied()
		}
		filter.ProjectID = proj.ID
	} else {
		projects, err := s.repo.ListProjectsForUser(ctx, callerID)
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		if len(projects) == 0 {
			return &ListResponse{Tasks: []*models.Task{}, Page: filter.Page}, nil
		}
		for _, p := range projects {
			filter.ProjectIDs = append(filter.ProjectIDs, p.ID)
		}
	}

	tasks, total, err := s.repo.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &ListResponse{Tasks: tasks, Total: total, Page: filter.Page}, nil
}

// Update applies the request's non-nil fields. A status change and an
// assignment each emit their own event carrying the old and new values.
func (s *service) Update(ctx context.Context, req UpdateRequest) (*models.Task, error) {
	return pipeline.Execute(ctx, s.chain, req, s.update)
}

func (s *service) update(ctx context.Context, req UpdateRequest) (*models.Task, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	task, err := s.repo.GetTaskByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	proj, err := s.repo.GetProjectByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}

	if !authz.CanUpdateTask(callerID, proj.OwnerID, task.AssigneeID) {
		return nil, errs.AccessDenied()
	}

	oldStatus := task.Status
	oldAssigneeID := ""
	if task.AssigneeID != nil {
		oldAssigneeID = *task.AssigneeID
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	var newAssignee *models.User
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			task.AssigneeID = nil
		} else {
			assignee, err := s.repo.GetUserByID(ctx, *req.AssigneeID)
			if err != nil {
				return nil, err
			}
			newAssignee = assignee
			task.AssigneeID = req.AssigneeID
		}
	}
	if req.DueDate != nil {
		if req.DueDate.IsZero() {
			task.DueDate = nil
		} else {
			task.DueDate = req.DueDate
		}
	}

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	updated, err := s.repo.GetTaskByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	s.publishUpdateEvents(ctx, callerID, proj, updated, oldStatus, oldAssigneeID, req, newAssignee)

	return updated, nil
}

// Delete removes a task; its comments cascade
func (s *service) Delete(ctx context.Context, req DeleteRequest) error {
	_, err := pipeline.Execute(ctx, s.chain, req, func(ctx context.Context, req DeleteRequest) (struct{}, error) {
		return struct{}{}, s.delete(ctx, req)
	})
	return err
}

func (s *service) delete(ctx context.Context, req DeleteRequest) error {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return errs.Unauthenticated()
	}

	task, err := s.repo.GetTaskByID(ctx, req.TaskID)
	if err != nil {
		return err
	}

	proj, err := s.repo.GetProjectByID(ctx, task.ProjectID)
	if err != nil {
		return err
	}

	if !authz.CanDeleteTask(callerID, proj.OwnerID, task.AssigneeID) {
		return errs.AccessDenied()
	}

	recipients := s.recipientIDs(ctx, proj, task)

	if err := s.repo.DeleteTask(ctx, task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if actor, actorErr := s.repo.GetUserByID(ctx, callerID); actorErr == nil {
		events.Emit(s.publisher, events.NewTaskDeleted(actor, proj, task, recipients))
	} else {
		slog.Warn("skipping event, actor lookup failed", "error", actorErr)
	}

	return nil
}

// publishUpdateEvents emits the events for one task update. A status
// change and an assignment each get their specific event type; any other
// field change emits the generic update event.
func (s *service) publishUpdateEvents(ctx context.Context, callerID string, proj *models.Project,
	task *models.Task, oldStatus models.TaskStatus, oldAssigneeID string, req UpdateRequest, newAssignee *models.User) {

	actor, err := s.repo.GetUserByID(ctx, callerID)
	if err != nil {
		slog.Warn("skipping event, actor lookup failed", "error", err)
		return
	}

	recipients := s.recipientIDs(ctx, proj, task)

	statusChanged := req.Status != nil && *req.Status != oldStatus

	newAssigneeID := ""
	if task.AssigneeID != nil {
		newAssigneeID = *task.AssigneeID
	}
	assigneeChanged := req.AssigneeID != nil && newAssigneeID != oldAssigneeID

	if statusChanged {
		events.Emit(s.publisher, events.NewTaskStatusChanged(actor, proj, task, oldStatus, task.Status, recipients))
	}
	if assigneeChanged {
		events.Emit(s.publisher, events.NewTaskAssigned(actor, proj, task, oldAssigneeID, newAssignee, recipients))
	}
	if !statusChanged && !assigneeChanged {
		events.Emit(s.publisher, events.NewTaskUpdated(actor, proj, task, recipients))
	}
}

// recipientIDs resolves who should hear about a task change: the project
// owner, every member, and the assignee. Lookup failures degrade rather
// than failing the command.
func (s *service) recipientIDs(ctx context.Context, proj *models.Project, task *models.Task) []string {
	seen := map[string]bool{proj.OwnerID: true}
	recipients := []string{proj.OwnerID}

	memberIDs, err := s.repo.ProjectMemberIDs(ctx, proj.ID)
	if err != nil {
		slog.Warn("failed to resolve event recipients", "project_id", proj.ID, "error", err)
	}
	for _, id := range memberIDs {
		if !seen[id] {
			seen[id] = true
			recipients = append(recipients, id)
		}
	}

	if task.AssigneeID != nil && !seen[*task.AssigneeID] {
		recipients = append(recipients, *task.AssigneeID)
	}
	return recipients
}
