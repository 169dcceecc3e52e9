package project

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

// Service defines all project-related business operations
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*models.Project, error)
	Get(ctx context.Context, req GetRequest) (*models.Project, error)
	List(ctx context.Context, req ListRequest) ([]*models.Project, error)
	Update(ctx context.Context, req UpdateRequest) (*models.Project, error)
	Delete(ctx context.Context, req DeleteRequest) error

	AddMember(ctx context.Context, req AddMemberRequest) (*models.Membership, error)
	RemoveMember(ctx context.Context, req RemoveMemberRequest) error
	ListMembers(ctx context.Context, req ListMembersRequest) ([]*models.MemberDetail, error)
}

// service implements Service
type service struct {
	repo      database.DataStore
	publisher events.Publisher
	chain     *pipeline.Chain
}

// NewService creates a new project service
func NewService(repo database.DataStore, publisher events.Publisher, chain *pipeline.Chain) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		chain:     chain,
	}
}

// Create makes the caller the owner of a new project
func (s *service) Create(ctx context.Context, req CreateRequest) (*models.Project, error) {
	return pipeline.Execute(ctx, s.chain, req, s.create)
}

func (s *service) create(ctx context.Context, req CreateRequest) (*models.Project, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	status := req.Status
	if status == "" {
		status = models.DefaultProjectStatus
	}

	created, err := s.repo.CreateProject(ctx, &models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		OwnerID:     callerID,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.publishProjectEvent(ctx, callerID, created, events.NewProjectCreated)

	return created, nil
}

// Get returns one project the caller may view
func (s *service) Get(ctx context.Context, req GetRequest) (*models.Project, error) {
	return pipeline.Execute(ctx, s.chain, req, s.get)
}

func (s *service) get(ctx context.Context, req GetRequest) (*models.Project, error) {
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

	return proj, nil
}

// List returns every project the caller owns or is a member of
func (s *service) List(ctx context.Context, req ListRequest) ([]*models.Project, error) {
	return pipeline.Execute(ctx, s.chain, req, s.list)
}

func (s *service) list(ctx context.Context, _ ListRequest) ([]*models.Project, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	return s.repo.ListProjectsForUser(ctx, callerID)
}

// Update applies the request's non-nil fields to the project
func (s *service) Update(ctx context.Context, req UpdateRequest) (*models.Project, error) {
	return pipeline.Execute(ctx, s.chain, req, s.update)
}

func (s *service) update(ctx context.Context, req UpdateRequest) (*models.Project, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	proj, err := s.repo.GetProjectByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	if !authz.CanUpdateProject(callerID, proj.OwnerID) {
		return nil, errs.AccessDenied()
	}

	if req.Name != nil {
		proj.Name = *req.Name
	}
	if req.Description != nil {
		proj.Description = *req.Description
	}
	if req.Status != nil {
		proj.Status = *req.Status
	}
	if req.StartDate != nil {
		proj.StartDate = req.StartDate
	}
	if req.DueDate != nil {
		proj.DueDate = req.DueDate
	}

	if err := s.repo.UpdateProject(ctx, proj); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	updated, err := s.repo.GetProjectByID(ctx, proj.ID)
	if err != nil {
		return nil, err
	}

	s.publishProjectEvent(ctx, callerID, updated, events.NewProjectUpdated)

	return updated, nil
}

// Delete removes the project; its tasks and their comments cascade
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

	proj, err := s.repo.GetProjectByID(ctx, req.ProjectID)
	if err != nil {
		return err
	}

	if !authz.CanDeleteProject(callerID, proj.OwnerID) {
		return errs.AccessDenied()
	}

	// Resolve recipients before the row disappears
	recipients := s.recipientIDs(ctx, proj)

	if err := s.repo.DeleteProject(ctx, proj.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if actor, actorErr := s.repo.GetUserByID(ctx, callerID); actorErr == nil {
		events.Emit(s.publisher, events.NewProjectDeleted(actor, proj, recipients))
	} else {
		slog.Warn("skipping event, actor lookup failed", "error", actorErr)
	}

	return nil
}

// AddMember grants a user membership on the project. Owner only.
func (s *service) AddMember(ctx context.Context, req AddMemberRequest) (*models.Membership, error) {
	return pipeline.Execute(ctx, s.chain, req, s.addMember)
}

func (s *service) addMember(ctx context.Context, req AddMemberRequest) (*models.Membership, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	proj, err := s.repo.GetProjectByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	if !authz.CanManageMembers(callerID, proj.OwnerID) {
		return nil, errs.AccessDenied()
	}

	if req.UserID == proj.OwnerID {
		return nil, errs.Conflict("user already owns the project")
	}

	// The user must exist before a membership row can reference them
	if _, err := s.repo.GetUserByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}

	membership, err := s.repo.AddMembership(ctx, proj.ID, req.UserID, role)
	if err != nil {
		return nil, err
	}

	s.publishProjectEvent(ctx, callerID, proj, events.NewProjectUpdated)

	return membership, nil
}

// RemoveMember revokes a user's membership. Owner only.
func (s *service) RemoveMember(ctx context.Context, req RemoveMemberRequest) error {
	_, err := pipeline.Execute(ctx, s.chain, req, func(ctx context.Context, req RemoveMemberRequest) (struct{}, error) {
		return struct{}{}, s.removeMember(ctx, req)
	})
	return err
}

func (s *service) removeMember(ctx context.Context, req RemoveMemberRequest) error {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return errs.Unauthenticated()
	}

	proj, err := s.repo.GetProjectByID(ctx, req.ProjectID)
	if err != nil {
		return err
	}

	if !authz.CanManageMembers(callerID, proj.OwnerID) {
		return errs.AccessDenied()
	}

	// Resolve recipients before the membership row disappears so the
	// removed member still hears about it
	recipients := s.recipientIDs(ctx, proj)

	if err := s.repo.RemoveMembership(ctx, proj.ID, req.UserID); err != nil {
		return err
	}

	if actor, actorErr := s.repo.GetUserByID(ctx, callerID); actorErr == nil {
		events.Emit(s.publisher, events.NewProjectUpdated(actor, proj, recipients))
	} else {
		slog.Warn("skipping event, actor lookup failed", "error", actorErr)
	}

	return nil
}

// ListMembers returns the project's members with contact fields resolved
// in one batched lookup
func (s *service) ListMembers(ctx context.Context, req ListMembersRequest) ([]*models.MemberDetail, error) {
	return pipeline.Execute(ctx, s.chain, req, s.listMembers)
}

func (s *service) listMembers(ctx context.Context, req ListMembersRequest) ([]*models.MemberDetail, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	proj, err := s.repo.GetProjectByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.repo.ListMemberships(ctx, proj.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	memberIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		memberIDs = append(memberIDs, m.UserID)
	}

	if !authz.CanViewProject(callerID, proj.OwnerID, memberIDs) {
		return nil, errs.AccessDenied()
	}

	users, err := s.repo.GetUsersByIDs(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve members: %w", err)
	}

	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	details := make([]*models.MemberDetail, 0, len(memberships))
	for _, m := range memberships {
		detail := &models.MemberDetail{Membership: *m}
		if u, found := byID[m.UserID]; found {
			detail.UserName = u.FullName()
			detail.UserEmail = u.Email
		}
		details = append(details, detail)
	}

	return details, nil
}

// recipientIDs resolves who should hear about a change: the owner plus
// every member. A lookup failure degrades to owner-only rather than
// failing the command.
func (s *service) recipientIDs(ctx context.Context, proj *models.Project) []string {
	recipients := []string{proj.OwnerID}

	memberIDs, err := s.repo.ProjectMemberIDs(ctx, proj.ID)
	if err != nil {
		slog.Warn("failed to resolve event recipients", "project_id", proj.ID, "error", err)
		return recipients
	}

	for _, id := range memberIDs {
		if id != proj.OwnerID {
			recipients = append(recipients, id)
		}
	}
	return recipients
}

// publishProjectEvent emits a project event built by the given constructor
func (s *service) publishProjectEvent(ctx context.Context, callerID string, proj *models.Project,
	build func(*models.User, *models.Project, []string) events.Event) {

	actor, err := s.repo.GetUserByID(ctx, callerID)
	if err != nil {
		slog.Warn("skipping event, actor lookup failed", "error", err)
		return
	}

	events.Emit(s.publisher, build(actor, proj, s.recipientIDs(ctx, proj)))
}
