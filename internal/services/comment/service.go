package comment

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

// Service defines all comment-related business operations
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*models.CommentDetail, error)
	List(ctx context.Context, req ListRequest) ([]*models.CommentDetail, error)
	Update(ctx context.Context, req UpdateRequest) (*models.CommentDetail, error)
	Delete(ctx context.Context, req DeleteRequest) error
}

// service implements Service
type service struct {
	repo      database.DataStore
	publisher events.Publisher
	chain     *pipeline.Chain
}

// NewService creates a new comment service
func NewService(repo database.DataStore, publisher events.Publisher, chain *pipeline.Chain) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		chain:     chain,
	}
}

// taskScope is the pre-fetched fact set the comment rules decide over
type taskScope struct {
	task *models.Task
	proj *models.Project
}

// loadScope resolves a task and its parent project
func (s *service) loadScope(ctx context.Context, taskID string) (*taskScope, error) {
	task, err := s.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	proj, err := s.repo.GetProjectByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	return &taskScope{task: task, proj: proj}, nil
}

// Create adds a comment. Allowed for the project owner and the task's
// assignee; the response carries the author's resolved contact fields.
func (s *service) Create(ctx context.Context, req CreateRequest) (*models.CommentDetail, error) {
	return pipeline.Execute(ctx, s.chain, req, s.create)
}

func (s *service) create(ctx context.Context, req CreateRequest) (*models.CommentDetail, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	scope, err := s.loadScope(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	if !authz.CanCommentOnTask(callerID, scope.proj.OwnerID, scope.task.AssigneeID) {
		return nil, errs.AccessDenied()
	}

	created, err := s.repo.CreateComment(ctx, scope.task.ID, callerID, req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	author, err := s.repo.GetUserByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	events.Emit(s.publisher, events.NewCommentAdded(author, scope.proj, scope.task, created,
		s.recipientIDs(ctx, scope)))

	return &models.CommentDetail{
		Comment:     *created,
		AuthorName:  author.FullName(),
		AuthorEmail: author.Email,
	}, nil
}

// List returns a task's comments oldest first, with author fields
// resolved in one batched lookup
func (s *service) List(ctx context.Context, req ListRequest) ([]*models.CommentDetail, error) {
	return pipeline.Execute(ctx, s.chain, req, s.list)
}

func (s *service) list(ctx context.Context, req ListRequest) ([]*models.CommentDetail, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	scope, err := s.loadScope(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	if !authz.CanViewComments(callerID, scope.proj.OwnerID, scope.task.AssigneeID) {
		return nil, errs.AccessDenied()
	}

	comments, err := s.repo.ListCommentsByTask(ctx, scope.task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	// One id-set lookup instead of one lookup per row
	authorIDs := make([]string, 0, len(comments))
	seen := make(map[string]bool, len(comments))
	for _, c := range comments {
		if !seen[c.AuthorID] {
			seen[c.AuthorID] = true
			authorIDs = append(authorIDs, c.AuthorID)
		}
	}

	authors, err := s.repo.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve authors: %w", err)
	}
	byID := make(map[string]*models.User, len(authors))
	for _, u := range authors {
		byID[u.ID] = u
	}

	details := make([]*models.CommentDetail, 0, len(comments))
	for _, c := range comments {
		detail := &models.CommentDetail{Comment: *c}
		if u, found := byID[c.AuthorID]; found {
			detail.AuthorName = u.FullName()
			detail.AuthorEmail = u.Email
		}
		details = append(details, detail)
	}

	return details, nil
}

// Update replaces a comment's content. Author only.
func (s *service) Update(ctx context.Context, req UpdateRequest) (*models.CommentDetail, error) {
	return pipeline.Execute(ctx, s.chain, req, s.update)
}

func (s *service) update(ctx context.Context, req UpdateRequest) (*models.CommentDetail, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	comment, err := s.repo.GetCommentByID(ctx, req.CommentID)
	if err != nil {
		return nil, err
	}

	if !authz.CanUpdateComment(callerID, comment.AuthorID) {
		return nil, errs.AccessDenied()
	}

	if err := s.repo.UpdateComment(ctx, comment.ID, req.Content); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	updated, err := s.repo.GetCommentByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	author, err := s.repo.GetUserByID(ctx, updated.AuthorID)
	if err != nil {
		return nil, err
	}

	if scope, scopeErr := s.loadScope(ctx, updated.TaskID); scopeErr == nil {
		events.Emit(s.publisher, events.NewCommentUpdated(author, scope.proj, scope.task, updated,
			s.recipientIDs(ctx, scope)))
	} else {
		slog.Warn("skipping event, scope lookup failed", "error", scopeErr)
	}

	return &models.CommentDetail{
		Comment:     *updated,
		AuthorName:  author.FullName(),
		AuthorEmail: author.Email,
	}, nil
}

// Delete removes a comment. Allowed for the author and the project owner.
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

	comment, err := s.repo.GetCommentByID(ctx, req.CommentID)
	if err != nil {
		return err
	}

	scope, err := s.loadScope(ctx, comment.TaskID)
	if err != nil {
		return err
	}

	if !authz.CanDeleteComment(callerID, comment.AuthorID, scope.proj.OwnerID) {
		return errs.AccessDenied()
	}

	if err := s.repo.DeleteComment(ctx, comment.ID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	if actor, actorErr := s.repo.GetUserByID(ctx, callerID); actorErr == nil {
		events.Emit(s.publisher, events.NewCommentDeleted(actor, scope.proj, scope.task, comment.ID,
			s.recipientIDs(ctx, scope)))
	} else {
		slog.Warn("skipping event, actor lookup failed", "error", actorErr)
	}

	return nil
}

// recipientIDs resolves the project owner, members and task assignee
func (s *service) recipientIDs(ctx context.Context, scope *taskScope) []string {
	seen := map[string]bool{scope.proj.OwnerID: true}
	recipients := []string{scope.proj.OwnerID}

	memberIDs, err := s.repo.ProjectMemberIDs(ctx, scope.proj.ID)
	if err != nil {
		slog.Warn("failed to resolve event recipients", "project_id", scope.proj.ID, "error", err)
	}
	for _, id := range memberIDs {
		if !seen[id] {
			seen[id] = true
			recipients = append(recipients, id)
		}
	}

	if scope.task.AssigneeID != nil && !seen[*scope.task.AssigneeID] {
		recipients = append(recipients, *scope.task.AssigneeID)
	}
	return recipients
}
