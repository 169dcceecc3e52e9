package comment

import (
	"context"
	"testing"

	"github.com/taskwell/taskwell/internal/database"
	"github.com/taskwell/taskwell/internal/errs"
	"github.com/taskwell/taskwell/internal/events"
	"github.com/taskwell/taskwell/internal/identity"
	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/testutil"
)

func setup(t *testing.T) (Service, *database.Repository, *testutil.RecordingPublisher, *models.User, *models.User, *models.Task) {
	t.Helper()

	repo := testutil.NewTestStore(t)
	publisher := &testutil.RecordingPublisher{}
	svc := NewService(repo, publisher, nil)

	owner := testutil.CreateUser(t, repo, "owner@example.com", "Olive", "Owner")
	worker := testutil.CreateUser(t, repo, "worker@example.com", "Wendy", "Worker")
	proj := testutil.CreateProject(t, repo, owner.ID, "Apollo")
	task := testutil.CreateTask(t, repo, proj.ID, "Design cards")

	return svc, repo, publisher, owner, worker, task
}

func callerCtx(userID string) context.Context {
	return identity.WithCaller(context.Background(), userID)
}

func TestCreateComment(t *testing.T) {
	svc, _, publisher, owner, _, task := setup(t)

	detail, err := svc.Create(callerCtx(owner.ID), CreateRequest{TaskID: task.ID, Content: "first pass"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if detail.Content != "first pass" || detail.AuthorID != owner.ID {
		t.Errorf("Expected stored comment, got %+v", detail)
	}
	if detail.AuthorName != "Olive Owner" || detail.AuthorEmail != "owner@example.com" {
		t.Errorf("Expected resolved author fields, got %+v", detail)
	}

	if got := publisher.EventsOfType(events.EventCommentAdded); len(got) != 1 {
		t.Errorf("Expected 1 comment_added event, got %d", len(got))
	}
}

func TestCreateCommentValidation(t *testing.T) {
	svc, _, _, owner, _, task := setup(t)

	_, err := svc.Create(callerCtx(owner.ID), CreateRequest{TaskID: task.ID})
	if !errs.IsValidation(err) {
		t.Errorf("Expected validation error for empty content, got %v", err)
	}
}

func TestCreateCommentUnknownTask(t *testing.T) {
	svc, _, _, owner, _, _ := setup(t)

	_, err := svc.Create(callerCtx(owner.ID), CreateRequest{TaskID: "missing", Content: "x"})
	if !errs.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestCommentAuthorizationFlipsWithAssignment(t *testing.T) {
	svc, repo, _, _, worker, task := setup(t)

	// Neither assignee nor owner: denied
	_, err := svc.Create(callerCtx(worker.ID), CreateRequest{TaskID: task.ID, Content: "drive-by"})
	if !errs.IsAccessDenied(err) {
		t.Fatalf("Expected access denied before assignment, got %v", err)
	}

	// Once assigned, the same caller succeeds
	task.AssigneeID = &worker.ID
	if err := repo.UpdateTask(context.Background(), task); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	if _, err := svc.Create(callerCtx(worker.ID), CreateRequest{TaskID: task.ID, Content: "on it"}); err != nil {
		t.Errorf("Expected assignee to comment, got %v", err)
	}
}

func TestListCommentsBatchedAuthors(t *testing.T) {
	svc, repo, _, owner, worker, task := setup(t)

	task.AssigneeID = &worker.ID
	if err := repo.UpdateTask(context.Background(), task); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	if _, err := svc.Create(callerCtx(owner.ID), CreateRequest{TaskID: task.ID, Content: "looks good"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(callerCtx(worker.ID), CreateRequest{TaskID: task.ID, Content: "shipping it"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	details, err := svc.List(callerCtx(owner.ID), ListRequest{TaskID: task.ID})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(details))
	}

	// Oldest first, each with its own author resolved
	if details[0].Content != "looks good" || details[0].AuthorName != "Olive Owner" {
		t.Errorf("Expected first comment by owner, got %+v", details[0])
	}
	if details[1].Content != "shipping it" || details[1].AuthorName != "Wendy Worker" {
		t.Errorf("Expected second comment by worker, got %+v", details[1])
	}
}

func TestListCommentsStrangerDenied(t *testing.T) {
	svc, repo, _, _, _, task := setup(t)

	stranger := testutil.CreateUser(t, repo, "stranger@example.com", "Sam", "Stranger")

	_, err := svc.List(callerCtx(stranger.ID), ListRequest{TaskID: task.ID})
	if !errs.IsAccessDenied(err) {
		t.Errorf("Expected access denied, got %v", err)
	}
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	svc, _, publisher, owner, _, task := setup(t)

	created, err := svc.Create(callerCtx(owner.ID), CreateRequest{TaskID: task.ID, Content: "draft"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := svc.Update(callerCtx(owner.ID), UpdateRequest{CommentID: created.ID, Content: "final"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Content != "final" {
		t.Errorf("Expected updated content, got %q", updated.Content)
	}

	if got := publisher.EventsOfType(events.EventCommentUpdated); len(got) != 1 {
		t.Errorf("Expected 1 comment_updated event, got %d", len(got))
	}
}

func TestUpdateCommentNonAuthorDenied(t *testing.T) {
	svc, repo, _, owner, worker, task := setup(t)

	created, err := svc.Create(callerCtx(owner.ID), CreateRequest{TaskID: task.ID, Content: "draft"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Even the assignee cannot edit someone else's comment
	task.AssigneeID = &worker.ID
	if err := repo.UpdateTask(context.Background(), task); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	_, err = svc.Update(callerCtx(worker.ID), UpdateRequest{CommentID: created.ID, Content: "hijack"})
	if !errs.IsAccessDenied(err) {
		t.Errorf("Expected access denied, got %v", err)
	}
}

func TestDeleteCommentByAuthorAndOwner(t *testing.T) {
	svc, repo, publisher, owner, worker, task := setup(t)

	task.AssigneeID = &worker.ID
	if err := repo.UpdateTask(context.Background(), task); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	// Author deletes their own comment
	mine, err := svc.Create(callerCtx(worker.ID), CreateRequest{TaskID: task.ID, Content: "mine"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Delete(callerCtx(worker.ID), DeleteRequest{CommentID: mine.ID}); err != nil {
		t.Errorf("Author should delete own comment: %v", err)
	}

	// Project owner deletes someone else's comment
	theirs, err := svc.Create(callerCtx(worker.ID), CreateRequest{TaskID: task.ID, Content: "theirs"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Delete(callerCtx(owner.ID), DeleteRequest{CommentID: theirs.ID}); err != nil {
		t.Errorf("Owner should delete any comment: %v", err)
	}

	if got := publisher.EventsOfType(events.EventCommentDeleted); len(got) != 2 {
		t.Errorf("Expected 2 comment_deleted events, got %d", len(got))
	}
}

func TestDeleteCommentNonAuthorNonOwnerDenied(t *testing.T) {
	svc, repo, _, owner, worker, task := setup(t)

	created, err := svc.Create(callerCtx(owner.ID), CreateRequest{TaskID: task.ID, Content: "draft"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	task.AssigneeID = &worker.ID
	if err := repo.UpdateTask(context.Background(), task); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	err = svc.Delete(callerCtx(worker.ID), DeleteRequest{CommentID: created.ID})
	if !errs.IsAccessDenied(err) {
		t.Errorf("Expected access denied, got %v", err)
	}
}
