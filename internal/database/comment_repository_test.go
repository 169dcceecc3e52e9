package database

import (
	"context"
	"testing"

	"github.com/taskwell/taskwell/internal/errs"
	"github.com/taskwell/taskwell/internal/models"
)

func TestCommentRepo_Lifecycle(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	owner := mustCreateUser(t, repo, "owner@example.com")
	project := mustCreateProject(t, repo, owner.ID, "Proj")
	task := mustCreateTask(t, repo, project.ID, "Task", models.StatusTodo, models.PriorityLow)

	first, err := repo.CreateComment(ctx, task.ID, owner.ID, "first")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	second, err := repo.CreateComment(ctx, task.ID, owner.ID, "second")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	comments, err := repo.ListCommentsByTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListCommentsByTask: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(comments))
	}
	if comments[0].ID != first.ID || comments[1].ID != second.ID {
		t.Error("Expected comments ordered oldest first")
	}

	if err := repo.UpdateComment(ctx, first.ID, "edited"); err != nil {
		t.Fatalf("UpdateComment: %v", err)
	}
	got, err := repo.GetCommentByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetCommentByID: %v", err)
	}
	if got.Content != "edited" {
		t.Errorf("Content = %q, want %q", got.Content, "edited")
	}

	if err := repo.DeleteComment(ctx, first.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if _, err := repo.GetCommentByID(ctx, first.ID); !errs.IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}
}

func TestCommentRepo_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	if _, err := repo.GetCommentByID(context.Background(), "missing"); !errs.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
	if err := repo.UpdateComment(context.Background(), "missing", "x"); !errs.IsNotFound(err) {
		t.Errorf("Expected not found on update, got %v", err)
	}
}
