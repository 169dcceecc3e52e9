package app

import (
	"context"
	"testing"
	"time"

	"github.com/taskwell/taskwell/internal/identity"
	projectservice "github.com/taskwell/taskwell/internal/services/project"
	"github.com/taskwell/taskwell/internal/testutil"
)

func TestNew(t *testing.T) {
	repo := testutil.NewTestStore(t)
	tokens, err := identity.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}

	a := New(repo, nil, tokens, nil)

	if a.ProjectService == nil || a.TaskService == nil || a.CommentService == nil ||
		a.ProfileService == nil || a.DashboardService == nil {
		t.Fatal("Expected all services to be initialized")
	}
	if a.Repo() == nil {
		t.Error("Expected the repo to be exposed")
	}
}

func TestServicesShareThePipeline(t *testing.T) {
	repo := testutil.NewTestStore(t)
	tokens, err := identity.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	a := New(repo, nil, tokens, nil)

	user := testutil.CreateUser(t, repo, "ada@example.com", "Ada", "Lovelace")
	ctx := identity.WithCaller(context.Background(), user.ID)

	// A request through a wired service still validates
	_, err = a.ProjectService.Create(ctx, projectservice.CreateRequest{})
	if err == nil {
		t.Error("Expected validation error through the wired pipeline")
	}
}

func TestClose(t *testing.T) {
	repo := testutil.NewTestStore(t)
	tokens, err := identity.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}

	a := New(repo, nil, tokens, nil)
	if err := a.Close(); err != nil {
		t.Errorf("Expected Close to succeed, got %v", err)
	}

	publisher := &testutil.RecordingPublisher{}
	b := New(repo, publisher, tokens, nil)
	if err := b.Close(); err != nil {
		t.Errorf("Expected Close to succeed with publisher, got %v", err)
	}
}
