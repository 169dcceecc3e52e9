package events

import (
	"context"
	"errors"
	"testing"

	"github.com/taskwell/taskwell/internal/models"
)

func testActor() *models.User {
	return &models.User{ID: "user-1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
}

func testProject() *models.Project {
	return &models.Project{ID: "project-1", Name: "Engine", OwnerID: "user-1"}
}

func testTask() *models.Task {
	return &models.Task{ID: "task-1", ProjectID: "project-1", Title: "Design cards"}
}

func TestNewTaskStatusChanged(t *testing.T) {
	event := NewTaskStatusChanged(testActor(), testProject(), testTask(),
		models.StatusTodo, models.StatusInProgress, []string{"user-1", "user-2"})

	if event.Type != EventTaskStatusChanged {
		t.Errorf("expected type %s, got %s", EventTaskStatusChanged, event.Type)
	}
	if event.OldValue != string(models.StatusTodo) {
		t.Errorf("expected old value %q, got %q", models.StatusTodo, event.OldValue)
	}
	if event.NewValue != string(models.StatusInProgress) {
		t.Errorf("expected new value %q, got %q", models.StatusInProgress, event.NewValue)
	}
	if event.ProjectName != "Engine" || event.TaskTitle != "Design cards" {
		t.Errorf("expected denormalized names, got project=%q task=%q", event.ProjectName, event.TaskTitle)
	}
	if len(event.RecipientIDs) != 2 {
		t.Errorf("expected 2 recipients, got %d", len(event.RecipientIDs))
	}
	if event.ID == "" {
		t.Error("expected a generated event id")
	}
	if event.Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
}

func TestNewTaskAssigned(t *testing.T) {
	assignee := &models.User{ID: "user-2", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"}

	event := NewTaskAssigned(testActor(), testProject(), testTask(), "user-3", assignee, []string{"user-2"})

	if event.OldValue != "user-3" {
		t.Errorf("expected old assignee user-3, got %q", event.OldValue)
	}
	if event.AssigneeID != "user-2" || event.AssigneeName != "Grace Hopper" || event.AssigneeEmail != "grace@example.com" {
		t.Errorf("expected assignee contact fields, got %+v", event)
	}
}

func TestNewTaskAssignedUnassigned(t *testing.T) {
	event := NewTaskAssigned(testActor(), testProject(), testTask(), "user-2", nil, nil)

	if event.OldValue != "user-2" {
		t.Errorf("expected old assignee user-2, got %q", event.OldValue)
	}
	if event.NewValue != "" || event.AssigneeID != "" {
		t.Errorf("expected empty new assignee, got new=%q id=%q", event.NewValue, event.AssigneeID)
	}
}

func TestActorNameFallsBackToEmail(t *testing.T) {
	actor := &models.User{ID: "user-1", Email: "anon@example.com"}

	event := NewProjectCreated(actor, testProject(), nil)

	if event.ActorName != "anon@example.com" {
		t.Errorf("expected email fallback, got %q", event.ActorName)
	}
}

func TestEventIDsAreUnique(t *testing.T) {
	a := NewProjectCreated(testActor(), testProject(), nil)
	b := NewProjectCreated(testActor(), testProject(), nil)

	if a.ID == b.ID {
		t.Errorf("expected distinct event ids, both were %s", a.ID)
	}
}

// fakePublisher records published events or fails every publish.
type fakePublisher struct {
	published []Event
	err       error
}

func (f *fakePublisher) Connect(ctx context.Context) error { return nil }
func (f *fakePublisher) Close() error                      { return nil }

func (f *fakePublisher) Publish(event Event) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, event)
	return nil
}

func TestEmitNilPublisher(t *testing.T) {
	// Must not panic.
	Emit(nil, NewProjectCreated(testActor(), testProject(), nil))
}

func TestEmitDelivers(t *testing.T) {
	publisher := &fakePublisher{}

	Emit(publisher, NewProjectCreated(testActor(), testProject(), nil))

	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}
}

func TestEmitSwallowsFailures(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("socket gone")}

	// Failures are logged, never returned or panicked.
	Emit(publisher, NewProjectCreated(testActor(), testProject(), nil))
}

func TestClientPublishQueueFull(t *testing.T) {
	client := NewClient("/tmp/nonexistent.sock")
	client.eventQueue = make(chan Event, 1)

	if err := client.Publish(Event{Type: EventPing}); err != nil {
		t.Fatalf("first publish should queue: %v", err)
	}
	if err := client.Publish(Event{Type: EventPing}); err == nil {
		t.Error("expected error when queue is full")
	}
}

func TestClientPublishAfterClose(t *testing.T) {
	client := NewClient("/tmp/nonexistent.sock")
	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := client.Publish(Event{Type: EventPing}); err == nil {
		t.Error("expected error publishing on a closed client")
	}
}

func TestClassifyConnectionError(t *testing.T) {
	if ClassifyConnectionError(nil) != nil {
		t.Error("nil error should classify to nil")
	}

	classified := ClassifyConnectionError(errors.New("dial unix: connect: no such device"))
	if classified.Code != ErrHubNotRunning {
		t.Errorf("expected fallback code ErrHubNotRunning, got %d", classified.Code)
	}
	if classified.Error() == "" {
		t.Error("expected a message")
	}
}
