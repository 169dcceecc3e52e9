package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/models"
)

// ProtocolVersion is the wire protocol version exchanged with the hub
const ProtocolVersion = 1

// EventType indicates what kind of mutation completed
type EventType string

// Event types emitted by the command handlers
const (
	EventTaskCreated       EventType = "task_created"
	EventTaskUpdated       EventType = "task_updated"
	EventTaskDeleted       EventType = "task_deleted"
	EventTaskStatusChanged EventType = "task_status_changed"
	EventTaskAssigned      EventType = "task_assigned"

	EventProjectCreated EventType = "project_created"
	EventProjectUpdated EventType = "project_updated"
	EventProjectDeleted EventType = "project_deleted"

	EventCommentAdded   EventType = "comment_added"
	EventCommentUpdated EventType = "comment_updated"
	EventCommentDeleted EventType = "comment_deleted"

	EventPing EventType = "ping"
	EventPong EventType = "pong"
)

// Event is an immutable record of a completed mutation. Payloads are
// self-contained: names, emails and old/new values are denormalized at
// publish time so consumers need no further lookups.
type Event struct {
	ID         string
	Type       EventType
	Timestamp  time.Time
	SequenceID int64 // assigned by the hub for per-partition ordering

	ActorID   string
	ActorName string

	ProjectID   string
	ProjectName string

	TaskID    string
	TaskTitle string

	CommentID string

	// OldValue/NewValue carry the before/after values for status changes
	// and assignments
	OldValue string
	NewValue string

	AssigneeID    string
	AssigneeName  string
	AssigneeEmail string

	// RecipientIDs are the user ids interested in this event, resolved at
	// publish time
	RecipientIDs []string
}

// SubscribeMessage is sent by a session to receive a user's notifications
type SubscribeMessage struct {
	UserID string
}

// Message wraps events and control messages for the wire protocol
type Message struct {
	Version   int               `json:",omitempty"`
	Type      string            // "event", "subscribe", "ping", "pong"
	Event     *Event            `json:",omitempty"`
	Subscribe *SubscribeMessage `json:",omitempty"`
}

// newEvent fills the fields common to every event
func newEvent(eventType EventType, actor *models.User) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		ActorID:   actor.ID,
		ActorName: actor.FullName(),
	}
}

// withProject denormalizes the project fields onto the event
func (e Event) withProject(project *models.Project) Event {
	e.ProjectID = project.ID
	e.ProjectName = project.Name
	return e
}

// withTask denormalizes the task fields onto the event
func (e Event) withTask(task *models.Task) Event {
	e.TaskID = task.ID
	e.TaskTitle = task.Title
	return e
}

// NewProjectCreated builds the event for a freshly created project
func NewProjectCreated(actor *models.User, project *models.Project, recipients []string) Event {
	e := newEvent(EventProjectCreated, actor).withProject(project)
	e.RecipientIDs = recipients
	return e
}

// NewProjectUpdated builds the event for a project mutation
func NewProjectUpdated(actor *models.User, project *models.Project, recipients []string) Event {
	e := newEvent(EventProjectUpdated, actor).withProject(project)
	e.RecipientIDs = recipients
	return e
}

// NewProjectDeleted builds the event for a project deletion
func NewProjectDeleted(actor *models.User, project *models.Project, recipients []string) Event {
	e := newEvent(EventProjectDeleted, actor).withProject(project)
	e.RecipientIDs = recipients
	return e
}

// NewTaskCreated builds the event for a freshly created task
func NewTaskCreated(actor *models.User, project *models.Project, task *models.Task, recipients []string) Event {
	e := newEvent(EventTaskCreated, actor).withProject(project).withTask(task)
	e.RecipientIDs = recipients
	return e
}

// NewTaskUpdated builds the event for a generic task mutation
func NewTaskUpdated(actor *models.User, project *models.Project, task *models.Task, recipients []string) Event {
	e := newEvent(EventTaskUpdated, actor).withProject(project).withTask(task)
	e.RecipientIDs = recipients
	return e
}

// NewTaskDeleted builds the event for a task deletion
func NewTaskDeleted(actor *models.User, project *models.Project, task *models.Task, recipients []string) Event {
	e := newEvent(EventTaskDeleted, actor).withProject(project).withTask(task)
	e.RecipientIDs = recipients
	return e
}

// NewTaskStatusChanged builds the dedicated status-change event carrying
// the old and new workflow states
func NewTaskStatusChanged(actor *models.User, project *models.Project, task *models.Task, oldStatus, newStatus models.TaskStatus, recipients []string) Event {
	e := newEvent(EventTaskStatusChanged, actor).withProject(project).withTask(task)
	e.OldValue = string(oldStatus)
	e.NewValue = string(newStatus)
	e.RecipientIDs = recipients
	return e
}

// NewTaskAssigned builds the dedicated assignment event carrying the old
// and new assignee ids plus the new assignee's contact fields
func NewTaskAssigned(actor *models.User, project *models.Project, task *models.Task, oldAssigneeID string, assignee *models.User, recipients []string) Event {
	e := newEvent(EventTaskAssigned, actor).withProject(project).withTask(task)
	e.OldValue = oldAssigneeID
	if assignee != nil {
		e.NewValue = assignee.ID
		e.AssigneeID = assignee.ID
		e.AssigneeName = assignee.FullName()
		e.AssigneeEmail = assignee.Email
	}
	e.RecipientIDs = recipients
	return e
}

// NewCommentAdded builds the event for a new comment
func NewCommentAdded(actor *models.User, project *models.Project, task *models.Task, comment *models.Comment, recipients []string) Event {
	e := newEvent(EventCommentAdded, actor).withProject(project).withTask(task)
	e.CommentID = comment.ID
	e.RecipientIDs = recipients
	return e
}

// NewCommentUpdated builds the event for an edited comment
func NewCommentUpdated(actor *models.User, project *models.Project, task *models.Task, comment *models.Comment, recipients []string) Event {
	e := newEvent(EventCommentUpdated, actor).withProject(project).withTask(task)
	e.CommentID = comment.ID
	e.RecipientIDs = recipients
	return e
}

// NewCommentDeleted builds the event for a removed comment
func NewCommentDeleted(actor *models.User, project *models.Project, task *models.Task, commentID string, recipients []string) Event {
	e := newEvent(EventCommentDeleted, actor).withProject(project).withTask(task)
	e.CommentID = commentID
	e.RecipientIDs = recipients
	return e
}
