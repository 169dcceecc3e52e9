package task

import (
	"time"

	"github.com/taskwell/taskwell/internal/errs"
	"github.com/taskwell/taskwell/internal/models"
)

// CreateRequest encapsulates all data needed to create a task
type CreateRequest struct {
	ProjectID   string
	Title       string
	Description string
	Status      models.TaskStatus // optional: empty means todo
	Priority    models.Priority   // optional: empty means medium
	AssigneeID  *string
	DueDate     *time.Time
}

// RequestName identifies the request in logs and records
func (CreateRequest) RequestName() string { return "task.create" }

// Validate checks the request's own fields
func (r CreateRequest) Validate() error {
	var fields []errs.FieldError
	if r.ProjectID == "" {
		fields = append(fields, errs.Field("project_id", "project id is required"))
	}
	if r.Title == "" {
		fields = append(fields, errs.Field("title", "title is required"))
	}
	if len(r.Title) > models.MaxTitleLength {
		fields = append(fields, errs.Field("title", "title cannot exceed %d characters", models.MaxTitleLength))
	}
	if len(r.Description) > models.MaxDescriptionLength {
		fields = append(fields, errs.Field("description", "description cannot exceed %d characters", models.MaxDescriptionLength))
	}
	if r.Status != "" && !models.ValidTaskStatus(r.Status) {
		fields = append(fields, errs.Field("status", "unknown status %q", r.Status))
	}
	if r.Priority != "" && !models.ValidPriority(r.Priority) {
		fields = append(fields, errs.Field("priority", "unknown priority %q", r.Priority))
	}
	if len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// GetRequest fetches one task by id
type GetRequest struct {
	TaskID string
}

func (GetRequest) RequestName() string { return "task.get" }

func (r GetRequest) Validate() error {
	if r.TaskID == "" {
		return errs.Validation(errs.Field("task_id", "task id is required"))
	}
	return nil
}

// ListRequest lists tasks the caller can see, filtered and paged.
// An empty ProjectID spans every project the caller owns or belongs to.
type ListRequest struct {
	ProjectID  string
	Status     models.TaskStatus
	Priority   models.Priority
	AssigneeID string
	Search     string
	SortBy     string
	SortDesc   bool
	Page       int
	PageSize   int
}

func (ListRequest) RequestName() string { return "task.list" }

func (r ListRequest) Validate() error {
	var fields []errs.FieldError
	if r.Status != "" && !models.ValidTaskStatus(r.Status) {
		fields = append(fields, errs.Field("status", "unknown status %q", r.Status))
	}
	if r.Priority != "" && !models.ValidPriority(r.Priority) {
		fields = append(fields, errs.Field("priority", "unknown priority %q", r.Priority))
	}
	if r.Page < 0 {
		fields = append(fields, errs.Field("page", "page cannot be negative"))
	}
	if r.PageSize < 0 || r.PageSize > models.MaxPageSize {
		fields = append(fields, errs.Field("page_size", "page size must be between 0 and %d", models.MaxPageSize))
	}
	if len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// ListResponse is one page of tasks plus the total match count
type ListResponse struct {
	Tasks []*models.Task
	Total int
	Page  int
}

// UpdateRequest applies a partial update. Nil fields are left unchanged.
// An AssigneeID pointing at an empty string clears the assignee; a DueDate
// pointing at the zero time clears the due date.
type UpdateRequest struct {
	TaskID      string
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.Priority
	AssigneeID  *string
	DueDate     *time.Time
}

func (UpdateRequest) RequestName() string { return "task.update" }

func (r UpdateRequest) Validate() error {
	var fields []errs.FieldError
	if r.TaskID == "" {
		fields = append(fields, errs.Field("task_id", "task id is required"))
	}
	if r.Title != nil && *r.Title == "" {
		fields = append(fields, errs.Field("title", "title cannot be empty"))
	}
	if r.Title != nil && len(*r.Title) > models.MaxTitleLength {
		fields = append(fields, errs.Field("title", "title cannot exceed %d characters", models.MaxTitleLength))
	}
	if r.Description != nil && len(*r.Description) > models.MaxDescriptionLength {
		fields = append(fields, errs.Field("description", "description cannot exceed %d characters", models.MaxDescriptionLength))
	}
	if r.Status != nil && !models.ValidTaskStatus(*r.Status) {
		fields = append(fields, errs.Field("status", "unknown status %q", *r.Status))
	}
	if r.Priority != nil && !models.ValidPriority(*r.Priority) {
		fields = append(fields, errs.Field("priority", "unknown priority %q", *r.Priority))
	}
	if len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// DeleteRequest removes a task and its comments
type DeleteRequest struct {
	TaskID string
}

func (DeleteRequest) RequestName() string { return "task.delete" }

func (r DeleteRequest) Validate() error {
	if r.TaskID == "" {
		return errs.Validation(errs.Field("task_id", "task id is required"))
	}
	return nil
}
