package comment

import (
	"github.com/taskwell/taskwell/internal/errs"
	"github.com/taskwell/taskwell/internal/models"
)

// CreateRequest adds a comment to a task
type CreateRequest struct {
	TaskID  string
	Content string
}

// RequestName identifies the request in logs and records
func (CreateRequest) RequestName() string { return "comment.create" }

// Validate checks the request's own fields
func (r CreateRequest) Validate() error {
	var fields []errs.FieldError
	if r.TaskID == "" {
		fields = append(fields, errs.Field("task_id", "task id is required"))
	}
	if r.Content == "" {
		fields = append(fields, errs.Field("content", "content is required"))
	}
	if len(r.Content) > models.MaxCommentLength {
		fields = append(fields, errs.Field("content", "content cannot exceed %d characters", models.MaxCommentLength))
	}
	if len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// ListRequest lists a task's comments oldest first
type ListRequest struct {
	TaskID string
}

func (ListRequest) RequestName() string { return "comment.list" }

func (r ListRequest) Validate() error {
	if r.TaskID == "" {
		return errs.Validation(errs.Field("task_id", "task id is required"))
	}
	return nil
}

// UpdateRequest replaces a comment's content. Author only.
type UpdateRequest struct {
	CommentID string
	Content   string
}

func (UpdateRequest) RequestName() string { return "comment.update" }

func (r UpdateRequest) Validate() error {
	var fields []errs.FieldError
	if r.CommentID == "" {
		fields = append(fields, errs.Field("comment_id", "comment id is required"))
	}
	if r.Content == "" {
		fields = append(fields, errs.Field("content", "content is required"))
	}
	if len(r.Content) > models.MaxCommentLength {
		fields = append(fields, errs.Field("content", "content cannot exceed %d characters", models.MaxCommentLength))
	}
	if len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// DeleteRequest removes a comment. Author or project owner.
type DeleteRequest struct {
	CommentID string
}

func (DeleteRequest) RequestName() string { return "comment.delete" }

func (r DeleteRequest) Validate() error {
	if r.CommentID == "" {
		return errs.Validation(errs.Field("comment_id", "comment id is required"))
	}
	return nil
}
