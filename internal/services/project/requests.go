package project

import (
	"time"

	"github.com/taskwell/taskwell/internal/errs"
	"github.com/taskwell/taskwell/internal/models"
)

// CreateRequest encapsulates all data needed to create a project
type CreateRequest struct {
	Name        string
	Description string
	Status      models.ProjectStatus // optional: empty means the default
	StartDate   *time.Time
	DueDate     *time.Time
}

// RequestName identifies the request in logs and records
func (CreateRequest) RequestName() string { return "project.create" }

// Validate checks the request's own fields
func (r CreateRequest) Validate() error {
	var fields []errs.FieldError
	if r.Name == "" {
		fields = append(fields, errs.Field("name", "name is required"))
	}
	if len(r.Name) > models.MaxNameLength {
		fields = append(fields, errs.Field("name", "name cannot exceed %d characters", models.MaxNameLength))
	}
	if len(r.Description) > models.MaxDescriptionLength {
		fields = append(fields, errs.Field("description", "description cannot exceed %d characters", models.MaxDescriptionLength))
	}
	if r.Status != "" && !models.ValidProjectStatus(r.Status) {
		fields = append(fields, errs.Field("status", "unknown status %q", r.Status))
	}
	if r.StartDate != nil && r.DueDate != nil && r.DueDate.Before(*r.StartDate) {
		fields = append(fields, errs.Field("due_date", "due date cannot precede start date"))
	}
	if len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// GetRequest fetches one project by id
type GetRequest struct {
	ProjectID string
}

func (GetRequest) RequestName() string { return "project.get" }

func (r GetRequest) Validate() error {
	if r.ProjectID == "" {
		return errs.Validation(errs.Field("project_id", "project id is required"))
	}
	return nil
}

// ListRequest lists the caller's visible projects
type ListRequest struct{}

func (ListRequest) RequestName() string { return "project.list" }

// UpdateRequest applies a partial update. Nil fields are left unchanged.
type UpdateRequest struct {
	ProjectID   string
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	StartDate   *time.Time
	DueDate     *time.Time
}

func (UpdateRequest) RequestName() string { return "project.update" }

func (r UpdateRequest) Validate() error {
	var fields []errs.FieldError
	if r.ProjectID == "" {
		fields = append(fields, errs.Field("project_id", "project id is required"))
	}
	if r.Name != nil && *r.Name == "" {
		fields = append(fields, errs.Field("name", "name cannot be empty"))
	}
	if r.Name != nil && len(*r.Name) > models.MaxNameLength {
		fields = append(fields, errs.Field("name", "name cannot exceed %d characters", models.MaxNameLength))
	}
	if r.Description != nil && len(*r.Description) > models.MaxDescriptionLength {
		fields = append(fields, errs.Field("description", "description cannot exceed %d characters", models.MaxDescriptionLength))
	}
	if r.Status != nil && !models.ValidProjectStatus(*r.Status) {
		fields = append(fields, errs.Field("status", "unknown status %q", *r.Status))
	}
	if len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// DeleteRequest removes a project and everything under it
type DeleteRequest struct {
	ProjectID string
}

func (DeleteRequest) RequestName() string { return "project.delete" }

func (r DeleteRequest) Validate() error {
	if r.ProjectID == "" {
		return errs.Validation(errs.Field("project_id", "project id is required"))
	}
	return nil
}

// AddMemberRequest grants a user membership on a project
type AddMemberRequest struct {
	ProjectID string
	UserID    string
	Role      models.Role // optional: empty means member
}

func (AddMemberRequest) RequestName() string { return "project.add_member" }

func (r AddMemberRequest) Validate() error {
	var fields []errs.FieldError
	if r.ProjectID == "" {
		fields = append(fields, errs.Field("project_id", "project id is required"))
	}
	if r.UserID == "" {
		fields = append(fields, errs.Field("user_id", "user id is required"))
	}
	if r.Role != "" && !models.ValidRole(r.Role) {
		fields = append(fields, errs.Field("role", "unknown role %q", r.Role))
	}
	if len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// RemoveMemberRequest revokes a user's membership on a project
type RemoveMemberRequest struct {
	ProjectID string
	UserID    string
}

func (RemoveMemberRequest) RequestName() string { return "project.remove_member" }

func (r RemoveMemberRequest) Validate() error {
	var fields []errs.FieldError
	if r.ProjectID == "" {
		fields = append(fields, errs.Field("project_id", "project id is required"))
	}
	if r.UserID == "" {
		fields = append(fields, errs.Field("user_id", "user id is required"))
	}
	if len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// ListMembersRequest lists a project's members with contact fields
type ListMembersRequest struct {
	ProjectID string
}

func (ListMembersRequest) RequestName() string { return "project.list_members" }

func (r ListMembersRequest) Validate() error {
	if r.ProjectID == "" {
		return errs.Validation(errs.Field("project_id", "project id is required"))
	}
	return nil
}
