package models

import "time"

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

// Project lifecycle states
const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// ValidProjectStatus reports whether s is one of the defined lifecycle states
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectActive, ProjectOnHold, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}

// Project is the top-level organizational unit. A project is owned by a
// single user and shared with other users through memberships.
type Project struct {
	ID          string
	Name        string
	Description string
	Status      ProjectStatus
	OwnerID     string
	StartDate   *time.Time
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
