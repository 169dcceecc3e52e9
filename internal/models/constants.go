package models

// ============================================================================
// FIELD LIMITS
// ============================================================================

const (
	// MaxTitleLength is the maximum length of a task title
	MaxTitleLength = 255

	// MaxNameLength is the maximum length of a project name
	MaxNameLength = 255

	// MaxDescriptionLength is the maximum length of a description field
	MaxDescriptionLength = 4000

	// MaxCommentLength is the maximum length of a comment body
	MaxCommentLength = 5000
)

// ============================================================================
// DEFAULTS
// ============================================================================

const (
	// DefaultTaskStatus is applied when a create request omits the status
	DefaultTaskStatus = StatusTodo

	// DefaultTaskPriority is applied when a create request omits the priority
	DefaultTaskPriority = PriorityMedium

	// DefaultProjectStatus is applied when a create request omits the status
	DefaultProjectStatus = ProjectActive
)

// ============================================================================
// PAGINATION
// ============================================================================

const (
	// DefaultPageSize is used when a list request omits the page size
	DefaultPageSize = 20

	// MaxPageSize caps the page size of list requests
	MaxPageSize = 100
)
