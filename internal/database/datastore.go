package database

// DataStore defines the unified interface for all data operations needed
// by the services. It is composed of smaller, domain-specific interfaces
// so consumers can depend on exactly the operations they use.
type DataStore interface {
	UserRepository
	ProjectRepository
	MembershipRepository
	TaskRepository
	CommentRepository
}
