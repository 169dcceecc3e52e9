package database

import "database/sql"

// Repository provides a unified interface to all data operations.
// It composes domain-specific repositories using struct embedding.
type Repository struct {
	*UserRepo
	*ProjectRepo
	*MembershipRepo
	*TaskRepo
	*CommentRepo
}

// Compile-time verification that *Repository implements DataStore
var _ DataStore = (*Repository)(nil)

// NewRepository creates a Repository wrapping the given database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		UserRepo:       &UserRepo{db: db},
		ProjectRepo:    &ProjectRepo{db: db},
		MembershipRepo: &MembershipRepo{db: db},
		TaskRepo:       &TaskRepo{db: db},
		CommentRepo:    &CommentRepo{db: db},
	}
}
