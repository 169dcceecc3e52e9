package database

import (
	"context"

	"github.com/taskwell/taskwell/internal/models"
)

// CommentReader defines read operations for comments.
type CommentReader interface {
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	ListCommentsByTask(ctx context.Context, taskID string) ([]*models.Comment, error)
}

// CommentWriter defines write operations for comments.
type CommentWriter interface {
	CreateComment(ctx context.Context, taskID, authorID, content string) (*models.Comment, error)
	UpdateComment(ctx context.Context, id, content string) error
	DeleteComment(ctx context.Context, id string) error
}

// CommentRepository combines all comment-related operations.
type CommentRepository interface {
	CommentReader
	CommentWriter
}
