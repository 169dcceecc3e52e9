package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/errs"
	"github.com/taskwell/taskwell/internal/models"
)

// CommentRepo handles all comment-related database operations.
type CommentRepo struct {
	db *sql.DB
}

const commentColumns = `id, task_id, author_id, content, created_at, updated_at`

// scanComment scans a single comment row
func scanComment(row interface{ Scan(...any) error }) (*models.Comment, error) {
	comment := &models.Comment{}
	err := row.Scan(
		&comment.ID, &comment.TaskID, &comment.AuthorID, &comment.Content,
		&comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateComment inserts a new comment and returns it with timestamps populated
func (r *CommentRepo) CreateComment(ctx context.Context, taskID, authorID, content string) (*models.Comment, error) {
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, task_id, author_id, content) VALUES (?, ?, ?, ?)`,
		id, taskID, authorID, content,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	return r.GetCommentByID(ctx, id)
}

// GetCommentByID retrieves a comment by id
func (r *CommentRepo) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)

	comment, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("comment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

// ListCommentsByTask returns a task's comments ordered oldest first
func (r *CommentRepo) ListCommentsByTask(ctx context.Context, taskID string) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE task_id = ? ORDER BY created_at, id`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// UpdateComment replaces a comment's content
func (r *CommentRepo) UpdateComment(ctx context.Context, id, content string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		content, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return requireRow(result, "comment")
}

// DeleteComment removes a comment
func (r *CommentRepo) DeleteComment(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return requireRow(result, "comment")
}
