package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/errs"
	"github.com/taskwell/taskwell/internal/models"
)

// TaskRepo handles all task-related database operations.
type TaskRepo struct {
	db *sql.DB
}

const taskColumns = `id, project_id, title, description, status, priority,
	assignee_id, due_date, created_at, updated_at`

// taskSortKeys whitelists the sortable columns
var taskSortKeys = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"due_date":   true,
	"title":      true,
	"status":     true,
	"priority":   true,
}

// scanTask scans a single task row
func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	task := &models.Task{}
	var assigneeID sql.NullString
	var dueDate sql.NullTime

	err := row.Scan(
		&task.ID, &task.ProjectID, &task.Title, &task.Description,
		&task.Status, &task.Priority, &assigneeID, &dueDate,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.AssigneeID = strPtr(assigneeID)
	task.DueDate = timePtr(dueDate)
	return task, nil
}

// CreateTask inserts a new task and returns it with timestamps populated
func (r *TaskRepo) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, title, description, status, priority, assignee_id, due_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, task.ProjectID, task.Title, task.Description, task.Status, task.Priority,
		nullableString(task.AssigneeID), nullableTime(task.DueDate),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	return r.GetTaskByID(ctx, id)
}

// GetTaskByID retrieves a task by id
func (r *TaskRepo) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("task")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// buildTaskWhere assembles the WHERE clause and args for a filter
func buildTaskWhere(filter TaskFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.ProjectID != "" {
		conds = append(conds, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if len(filter.ProjectIDs) > 0 {
		placeholders := strings.Repeat("?,", len(filter.ProjectIDs)-1) + "?"
		conds = append(conds, "project_id IN ("+placeholders+")")
		for _, id := range filter.ProjectIDs {
			args = append(args, id)
		}
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, filter.Priority)
	}
	if filter.AssigneeID != "" {
		conds = append(conds, "assignee_id = ?")
		args = append(args, filter.AssigneeID)
	}
	if filter.Search != "" {
		conds = append(conds, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListTasks returns one page of matching tasks plus the total match count
func (r *TaskRepo) ListTasks(ctx context.Context, filter TaskFilter) ([]*models.Task, int, error) {
	where, args := buildTaskWhere(filter)

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	sortBy := filter.SortBy
	if !taskSortKeys[sortBy] {
		sortBy = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + where +
		` ORDER BY ` + sortBy + ` ` + direction + `, id`

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.PageSize, (page-1)*filter.PageSize)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}
	return tasks, total, rows.Err()
}

// UpdateTask persists all mutable fields of the task
func (r *TaskRepo) UpdateTask(ctx context.Context, task *models.Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = ?, description = ?, status = ?, priority = ?,
			 assignee_id = ?, due_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		task.Title, task.Description, task.Status, task.Priority,
		nullableString(task.AssigneeID), nullableTime(task.DueDate),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return requireRow(result, "task")
}

// DeleteTask removes a task. Its comments cascade via foreign keys.
func (r *TaskRepo) DeleteTask(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return requireRow(result, "task")
}
