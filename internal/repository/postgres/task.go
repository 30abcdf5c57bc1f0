package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/domain"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/repository"
)

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t      domain.Task
		status string
	)
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status,
		&t.Priority, &t.AssignedTo, &t.DueDate, &t.CreatedAt); err != nil {
		return nil, err
	}
	stage, err := domain.ParseStage(status)
	if err != nil {
		return nil, err
	}
	t.Status = stage
	return &t, nil
}

// CreateTask inserts a task and assigns its identifier.
func (r *Repository) CreateTask(ctx context.Context, task *domain.Task) error {
	const query = `INSERT INTO tasks (project_id, title, description, status, priority, assigned_to, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	return r.pool.QueryRow(ctx, query,
		task.ProjectID, task.Title, task.Description, task.Status.String(),
		task.Priority, task.AssignedTo, task.DueDate, task.CreatedAt,
	).Scan(&task.ID)
}

// GetTaskByID retrieves a task by identifier.
func (r *Repository) GetTaskByID(ctx context.Context, taskID int64) (*domain.Task, error) {
	const query = `SELECT id, project_id, title, description, status, priority, assigned_to, due_date, created_at
		FROM tasks WHERE id = $1`
	task, err := scanTask(r.pool.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

// UpdateTaskStatus sets a task's status.
func (r *Repository) UpdateTaskStatus(ctx context.Context, taskID int64, status domain.Stage) error {
	const query = `UPDATE tasks SET status = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, taskID, status.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteTask removes a task; its notes cascade.
func (r *Repository) DeleteTask(ctx context.Context, taskID int64) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, taskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddNote inserts a task note and assigns its identifier.
func (r *Repository) AddNote(ctx context.Context, note *domain.TaskNote) error {
	const query = `INSERT INTO task_notes (task_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	return r.pool.QueryRow(ctx, query, note.TaskID, note.AuthorID, note.Content, note.CreatedAt).Scan(&note.ID)
}
