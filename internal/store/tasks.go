package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a scheduled task.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskFired   TaskStatus = "fired"
)

// Task is a reminder created by schedule_task.
type Task struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	TimeExpr    string     `json:"time_expr"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Language    string     `json:"language"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	FiredAt     *time.Time `json:"fired_at,omitempty"`
}

const taskColumns = `id, description, time_expr, due_at, language, status, created_at, fired_at`

// CreateTask stores a new pending task. A nil DueAt means the time
// expression could not be resolved; such tasks are listed but never fire.
func (d *DB) CreateTask(ctx context.Context, task *Task) (*Task, error) {
	if strings.TrimSpace(task.Description) == "" {
		return nil, fmt.Errorf("task description is required")
	}
	if task.Language == "" {
		task.Language = "en"
	}

	var due any
	if task.DueAt != nil {
		utc := task.DueAt.UTC()
		task.DueAt = &utc
		due = utc
	}

	now := d.timestamp()
	result, err := d.ExecContext(ctx, `
		INSERT INTO tasks (description, time_expr, due_at, language, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, task.Description, task.TimeExpr, due, task.Language, TaskPending, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get task id: %w", err)
	}
	task.ID = id
	task.Status = TaskPending
	task.CreatedAt = now
	task.FiredAt = nil
	return task, nil
}

// GetTask returns one task by ID.
func (d *DB) GetTask(ctx context.Context, id int64) (*Task, error) {
	row := d.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return t, nil
}

// ListTasks returns tasks newest first. An empty status lists all.
func (d *DB) ListTasks(ctx context.Context, status TaskStatus) ([]*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	return d.queryTasks(ctx, query, args...)
}

// ListDueTasks returns pending tasks whose due time is at or before now,
// oldest due first.
func (d *DB) ListDueTasks(ctx context.Context, now time.Time) ([]*Task, error) {
	return d.queryTasks(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE status = ? AND due_at IS NOT NULL AND due_at <= ?
		ORDER BY due_at ASC, id ASC
	`, TaskPending, now.UTC())
}

// MarkTaskFired moves a pending task to fired. Firing an already fired task
// returns ErrNotFound so that concurrent workers cannot fire it twice.
func (d *DB) MarkTaskFired(ctx context.Context, id int64) error {
	result, err := d.ExecContext(ctx,
		`UPDATE tasks SET status = ?, fired_at = ? WHERE id = ? AND status = ?`,
		TaskFired, d.timestamp(), id, TaskPending,
	)
	if err != nil {
		return fmt.Errorf("failed to mark task %d fired: %w", id, err)
	}
	return requireAffected(result, fmt.Sprintf("pending task %d", id))
}

func (d *DB) queryTasks(ctx context.Context, query string, args ...any) ([]*Task, error) {
	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(s scanner) (*Task, error) {
	var t Task
	var due, fired sql.NullTime
	if err := s.Scan(&t.ID, &t.Description, &t.TimeExpr, &due, &t.Language, &t.Status, &t.CreatedAt, &fired); err != nil {
		return nil, err
	}
	if due.Valid {
		v := due.Time
		t.DueAt = &v
	}
	if fired.Valid {
		v := fired.Time
		t.FiredAt = &v
	}
	return &t, nil
}
