package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskward/taskward/internal/shared"
)

// Repository provides PostgreSQL backed persistence for tasks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = "id, title, status, owner_id, created_at, updated_at"

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Title, &t.Status, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create inserts a new task.
func (r *Repository) Create(ctx context.Context, title, status string, ownerID int64) (Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, status, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING `+taskColumns, title, status, ownerID)
	return scanTask(row)
}

// List returns every task, newest first.
func (r *Repository) List(ctx context.Context) ([]Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID fetches a task by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, fmt.Errorf("%w: task %d", shared.ErrNotFound, id)
		}
		return Task{}, err
	}
	return t, nil
}

// Update rewrites title and status.
func (r *Repository) Update(ctx context.Context, id int64, title, status string) (Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks SET title = $2, status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+taskColumns, id, title, status)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, fmt.Errorf("%w: task %d", shared.ErrNotFound, id)
		}
		return Task{}, err
	}
	return t, nil
}

// Delete removes a task.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: task %d", shared.ErrNotFound, id)
	}
	return nil
}
