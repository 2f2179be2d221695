package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tasklist/internal/domain"

	"github.com/google/uuid"
)

type taskRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	OwnerID   string    `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r taskRow) toDomain() domain.Task {
	return domain.Task{ID: r.ID, Title: r.Title, OwnerID: r.OwnerID, CreatedAt: r.CreatedAt}
}

// TaskRepo implements domain.TaskRepository on DB.
type TaskRepo struct {
	db *DB
}

var _ domain.TaskRepository = (*TaskRepo)(nil)

// NewTaskRepo wraps a DB as a TaskRepository.
func NewTaskRepo(db *DB) *TaskRepo {
	return &TaskRepo{db: db}
}

// ListByOwner returns the owner's tasks in insertion order.
func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	var rows []taskRow
	err := r.db.sql.SelectContext(ctx, &rows,
		"SELECT id, title, owner_id, created_at FROM tasks WHERE owner_id = $1 ORDER BY seq",
		ownerID,
	)
	if err != nil {
		return nil, wrapErr("list tasks", err)
	}

	out := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Create inserts a task.
func (r *TaskRepo) Create(ctx context.Context, ownerID, title string) (*domain.Task, error) {
	row := taskRow{
		ID:        uuid.NewString(),
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO tasks (id, title, owner_id, created_at) VALUES ($1, $2, $3, $4)",
		row.ID, row.Title, row.OwnerID, row.CreatedAt,
	)
	if err != nil {
		return nil, wrapErr("create task", err)
	}
	t := row.toDomain()
	return &t, nil
}

// GetByID returns a task regardless of owner.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return r.get(ctx,
		"SELECT id, title, owner_id, created_at FROM tasks WHERE id = $1",
		id,
	)
}

// GetOwned returns a task only if ownerID owns it.
func (r *TaskRepo) GetOwned(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	return r.get(ctx,
		"SELECT id, title, owner_id, created_at FROM tasks WHERE id = $1 AND owner_id = $2",
		id, ownerID,
	)
}

// UpdateTitle renames a task matched by id and owner.
func (r *TaskRepo) UpdateTitle(ctx context.Context, id, ownerID, title string) (bool, error) {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE tasks SET title = $1 WHERE id = $2 AND owner_id = $3",
		title, id, ownerID,
	)
	if err != nil {
		return false, wrapErr("update task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("update task", err)
	}
	return n > 0, nil
}

// Delete removes a task matched by id and owner.
func (r *TaskRepo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	res, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = $1 AND owner_id = $2",
		id, ownerID,
	)
	if err != nil {
		return false, wrapErr("delete task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("delete task", err)
	}
	return n > 0, nil
}

func (r *TaskRepo) get(ctx context.Context, query string, args ...any) (*domain.Task, error) {
	var row taskRow
	err := r.db.sql.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("get task", err)
	}
	t := row.toDomain()
	return &t, nil
}
