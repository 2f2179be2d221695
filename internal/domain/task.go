package domain

import (
	"context"
	"time"
)

// Task is a single to-do item owned by exactly one user.
type Task struct {
	ID        string
	Title     string
	OwnerID   string
	CreatedAt time.Time
}

// TaskRepository is the port for task persistence. Every method except
// GetByID filters by owner; mutations on a task the owner does not hold match
// nothing and report false rather than an error.
type TaskRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]Task, error)
	Create(ctx context.Context, ownerID, title string) (*Task, error)
	GetByID(ctx context.Context, id string) (*Task, error)
	GetOwned(ctx context.Context, id, ownerID string) (*Task, error)
	UpdateTitle(ctx context.Context, id, ownerID, title string) (bool, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}
