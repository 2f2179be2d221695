package app

import (
	"context"

	"tasklist/internal/domain"
)

// TaskService encapsulates owner-scoped to-do list use cases.
type TaskService struct {
	repo domain.TaskRepository
}

// NewTaskService creates a TaskService backed by the given repository.
func NewTaskService(repo domain.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// List returns the owner's tasks in store order.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Create stores a new task. Titles are not validated; an empty title is kept
// as-is.
func (s *TaskService) Create(ctx context.Context, ownerID, title string) (*domain.Task, error) {
	return s.repo.Create(ctx, ownerID, title)
}

// Get returns a task by id without checking who owns it.
func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	return s.repo.GetByID(ctx, id)
}

// GetOwned returns a task only if ownerID owns it, otherwise domain.ErrNotFound.
func (s *TaskService) GetOwned(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	return s.repo.GetOwned(ctx, id, ownerID)
}

// Update renames a task. It reports whether a task matched both id and owner;
// a mismatch is not an error.
func (s *TaskService) Update(ctx context.Context, id, ownerID, title string) (bool, error) {
	return s.repo.UpdateTitle(ctx, id, ownerID, title)
}

// Delete removes a task. It reports whether a task matched both id and owner;
// a mismatch is not an error.
func (s *TaskService) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	return s.repo.Delete(ctx, id, ownerID)
}
