// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sync"
	"time"

	"tasklist/internal/domain"

	"github.com/google/uuid"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	users    []*domain.User
	tasks    []domain.Task
	sessions map[string]*domain.Session
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.TaskRepository = (*TaskRepo)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)
var _ domain.Pinger = (*DB)(nil)

// Ping always succeeds.
func (db *DB) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op kept for parity with the persistent stores.
func (db *DB) Close() error {
	return nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Create creates a new user. The uniqueness check runs under the same lock as
// the insert.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, domain.ErrDuplicateUsername
		}
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// --- TaskRepository ---

// TaskRepo implements task persistence on DB.
type TaskRepo struct {
	db *DB
}

// NewTaskRepo creates a new task repository.
func (db *DB) NewTaskRepo() *TaskRepo {
	return &TaskRepo{db: db}
}

// ListByOwner returns the owner's tasks in insertion order.
func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.Task, 0)
	for _, t := range r.db.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

// Create inserts a task.
func (r *TaskRepo) Create(ctx context.Context, ownerID, title string) (*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t := domain.Task{
		ID:        uuid.NewString(),
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	r.db.tasks = append(r.db.tasks, t)
	return &t, nil
}

// GetByID returns a task regardless of owner.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return r.find(id, func(domain.Task) bool { return true })
}

// GetOwned returns a task only if ownerID owns it.
func (r *TaskRepo) GetOwned(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	return r.find(id, func(t domain.Task) bool { return t.OwnerID == ownerID })
}

// UpdateTitle renames a task matched by id and owner.
func (r *TaskRepo) UpdateTitle(ctx context.Context, id, ownerID, title string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.tasks {
		if r.db.tasks[i].ID == id && r.db.tasks[i].OwnerID == ownerID {
			r.db.tasks[i].Title = title
			return true, nil
		}
	}
	return false, nil
}

// Delete removes a task matched by id and owner.
func (r *TaskRepo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i, t := range r.db.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			r.db.tasks = append(r.db.tasks[:i], r.db.tasks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *TaskRepo) find(id string, match func(domain.Task) bool) (*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, t := range r.db.tasks {
		if t.ID == id && match(t) {
			cp := t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create stores a session.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	r.db.sessions[s.Token] = &s
	return nil
}

// GetByToken retrieves a session by token. Expiry is left to the caller.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if v.Expired(now) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
