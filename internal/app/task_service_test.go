package app

import (
	"context"
	"errors"
	"testing"

	"tasklist/internal/adapter/memory"
	"tasklist/internal/domain"
)

type mockTaskRepo struct {
	listFn   func(ctx context.Context, ownerID string) ([]domain.Task, error)
	createFn func(ctx context.Context, ownerID, title string) (*domain.Task, error)
	getFn    func(ctx context.Context, id string) (*domain.Task, error)
	ownedFn  func(ctx context.Context, id, ownerID string) (*domain.Task, error)
	updateFn func(ctx context.Context, id, ownerID, title string) (bool, error)
	deleteFn func(ctx context.Context, id, ownerID string) (bool, error)
}

func (m *mockTaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockTaskRepo) Create(ctx context.Context, ownerID, title string) (*domain.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, title)
	}
	return &domain.Task{ID: "t1", OwnerID: ownerID, Title: title}, nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockTaskRepo) GetOwned(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	if m.ownedFn != nil {
		return m.ownedFn(ctx, id, ownerID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockTaskRepo) UpdateTitle(ctx context.Context, id, ownerID, title string) (bool, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, ownerID, title)
	}
	return false, nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, ownerID)
	}
	return false, nil
}

func TestTaskService_CreateAcceptsEmptyTitle(t *testing.T) {
	var gotTitle = "unset"
	repo := &mockTaskRepo{
		createFn: func(ctx context.Context, ownerID, title string) (*domain.Task, error) {
			gotTitle = title
			return &domain.Task{ID: "t1", OwnerID: ownerID, Title: title}, nil
		},
	}

	svc := NewTaskService(repo)
	if _, err := svc.Create(context.Background(), "u1", ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotTitle != "" {
		t.Errorf("expected empty title to reach the store, got %q", gotTitle)
	}
}

func TestTaskService_PropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("boom")
	repo := &mockTaskRepo{
		listFn: func(ctx context.Context, ownerID string) ([]domain.Task, error) {
			return nil, storeErr
		},
		deleteFn: func(ctx context.Context, id, ownerID string) (bool, error) {
			return false, storeErr
		},
	}

	svc := NewTaskService(repo)
	if _, err := svc.List(context.Background(), "u1"); !errors.Is(err, storeErr) {
		t.Errorf("List: expected store error, got %v", err)
	}
	if _, err := svc.Delete(context.Background(), "t1", "u1"); !errors.Is(err, storeErr) {
		t.Errorf("Delete: expected store error, got %v", err)
	}
}

func TestTaskService_ListIsolatesOwners(t *testing.T) {
	ctx := context.Background()
	svc := NewTaskService(memory.New().NewTaskRepo())

	want := map[string]bool{}
	for _, title := range []string{"a", "b", "c"} {
		task, err := svc.Create(ctx, "u1", title)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		want[task.ID] = true
	}
	_, _ = svc.Create(ctx, "u2", "not mine")

	tasks, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for _, task := range tasks {
		if !want[task.ID] || task.OwnerID != "u1" {
			t.Errorf("unexpected task in u1 list: %+v", task)
		}
	}
}

func TestTaskService_ForeignMutationsAreNoOps(t *testing.T) {
	ctx := context.Background()
	svc := NewTaskService(memory.New().NewTaskRepo())

	task, _ := svc.Create(ctx, "u1", "Buy milk")

	matched, err := svc.Delete(ctx, task.ID, "u2")
	if err != nil || matched {
		t.Fatalf("Delete by non-owner: expected (false, nil), got (%v, %v)", matched, err)
	}
	matched, err = svc.Update(ctx, task.ID, "u2", "mine now")
	if err != nil || matched {
		t.Fatalf("Update by non-owner: expected (false, nil), got (%v, %v)", matched, err)
	}

	got, err := svc.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Buy milk" || got.OwnerID != "u1" {
		t.Errorf("task changed by non-owner: %+v", got)
	}
}

func TestTaskService_GetOwned(t *testing.T) {
	ctx := context.Background()
	svc := NewTaskService(memory.New().NewTaskRepo())

	task, _ := svc.Create(ctx, "u1", "Buy milk")

	if _, err := svc.GetOwned(ctx, task.ID, "u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-owner, got %v", err)
	}
	got, err := svc.GetOwned(ctx, task.ID, "u1")
	if err != nil {
		t.Fatalf("GetOwned: %v", err)
	}
	if got.Title != "Buy milk" {
		t.Errorf("expected 'Buy milk', got %q", got.Title)
	}

	matched, _ := svc.Update(ctx, task.ID, "u1", "Buy bread")
	if !matched {
		t.Error("expected owner update to match")
	}
	matched, _ = svc.Delete(ctx, task.ID, "u1")
	if !matched {
		t.Error("expected owner delete to match")
	}
	if _, err := svc.Get(ctx, task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAuthService_WithMemoryStore(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	svc := NewAuthService(db, db.NewSessionRepo(), 0)

	if _, err := svc.Signup(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := svc.Signup(ctx, "alice", "pw2"); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "pw2"); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}

	token, err := svc.Login(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	p, err := svc.ResolveSession(ctx, token)
	if err != nil || p == nil || p.Username != "alice" {
		t.Fatalf("ResolveSession: got (%+v, %v)", p, err)
	}

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	p, err = svc.ResolveSession(ctx, token)
	if err != nil || p != nil {
		t.Fatalf("expected no session after logout, got (%+v, %v)", p, err)
	}
}
