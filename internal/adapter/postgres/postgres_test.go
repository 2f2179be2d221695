package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"regexp"
	"testing"
	"time"

	"tasklist/internal/adapter/postgres"
	"tasklist/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (*postgres.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return postgres.New(sqlx.NewDb(db, "sqlmock")), mock
}

func TestCreateUser(t *testing.T) {
	query := regexp.QuoteMeta(`INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`)

	tests := []struct {
		name        string
		mockSetup   func(mock sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name: "created",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).
					WithArgs(sqlmock.AnyArg(), "alice", "hash", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "username taken",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).
					WithArgs(sqlmock.AnyArg(), "alice", "hash", sqlmock.AnyArg()).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			expectedErr: domain.ErrDuplicateUsername,
		},
		{
			name: "connection refused",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).
					WithArgs(sqlmock.AnyArg(), "alice", "hash", sqlmock.AnyArg()).
					WillReturnError(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")})
			},
			expectedErr: domain.ErrStoreUnavailable,
		},
		{
			name: "connection closed",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).
					WithArgs(sqlmock.AnyArg(), "alice", "hash", sqlmock.AnyArg()).
					WillReturnError(sql.ErrConnDone)
			},
			expectedErr: domain.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMock(t)
			tt.mockSetup(mock)

			u, err := db.Create(context.Background(), "alice", "hash")
			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, u)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "alice", u.Username)
				assert.NotEmpty(t, u.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetByUsername(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock := setupMock(t)
		rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow("u1", "alice", "hash", created)
		mock.ExpectQuery(query).WithArgs("alice").WillReturnRows(rows)

		u, err := db.GetByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, &domain.User{ID: "u1", Username: "alice", PasswordHash: "hash", CreatedAt: created}, u)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := setupMock(t)
		mock.ExpectQuery(query).WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}))

		_, err := db.GetByUsername(context.Background(), "ghost")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		db, mock := setupMock(t)
		mock.ExpectQuery(query).WithArgs("alice").WillReturnError(errors.New("syntax error"))

		_, err := db.GetByUsername(context.Background(), "alice")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrUserNotFound)
		assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}

func TestTaskRepo_ListByOwner(t *testing.T) {
	db, mock := setupMock(t)
	repo := postgres.NewTaskRepo(db)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "title", "owner_id", "created_at"}).
		AddRow("t1", "Buy milk", "u1", created).
		AddRow("t2", "", "u1", created)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, owner_id, created_at FROM tasks WHERE owner_id = $1 ORDER BY seq`)).
		WithArgs("u1").WillReturnRows(rows)

	tasks, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.Equal(t, "", tasks[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepo_Create(t *testing.T) {
	db, mock := setupMock(t)
	repo := postgres.NewTaskRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tasks (id, title, owner_id, created_at) VALUES ($1, $2, $3, $4)`)).
		WithArgs(sqlmock.AnyArg(), "Buy milk", "u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	task, err := repo.Create(context.Background(), "u1", "Buy milk")
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "u1", task.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepo_GetOwned_NotFound(t *testing.T) {
	db, mock := setupMock(t)
	repo := postgres.NewTaskRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, owner_id, created_at FROM tasks WHERE id = $1 AND owner_id = $2`)).
		WithArgs("t1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "owner_id", "created_at"}))

	_, err := repo.GetOwned(context.Background(), "t1", "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepo_UpdateAndDeleteScopedByOwner(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "owner", affected: 1, want: true},
		{name: "non-owner", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMock(t)
			repo := postgres.NewTaskRepo(db)

			mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET title = $1 WHERE id = $2 AND owner_id = $3`)).
				WithArgs("new", "t1", "u1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tasks WHERE id = $1 AND owner_id = $2`)).
				WithArgs("t1", "u1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			updated, err := repo.UpdateTitle(context.Background(), "t1", "u1", "new")
			require.NoError(t, err)
			assert.Equal(t, tt.want, updated)

			deleted, err := repo.Delete(context.Background(), "t1", "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, deleted)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSessionRepo(t *testing.T) {
	db, mock := setupMock(t)
	repo := postgres.NewSessionRepo(db)
	ctx := context.Background()
	expires := time.Date(2026, 1, 2, 4, 0, 0, 0, time.UTC)
	created := expires.Add(-time.Hour)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions (token, user_id, username, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`)).
		WithArgs("tok", "u1", "alice", expires, created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT token, user_id, username, expires_at, created_at FROM sessions WHERE token = $1`)).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "username", "expires_at", "created_at"}).
			AddRow("tok", "u1", "alice", expires, created))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE token = $1`)).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT token, user_id, username, expires_at, created_at FROM sessions WHERE token = $1`)).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "username", "expires_at", "created_at"}))

	err := repo.Create(ctx, domain.Session{Token: "tok", UserID: "u1", Username: "alice", ExpiresAt: expires, CreatedAt: created})
	require.NoError(t, err)

	s, err := repo.GetByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, expires, s.ExpiresAt)

	require.NoError(t, repo.Delete(ctx, "tok"))

	_, err = repo.GetByToken(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	db, mock := setupMock(t)
	mock.ExpectPing().WillReturnError(errors.New("dial tcp: connection refused"))

	err := db.Ping(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
