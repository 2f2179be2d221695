// Package redis implements a domain.SessionRepository on Redis. Each session
// is a hash whose key expires together with the session, so expired sessions
// need no sweeping.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"tasklist/internal/domain"

	goredis "github.com/go-redis/redis/v8"
)

const keyPrefix = "tasklist:session:"

// SessionRepo stores sessions in Redis.
type SessionRepo struct {
	client goredis.UniversalClient
}

var _ domain.SessionRepository = (*SessionRepo)(nil)
var _ domain.Pinger = (*SessionRepo)(nil)

// Open connects to the Redis server at addr and pings it.
func Open(ctx context.Context, addr, password string, db int) (*SessionRepo, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return New(client), nil
}

// New wraps an existing client.
func New(client goredis.UniversalClient) *SessionRepo {
	return &SessionRepo{client: client}
}

// Close closes the client.
func (r *SessionRepo) Close() error {
	return r.client.Close()
}

// Ping checks connectivity.
func (r *SessionRepo) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func sessionKey(token string) string {
	return keyPrefix + token
}

// Create stores a session and sets its key to expire at ExpiresAt.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	key := sessionKey(s.Token)

	_, err := r.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.HSet(ctx, key, encodeSession(s, createdAt))
		p.ExpireAt(ctx, key, s.ExpiresAt)
		return nil
	})
	if err != nil {
		return wrapErr("create session", err)
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	fields, err := r.client.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		return nil, wrapErr("get session", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return decodeSession(token, fields)
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return wrapErr("delete session", err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis evicts session keys when they expire.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	return nil
}

func encodeSession(s domain.Session, createdAt time.Time) map[string]any {
	return map[string]any{
		"userId":    s.UserID,
		"username":  s.Username,
		"expiresAt": s.ExpiresAt.UTC().Format(time.RFC3339Nano),
		"createdAt": createdAt.UTC().Format(time.RFC3339Nano),
	}
}

func decodeSession(token string, fields map[string]string) (*domain.Session, error) {
	expiresAt, err := time.Parse(time.RFC3339Nano, fields["expiresAt"])
	if err != nil {
		return nil, fmt.Errorf("decode session expiresAt: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["createdAt"])
	if err != nil {
		return nil, fmt.Errorf("decode session createdAt: %w", err)
	}
	return &domain.Session{
		Token:     token,
		UserID:    fields["userId"],
		Username:  fields["username"],
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}, nil
}

func wrapErr(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, goredis.ErrClosed) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
