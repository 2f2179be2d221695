// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"tasklist/internal/domain"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSessionTTL is how long a session lives after login. It is not
// extended by activity.
const DefaultSessionTTL = time.Hour

// passwordCost is the bcrypt work factor for new password hashes.
const passwordCost = bcrypt.DefaultCost

var validate = validator.New()

type signupInput struct {
	Username string `validate:"required"`
}

// Principal is the identity attached to a resolved session.
type Principal struct {
	UserID   string
	Username string
}

// AuthService handles registration, authentication and session management.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService creates a new authentication service. A non-positive ttl
// falls back to DefaultSessionTTL.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL returns the session lifetime used for new sessions.
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// Signup registers a new user. The existence check and the insert are not
// atomic; a concurrent signup that slips between them is rejected by the
// store's unique constraint and reported as domain.ErrDuplicateUsername too.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*domain.User, error) {
	if err := validate.Struct(signupInput{Username: username}); err != nil {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	existing, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrDuplicateUsername
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is longer than 72 bytes", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.users.Create(ctx, username, string(hash))
}

// Login authenticates a user and creates a session, returning its token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredential
	}

	return s.issueSession(ctx, user)
}

// LoginWithUser creates a session for a user already authenticated by an
// external identity provider. Unknown users are provisioned with an empty
// password hash, which bcrypt never matches, so they cannot log in with a
// password.
func (s *AuthService) LoginWithUser(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("%w: empty identity", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = s.users.Create(ctx, username, "")
		if errors.Is(err, domain.ErrDuplicateUsername) {
			// Lost a race with a concurrent first login.
			user, err = s.users.GetByUsername(ctx, username)
		}
	}
	if err != nil {
		return "", err
	}

	return s.issueSession(ctx, user)
}

// Logout invalidates a session. Logging out an unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// ResolveSession returns the principal for a token, or nil when the token is
// empty, unknown or expired. Expired sessions are removed on sight.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, nil
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, nil
	}

	return &Principal{UserID: session.UserID, Username: session.Username}, nil
}

// PurgeExpired removes all expired sessions from the store.
func (s *AuthService) PurgeExpired(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx)
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	now := s.now()
	session := domain.Session{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}

	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
