package domain

import "errors"

var (
	// ErrDuplicateUsername indicates that the username is already registered.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrUserNotFound indicates that no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredential indicates that the password did not match.
	ErrInvalidCredential = errors.New("wrong password")
	// ErrNotFound indicates that the requested task does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrSessionNotFound indicates that the session token is unknown.
	ErrSessionNotFound = errors.New("session not found")
	// ErrStoreUnavailable wraps connectivity failures of a backing store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidInput indicates a request field failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
