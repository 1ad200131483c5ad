// Package domain defines the core identity entities and domain errors.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/idgate/internal/errors"
)

// User represents an account that can sign in to the gateway.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Domain-specific errors for identity operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same username or email
	// already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrInvalidCredentials indicates the submitted username/password pair is
	// wrong. It is deliberately generic to prevent user enumeration.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrAccountBlocked indicates the identity is blocked after repeated
	// authentication failures. It is distinct from ErrInvalidCredentials and
	// reveals nothing about whether the submitted credentials were correct.
	ErrAccountBlocked = errors.Wrap(errors.ErrLocked, "account blocked")

	// ErrInvalidSession indicates the session token is missing, malformed,
	// or expired.
	ErrInvalidSession = errors.Wrap(errors.ErrUnauthorized, "invalid session")
)
