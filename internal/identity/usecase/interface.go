// Package usecase implements business logic orchestration for identity
// operations.
package usecase

import (
	"context"

	identityDomain "github.com/allisson/idgate/internal/identity/domain"
	"github.com/allisson/idgate/internal/lockout"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// GetByUsername retrieves a user by username. Returns ErrUserNotFound if
	// not found.
	GetByUsername(ctx context.Context, username string) (*identityDomain.User, error)
}

// Blocker answers whether an identity is currently blocked. Implemented by
// the lockout tracker.
type Blocker interface {
	IsBlocked(identity string) bool
}

// OutcomePublisher emits authentication-outcome events after the
// verification result is known.
type OutcomePublisher interface {
	Publish(outcome lockout.Outcome)
}

// LoginUseCase defines the authentication path.
type LoginUseCase interface {
	// Login authenticates a username/password pair and issues a session.
	//
	// Ordering guarantee: the blocked-state check runs before any credential
	// verification, and outcome events are published after the verification
	// result is known.
	Login(ctx context.Context, input *identityDomain.LoginInput) (*identityDomain.LoginOutput, error)
}
