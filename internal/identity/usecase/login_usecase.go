package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	identityDomain "github.com/allisson/idgate/internal/identity/domain"
	identityService "github.com/allisson/idgate/internal/identity/service"
	"github.com/allisson/idgate/internal/lockout"
)

// loginUseCase implements LoginUseCase.
type loginUseCase struct {
	userRepo          UserRepository
	blocker           Blocker
	publisher         OutcomePublisher
	credentialService identityService.CredentialService
	sessionService    identityService.SessionService
	logger            *slog.Logger
}

// Login authenticates the user and issues a session token.
//
// This method:
// 1. Rejects blocked identities before any credential work
// 2. Looks up the user and verifies the password hash
// 3. Publishes the authentication outcome once the result is known
// 4. Issues a signed session token on success
//
// Security Notes:
//   - Returns ErrAccountBlocked for blocked identities even when the
//     submitted credentials would be valid; no hash comparison happens
//   - Returns ErrInvalidCredentials for unknown users, inactive users, and
//     wrong passwords alike to prevent user enumeration
//   - Infrastructure errors propagate without publishing an outcome: the
//     verification result was never determined
func (l *loginUseCase) Login(
	ctx context.Context,
	input *identityDomain.LoginInput,
) (*identityDomain.LoginOutput, error) {
	username := strings.TrimSpace(input.Username)

	// Blocked identities are rejected before credential verification.
	if l.blocker.IsBlocked(username) {
		l.logger.Info("login rejected for blocked account",
			slog.String("username", username))
		return nil, identityDomain.ErrAccountBlocked
	}

	user, err := l.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, identityDomain.ErrUserNotFound) {
			// Unknown user counts as a failed attempt for this identity.
			l.publisher.Publish(lockout.Outcome{Identity: username, Success: false})
			return nil, identityDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		l.publisher.Publish(lockout.Outcome{Identity: username, Success: false})
		return nil, identityDomain.ErrInvalidCredentials
	}

	if !l.credentialService.Verify(input.Password, user.PasswordHash) {
		l.publisher.Publish(lockout.Outcome{Identity: username, Success: false})
		return nil, identityDomain.ErrInvalidCredentials
	}

	l.publisher.Publish(lockout.Outcome{Identity: username, Success: true})

	token, expiresAt, err := l.sessionService.Issue(user.Username)
	if err != nil {
		return nil, err
	}

	l.logger.Info("login successful", slog.String("username", user.Username))

	return &identityDomain.LoginOutput{
		SessionToken: token,
		ExpiresAt:    expiresAt,
	}, nil
}

// NewLoginUseCase creates a LoginUseCase with the provided dependencies.
func NewLoginUseCase(
	userRepo UserRepository,
	blocker Blocker,
	publisher OutcomePublisher,
	credentialService identityService.CredentialService,
	sessionService identityService.SessionService,
	logger *slog.Logger,
) LoginUseCase {
	return &loginUseCase{
		userRepo:          userRepo,
		blocker:           blocker,
		publisher:         publisher,
		credentialService: credentialService,
		sessionService:    sessionService,
		logger:            logger,
	}
}
