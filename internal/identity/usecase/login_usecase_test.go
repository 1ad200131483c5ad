package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/allisson/idgate/internal/errors"
	identityDomain "github.com/allisson/idgate/internal/identity/domain"
	"github.com/allisson/idgate/internal/lockout"
)

// mockUserRepository is a mock implementation of UserRepository for testing.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*identityDomain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

// mockBlocker is a mock implementation of Blocker for testing.
type mockBlocker struct {
	mock.Mock
}

func (m *mockBlocker) IsBlocked(identity string) bool {
	args := m.Called(identity)
	return args.Bool(0)
}

// mockPublisher is a mock implementation of OutcomePublisher for testing.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(outcome lockout.Outcome) {
	m.Called(outcome)
}

// mockCredentialService is a mock implementation of CredentialService for testing.
type mockCredentialService struct {
	mock.Mock
}

func (m *mockCredentialService) Verify(plainPassword string, passwordHash string) bool {
	args := m.Called(plainPassword, passwordHash)
	return args.Bool(0)
}

func (m *mockCredentialService) Hash(plainPassword string) (string, error) {
	args := m.Called(plainPassword)
	return args.String(0), args.Error(1)
}

// mockSessionService is a mock implementation of SessionService for testing.
type mockSessionService struct {
	mock.Mock
}

func (m *mockSessionService) Issue(username string) (string, time.Time, error) {
	args := m.Called(username)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockSessionService) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activeUser() *identityDomain.User {
	return &identityDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Username:     "alice",
		Email:        "alice@example.gov",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$test-hash", //nolint:gosec // test fixture, not a real credential
		IsActive:     true,
	}
}

func newUseCase(
	repo *mockUserRepository,
	blocker *mockBlocker,
	publisher *mockPublisher,
	creds *mockCredentialService,
	sessions *mockSessionService,
) LoginUseCase {
	return NewLoginUseCase(repo, blocker, publisher, creds, sessions, testLogger())
}

func TestLoginUseCase_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_LoginIssuesSession", func(t *testing.T) {
		repo := &mockUserRepository{}
		blocker := &mockBlocker{}
		publisher := &mockPublisher{}
		creds := &mockCredentialService{}
		sessions := &mockSessionService{}

		user := activeUser()
		expiresAt := time.Now().UTC().Add(time.Hour)

		blocker.On("IsBlocked", "alice").Return(false).Once()
		repo.On("GetByUsername", ctx, "alice").Return(user, nil).Once()
		creds.On("Verify", "correct horse", user.PasswordHash).Return(true).Once()
		publisher.On("Publish", lockout.Outcome{Identity: "alice", Success: true}).Once()
		sessions.On("Issue", "alice").Return("session-token", expiresAt, nil).Once()

		uc := newUseCase(repo, blocker, publisher, creds, sessions)
		output, err := uc.Login(ctx, &identityDomain.LoginInput{Username: "alice", Password: "correct horse"})

		assert.NoError(t, err)
		assert.Equal(t, "session-token", output.SessionToken)
		assert.Equal(t, expiresAt, output.ExpiresAt)
		repo.AssertExpectations(t)
		blocker.AssertExpectations(t)
		publisher.AssertExpectations(t)
		creds.AssertExpectations(t)
		sessions.AssertExpectations(t)
	})

	t.Run("Success_UsernameIsTrimmedBeforeLookup", func(t *testing.T) {
		repo := &mockUserRepository{}
		blocker := &mockBlocker{}
		publisher := &mockPublisher{}
		creds := &mockCredentialService{}
		sessions := &mockSessionService{}

		user := activeUser()
		expiresAt := time.Now().UTC().Add(time.Hour)

		blocker.On("IsBlocked", "alice").Return(false).Once()
		repo.On("GetByUsername", ctx, "alice").Return(user, nil).Once()
		creds.On("Verify", "pw", user.PasswordHash).Return(true).Once()
		publisher.On("Publish", lockout.Outcome{Identity: "alice", Success: true}).Once()
		sessions.On("Issue", "alice").Return("session-token", expiresAt, nil).Once()

		uc := newUseCase(repo, blocker, publisher, creds, sessions)
		_, err := uc.Login(ctx, &identityDomain.LoginInput{Username: "  alice  ", Password: "pw"})

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Error_BlockedBeforeCredentialVerification", func(t *testing.T) {
		repo := &mockUserRepository{}
		blocker := &mockBlocker{}
		publisher := &mockPublisher{}
		creds := &mockCredentialService{}
		sessions := &mockSessionService{}

		blocker.On("IsBlocked", "alice").Return(true).Once()

		uc := newUseCase(repo, blocker, publisher, creds, sessions)
		output, err := uc.Login(ctx, &identityDomain.LoginInput{Username: "alice", Password: "would be correct"})

		assert.Nil(t, output)
		assert.ErrorIs(t, err, identityDomain.ErrAccountBlocked)
		assert.ErrorIs(t, err, apperrors.ErrLocked)

		// The rejection happens before any repository or hash work.
		repo.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
		creds.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
		publisher.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("Error_UnknownUserPublishesFailure", func(t *testing.T) {
		repo := &mockUserRepository{}
		blocker := &mockBlocker{}
		publisher := &mockPublisher{}
		creds := &mockCredentialService{}
		sessions := &mockSessionService{}

		blocker.On("IsBlocked", "ghost").Return(false).Once()
		repo.On("GetByUsername", ctx, "ghost").Return(nil, identityDomain.ErrUserNotFound).Once()
		publisher.On("Publish", lockout.Outcome{Identity: "ghost", Success: false}).Once()

		uc := newUseCase(repo, blocker, publisher, creds, sessions)
		output, err := uc.Login(ctx, &identityDomain.LoginInput{Username: "ghost", Password: "pw"})

		assert.Nil(t, output)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidCredentials)
		publisher.AssertExpectations(t)
	})

	t.Run("Error_WrongPasswordPublishesFailure", func(t *testing.T) {
		repo := &mockUserRepository{}
		blocker := &mockBlocker{}
		publisher := &mockPublisher{}
		creds := &mockCredentialService{}
		sessions := &mockSessionService{}

		user := activeUser()

		blocker.On("IsBlocked", "alice").Return(false).Once()
		repo.On("GetByUsername", ctx, "alice").Return(user, nil).Once()
		creds.On("Verify", "wrong", user.PasswordHash).Return(false).Once()
		publisher.On("Publish", lockout.Outcome{Identity: "alice", Success: false}).Once()

		uc := newUseCase(repo, blocker, publisher, creds, sessions)
		output, err := uc.Login(ctx, &identityDomain.LoginInput{Username: "alice", Password: "wrong"})

		assert.Nil(t, output)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidCredentials)
		sessions.AssertNotCalled(t, "Issue", mock.Anything)
		publisher.AssertExpectations(t)
	})

	t.Run("Error_InactiveUserLooksLikeInvalidCredentials", func(t *testing.T) {
		repo := &mockUserRepository{}
		blocker := &mockBlocker{}
		publisher := &mockPublisher{}
		creds := &mockCredentialService{}
		sessions := &mockSessionService{}

		user := activeUser()
		user.IsActive = false

		blocker.On("IsBlocked", "alice").Return(false).Once()
		repo.On("GetByUsername", ctx, "alice").Return(user, nil).Once()
		publisher.On("Publish", lockout.Outcome{Identity: "alice", Success: false}).Once()

		uc := newUseCase(repo, blocker, publisher, creds, sessions)
		output, err := uc.Login(ctx, &identityDomain.LoginInput{Username: "alice", Password: "pw"})

		assert.Nil(t, output)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidCredentials)
		creds.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("Error_RepositoryFailurePublishesNoOutcome", func(t *testing.T) {
		repo := &mockUserRepository{}
		blocker := &mockBlocker{}
		publisher := &mockPublisher{}
		creds := &mockCredentialService{}
		sessions := &mockSessionService{}

		repoErr := apperrors.New("connection refused")

		blocker.On("IsBlocked", "alice").Return(false).Once()
		repo.On("GetByUsername", ctx, "alice").Return(nil, repoErr).Once()

		uc := newUseCase(repo, blocker, publisher, creds, sessions)
		output, err := uc.Login(ctx, &identityDomain.LoginInput{Username: "alice", Password: "pw"})

		assert.Nil(t, output)
		assert.ErrorIs(t, err, repoErr)
		// The verification result was never determined.
		publisher.AssertNotCalled(t, "Publish", mock.Anything)
	})
}
