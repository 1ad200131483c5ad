package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/idgate/internal/app"
	"github.com/allisson/idgate/internal/config"
	identityDomain "github.com/allisson/idgate/internal/identity/domain"
	identityRepository "github.com/allisson/idgate/internal/identity/repository"
	customValidation "github.com/allisson/idgate/internal/validation"
)

// userCreator persists new user accounts.
type userCreator interface {
	Create(ctx context.Context, user *identityDomain.User) error
}

// createUserInput holds the new account attributes before persistence.
type createUserInput struct {
	Username string
	Email    string
	Password string
}

// Validate checks the new account attributes. Passwords set through this
// command must meet the strength policy; login itself never re-checks it.
func (i *createUserInput) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.Username,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 255),
		),
		validation.Field(&i.Email,
			validation.Required,
			customValidation.Email,
			validation.Length(1, 255),
		),
		validation.Field(&i.Password,
			validation.Required,
			customValidation.PasswordStrength{
				MinLength:     12,
				RequireUpper:  true,
				RequireLower:  true,
				RequireNumber: true,
			},
		),
	)
}

// RunCreateUser creates a user account from the command line. The password is
// hashed before storage and never logged.
func RunCreateUser(ctx context.Context, username, email, password string, active bool) error {
	input := &createUserInput{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := input.Validate(); err != nil {
		return customValidation.WrapValidationError(err)
	}

	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	db, err := container.DB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}

	var repo userCreator
	switch cfg.DBDriver {
	case "mysql":
		repo = identityRepository.NewMySQLUserRepository(db)
	case "postgres":
		repo = identityRepository.NewPostgreSQLUserRepository(db)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.DBDriver)
	}

	passwordHash, err := container.CredentialService().Hash(input.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &identityDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		IsActive:     active,
	}

	if err := repo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username),
		slog.Bool("is_active", user.IsActive),
	)
	return nil
}
