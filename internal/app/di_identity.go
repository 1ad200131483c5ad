package app

import (
	"fmt"

	identityHTTP "github.com/allisson/idgate/internal/identity/http"
	identityRepository "github.com/allisson/idgate/internal/identity/repository"
	identityService "github.com/allisson/idgate/internal/identity/service"
	identityUseCase "github.com/allisson/idgate/internal/identity/usecase"
)

// CredentialService returns the password hashing and verification service.
func (c *Container) CredentialService() identityService.CredentialService {
	c.credentialServiceInit.Do(func() {
		c.credentialService = identityService.NewCredentialService()
	})
	return c.credentialService
}

// SessionService returns the session token service.
func (c *Container) SessionService() identityService.SessionService {
	c.sessionServiceInit.Do(func() {
		c.sessionService = identityService.NewSessionService(
			c.config.SessionSecret,
			c.config.SessionExpiration,
		)
	})
	return c.sessionService
}

// UserRepository returns the user repository instance.
func (c *Container) UserRepository() (identityUseCase.UserRepository, error) {
	c.userRepoInit.Do(func() {
		repo, err := c.initUserRepository()
		if err != nil {
			c.initErrors["userRepo"] = err
			return
		}
		c.userRepo = repo
	})
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// LoginUseCase returns the login use case instance.
func (c *Container) LoginUseCase() (identityUseCase.LoginUseCase, error) {
	c.loginUseCaseInit.Do(func() {
		useCase, err := c.initLoginUseCase()
		if err != nil {
			c.initErrors["loginUseCase"] = err
			return
		}
		c.loginUseCase = useCase
	})
	if storedErr, exists := c.initErrors["loginUseCase"]; exists {
		return nil, storedErr
	}
	return c.loginUseCase, nil
}

// LoginHandler returns the login HTTP handler.
func (c *Container) LoginHandler() (*identityHTTP.LoginHandler, error) {
	c.loginHandlerInit.Do(func() {
		useCase, err := c.LoginUseCase()
		if err != nil {
			c.initErrors["loginHandler"] = err
			return
		}
		c.loginHandler = identityHTTP.NewLoginHandler(useCase, c.Logger())
	})
	if storedErr, exists := c.initErrors["loginHandler"]; exists {
		return nil, storedErr
	}
	return c.loginHandler, nil
}

// UserInfoHandler returns the userinfo HTTP handler.
func (c *Container) UserInfoHandler() (*identityHTTP.UserInfoHandler, error) {
	c.userInfoHandlerInit.Do(func() {
		c.userInfoHandler = identityHTTP.NewUserInfoHandler(c.UpstreamClient(), c.Logger())
	})
	if storedErr, exists := c.initErrors["userInfoHandler"]; exists {
		return nil, storedErr
	}
	return c.userInfoHandler, nil
}

// initUserRepository creates the user repository based on the database driver.
func (c *Container) initUserRepository() (identityUseCase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return identityRepository.NewMySQLUserRepository(db), nil
	case "postgres":
		return identityRepository.NewPostgreSQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initLoginUseCase creates the login use case with all its dependencies.
func (c *Container) initLoginUseCase() (identityUseCase.LoginUseCase, error) {
	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for login use case: %w", err)
	}

	baseUseCase := identityUseCase.NewLoginUseCase(
		userRepo,
		c.LockoutTracker(),
		c.OutcomePublisher(),
		c.CredentialService(),
		c.SessionService(),
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for login use case: %w", err)
		}
		return identityUseCase.NewLoginUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
