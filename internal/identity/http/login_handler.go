package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	identityDomain "github.com/allisson/idgate/internal/identity/domain"
	"github.com/allisson/idgate/internal/identity/http/dto"
	identityUseCase "github.com/allisson/idgate/internal/identity/usecase"
	"github.com/allisson/idgate/internal/httputil"
	customValidation "github.com/allisson/idgate/internal/validation"
)

// LoginHandler handles HTTP requests for authentication.
type LoginHandler struct {
	loginUseCase identityUseCase.LoginUseCase
	logger       *slog.Logger
}

// NewLoginHandler creates a new login handler with required dependencies.
func NewLoginHandler(
	loginUseCase identityUseCase.LoginUseCase,
	logger *slog.Logger,
) *LoginHandler {
	return &LoginHandler{
		loginUseCase: loginUseCase,
		logger:       logger,
	}
}

// Login authenticates a username/password pair and issues a session token.
// POST /v1/login - No authentication required (this is the authentication endpoint).
//
// Responses:
//   - 200 OK with session token and expiration
//   - 401 Unauthorized for wrong credentials (generic, never says which part)
//   - 423 Locked for blocked accounts, regardless of credential validity
func (h *LoginHandler) Login(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := &identityDomain.LoginInput{
		Username: req.Username,
		Password: req.Password,
	}

	output, err := h.loginUseCase.Login(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.LoginResponse{
		SessionToken: output.SessionToken,
		ExpiresAt:    output.ExpiresAt,
	}

	c.JSON(http.StatusOK, response)
}
