package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/idgate/internal/errors"
	"github.com/allisson/idgate/internal/httputil"
	"github.com/allisson/idgate/internal/identity/http/dto"
	"github.com/allisson/idgate/internal/upstream"
)

// UserInfoHandler serves profile data fetched from the upstream identity API.
type UserInfoHandler struct {
	client *upstream.Client
	logger *slog.Logger
}

// NewUserInfoHandler creates a new userinfo handler.
func NewUserInfoHandler(client *upstream.Client, logger *slog.Logger) *UserInfoHandler {
	return &UserInfoHandler{
		client: client,
		logger: logger,
	}
}

// GetUserInfo returns the authenticated user's upstream profile.
// GET /v1/userinfo - Requires a valid session (SessionMiddleware).
//
// Upstream failures surface as 503; the upstream response detail never
// reaches the client.
func (h *UserInfoHandler) GetUserInfo(c *gin.Context) {
	username, ok := GetUsername(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	info, err := h.client.GetUserInfo(c.Request.Context(), username)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.UserInfoResponse{
		Subject:    info.Subject,
		Name:       info.Name,
		Email:      info.Email,
		Department: info.Department,
	}

	c.JSON(http.StatusOK, response)
}
