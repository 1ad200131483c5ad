package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	identityDomain "github.com/allisson/idgate/internal/identity/domain"
	identityService "github.com/allisson/idgate/internal/identity/service"
	"github.com/allisson/idgate/internal/httputil"
)

// SessionCookieName is the cookie the session token may travel in as an
// alternative to the Authorization header.
const SessionCookieName = "idgate_session"

// SessionMiddleware provides authentication via session token.
//
// The middleware:
// 1. Extracts the session token from the Authorization header (Bearer,
//    case-insensitive) or the session cookie
// 2. Verifies the token signature and expiration
// 3. Stores the authenticated username in the request context
// 4. Allows downstream handlers to access it via GetUsername()
//
// Error handling:
//   - Missing token → 401 Unauthorized
//   - Invalid/expired token → 401 Unauthorized
func SessionMiddleware(
	sessionService identityService.SessionService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractSessionToken(c)
		if token == "" {
			logger.Debug("session check failed: no token present")
			httputil.HandleErrorGin(c, identityDomain.ErrInvalidSession, logger)
			c.Abort()
			return
		}

		username, err := sessionService.Verify(token)
		if err != nil {
			logger.Debug("session check failed",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithUsername(c.Request.Context(), username)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// OptionalSessionMiddleware stores the session identity in the request
// context when a valid token is present and passes the request through
// otherwise. It never rejects. The maintenance gate runs after it and uses
// the identity to evaluate its allow-list.
func OptionalSessionMiddleware(sessionService identityService.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractSessionToken(c); token != "" {
			if username, err := sessionService.Verify(token); err == nil {
				ctx := WithUsername(c.Request.Context(), username)
				c.Request = c.Request.WithContext(ctx)
			}
		}
		c.Next()
	}
}

// extractSessionToken pulls the session token from the Authorization header
// or, failing that, the session cookie. Returns "" when neither is present.
func extractSessionToken(c *gin.Context) string {
	const bearerPrefix = "bearer "

	authHeader := c.GetHeader("Authorization")
	if len(authHeader) >= len(bearerPrefix) &&
		strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return authHeader[len(bearerPrefix):]
	}

	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}

	return ""
}
