package maintenance

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaintenancePath is the page denied requests are redirected to.
const MaintenancePath = "/maintenance"

// skipPaths are infrastructure paths that must stay reachable even while
// maintenance is active, so an unreachable system can still serve its own
// status page.
var skipPaths = map[string]struct{}{
	MaintenancePath: {},
	"/health":       {},
	"/ready":        {},
}

// IdentityFunc extracts the authenticated identity from a request context.
// It returns false when no identity is present.
type IdentityFunc func(ctx context.Context) (string, bool)

// Middleware evaluates the maintenance gate before any other request
// handling. The identifying username comes from the authenticated session
// when present, otherwise from the "username" query parameter. Denied
// requests are redirected to the maintenance page; the downstream handler
// never runs.
func Middleware(gate *Gate, identity IdentityFunc, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !gate.Enabled() {
			c.Next()
			return
		}

		if _, ok := skipPaths[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		username, ok := identity(c.Request.Context())
		if !ok {
			username = c.Query("username")
		}

		if !gate.Allow(username) {
			c.Redirect(http.StatusFound, MaintenancePath)
			c.Abort()
			return
		}

		// A bypass while maintenance is active is a security-relevant event.
		logger.Warn("maintenance bypass allowed",
			slog.String("username", username),
			slog.String("path", c.Request.URL.Path))

		c.Next()
	}
}

// PageHandler renders the maintenance page the gate redirects to.
func PageHandler() gin.HandlerFunc {
	const page = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Service unavailable</title></head>
<body>
<h1>Scheduled maintenance</h1>
<p>The service is temporarily unavailable. Please try again later.</p>
</body>
</html>`

	return func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, page)
	}
}
