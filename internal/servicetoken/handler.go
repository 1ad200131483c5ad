package servicetoken

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResetHandler exposes the operator-facing cache reset endpoint.
type ResetHandler struct {
	cache  *Cache
	logger *slog.Logger
}

// NewResetHandler creates a ResetHandler for the given cache.
func NewResetHandler(cache *Cache, logger *slog.Logger) *ResetHandler {
	return &ResetHandler{
		cache:  cache,
		logger: logger,
	}
}

// Reset handles GET /reset-cache/service-token.
//
// Eviction is fire-and-forget: the response acknowledges the eviction with
// 202 Accepted and the next GetToken call refreshes lazily. No network fetch
// happens here.
func (h *ResetHandler) Reset(c *gin.Context) {
	h.cache.Evict()

	h.logger.Info("service token cache reset requested",
		slog.String("remote_addr", c.ClientIP()))

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
