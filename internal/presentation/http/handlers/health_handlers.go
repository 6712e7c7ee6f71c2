package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/profilestack-go/internal/application/services"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/caching/stores"
)

// HealthHandlers serves liveness and diagnostics endpoints
type HealthHandlers struct {
	shells       *services.ShellService
	profileCache *stores.ProfileStore
	startedAt    time.Time
}

// NewHealthHandlers creates health handlers with injected dependencies
func NewHealthHandlers(shells *services.ShellService, profileCache *stores.ProfileStore) *HealthHandlers {
	return &HealthHandlers{
		shells:       shells,
		profileCache: profileCache,
		startedAt:    time.Now(),
	}
}

// GetHealth handles GET /api/v1/health - liveness plus occupancy counters
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"uptime":       time.Since(h.startedAt).String(),
		"shells":       h.shells.ShellCount(),
		"profileCache": h.profileCache.Summary(),
	})
}
