package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/navigation"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/internal/presentation/http/middleware"
)

// NavHandlers contains the navigation HTTP handlers
type NavHandlers struct {
	logger *logging.ChanneledLogger
}

// NewNavHandlers creates navigation handlers with injected dependencies
func NewNavHandlers(logger *logging.ChanneledLogger) *NavHandlers {
	return &NavHandlers{logger: logger}
}

type navigateRequest struct {
	Path string `json:"path" binding:"required"`
}

// PostNavigate handles POST /api/v1/nav - request a route change. The
// response reports where the shell actually ended up, since a guard may
// have cancelled the navigation.
func (h *NavHandlers) PostNavigate(c *gin.Context) {
	shell, exists := middleware.GetShell(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "shell context not found"})
		return
	}

	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	requested := navigation.NormalizePath(req.Path)
	shell.Router.Navigate(requested)

	committed := shell.Router.GetCurrentRoute()
	h.logger.Navigation().Debug("Navigation handled", "shellId", shell.ID, "requested", requested, "committed", committed)
	c.JSON(http.StatusOK, gin.H{
		"route":     committed,
		"cancelled": committed != requested,
	})
}

// GetRoute handles GET /api/v1/nav/route - current route and fragment
func (h *NavHandlers) GetRoute(c *gin.Context) {
	shell, exists := middleware.GetShell(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "shell context not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"route":    shell.Router.GetCurrentRoute(),
		"fragment": shell.Signal.Fragment(),
	})
}
