package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/profilestack-go/internal/application/services"
	"github.com/AtRiskMedia/profilestack-go/internal/domain/results"
	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/internal/presentation/http/middleware"
)

// ProfileHandlers contains the profile HTTP handlers
type ProfileHandlers struct {
	profiles *services.ProfileService
	logger   *logging.ChanneledLogger
}

// NewProfileHandlers creates profile handlers with injected dependencies
func NewProfileHandlers(profiles *services.ProfileService, logger *logging.ChanneledLogger) *ProfileHandlers {
	return &ProfileHandlers{
		profiles: profiles,
		logger:   logger,
	}
}

// currentUID resolves the signed-in uid for the request's shell, or
// writes a 401 and returns "".
func currentUID(c *gin.Context) string {
	shell, exists := middleware.GetShell(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "shell context not found"})
		return ""
	}
	authUser := shell.Provider.Current()
	if authUser == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return ""
	}
	return authUser.UID
}

func statusForCode(code string) int {
	switch code {
	case results.CodeNotFound:
		return http.StatusNotFound
	case results.CodeInvalidUID, results.CodeInvalidUser, results.CodeValidationError:
		return http.StatusUnprocessableEntity
	case results.CodeQuotaExceeded:
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}

// GetProfile handles GET /api/v1/profile - fetch or lazily create the profile
func (h *ProfileHandlers) GetProfile(c *gin.Context) {
	shell, exists := middleware.GetShell(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "shell context not found"})
		return
	}
	authUser := shell.Provider.Current()
	if authUser == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	start := time.Now()
	result := h.profiles.GetOrCreateProfile(c.Request.Context(), authUser)
	if !result.Ok {
		c.JSON(statusForCode(result.Code), gin.H{"error": result.Error, "code": result.Code})
		return
	}

	h.logger.Profile().Debug("Profile request served", "uid", h.logger.SanitizeUID(authUser.UID), "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{"profile": result.Data})
}

// PutProfile handles PUT /api/v1/profile - partial profile update
func (h *ProfileHandlers) PutProfile(c *gin.Context) {
	uid := currentUID(c)
	if uid == "" {
		return
	}

	var partial user.ProfileUpdate
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
		return
	}

	result := h.profiles.UpdateProfile(c.Request.Context(), uid, &partial)
	if !result.Ok {
		c.JSON(statusForCode(result.Code), gin.H{"error": result.Error, "code": result.Code})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": result.Data})
}

// PutPreferences handles PUT /api/v1/profile/preferences - partial preferences update
func (h *ProfileHandlers) PutPreferences(c *gin.Context) {
	uid := currentUID(c)
	if uid == "" {
		return
	}

	var prefs user.PreferencesUpdate
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preferences payload"})
		return
	}

	result := h.profiles.UpdatePreferences(c.Request.Context(), uid, &prefs)
	if !result.Ok {
		c.JSON(statusForCode(result.Code), gin.H{"error": result.Error, "code": result.Code})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": result.Data})
}

// DeleteProfile handles DELETE /api/v1/profile - remove the stored profile
func (h *ProfileHandlers) DeleteProfile(c *gin.Context) {
	uid := currentUID(c)
	if uid == "" {
		return
	}

	result := h.profiles.DeleteProfile(c.Request.Context(), uid)
	if !result.Ok {
		c.JSON(statusForCode(result.Code), gin.H{"error": result.Error, "code": result.Code})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": result.Data})
}
