// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/profilestack-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/profilestack-go/pkg/config"
)

// AuthHandlers contains all authentication-related HTTP handlers
type AuthHandlers struct {
	logger *logging.ChanneledLogger
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(logger *logging.ChanneledLogger) *AuthHandlers {
	return &AuthHandlers{logger: logger}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PostRegister handles POST /api/v1/auth/register - account creation plus sign-in
func (h *AuthHandlers) PostRegister(c *gin.Context) {
	shell, exists := middleware.GetShell(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "shell context not found"})
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	start := time.Now()
	result := shell.Provider.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if !result.Ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": result.Error, "code": result.Code})
		return
	}

	token, err := security.GenerateSessionToken(result.Data, config.JWTSecret, config.SessionTokenTTL)
	if err != nil {
		h.logger.Auth().Error("Session token generation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session token"})
		return
	}

	h.logger.Auth().Info("Registration complete", "uid", h.logger.SanitizeUID(result.Data.UID), "duration", time.Since(start))
	c.JSON(http.StatusCreated, gin.H{"user": result.Data, "token": token})
}

// PostLogin handles POST /api/v1/auth/login - credential sign-in
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	shell, exists := middleware.GetShell(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "shell context not found"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	start := time.Now()
	result := shell.Provider.SignIn(c.Request.Context(), req.Email, req.Password)
	if !result.Ok {
		h.logger.Auth().Debug("Login rejected", "duration", time.Since(start))
		c.JSON(http.StatusUnauthorized, gin.H{"error": result.Error, "code": result.Code})
		return
	}

	token, err := security.GenerateSessionToken(result.Data, config.JWTSecret, config.SessionTokenTTL)
	if err != nil {
		h.logger.Auth().Error("Session token generation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session token"})
		return
	}

	h.logger.Auth().Info("Login complete", "uid", h.logger.SanitizeUID(result.Data.UID), "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{"user": result.Data, "token": token})
}

// PostLogout handles POST /api/v1/auth/logout - sign-out
func (h *AuthHandlers) PostLogout(c *gin.Context) {
	shell, exists := middleware.GetShell(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "shell context not found"})
		return
	}

	result := shell.Provider.SignOut(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"signedOut": result.Data})
}

// GetStatus handles GET /api/v1/auth/status - live state plus the durable hint
func (h *AuthHandlers) GetStatus(c *gin.Context) {
	shell, exists := middleware.GetShell(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "shell context not found"})
		return
	}

	state, err := shell.Auth.WaitForAuthInitialization(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "auth state not initialized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": state,
		"hint": shell.Auth.GetHint(c.Request.Context()),
	})
}
