// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/profilestack-go/internal/application/services"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/profilestack-go/pkg/config"
)

// SessionHeader carries the shell session id on every API request.
const SessionHeader = "X-Shell-Session-ID"

const shellContextKey = "shell"

// ShellMiddleware resolves the request's shell from the session header,
// creating one on first sight and echoing the id back so clients without
// an id can adopt the minted one. A valid Bearer session token
// re-establishes the shell's auth state after a server restart.
func ShellMiddleware(shells *services.ShellService, logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		shellID := c.GetHeader(SessionHeader)
		if shellID == "" {
			minted, err := security.GenerateSecureToken(18)
			if err != nil {
				logger.System().Error("Failed to mint shell session id", "error", err.Error())
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session allocation failed"})
				return
			}
			shellID = minted
		}

		shell := shells.GetOrCreateShell(c.Request.Context(), shellID)

		// A bearer token from a previous session restores signed-in state
		// for a shell the server no longer remembers as authenticated.
		if shell.Provider.Current() == nil {
			if token := bearerToken(c.GetHeader("Authorization")); token != "" {
				if claims, err := security.ValidateJWT(token, config.JWTSecret); err == nil {
					if authUser := security.GetAuthUserFromClaims(claims); authUser != nil {
						logger.Auth().Debug("Shell auth restored from session token", "shellId", shellID)
						shell.Provider.Adopt(authUser)
					}
				}
			}
		}

		c.Header(SessionHeader, shellID)
		c.Set(shellContextKey, shell)
		c.Next()
	}
}

// GetShell returns the request's shell placed by ShellMiddleware.
func GetShell(c *gin.Context) (*services.Shell, bool) {
	value, exists := c.Get(shellContextKey)
	if !exists {
		return nil, false
	}
	shell, ok := value.(*services.Shell)
	return shell, ok
}

func bearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
