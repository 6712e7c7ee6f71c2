// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/profilestack-go/internal/application/container"
	"github.com/AtRiskMedia/profilestack-go/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/profilestack-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(container.Logger)
	profileHandlers := handlers.NewProfileHandlers(container.ProfileService, container.Logger)
	navHandlers := handlers.NewNavHandlers(container.Logger)
	stateHandlers := handlers.NewStateHandlers(container.Broadcaster, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container.ShellService, container.ProfileCache)

	api := r.Group("/api/v1")
	api.Use(middleware.ShellMiddleware(container.ShellService, container.Logger))
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandlers.PostRegister)
			authGroup.POST("/login", authHandlers.PostLogin)
			authGroup.POST("/logout", authHandlers.PostLogout)
			authGroup.GET("/status", authHandlers.GetStatus)
		}

		profileGroup := api.Group("/profile")
		{
			profileGroup.GET("", profileHandlers.GetProfile)
			profileGroup.PUT("", profileHandlers.PutProfile)
			profileGroup.PUT("/preferences", profileHandlers.PutPreferences)
			profileGroup.DELETE("", profileHandlers.DeleteProfile)
		}

		navGroup := api.Group("/nav")
		{
			navGroup.POST("", navHandlers.PostNavigate)
			navGroup.GET("/route", navHandlers.GetRoute)
		}

		api.GET("/state/ws", stateHandlers.GetStateStream)
		api.GET("/health", healthHandlers.GetHealth)
	}

	return r
}
