// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/profilestack-go/internal/application/container"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/profilestack-go/internal/presentation/http/server"
	"github.com/AtRiskMedia/profilestack-go/pkg/config"
)

// Initialize performs the complete startup sequence and blocks until
// shutdown completes.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	// Step 1: Channeled logging
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()
	logger.Startup().Info("Logging initialized", "directory", logging.DefaultLoggerConfig().LogDirectory)

	// Step 2: Session token secret
	if config.JWTSecret == "" {
		secret, err := security.GenerateSecureKey(64)
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		config.JWTSecret = secret
		logger.Startup().Warn("JWT_SECRET not configured, generated an ephemeral secret; sessions will not survive a restart")
	}

	// Step 3: Dependency injection container (store backend, services)
	logger.Startup().Info("Initializing dependency injection container...", "storeBackend", config.StoreBackend)
	appContainer, err := container.NewContainer(logger)
	if err != nil {
		return fmt.Errorf("container initialization failed: %w", err)
	}
	defer appContainer.Close()
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 4: Background shell cleanup worker
	go runShellCleanup(ctx, appContainer, logger)
	logger.Startup().Info("Shell cleanup worker started", "interval", config.ShellCleanupInterval, "idleTTL", config.ShellIdleTTL)

	// Step 5: HTTP server
	httpServer := server.New(config.Port, appContainer)
	logger.Startup().Info("HTTP server initialized", "port", config.Port)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+config.Port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// runShellCleanup periodically drops shells idle past their TTL.
func runShellCleanup(ctx context.Context, appContainer *container.Container, logger *logging.ChanneledLogger) {
	ticker := time.NewTicker(config.ShellCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			appContainer.ShellService.CleanupIdleShells()
		case <-ctx.Done():
			logger.Shutdown().Info("Shell cleanup worker stopped")
			return
		}
	}
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
