// Package container provides dependency injection for all singleton services
package container

import (
	"context"
	"fmt"

	"github.com/AtRiskMedia/profilestack-go/internal/application/services"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/email"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/identity"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/persistence/database"
	profilerepo "github.com/AtRiskMedia/profilestack-go/internal/infrastructure/persistence/profile"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/persistence/store"
	"github.com/AtRiskMedia/profilestack-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services
	ProfileService *services.ProfileService
	ShellService   *services.ShellService

	// Infrastructure Dependencies
	Store        store.Store
	Directory    *identity.Directory
	ProfileCache *stores.ProfileStore
	Broadcaster  *messaging.StateBroadcaster
	EmailService email.Service
	Logger       *logging.ChanneledLogger

	db *database.DB
}

// NewContainer creates and wires all singleton services over the
// configured store backend.
func NewContainer(logger *logging.ChanneledLogger) (*Container, error) {
	kv, db, err := buildStore(logger)
	if err != nil {
		return nil, err
	}

	emailService, err := email.NewService()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email service: %w", err)
	}
	if emailService == nil {
		logger.Startup().Info("Email delivery disabled, no RESEND_API_KEY configured")
	}

	profileCache := stores.NewProfileStore(config.ProfileCacheTTL, logger)
	repository := profilerepo.NewStoreRepository(kv, logger)
	profileService := services.NewProfileService(repository, profileCache, emailService, logger)

	directory := identity.NewDirectory(kv, logger)
	broadcaster := messaging.NewStateBroadcaster(logger)
	shellService := services.NewShellService(kv, directory, profileService, broadcaster, logger)

	return &Container{
		ProfileService: profileService,
		ShellService:   shellService,
		Store:          kv,
		Directory:      directory,
		ProfileCache:   profileCache,
		Broadcaster:    broadcaster,
		EmailService:   emailService,
		Logger:         logger,
		db:             db,
	}, nil
}

// buildStore selects the store backend from configuration.
func buildStore(logger *logging.ChanneledLogger) (store.Store, *database.DB, error) {
	switch config.StoreBackend {
	case "memory":
		logger.Startup().Info("Using in-memory store backend", "maxEntries", config.MemoryStoreMaxEntries)
		return store.NewMemoryStore(config.MemoryStoreMaxEntries), nil, nil

	case "libsql":
		if config.LibSQLURL == "" {
			return nil, nil, fmt.Errorf("LIBSQL_URL is required for the libsql store backend")
		}
		db, err := database.NewConnectionWithLogger("libsql", config.LibSQLURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to libsql: %w", err)
		}
		return newSQLStore(db, logger)

	case "sqlite":
		db, err := database.NewConnectionWithLogger("sqlite3", config.SQLitePath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return newSQLStore(db, logger)

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", config.StoreBackend)
	}
}

func newSQLStore(db *database.DB, logger *logging.ChanneledLogger) (store.Store, *database.DB, error) {
	sqlStore := store.NewSQLStore(db, logger)
	if err := sqlStore.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, nil, err
	}
	return sqlStore, db, nil
}

// Close releases infrastructure resources.
func (c *Container) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
