package services

import (
	"context"
	"sync"
	"time"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/navigation"
	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/identity"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/persistence/store"
	"github.com/AtRiskMedia/profilestack-go/pkg/config"
)

// Paths the shell router serves.
const (
	PathHome     = "/"
	PathProfile  = "/profile"
	PathSettings = "/settings"
)

// Shell is one browser session's live state: its own router, fragment
// signal, identity provider and auth-state service over shared storage.
type Shell struct {
	ID       string
	Signal   *navigation.MemorySignal
	Router   *navigation.Router
	Provider *identity.LocalProvider
	Auth     *AuthStateService

	mu       sync.Mutex
	lastSeen time.Time
	lastUID  string
}

func (sh *Shell) touch() {
	sh.mu.Lock()
	sh.lastSeen = time.Now()
	sh.mu.Unlock()
}

func (sh *Shell) idleSince(cutoff time.Time) bool {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.lastSeen.Before(cutoff)
}

func (sh *Shell) rememberUID(uid string) {
	sh.mu.Lock()
	sh.lastUID = uid
	sh.mu.Unlock()
}

// forgetUID clears and returns the uid remembered at sign-in.
func (sh *Shell) forgetUID() string {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	uid := sh.lastUID
	sh.lastUID = ""
	return uid
}

// ShellService owns the registry of live shells and wires each new shell
// into the profile service, hint persistence and the event broadcaster.
type ShellService struct {
	sharedStore store.Store
	directory   *identity.Directory
	profiles    *ProfileService
	broadcaster messaging.Broadcaster
	logger      *logging.ChanneledLogger

	mu     sync.Mutex
	shells map[string]*Shell
}

// NewShellService creates the shell registry.
func NewShellService(sharedStore store.Store, directory *identity.Directory, profiles *ProfileService, broadcaster messaging.Broadcaster, logger *logging.ChanneledLogger) *ShellService {
	return &ShellService{
		sharedStore: sharedStore,
		directory:   directory,
		profiles:    profiles,
		broadcaster: broadcaster,
		logger:      logger,
		shells:      make(map[string]*Shell),
	}
}

// GetOrCreateShell returns the live shell for a session id, creating and
// wiring a fresh one on first sight.
func (s *ShellService) GetOrCreateShell(ctx context.Context, shellID string) *Shell {
	s.mu.Lock()
	if shell, exists := s.shells[shellID]; exists {
		s.mu.Unlock()
		shell.touch()
		return shell
	}
	s.mu.Unlock()

	shell := s.buildShell(shellID)

	s.mu.Lock()
	// A concurrent request may have built the same shell; first one wins.
	if existing, exists := s.shells[shellID]; exists {
		s.mu.Unlock()
		shell.Router.Close()
		return existing
	}
	s.shells[shellID] = shell
	s.mu.Unlock()

	s.logger.System().Info("Shell created", "shellId", shellID)
	return shell
}

// GetShell returns the live shell for a session id without creating one.
func (s *ShellService) GetShell(shellID string) (*Shell, bool) {
	s.mu.Lock()
	shell, exists := s.shells[shellID]
	s.mu.Unlock()
	if exists {
		shell.touch()
	}
	return shell, exists
}

// ShellCount returns the number of live shells.
func (s *ShellService) ShellCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shells)
}

// CleanupIdleShells drops shells idle past the configured TTL. Returns
// how many were removed.
func (s *ShellService) CleanupIdleShells() int {
	cutoff := time.Now().Add(-config.ShellIdleTTL)

	s.mu.Lock()
	var expired []*Shell
	for id, shell := range s.shells {
		if shell.idleSince(cutoff) {
			expired = append(expired, shell)
			delete(s.shells, id)
		}
	}
	s.mu.Unlock()

	for _, shell := range expired {
		shell.Router.Close()
	}
	if len(expired) > 0 {
		s.logger.System().Info("Idle shells cleaned up", "removed", len(expired))
	}
	return len(expired)
}

// buildShell assembles one shell: router with routes and the profile
// guard, auth subscription driving profile bootstrap and hint sync.
func (s *ShellService) buildShell(shellID string) *Shell {
	signal := navigation.NewMemorySignal()
	router := navigation.NewRouter(signal)
	provider := identity.NewLocalProvider(s.directory, s.logger)
	hintStore := store.NewScoped(s.sharedStore, "shell:"+shellID)
	auth := NewAuthStateService(provider, hintStore, s.logger)

	shell := &Shell{
		ID:       shellID,
		Signal:   signal,
		Router:   router,
		Provider: provider,
		Auth:     auth,
		lastSeen: time.Now(),
	}

	router.Register(PathHome, func() {
		s.broadcaster.BroadcastRouteChange(shellID, PathHome)
	})
	router.Register(PathProfile, func() {
		s.broadcaster.BroadcastRouteChange(shellID, PathProfile)
	})
	router.Register(PathSettings, func() {
		s.broadcaster.BroadcastRouteChange(shellID, PathSettings)
	})

	// The profile route needs either live auth state or a stored hint
	// claiming the user was signed in. The hint keeps a deep link to
	// /profile working across a reload that races auth initialization.
	router.OnBeforeNavigate(func(to, from string) bool {
		if to != PathProfile {
			return true
		}
		if auth.Current() != nil {
			return true
		}
		if hint := auth.GetHint(context.Background()); hint != nil && hint.IsAuthenticated {
			return true
		}
		s.logger.Navigation().Debug("Profile route blocked for anonymous shell", "shellId", shellID, "from", from)
		return false
	})

	auth.OnAuthStateChanged(func(authUser *user.AuthUser) {
		s.onAuthTransition(shellID, shell, authUser)
	})

	router.Init()
	auth.MarkInitialized()

	return shell
}

// onAuthTransition reacts to a shell's sign-in or sign-out.
func (s *ShellService) onAuthTransition(shellID string, shell *Shell, authUser *user.AuthUser) {
	ctx := context.Background()

	if authUser != nil {
		shell.rememberUID(authUser.UID)
		created := s.profiles.GetOrCreateProfile(ctx, authUser)
		if created.Ok {
			s.broadcaster.BroadcastProfileChange(shellID, created.Data)
		} else {
			s.logger.Profile().Error("Profile bootstrap on sign-in failed", "error", created.Error, "code", created.Code, "uid", s.logger.SanitizeUID(authUser.UID))
		}
		s.broadcaster.BroadcastAuthChange(shellID, shell.Auth.GetHint(ctx))
		return
	}

	if uid := shell.forgetUID(); uid != "" {
		s.profiles.ClearProfile(uid)
	}
	s.broadcaster.BroadcastAuthChange(shellID, nil)

	// Signing out while on the profile route redirects home.
	if shell.Router.GetCurrentRoute() == PathProfile {
		shell.Router.Navigate(PathHome)
	}
}
