package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/identity"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/persistence/store"
	"github.com/AtRiskMedia/profilestack-go/pkg/config"
)

// AuthStateService is the single source of truth for a shell's
// authentication state. It observes the identity provider and keeps the
// durable auth hint in sync, so a reloading client can render its
// signed-in chrome before the provider has re-confirmed the session.
type AuthStateService struct {
	provider  identity.Provider
	hintStore store.Store
	logger    *logging.ChanneledLogger

	initOnce sync.Once
	initDone chan struct{}
}

// NewAuthStateService creates the auth-state service and starts
// mirroring provider transitions into the hint store.
func NewAuthStateService(provider identity.Provider, hintStore store.Store, logger *logging.ChanneledLogger) *AuthStateService {
	s := &AuthStateService{
		provider:  provider,
		hintStore: hintStore,
		logger:    logger,
		initDone:  make(chan struct{}),
	}

	provider.OnChange(func(authUser *user.AuthUser) {
		s.syncHint(context.Background(), authUser)
	})

	return s
}

func hintKey() string {
	return config.AppPrefix + "_auth_hint"
}

// MarkInitialized resolves WaitForAuthInitialization. Called once the
// first definitive auth state is known, whether signed in or out.
func (s *AuthStateService) MarkInitialized() {
	s.initOnce.Do(func() { close(s.initDone) })
}

// WaitForAuthInitialization blocks until the first auth state is known,
// then returns it. Later calls return immediately with the live state.
func (s *AuthStateService) WaitForAuthInitialization(ctx context.Context) (*user.AuthUser, error) {
	select {
	case <-s.initDone:
		return s.provider.Current(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Current returns the live auth state; nil while signed out.
func (s *AuthStateService) Current() *user.AuthUser {
	return s.provider.Current()
}

// OnAuthStateChanged registers a listener for auth transitions. When the
// state is already initialized the listener is invoked immediately with
// the current state, so late subscribers never miss the signed-in edge.
func (s *AuthStateService) OnAuthStateChanged(callback func(*user.AuthUser)) func() {
	unsubscribe := s.provider.OnChange(callback)

	select {
	case <-s.initDone:
		callback(s.provider.Current())
	default:
	}

	return unsubscribe
}

// GetHint returns the persisted auth hint, or nil when absent. A
// malformed stored hint is treated as absent and cleared.
func (s *AuthStateService) GetHint(ctx context.Context) *user.AuthHint {
	raw, found, err := s.hintStore.Get(ctx, hintKey())
	if err != nil {
		s.logger.Auth().Error("Auth hint read failed", "error", err.Error())
		return nil
	}
	if !found {
		return nil
	}

	// Decode through a pointer flag so a record missing the
	// isAuthenticated boolean reads as malformed rather than defaulting
	// to signed-out.
	var decoded struct {
		IsAuthenticated *bool   `json:"isAuthenticated"`
		DisplayName     *string `json:"displayName"`
		PhotoURL        *string `json:"photoURL"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		s.logger.Auth().Warn("Discarding malformed auth hint", "error", err.Error())
		s.ClearHint(ctx)
		return nil
	}
	if decoded.IsAuthenticated == nil {
		s.logger.Auth().Warn("Discarding auth hint without authentication flag")
		s.ClearHint(ctx)
		return nil
	}
	return &user.AuthHint{
		IsAuthenticated: *decoded.IsAuthenticated,
		DisplayName:     decoded.DisplayName,
		PhotoURL:        decoded.PhotoURL,
	}
}

// SaveHint persists the hint. Write failures are logged and swallowed;
// the hint is an optimization, not a source of truth.
func (s *AuthStateService) SaveHint(ctx context.Context, hint *user.AuthHint) {
	data, err := json.Marshal(hint)
	if err != nil {
		s.logger.Auth().Error("Auth hint serialization failed", "error", err.Error())
		return
	}
	if err := s.hintStore.Set(ctx, hintKey(), string(data)); err != nil {
		s.logger.Auth().Warn("Auth hint write failed", "error", err.Error())
	}
}

// ClearHint removes the persisted hint.
func (s *AuthStateService) ClearHint(ctx context.Context) {
	if err := s.hintStore.Delete(ctx, hintKey()); err != nil {
		s.logger.Auth().Warn("Auth hint delete failed", "error", err.Error())
	}
}

// syncHint mirrors a provider transition into the hint store.
func (s *AuthStateService) syncHint(ctx context.Context, authUser *user.AuthUser) {
	if authUser == nil {
		s.ClearHint(ctx)
		return
	}

	hint := &user.AuthHint{IsAuthenticated: true}
	if authUser.DisplayName != "" {
		name := authUser.DisplayName
		hint.DisplayName = &name
	}
	if authUser.PhotoURL != nil {
		url := *authUser.PhotoURL
		hint.PhotoURL = &url
	}
	s.SaveHint(ctx, hint)
}
