// Package services provides application-level orchestration services
package services

import (
	"context"
	"sync"
	"time"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/results"
	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/email"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
)

// ProfileObserver receives the new profile state after every mutation.
// A nil profile means the uid's profile was deleted.
type ProfileObserver func(uid string, profile *user.UserProfile)

// inflightCall tracks one in-progress GetOrCreateProfile so concurrent
// callers for the same uid share a single repository round trip instead
// of racing a read-then-create.
type inflightCall struct {
	done   chan struct{}
	result results.Result[*user.UserProfile]
}

// ProfileService orchestrates profile reads and writes over the
// repository with a TTL read-through cache and change notifications.
type ProfileService struct {
	repository user.ProfileRepository
	cache      *stores.ProfileStore
	emailSvc   email.Service
	logger     *logging.ChanneledLogger

	mu        sync.Mutex
	inflight  map[string]*inflightCall
	observers map[int]ProfileObserver
	nextObsID int
}

// NewProfileService creates a profile service. emailSvc may be nil when
// transactional email is disabled.
func NewProfileService(repository user.ProfileRepository, cache *stores.ProfileStore, emailSvc email.Service, logger *logging.ChanneledLogger) *ProfileService {
	return &ProfileService{
		repository: repository,
		cache:      cache,
		emailSvc:   emailSvc,
		logger:     logger,
		inflight:   make(map[string]*inflightCall),
		observers:  make(map[int]ProfileObserver),
	}
}

// Subscribe registers an observer for profile mutations. The returned
// closure unsubscribes it.
func (s *ProfileService) Subscribe(observer ProfileObserver) func() {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = observer
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// GetProfile returns the profile for a uid, consulting the cache first.
// A successful nil result means no profile exists.
func (s *ProfileService) GetProfile(ctx context.Context, uid string) results.Result[*user.UserProfile] {
	if uid == "" {
		return results.Failure[*user.UserProfile]("uid must be a non-empty string", results.CodeInvalidUID)
	}

	if cached, hit := s.cache.Get(uid); hit {
		return results.Success(cached)
	}

	found := s.repository.FindByID(ctx, uid)
	if found.Ok && found.Data != nil {
		s.cache.Set(uid, found.Data)
	}
	return found
}

// GetOrCreateProfile returns the existing profile for the auth user, or
// creates one with default preferences. Concurrent calls for the same
// uid coalesce into a single lookup-then-create sequence.
func (s *ProfileService) GetOrCreateProfile(ctx context.Context, authUser *user.AuthUser) results.Result[*user.UserProfile] {
	if authUser == nil || authUser.UID == "" {
		return results.Failure[*user.UserProfile]("an authenticated user is required", results.CodeInvalidUser)
	}

	s.mu.Lock()
	if call, exists := s.inflight[authUser.UID]; exists {
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.result
		case <-ctx.Done():
			return results.Failure[*user.UserProfile](ctx.Err().Error(), results.CodeUnknownError)
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	s.inflight[authUser.UID] = call
	s.mu.Unlock()

	call.result = s.getOrCreate(ctx, authUser)

	s.mu.Lock()
	delete(s.inflight, authUser.UID)
	s.mu.Unlock()
	close(call.done)

	return call.result
}

func (s *ProfileService) getOrCreate(ctx context.Context, authUser *user.AuthUser) results.Result[*user.UserProfile] {
	start := time.Now()

	existing := s.GetProfile(ctx, authUser.UID)
	if !existing.Ok {
		return existing
	}
	if existing.Data != nil {
		return existing
	}

	created := user.NewProfile(authUser, time.Now().UTC())
	saved := s.repository.Save(ctx, created)
	if !saved.Ok {
		s.logger.Profile().Error("Profile creation failed", "error", saved.Error, "code", saved.Code, "uid", s.logger.SanitizeUID(authUser.UID))
		return saved
	}

	s.cache.Set(authUser.UID, saved.Data)
	s.logger.Profile().Info("Profile created", "uid", s.logger.SanitizeUID(authUser.UID), "duration", time.Since(start))
	s.notify(authUser.UID, saved.Data)
	s.sendWelcome(saved.Data)

	return saved
}

// UpdateProfile merges a partial update, refreshes the cache and
// notifies observers with the merged state.
func (s *ProfileService) UpdateProfile(ctx context.Context, uid string, partial *user.ProfileUpdate) results.Result[*user.UserProfile] {
	updated := s.repository.Update(ctx, uid, partial)
	if !updated.Ok {
		return updated
	}

	s.cache.Set(uid, updated.Data)
	s.notify(uid, updated.Data)
	return updated
}

// UpdatePreferences merges a partial preferences update. Unnamed keys
// keep their stored values.
func (s *ProfileService) UpdatePreferences(ctx context.Context, uid string, prefs *user.PreferencesUpdate) results.Result[*user.UserProfile] {
	if prefs == nil {
		return results.Failure[*user.UserProfile]("preferences payload is required", results.CodeValidationError)
	}
	return s.UpdateProfile(ctx, uid, &user.ProfileUpdate{Preferences: prefs})
}

// DeleteProfile removes the stored profile and evicts the cached copy.
func (s *ProfileService) DeleteProfile(ctx context.Context, uid string) results.Result[bool] {
	deleted := s.repository.Delete(ctx, uid)
	if !deleted.Ok {
		return deleted
	}

	s.cache.Invalidate(uid)
	s.notify(uid, nil)
	return deleted
}

// ClearProfile drops the cached copy for a uid and notifies observers
// with nil, without touching storage. Called on sign-out so subscribers
// discard profile-derived state and the next session re-reads from the
// repository.
func (s *ProfileService) ClearProfile(uid string) {
	s.cache.Invalidate(uid)
	s.notify(uid, nil)
}

// notify fans the new state out to observers. A panicking observer is
// isolated so it cannot starve the rest.
func (s *ProfileService) notify(uid string, profile *user.UserProfile) {
	s.mu.Lock()
	observers := make([]ProfileObserver, 0, len(s.observers))
	for _, obs := range s.observers {
		observers = append(observers, obs)
	}
	s.mu.Unlock()

	for _, obs := range observers {
		s.invokeObserver(obs, uid, profile)
	}
}

func (s *ProfileService) invokeObserver(obs ProfileObserver, uid string, profile *user.UserProfile) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Profile().Error("Profile observer panicked", "panic", r, "uid", s.logger.SanitizeUID(uid))
		}
	}()
	obs(uid, profile.Clone())
}

// sendWelcome delivers the post-creation welcome email when email is
// enabled and the profile allows notifications. Failures are logged,
// never surfaced; profile creation already succeeded.
func (s *ProfileService) sendWelcome(profile *user.UserProfile) {
	if s.emailSvc == nil || profile.Email == "" || !profile.Preferences.EmailNotifications {
		return
	}

	go func() {
		if err := s.emailSvc.SendWelcomeEmail(profile.Email, profile.DisplayName); err != nil {
			s.logger.Email().Error("Welcome email failed", "error", err.Error(), "uid", s.logger.SanitizeUID(profile.UID))
		} else {
			s.logger.Email().Info("Welcome email sent", "uid", s.logger.SanitizeUID(profile.UID))
		}
	}()
}
