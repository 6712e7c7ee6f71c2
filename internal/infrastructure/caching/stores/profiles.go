// Package stores provides concrete cache store implementations
package stores

import (
	"sync"
	"time"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
)

// ProfileStore implements in-memory profile caching keyed by uid.
// Entries expire lazily: a read past the TTL evicts the entry and
// reports a miss, so there is no sweeper goroutine to coordinate.
type ProfileStore struct {
	entries map[string]*types.ProfileCacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
	logger  *logging.ChanneledLogger
	now     func() time.Time
}

// NewProfileStore creates a new profile cache store with the given TTL.
func NewProfileStore(ttl time.Duration, logger *logging.ChanneledLogger) *ProfileStore {
	if logger != nil {
		logger.Cache().Info("Initializing profile cache store", "ttl", ttl)
	}
	return &ProfileStore{
		entries: make(map[string]*types.ProfileCacheEntry),
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns a clone of the cached profile when the entry is still fresh.
// Expired entries are evicted on the spot.
func (ps *ProfileStore) Get(uid string) (*user.UserProfile, bool) {
	start := time.Now()

	ps.mu.RLock()
	entry, exists := ps.entries[uid]
	ps.mu.RUnlock()

	if !exists {
		if ps.logger != nil {
			ps.logger.Cache().Debug("Cache operation", "operation", "get", "type", "profile", "uid", ps.logger.SanitizeUID(uid), "hit", false, "duration", time.Since(start))
		}
		return nil, false
	}

	if !entry.IsFresh(ps.ttl, ps.now()) {
		ps.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if current, ok := ps.entries[uid]; ok && !current.IsFresh(ps.ttl, ps.now()) {
			delete(ps.entries, uid)
		}
		ps.mu.Unlock()

		if ps.logger != nil {
			ps.logger.Cache().Debug("Cache operation", "operation", "get", "type", "profile", "uid", ps.logger.SanitizeUID(uid), "hit", false, "reason", "expired", "duration", time.Since(start))
		}
		return nil, false
	}

	if ps.logger != nil {
		ps.logger.Cache().Debug("Cache operation", "operation", "get", "type", "profile", "uid", ps.logger.SanitizeUID(uid), "hit", true, "duration", time.Since(start))
	}
	return entry.Profile.Clone(), true
}

// Set stores a clone of the profile and stamps its capture time.
func (ps *ProfileStore) Set(uid string, profile *user.UserProfile) {
	start := time.Now()

	ps.mu.Lock()
	ps.entries[uid] = &types.ProfileCacheEntry{
		Profile:  profile.Clone(),
		CachedAt: ps.now(),
	}
	ps.mu.Unlock()

	if ps.logger != nil {
		ps.logger.Cache().Debug("Cache operation", "operation", "set", "type", "profile", "uid", ps.logger.SanitizeUID(uid), "duration", time.Since(start))
	}
}

// Invalidate removes the entry for a single uid.
func (ps *ProfileStore) Invalidate(uid string) {
	ps.mu.Lock()
	delete(ps.entries, uid)
	ps.mu.Unlock()

	if ps.logger != nil {
		ps.logger.Cache().Debug("Cache operation", "operation", "invalidate", "type", "profile", "uid", ps.logger.SanitizeUID(uid))
	}
}

// Clear drops every cached entry.
func (ps *ProfileStore) Clear() {
	ps.mu.Lock()
	count := len(ps.entries)
	ps.entries = make(map[string]*types.ProfileCacheEntry)
	ps.mu.Unlock()

	if ps.logger != nil {
		ps.logger.Cache().Info("Profile cache cleared", "evicted", count)
	}
}

// Summary reports current cache occupancy.
func (ps *ProfileStore) Summary() types.CacheSummary {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	summary := types.CacheSummary{Entries: len(ps.entries)}
	for _, entry := range ps.entries {
		if summary.Oldest.IsZero() || entry.CachedAt.Before(summary.Oldest) {
			summary.Oldest = entry.CachedAt
		}
		if entry.CachedAt.After(summary.Newest) {
			summary.Newest = entry.CachedAt
		}
	}
	return summary
}
