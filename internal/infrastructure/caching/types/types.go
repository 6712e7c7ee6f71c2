// Package types defines cache entry structures shared across the
// caching subsystem.
package types

import (
	"time"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
)

// ProfileCacheEntry wraps a cached profile with the instant it was
// captured. Freshness is evaluated lazily at read time against the
// configured TTL.
type ProfileCacheEntry struct {
	Profile  *user.UserProfile
	CachedAt time.Time
}

// IsFresh reports whether the entry is still within its TTL as of now.
func (e *ProfileCacheEntry) IsFresh(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.CachedAt) <= ttl
}

// CacheSummary reports cache occupancy for diagnostics endpoints.
type CacheSummary struct {
	Entries int       `json:"entries"`
	Oldest  time.Time `json:"oldest,omitempty"`
	Newest  time.Time `json:"newest,omitempty"`
}
