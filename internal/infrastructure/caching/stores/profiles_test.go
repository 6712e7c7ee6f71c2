package stores

import (
	"testing"
	"time"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
)

func cachedProfile(uid string) *user.UserProfile {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	return &user.UserProfile{
		UID:         uid,
		Email:       uid + "@example.com",
		DisplayName: "Cached User",
		CreatedAt:   now,
		UpdatedAt:   now,
		Preferences: user.DefaultPreferences(),
	}
}

func TestProfileStore_HitWithinTTL(t *testing.T) {
	store := NewProfileStore(5*time.Minute, logging.NewTestLogger())
	store.Set("u1", cachedProfile("u1"))

	got, hit := store.Get("u1")
	if !hit {
		t.Fatal("expected cache hit")
	}
	if got.UID != "u1" {
		t.Errorf("wrong profile returned: %s", got.UID)
	}
}

func TestProfileStore_ExpiryEvictsOnRead(t *testing.T) {
	store := NewProfileStore(5*time.Minute, logging.NewTestLogger())

	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	current := base
	store.now = func() time.Time { return current }

	store.Set("u1", cachedProfile("u1"))

	// Just inside the TTL.
	current = base.Add(5 * time.Minute)
	if _, hit := store.Get("u1"); !hit {
		t.Error("entry at exactly the TTL boundary should still be fresh")
	}

	// Past the TTL.
	current = base.Add(5*time.Minute + time.Second)
	if _, hit := store.Get("u1"); hit {
		t.Error("expired entry should miss")
	}

	if summary := store.Summary(); summary.Entries != 0 {
		t.Errorf("expired entry should be evicted on read, %d entries remain", summary.Entries)
	}
}

func TestProfileStore_SetRefreshesCaptureTime(t *testing.T) {
	store := NewProfileStore(5*time.Minute, logging.NewTestLogger())

	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	current := base
	store.now = func() time.Time { return current }

	store.Set("u1", cachedProfile("u1"))
	current = base.Add(4 * time.Minute)
	store.Set("u1", cachedProfile("u1"))

	current = base.Add(8 * time.Minute)
	if _, hit := store.Get("u1"); !hit {
		t.Error("re-set entry should be fresh relative to the second capture")
	}
}

func TestProfileStore_ReturnsClones(t *testing.T) {
	store := NewProfileStore(5*time.Minute, logging.NewTestLogger())
	original := cachedProfile("u1")
	store.Set("u1", original)

	original.DisplayName = "Mutated After Set"
	got, _ := store.Get("u1")
	if got.DisplayName != "Cached User" {
		t.Error("mutating the source profile changed the cached copy")
	}

	got.DisplayName = "Mutated After Get"
	again, _ := store.Get("u1")
	if again.DisplayName != "Cached User" {
		t.Error("mutating a returned copy changed the cached copy")
	}
}

func TestProfileStore_InvalidateAndClear(t *testing.T) {
	store := NewProfileStore(5*time.Minute, logging.NewTestLogger())
	store.Set("u1", cachedProfile("u1"))
	store.Set("u2", cachedProfile("u2"))

	store.Invalidate("u1")
	if _, hit := store.Get("u1"); hit {
		t.Error("invalidated entry should miss")
	}
	if _, hit := store.Get("u2"); !hit {
		t.Error("invalidate should not touch other entries")
	}

	store.Clear()
	if summary := store.Summary(); summary.Entries != 0 {
		t.Errorf("clear left %d entries", summary.Entries)
	}
}
