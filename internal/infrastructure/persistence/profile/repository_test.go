package profile

import (
	"context"
	"testing"
	"time"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/results"
	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/persistence/store"
)

func strPtr(s string) *string { return &s }

func testRepository(t *testing.T, maxEntries int) *StoreRepository {
	t.Helper()
	return NewStoreRepository(store.NewMemoryStore(maxEntries), logging.NewTestLogger())
}

func testProfile(uid string) *user.UserProfile {
	created := time.Date(2025, 6, 15, 10, 30, 0, 123_000_000, time.UTC)
	return &user.UserProfile{
		UID:         uid,
		Email:       uid + "@example.com",
		DisplayName: "Test User",
		CreatedAt:   created,
		UpdatedAt:   created,
		Preferences: user.DefaultPreferences(),
	}
}

func TestStoreRepository_SaveAndFindRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := testRepository(t, 0)
	original := testProfile("u1")
	original.PhotoURL = strPtr("https://example.com/u1.png")

	saved := repo.Save(ctx, original)
	if !saved.Ok {
		t.Fatalf("Save failed: %s (%s)", saved.Error, saved.Code)
	}

	found := repo.FindByID(ctx, "u1")
	if !found.Ok {
		t.Fatalf("FindByID failed: %s", found.Error)
	}
	got := found.Data
	if got == nil {
		t.Fatal("expected a profile, got nil")
	}
	if got.UID != "u1" || got.Email != "u1@example.com" || got.DisplayName != "Test User" {
		t.Errorf("round-trip lost fields: %+v", got)
	}
	if got.PhotoURL == nil || *got.PhotoURL != "https://example.com/u1.png" {
		t.Errorf("round-trip lost photoURL: %v", got.PhotoURL)
	}
	if !got.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("createdAt did not round-trip at ms precision: want %v, got %v", original.CreatedAt, got.CreatedAt)
	}
	if got.Preferences != original.Preferences {
		t.Errorf("preferences did not round-trip: %+v", got.Preferences)
	}
}

func TestStoreRepository_FindMissingReturnsNilSuccess(t *testing.T) {
	repo := testRepository(t, 0)
	found := repo.FindByID(context.Background(), "nobody")
	if !found.Ok {
		t.Fatalf("lookup of absent uid must succeed, got %s", found.Error)
	}
	if found.Data != nil {
		t.Errorf("expected nil profile, got %+v", found.Data)
	}
}

func TestStoreRepository_EmptyUIDFails(t *testing.T) {
	ctx := context.Background()
	repo := testRepository(t, 0)

	checks := map[string]string{
		"FindByID": repo.FindByID(ctx, "").Code,
		"Update":   repo.Update(ctx, "", &user.ProfileUpdate{}).Code,
		"Delete":   repo.Delete(ctx, "").Code,
		"Exists":   repo.Exists(ctx, "").Code,
	}
	for op, code := range checks {
		if code != results.CodeInvalidUID {
			t.Errorf("%s with empty uid: expected INVALID_UID, got %s", op, code)
		}
	}
}

func TestStoreRepository_SaveRejectsInvalidShape(t *testing.T) {
	repo := testRepository(t, 0)
	bad := testProfile("u1")
	bad.Preferences.Theme = "neon"

	saved := repo.Save(context.Background(), bad)
	if saved.Ok || saved.Code != results.CodeValidationError {
		t.Errorf("expected VALIDATION_ERROR, got ok=%v code=%s", saved.Ok, saved.Code)
	}
}

func TestStoreRepository_UpdateMergesWithoutDroppingFields(t *testing.T) {
	ctx := context.Background()
	repo := testRepository(t, 0)
	if saved := repo.Save(ctx, testProfile("u1")); !saved.Ok {
		t.Fatalf("Save failed: %s", saved.Error)
	}

	theme := user.ThemeDark
	updated := repo.Update(ctx, "u1", &user.ProfileUpdate{
		Preferences: &user.PreferencesUpdate{Theme: &theme},
	})
	if !updated.Ok {
		t.Fatalf("Update failed: %s (%s)", updated.Error, updated.Code)
	}
	if updated.Data.Preferences.Theme != user.ThemeDark {
		t.Errorf("theme not updated: %s", updated.Data.Preferences.Theme)
	}
	if !updated.Data.Preferences.EmailNotifications {
		t.Error("merge dropped emailNotifications")
	}
	if updated.Data.Email != "u1@example.com" {
		t.Errorf("merge dropped email: %s", updated.Data.Email)
	}
	if !updated.Data.UpdatedAt.After(updated.Data.CreatedAt) {
		t.Error("update did not re-stamp updatedAt")
	}
}

func TestStoreRepository_UpdateCannotReassignUID(t *testing.T) {
	ctx := context.Background()
	repo := testRepository(t, 0)
	if saved := repo.Save(ctx, testProfile("u1")); !saved.Ok {
		t.Fatalf("Save failed: %s", saved.Error)
	}

	updated := repo.Update(ctx, "u1", &user.ProfileUpdate{UID: strPtr("attacker")})
	if !updated.Ok {
		t.Fatalf("Update failed: %s", updated.Error)
	}
	if updated.Data.UID != "u1" {
		t.Errorf("uid was reassigned to %s", updated.Data.UID)
	}
	if stray := repo.FindByID(ctx, "attacker"); stray.Data != nil {
		t.Error("update created a record under the supplied uid")
	}
}

func TestStoreRepository_UpdateMissingReturnsNotFound(t *testing.T) {
	repo := testRepository(t, 0)
	updated := repo.Update(context.Background(), "ghost", &user.ProfileUpdate{DisplayName: strPtr("x")})
	if updated.Ok || updated.Code != results.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got ok=%v code=%s", updated.Ok, updated.Code)
	}
}

func TestStoreRepository_UpdatePropagatesReadFailure(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore(0)
	repo := NewStoreRepository(kv, logging.NewTestLogger())

	if err := kv.Set(ctx, profileKey("u1"), "{corrupt"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	theme := user.ThemeDark
	updated := repo.Update(ctx, "u1", &user.ProfileUpdate{Preferences: &user.PreferencesUpdate{Theme: &theme}})
	if updated.Ok {
		t.Fatal("update over a corrupted record should fail")
	}
	if updated.Code != results.CodeReadError {
		t.Errorf("Code = %q, want %q", updated.Code, results.CodeReadError)
	}
}

func TestStoreRepository_DeleteAndExists(t *testing.T) {
	ctx := context.Background()
	repo := testRepository(t, 0)
	if saved := repo.Save(ctx, testProfile("u1")); !saved.Ok {
		t.Fatalf("Save failed: %s", saved.Error)
	}

	if exists := repo.Exists(ctx, "u1"); !exists.Ok || !exists.Data {
		t.Errorf("expected profile to exist, got ok=%v data=%v", exists.Ok, exists.Data)
	}

	if deleted := repo.Delete(ctx, "u1"); !deleted.Ok {
		t.Fatalf("Delete failed: %s", deleted.Error)
	}

	if exists := repo.Exists(ctx, "u1"); !exists.Ok || exists.Data {
		t.Errorf("expected profile to be gone, got ok=%v data=%v", exists.Ok, exists.Data)
	}

	// Deleting again is still a success.
	if deleted := repo.Delete(ctx, "u1"); !deleted.Ok {
		t.Errorf("repeat delete should succeed, got %s", deleted.Error)
	}
}

func TestStoreRepository_SaveSurfacesQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	repo := testRepository(t, 1)
	if saved := repo.Save(ctx, testProfile("u1")); !saved.Ok {
		t.Fatalf("Save failed: %s", saved.Error)
	}

	saved := repo.Save(ctx, testProfile("u2"))
	if saved.Ok || saved.Code != results.CodeQuotaExceeded {
		t.Errorf("expected QUOTA_EXCEEDED, got ok=%v code=%s", saved.Ok, saved.Code)
	}

	// The existing record can still be overwritten at capacity.
	if saved := repo.Save(ctx, testProfile("u1")); !saved.Ok {
		t.Errorf("overwrite at capacity should succeed, got %s", saved.Error)
	}
}

func TestStoreRepository_SavedCopyIsIndependent(t *testing.T) {
	ctx := context.Background()
	repo := testRepository(t, 0)
	original := testProfile("u1")

	saved := repo.Save(ctx, original)
	if !saved.Ok {
		t.Fatalf("Save failed: %s", saved.Error)
	}

	saved.Data.DisplayName = "Mutated"
	found := repo.FindByID(ctx, "u1")
	if found.Data.DisplayName != "Test User" {
		t.Error("mutating the returned copy changed the stored record")
	}
}
