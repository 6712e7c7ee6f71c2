package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/results"
	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/persistence/store"
)

func testDirectory(t *testing.T) *Directory {
	t.Helper()
	return NewDirectory(store.NewMemoryStore(0), logging.NewTestLogger())
}

func TestDirectory_RegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	dir := testDirectory(t)

	account, err := dir.Register(ctx, "alice@example.com", "correct horse", "Alice")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if account.UID == "" {
		t.Error("expected a generated uid")
	}
	if account.PasswordHash == "correct horse" {
		t.Error("password stored in the clear")
	}

	authed, err := dir.Authenticate(ctx, "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if authed.UID != account.UID {
		t.Errorf("authenticated as %s, registered as %s", authed.UID, account.UID)
	}

	// Email lookup is case-insensitive.
	if _, err := dir.Authenticate(ctx, "ALICE@example.com", "correct horse"); err != nil {
		t.Errorf("case-insensitive lookup failed: %v", err)
	}
}

func TestDirectory_RejectsWrongPassword(t *testing.T) {
	ctx := context.Background()
	dir := testDirectory(t)
	if _, err := dir.Register(ctx, "alice@example.com", "correct horse", "Alice"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := dir.Authenticate(ctx, "alice@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	_, err = dir.Authenticate(ctx, "nobody@example.com", "irrelevant")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email should fail identically, got %v", err)
	}
}

func TestDirectory_RejectsDuplicateAndWeak(t *testing.T) {
	ctx := context.Background()
	dir := testDirectory(t)
	if _, err := dir.Register(ctx, "alice@example.com", "correct horse", "Alice"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := dir.Register(ctx, "Alice@Example.com", "another pass", "Alice Again")
	if !errors.Is(err, ErrAccountExists) {
		t.Errorf("expected ErrAccountExists, got %v", err)
	}

	_, err = dir.Register(ctx, "bob@example.com", "short", "Bob")
	if !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

func TestDirectory_EncryptsEmailAtRest(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore(0)
	dir := NewDirectory(kv, logging.NewTestLogger())
	dir.aesKey = "0123456789abcdef0123456789abcdef"

	if _, err := dir.Register(ctx, "alice@example.com", "correct horse", "Alice"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	keys, _ := kv.Keys(ctx, "")
	if len(keys) != 1 {
		t.Fatalf("expected one stored account, got %d", len(keys))
	}
	raw, _, _ := kv.Get(ctx, keys[0])
	if containsSubstring(raw, "alice@example.com") {
		t.Error("email is readable in the stored record")
	}

	authed, err := dir.Authenticate(ctx, "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if authed.Email != "alice@example.com" {
		t.Errorf("email did not decrypt on load: %s", authed.Email)
	}
}

func containsSubstring(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func TestLocalProvider_SignInLifecycle(t *testing.T) {
	ctx := context.Background()
	dir := testDirectory(t)
	if _, err := dir.Register(ctx, "alice@example.com", "correct horse", "Alice"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	provider := NewLocalProvider(dir, logging.NewTestLogger())
	if provider.Current() != nil {
		t.Fatal("fresh provider should be signed out")
	}

	var transitions []bool
	provider.OnChange(func(u *user.AuthUser) {
		transitions = append(transitions, u != nil)
	})

	signedIn := provider.SignIn(ctx, "alice@example.com", "correct horse")
	if !signedIn.Ok {
		t.Fatalf("SignIn failed: %s (%s)", signedIn.Error, signedIn.Code)
	}
	if provider.Current() == nil || provider.Current().Email != "alice@example.com" {
		t.Errorf("Current should reflect the signed-in user, got %+v", provider.Current())
	}

	signedOut := provider.SignOut(ctx)
	if !signedOut.Ok || !signedOut.Data {
		t.Errorf("SignOut should report a prior session, got %+v", signedOut)
	}
	if provider.Current() != nil {
		t.Error("Current should be nil after sign-out")
	}

	want := []bool{true, false}
	if len(transitions) != len(want) {
		t.Fatalf("expected %d transitions, got %d", len(want), len(transitions))
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d: expected signed-in=%v, got %v", i, want[i], transitions[i])
		}
	}
}

func TestLocalProvider_BadCredentialsLeaveStateUntouched(t *testing.T) {
	ctx := context.Background()
	dir := testDirectory(t)
	if _, err := dir.Register(ctx, "alice@example.com", "correct horse", "Alice"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	provider := NewLocalProvider(dir, logging.NewTestLogger())
	fired := 0
	provider.OnChange(func(*user.AuthUser) { fired++ })

	attempt := provider.SignIn(ctx, "alice@example.com", "wrong")
	if attempt.Ok || attempt.Code != results.CodeInvalidUser {
		t.Errorf("expected INVALID_USER failure, got ok=%v code=%s", attempt.Ok, attempt.Code)
	}
	if provider.Current() != nil {
		t.Error("failed sign-in must not change state")
	}
	if fired != 0 {
		t.Errorf("failed sign-in must not notify listeners, got %d calls", fired)
	}
}

func TestLocalProvider_PanickingListenerIsIsolated(t *testing.T) {
	ctx := context.Background()
	dir := testDirectory(t)
	if _, err := dir.Register(ctx, "alice@example.com", "correct horse", "Alice"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	provider := NewLocalProvider(dir, logging.NewTestLogger())
	provider.OnChange(func(*user.AuthUser) { panic("listener bug") })
	survived := false
	provider.OnChange(func(*user.AuthUser) { survived = true })

	if signedIn := provider.SignIn(ctx, "alice@example.com", "correct horse"); !signedIn.Ok {
		t.Fatalf("SignIn failed: %s", signedIn.Error)
	}
	if !survived {
		t.Error("a panicking listener starved the listeners after it")
	}
}

func TestLocalProvider_UnsubscribeStopsNotifications(t *testing.T) {
	ctx := context.Background()
	dir := testDirectory(t)
	if _, err := dir.Register(ctx, "alice@example.com", "correct horse", "Alice"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	provider := NewLocalProvider(dir, logging.NewTestLogger())
	fired := 0
	unsubscribe := provider.OnChange(func(*user.AuthUser) { fired++ })
	unsubscribe()

	provider.SignIn(ctx, "alice@example.com", "correct horse")
	if fired != 0 {
		t.Errorf("unsubscribed listener was notified %d times", fired)
	}
}

func TestLocalProvider_ProvidersAreIsolated(t *testing.T) {
	ctx := context.Background()
	dir := testDirectory(t)
	if _, err := dir.Register(ctx, "alice@example.com", "correct horse", "Alice"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	shellA := NewLocalProvider(dir, logging.NewTestLogger())
	shellB := NewLocalProvider(dir, logging.NewTestLogger())

	if signedIn := shellA.SignIn(ctx, "alice@example.com", "correct horse"); !signedIn.Ok {
		t.Fatalf("SignIn failed: %s", signedIn.Error)
	}
	if shellB.Current() != nil {
		t.Error("sign-in on one shell leaked into another")
	}
}
