package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10)

	if err := s.Set(ctx, "a", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, found, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found || value != "1" {
		t.Errorf("expected (1, true), got (%s, %v)", value, found)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, found, err = s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get after delete failed: %v", err)
	}
	if found {
		t.Error("expected key to be gone after delete")
	}
}

func TestMemoryStore_DeleteAbsentKeyIsNoOp(t *testing.T) {
	s := NewMemoryStore(10)
	if err := s.Delete(context.Background(), "never-set"); err != nil {
		t.Errorf("deleting an absent key should not error, got %v", err)
	}
}

func TestMemoryStore_QuotaExceeded(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)

	if err := s.Set(ctx, "a", "1"); err != nil {
		t.Fatalf("Set a failed: %v", err)
	}
	if err := s.Set(ctx, "b", "2"); err != nil {
		t.Fatalf("Set b failed: %v", err)
	}

	err := s.Set(ctx, "c", "3")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded for insert past cap, got %v", err)
	}

	// Overwrites of existing keys never count against capacity.
	if err := s.Set(ctx, "a", "updated"); err != nil {
		t.Errorf("overwrite at capacity should succeed, got %v", err)
	}

	value, found, _ := s.Get(ctx, "a")
	if !found || value != "updated" {
		t.Errorf("expected overwrite to land, got (%s, %v)", value, found)
	}
}

func TestMemoryStore_QuotaFreedByDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(1)

	if err := s.Set(ctx, "a", "1"); err != nil {
		t.Fatalf("Set a failed: %v", err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Set(ctx, "b", "2"); err != nil {
		t.Errorf("insert after delete should succeed, got %v", err)
	}
}

func TestMemoryStore_KeysPrefixFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10)

	for i := 0; i < 3; i++ {
		if err := s.Set(ctx, fmt.Sprintf("app_user_profile_u%d", i), "{}"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := s.Set(ctx, "app_auth_hint", "{}"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	keys, err := s.Keys(ctx, "app_user_profile_")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 3 {
		t.Errorf("expected 3 profile keys, got %d: %v", len(keys), keys)
	}
	for _, k := range keys {
		if k == "app_auth_hint" {
			t.Error("prefix filter leaked an unrelated key")
		}
	}
}
