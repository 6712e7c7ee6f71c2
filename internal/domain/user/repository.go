package user

import (
	"context"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/results"
)

// ProfileRepository defines the operations for persisting UserProfile
// records. Every operation returns a Result; the implementation is the
// boundary that converts raw storage errors into failure codes, so nothing
// above it ever sees a storage error directly.
type ProfileRepository interface {
	// FindByID returns the stored profile, or a successful nil result when
	// no record exists for the uid. Fails with INVALID_UID on an empty uid.
	FindByID(ctx context.Context, uid string) results.Result[*UserProfile]

	// Save validates the full profile shape and persists it, returning the
	// saved profile. Fails with VALIDATION_ERROR when the shape is invalid.
	Save(ctx context.Context, profile *UserProfile) results.Result[*UserProfile]

	// Update reads the existing record (NOT_FOUND when absent), merges the
	// partial fields with uid forced back to the original, re-stamps
	// UpdatedAt, re-validates and persists the merged profile.
	Update(ctx context.Context, uid string, partial *ProfileUpdate) results.Result[*UserProfile]

	// Delete removes the record for the uid.
	Delete(ctx context.Context, uid string) results.Result[bool]

	// Exists reports whether a record exists for the uid.
	Exists(ctx context.Context, uid string) results.Result[bool]
}
