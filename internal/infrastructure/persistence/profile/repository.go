package profile

import (
	"context"
	"errors"
	"time"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/results"
	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/persistence/store"
	"github.com/AtRiskMedia/profilestack-go/pkg/config"
)

// StoreRepository persists UserProfile records in the key-value store
// under <prefix>_user_profile_<uid>. It is the boundary that converts
// raw storage failures into Result failure codes.
type StoreRepository struct {
	store  store.Store
	logger *logging.ChanneledLogger
	now    func() time.Time
}

// NewStoreRepository creates a store-backed profile repository.
func NewStoreRepository(kv store.Store, logger *logging.ChanneledLogger) *StoreRepository {
	return &StoreRepository{
		store:  kv,
		logger: logger,
		now:    time.Now,
	}
}

func profileKey(uid string) string {
	return config.AppPrefix + "_user_profile_" + uid
}

// ProfileKeyPrefix returns the key prefix shared by all profile records.
func ProfileKeyPrefix() string {
	return config.AppPrefix + "_user_profile_"
}

// FindByID returns the stored profile, or a successful nil result when no
// record exists for the uid.
func (r *StoreRepository) FindByID(ctx context.Context, uid string) results.Result[*user.UserProfile] {
	if uid == "" {
		return results.Failure[*user.UserProfile]("uid must be a non-empty string", results.CodeInvalidUID)
	}

	start := time.Now()
	r.logger.Profile().Debug("Loading profile", "uid", r.logger.SanitizeUID(uid))

	raw, found, err := r.store.Get(ctx, profileKey(uid))
	if err != nil {
		r.logger.Profile().Error("Profile read failed", "error", err.Error(), "uid", r.logger.SanitizeUID(uid))
		return results.Failure[*user.UserProfile]("failed to read profile", results.CodeReadError)
	}
	if !found {
		r.logger.Profile().Debug("Profile not found", "uid", r.logger.SanitizeUID(uid), "duration", time.Since(start))
		return results.Success[*user.UserProfile](nil)
	}

	profile, err := deserializeProfile(raw)
	if err != nil {
		r.logger.Profile().Error("Stored profile is corrupted", "error", err.Error(), "uid", r.logger.SanitizeUID(uid))
		return results.Failure[*user.UserProfile]("stored profile is corrupted", results.CodeReadError)
	}

	r.logger.Profile().Debug("Profile loaded", "uid", r.logger.SanitizeUID(uid), "duration", time.Since(start))
	return results.Success(profile)
}

// Save validates and persists the full profile, returning the saved copy.
func (r *StoreRepository) Save(ctx context.Context, profile *user.UserProfile) results.Result[*user.UserProfile] {
	if profile == nil {
		return results.Failure[*user.UserProfile]("profile is required", results.CodeValidationError)
	}
	if issue := profile.Validate(); issue != nil {
		return results.Failure[*user.UserProfile](issue.Field+": "+issue.Message, results.CodeValidationError)
	}

	raw, err := serializeProfile(profile)
	if err != nil {
		return results.Failure[*user.UserProfile]("failed to serialize profile", results.CodeSaveError)
	}

	if err := r.store.Set(ctx, profileKey(profile.UID), raw); err != nil {
		if errors.Is(err, store.ErrQuotaExceeded) {
			r.logger.Profile().Error("Profile save rejected, storage quota exceeded", "uid", r.logger.SanitizeUID(profile.UID))
			return results.Failure[*user.UserProfile]("storage quota exceeded", results.CodeQuotaExceeded)
		}
		r.logger.Profile().Error("Profile save failed", "error", err.Error(), "uid", r.logger.SanitizeUID(profile.UID))
		return results.Failure[*user.UserProfile]("failed to save profile", results.CodeSaveError)
	}

	r.logger.Profile().Info("Profile saved", "uid", r.logger.SanitizeUID(profile.UID))
	return results.Success(profile.Clone())
}

// Update merges a partial update into the existing record and persists the
// merged profile. The uid can never be reassigned through an update.
func (r *StoreRepository) Update(ctx context.Context, uid string, partial *user.ProfileUpdate) results.Result[*user.UserProfile] {
	if uid == "" {
		return results.Failure[*user.UserProfile]("uid must be a non-empty string", results.CodeInvalidUID)
	}
	if partial == nil {
		return results.Failure[*user.UserProfile]("update payload is required", results.CodeValidationError)
	}

	existing := r.FindByID(ctx, uid)
	if !existing.Ok {
		return results.Propagate[*user.UserProfile](existing)
	}
	if existing.Data == nil {
		return results.Failure[*user.UserProfile]("no profile exists for uid", results.CodeNotFound)
	}

	merged := partial.ApplyTo(existing.Data, r.now())
	if issue := merged.Validate(); issue != nil {
		return results.Failure[*user.UserProfile](issue.Field+": "+issue.Message, results.CodeValidationError)
	}

	raw, err := serializeProfile(merged)
	if err != nil {
		return results.Failure[*user.UserProfile]("failed to serialize profile", results.CodeUpdateError)
	}

	if err := r.store.Set(ctx, profileKey(uid), raw); err != nil {
		if errors.Is(err, store.ErrQuotaExceeded) {
			return results.Failure[*user.UserProfile]("storage quota exceeded", results.CodeQuotaExceeded)
		}
		r.logger.Profile().Error("Profile update failed", "error", err.Error(), "uid", r.logger.SanitizeUID(uid))
		return results.Failure[*user.UserProfile]("failed to update profile", results.CodeUpdateError)
	}

	r.logger.Profile().Info("Profile updated", "uid", r.logger.SanitizeUID(uid))
	return results.Success(merged)
}

// Delete removes the record for the uid. Deleting an absent record succeeds.
func (r *StoreRepository) Delete(ctx context.Context, uid string) results.Result[bool] {
	if uid == "" {
		return results.Failure[bool]("uid must be a non-empty string", results.CodeInvalidUID)
	}

	if err := r.store.Delete(ctx, profileKey(uid)); err != nil {
		r.logger.Profile().Error("Profile delete failed", "error", err.Error(), "uid", r.logger.SanitizeUID(uid))
		return results.Failure[bool]("failed to delete profile", results.CodeDeleteError)
	}

	r.logger.Profile().Info("Profile deleted", "uid", r.logger.SanitizeUID(uid))
	return results.Success(true)
}

// Exists reports whether a record exists for the uid.
func (r *StoreRepository) Exists(ctx context.Context, uid string) results.Result[bool] {
	if uid == "" {
		return results.Failure[bool]("uid must be a non-empty string", results.CodeInvalidUID)
	}

	_, found, err := r.store.Get(ctx, profileKey(uid))
	if err != nil {
		r.logger.Profile().Error("Profile existence check failed", "error", err.Error(), "uid", r.logger.SanitizeUID(uid))
		return results.Failure[bool]("failed to check profile existence", results.CodeExistsError)
	}
	return results.Success(found)
}
