// Package user defines the profile entities and the repository interface
// for accessing them. The repository abstracts the data persistence
// details, ensuring the core application is clean and decoupled from the
// storage backend.
package user

import "time"

// Theme values accepted in preferences.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Preferences holds a user's durable UI preferences. Always present on a
// profile; defaults are injected at creation time.
type Preferences struct {
	Theme              string `json:"theme"`
	EmailNotifications bool   `json:"emailNotifications"`
}

// DefaultPreferences returns the preferences a freshly created profile gets.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:              ThemeSystem,
		EmailNotifications: true,
	}
}

// UserProfile represents one authenticated user's durable profile record.
type UserProfile struct {
	UID         string      `json:"uid"`
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	PhotoURL    *string     `json:"photoURL,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Preferences Preferences `json:"preferences"`
}

// Clone returns a deep copy so cached profiles cannot be mutated by callers.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.PhotoURL != nil {
		v := *p.PhotoURL
		cp.PhotoURL = &v
	}
	return &cp
}

// AuthUser is the identity provider's view of a signed-in user.
type AuthUser struct {
	UID         string  `json:"uid"`
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName"`
	PhotoURL    *string `json:"photoURL,omitempty"`
}

// NewProfile builds a profile for an auth user with default preferences.
// CreatedAt and UpdatedAt are stamped with the same instant.
func NewProfile(authUser *AuthUser, now time.Time) *UserProfile {
	profile := &UserProfile{
		UID:         authUser.UID,
		Email:       authUser.Email,
		DisplayName: authUser.DisplayName,
		CreatedAt:   now,
		UpdatedAt:   now,
		Preferences: DefaultPreferences(),
	}
	if authUser.PhotoURL != nil {
		v := *authUser.PhotoURL
		profile.PhotoURL = &v
	}
	return profile
}

// ValidationIssue identifies the first field that failed validation.
type ValidationIssue struct {
	Field   string
	Message string
}

// Validate checks the full profile shape. Returns nil when valid.
func (p *UserProfile) Validate() *ValidationIssue {
	if p == nil {
		return &ValidationIssue{Field: "profile", Message: "profile is required"}
	}
	if p.UID == "" {
		return &ValidationIssue{Field: "uid", Message: "uid must be a non-empty string"}
	}
	switch p.Preferences.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return &ValidationIssue{Field: "preferences.theme", Message: "theme must be one of light, dark, system"}
	}
	if p.CreatedAt.IsZero() {
		return &ValidationIssue{Field: "createdAt", Message: "createdAt must be set"}
	}
	if p.UpdatedAt.Before(p.CreatedAt) {
		return &ValidationIssue{Field: "updatedAt", Message: "updatedAt must not precede createdAt"}
	}
	return nil
}

// PreferencesUpdate carries a partial preferences mutation. Nil fields are
// left untouched by the merge so a single-key update never drops the others.
type PreferencesUpdate struct {
	Theme              *string `json:"theme,omitempty"`
	EmailNotifications *bool   `json:"emailNotifications,omitempty"`
}

// ProfileUpdate carries a partial profile mutation. A UID supplied here is
// always discarded by the repository; identity can never be reassigned
// through an update.
type ProfileUpdate struct {
	UID         *string            `json:"uid,omitempty"`
	Email       *string            `json:"email,omitempty"`
	DisplayName *string            `json:"displayName,omitempty"`
	PhotoURL    *string            `json:"photoURL,omitempty"`
	Preferences *PreferencesUpdate `json:"preferences,omitempty"`
}

// ApplyTo merges the partial update into a copy of the given profile. The
// uid is force-overwritten back to the original and preferences are merged
// key by key rather than replaced.
func (u *ProfileUpdate) ApplyTo(existing *UserProfile, now time.Time) *UserProfile {
	merged := existing.Clone()
	if u.Email != nil {
		merged.Email = *u.Email
	}
	if u.DisplayName != nil {
		merged.DisplayName = *u.DisplayName
	}
	if u.PhotoURL != nil {
		v := *u.PhotoURL
		merged.PhotoURL = &v
	}
	if u.Preferences != nil {
		if u.Preferences.Theme != nil {
			merged.Preferences.Theme = *u.Preferences.Theme
		}
		if u.Preferences.EmailNotifications != nil {
			merged.Preferences.EmailNotifications = *u.Preferences.EmailNotifications
		}
	}
	merged.UID = existing.UID
	merged.UpdatedAt = now
	return merged
}

// AuthHint is the synchronously-available snapshot of the last known auth
// state, persisted across reloads for optimistic first render. It is a UX
// affordance only and never feeds an authorization decision.
type AuthHint struct {
	IsAuthenticated bool    `json:"isAuthenticated"`
	DisplayName     *string `json:"displayName"`
	PhotoURL        *string `json:"photoURL"`
}
