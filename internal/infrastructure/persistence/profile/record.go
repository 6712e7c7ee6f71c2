// Package profile implements the ProfileRepository on top of the
// key-value store. Records are stored one per key under the
// application prefix, serialized as flat JSON documents.
package profile

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
)

// timestampLayout is ISO-8601 with millisecond precision. Persisted
// timestamps round-trip exactly at this precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// profileRecord is the serialized shape of a stored profile. Timestamps
// are strings so the stored document stays portable across backends.
type profileRecord struct {
	UID         string           `json:"uid"`
	Email       string           `json:"email"`
	DisplayName string           `json:"displayName"`
	PhotoURL    *string          `json:"photoURL,omitempty"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
	Preferences user.Preferences `json:"preferences"`
}

func serializeProfile(p *user.UserProfile) (string, error) {
	record := profileRecord{
		UID:         p.UID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
		CreatedAt:   p.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:   p.UpdatedAt.UTC().Format(timestampLayout),
		Preferences: p.Preferences,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to serialize profile %s: %w", p.UID, err)
	}
	return string(data), nil
}

func deserializeProfile(raw string) (*user.UserProfile, error) {
	var record profileRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("failed to parse stored profile: %w", err)
	}

	createdAt, err := time.Parse(timestampLayout, record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid createdAt in stored profile: %w", err)
	}
	updatedAt, err := time.Parse(timestampLayout, record.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updatedAt in stored profile: %w", err)
	}

	return &user.UserProfile{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		PhotoURL:    record.PhotoURL,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Preferences: record.Preferences,
	}, nil
}
