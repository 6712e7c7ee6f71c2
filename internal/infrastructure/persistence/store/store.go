// Package store provides the namespaced key-value storage the profile
// repository and auth hint persist through. The interface mirrors the
// durable storage surface of the original environment: flat string keys,
// JSON text values, and a quota error when the backend runs out of room.
package store

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned by Set when the backend has no capacity
// left. The repository boundary maps it to a QUOTA_EXCEEDED failure.
var ErrQuotaExceeded = errors.New("store: quota exceeded")

// Store defines durable key-value operations.
type Store interface {
	// Get returns the value for key, with found=false when absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set writes the value for key, creating or overwriting.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all stored keys with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
