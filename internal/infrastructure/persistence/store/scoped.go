package store

import (
	"context"
	"strings"
)

// ScopedStore namespaces every key under a scope segment. Shells use it
// to keep per-shell state (like the auth hint) isolated while sharing
// one physical backend.
type ScopedStore struct {
	inner Store
	scope string
}

// NewScoped wraps the store so all keys live under the given scope.
func NewScoped(inner Store, scope string) *ScopedStore {
	return &ScopedStore{inner: inner, scope: scope}
}

func (s *ScopedStore) qualify(key string) string {
	return s.scope + "|" + key
}

func (s *ScopedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.qualify(key))
}

func (s *ScopedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.qualify(key), value)
}

func (s *ScopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.qualify(key))
}

// Keys returns the scope's keys with the scope segment stripped.
func (s *ScopedStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	qualified, err := s.inner.Keys(ctx, s.qualify(prefix))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(qualified))
	for _, k := range qualified {
		keys = append(keys, strings.TrimPrefix(k, s.scope+"|"))
	}
	return keys, nil
}
