// Package navigation implements the hash-fragment router state machine.
// It maps normalized path strings to handler callbacks, driven entirely by
// fragment-change notifications from an injected Signal source, so the
// resolution algorithm is testable without a browser-like environment.
package navigation

import "sync"

// Signal is the navigation-signal source: the URL fragment of a page in the
// original environment, an in-memory value here. Writing through
// SetFragment notifies subscribers; RestoreFragment writes silently, which
// is how a cancelled transition rolls back without re-triggering resolution.
type Signal interface {
	Fragment() string
	SetFragment(fragment string)
	RestoreFragment(fragment string)
	OnChange(fn func()) (unsubscribe func())
}

// MemorySignal is the in-process Signal implementation backing each shell.
type MemorySignal struct {
	mu          sync.Mutex
	fragment    string
	subscribers map[int]func()
	nextID      int
}

// NewMemorySignal creates a signal with an empty fragment.
func NewMemorySignal() *MemorySignal {
	return &MemorySignal{subscribers: make(map[int]func())}
}

// Fragment returns the current fragment value.
func (s *MemorySignal) Fragment() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fragment
}

// SetFragment stores the fragment and notifies subscribers. Writing the
// value already held is a no-op, matching browser hashchange semantics.
func (s *MemorySignal) SetFragment(fragment string) {
	s.mu.Lock()
	if s.fragment == fragment {
		s.mu.Unlock()
		return
	}
	s.fragment = fragment
	subs := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// RestoreFragment stores the fragment without notifying anyone.
func (s *MemorySignal) RestoreFragment(fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragment = fragment
}

// OnChange registers a change callback and returns an unsubscribe closure.
func (s *MemorySignal) OnChange(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}
