// Package messaging provides the state-change broadcaster that pushes
// shell-scoped events to connected stream clients.
package messaging

import (
	"encoding/json"
	"sync"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/pkg/config"
)

// Event names pushed to stream clients.
const (
	EventRouteChanged   = "route_changed"
	EventAuthChanged    = "auth_changed"
	EventProfileChanged = "profile_changed"
)

// StreamEvent is the wire shape of one pushed state change.
type StreamEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Broadcaster is the push surface the services publish into.
type Broadcaster interface {
	BroadcastRouteChange(shellID, path string)
	BroadcastAuthChange(shellID string, hint *user.AuthHint)
	BroadcastProfileChange(shellID string, profile *user.UserProfile)
}

// StateBroadcaster manages shell-scoped stream connections. Each shell
// may hold several concurrent streams (tabs); sends never block, a slow
// client just drops events past its buffer.
type StateBroadcaster struct {
	shellClients map[string][]chan string
	maxPerShell  int
	mu           sync.Mutex
	logger       *logging.ChanneledLogger
}

// NewStateBroadcaster creates a broadcaster with the configured per-shell
// stream cap.
func NewStateBroadcaster(logger *logging.ChanneledLogger) *StateBroadcaster {
	return &StateBroadcaster{
		shellClients: make(map[string][]chan string),
		maxPerShell:  config.MaxStreamsPerShell,
		logger:       logger,
	}
}

// AddClient registers a new stream client for a shell. Returns nil when
// the shell is already at its stream cap.
func (b *StateBroadcaster) AddClient(shellID string) chan string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.maxPerShell > 0 && len(b.shellClients[shellID]) >= b.maxPerShell {
		b.logger.Stream().Warn("Stream rejected, shell at capacity", "shellId", shellID, "limit", b.maxPerShell)
		return nil
	}

	ch := make(chan string, 10)
	b.shellClients[shellID] = append(b.shellClients[shellID], ch)
	b.logger.Stream().Debug("Stream client registered", "shellId", shellID, "streams", len(b.shellClients[shellID]))
	return ch
}

// RemoveClient unregisters a stream client and closes its channel.
func (b *StateBroadcaster) RemoveClient(ch chan string, shellID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clients, exists := b.shellClients[shellID]
	if !exists {
		return
	}

	found := false
	remaining := make([]chan string, 0, len(clients))
	for _, client := range clients {
		if client != ch {
			remaining = append(remaining, client)
		} else {
			found = true
		}
	}
	if !found {
		return
	}
	if len(remaining) == 0 {
		delete(b.shellClients, shellID)
	} else {
		b.shellClients[shellID] = remaining
	}
	close(ch)

	b.logger.Stream().Debug("Stream client unregistered", "shellId", shellID, "streams", len(remaining))
}

// ConnectionCount returns the number of live streams for a shell.
func (b *StateBroadcaster) ConnectionCount(shellID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.shellClients[shellID])
}

// BroadcastRouteChange pushes the committed route to the shell's streams.
func (b *StateBroadcaster) BroadcastRouteChange(shellID, path string) {
	b.broadcast(shellID, StreamEvent{Event: EventRouteChanged, Data: map[string]string{"path": path}})
}

// BroadcastAuthChange pushes the new auth hint to the shell's streams.
func (b *StateBroadcaster) BroadcastAuthChange(shellID string, hint *user.AuthHint) {
	b.broadcast(shellID, StreamEvent{Event: EventAuthChanged, Data: hint})
}

// BroadcastProfileChange pushes the updated profile to the shell's streams.
func (b *StateBroadcaster) BroadcastProfileChange(shellID string, profile *user.UserProfile) {
	b.broadcast(shellID, StreamEvent{Event: EventProfileChanged, Data: profile})
}

func (b *StateBroadcaster) broadcast(shellID string, event StreamEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Stream().Error("Panic recovered during broadcast", "error", r, "shellId", shellID)
		}
	}()

	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Stream().Error("Failed to serialize stream event", "error", err.Error(), "event", event.Event)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, client := range b.shellClients[shellID] {
		select {
		case client <- string(payload):
		default:
			b.logger.Stream().Warn("Stream buffer full, event dropped", "shellId", shellID, "event", event.Event)
		}
	}
}
