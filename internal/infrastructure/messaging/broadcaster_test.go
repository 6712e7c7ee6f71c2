package messaging

import (
	"encoding/json"
	"testing"

	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
)

func TestStateBroadcaster_ShellScopedDelivery(t *testing.T) {
	b := NewStateBroadcaster(logging.NewTestLogger())

	chA := b.AddClient("shell-a")
	chB := b.AddClient("shell-b")
	if chA == nil || chB == nil {
		t.Fatal("AddClient returned nil below the stream cap")
	}

	b.BroadcastRouteChange("shell-a", "/profile")

	select {
	case payload := <-chA:
		var event StreamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			t.Fatalf("payload is not valid JSON: %v", err)
		}
		if event.Event != EventRouteChanged {
			t.Errorf("expected %s, got %s", EventRouteChanged, event.Event)
		}
	default:
		t.Fatal("shell-a received nothing")
	}

	select {
	case payload := <-chB:
		t.Errorf("shell-b received a shell-a event: %s", payload)
	default:
	}
}

func TestStateBroadcaster_StreamCap(t *testing.T) {
	b := NewStateBroadcaster(logging.NewTestLogger())
	b.maxPerShell = 2

	if b.AddClient("shell-a") == nil {
		t.Fatal("first stream rejected")
	}
	if b.AddClient("shell-a") == nil {
		t.Fatal("second stream rejected")
	}
	if b.AddClient("shell-a") != nil {
		t.Error("third stream should exceed the cap")
	}
	if b.AddClient("shell-b") == nil {
		t.Error("cap on one shell must not affect another")
	}
}

func TestStateBroadcaster_RemoveClosesChannel(t *testing.T) {
	b := NewStateBroadcaster(logging.NewTestLogger())
	ch := b.AddClient("shell-a")

	b.RemoveClient(ch, "shell-a")
	if _, open := <-ch; open {
		t.Error("removed client's channel should be closed")
	}
	if b.ConnectionCount("shell-a") != 0 {
		t.Errorf("expected 0 streams, got %d", b.ConnectionCount("shell-a"))
	}

	// Broadcasting to a shell with no streams is a no-op.
	b.BroadcastRouteChange("shell-a", "/")
}

func TestStateBroadcaster_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	b := NewStateBroadcaster(logging.NewTestLogger())
	ch := b.AddClient("shell-a")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			b.BroadcastRouteChange("shell-a", "/settings")
		}
		close(done)
	}()

	<-done
	if len(ch) != cap(ch) {
		t.Errorf("expected a full buffer of %d, got %d", cap(ch), len(ch))
	}
}
