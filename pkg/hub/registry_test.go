package hub

import (
	"testing"

	"github.com/google/uuid"
)

// newTestClient builds a Client with no underlying socket; Enqueue and
// the Registry bookkeeping never touch the connection itself.
func newTestClient(eventID, participantID uuid.UUID) *Client {
	return NewClient(eventID, participantID, "tester", nil, nil, nil, 15, 30)
}

func TestRegisterAndBroadcast(t *testing.T) {
	r := NewRegistry()
	eventID := uuid.New()

	a := newTestClient(eventID, uuid.New())
	b := newTestClient(eventID, uuid.New())
	other := newTestClient(uuid.New(), uuid.New())
	r.Register(a)
	r.Register(b)
	r.Register(other)

	r.Broadcast(eventID, []byte(`{"type":"ping"}`))

	if len(a.send) != 1 || len(b.send) != 1 {
		t.Fatalf("event clients should each hold one frame, got %d and %d", len(a.send), len(b.send))
	}
	if len(other.send) != 0 {
		t.Fatal("a client on another event must not receive the broadcast")
	}
}

func TestSendToTargetsOneClient(t *testing.T) {
	r := NewRegistry()
	eventID := uuid.New()

	a := newTestClient(eventID, uuid.New())
	b := newTestClient(eventID, uuid.New())
	r.Register(a)
	r.Register(b)

	r.SendTo(eventID, a.ID, []byte(`{"type":"error"}`))

	if len(a.send) != 1 {
		t.Fatalf("target should hold one frame, got %d", len(a.send))
	}
	if len(b.send) != 0 {
		t.Fatal("non-target client received a direct send")
	}
}

func TestBroadcastDropsFrameWhenBufferFull(t *testing.T) {
	r := NewRegistry()
	eventID := uuid.New()

	c := newTestClient(eventID, uuid.New())
	r.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		if !c.Enqueue([]byte(`{"type":"ping"}`)) {
			t.Fatalf("enqueue %d should fit in the buffer", i)
		}
	}

	// The broadcast must not block even though the client is saturated.
	r.Broadcast(eventID, []byte(`{"type":"ping"}`))
	if len(c.send) != sendBufferSize {
		t.Fatalf("buffer grew past its bound: %d", len(c.send))
	}
}

func TestReconnectSupersedesOldConnection(t *testing.T) {
	r := NewRegistry()
	eventID := uuid.New()
	participantID := uuid.New()

	old := newTestClient(eventID, participantID)
	r.Register(old)
	fresh := newTestClient(eventID, participantID)
	r.Register(fresh)

	select {
	case <-old.ctx.Done():
	default:
		t.Fatal("superseded connection was not cancelled")
	}

	// The stale ReadPump unregistering late must not evict the new
	// connection.
	r.Unregister(old)
	r.SendTo(eventID, participantID, []byte(`{"type":"ping"}`))
	if len(fresh.send) != 1 {
		t.Fatal("fresh connection should still be registered after stale unregister")
	}
}

func TestUnregisterRemovesEmptyEvent(t *testing.T) {
	r := NewRegistry()
	eventID := uuid.New()

	c := newTestClient(eventID, uuid.New())
	r.Register(c)
	if got := r.ConnectedCount(eventID); got != 1 {
		t.Fatalf("connected count = %d, want 1", got)
	}

	r.Unregister(c)
	if got := r.ConnectedCount(eventID); got != 0 {
		t.Fatalf("connected count after unregister = %d, want 0", got)
	}
}
