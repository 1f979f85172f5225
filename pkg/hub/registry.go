package hub

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the connection-layer fan-out: it holds every live Client
// keyed by event then participant, and implements
// internal/session.Broadcaster so a Session never has to know anything
// about websockets.
type Registry struct {
	mu    sync.Mutex
	byEvent map[uuid.UUID]map[uuid.UUID]*Client
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byEvent: make(map[uuid.UUID]map[uuid.UUID]*Client)}
}

// Register adds a Client, replacing any prior connection for the same
// participant (a reconnect supersedes the stale socket rather than
// stacking two live connections for one participant).
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients, ok := r.byEvent[c.EventID]
	if !ok {
		clients = make(map[uuid.UUID]*Client)
		r.byEvent[c.EventID] = clients
	}
	if old, exists := clients[c.ID]; exists && old != c {
		old.cancel()
		close(old.send)
	}
	clients[c.ID] = c
}

// Unregister removes c, but only if it is still the registered connection
// for its participant (a stale ReadPump exiting after a reconnect must
// not evict the new connection).
func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients, ok := r.byEvent[c.EventID]
	if !ok {
		return
	}
	if current, exists := clients[c.ID]; !exists || current != c {
		return
	}
	delete(clients, c.ID)
	close(c.send)
	if len(clients) == 0 {
		delete(r.byEvent, c.EventID)
	}
}

// Broadcast fans frame out to every connection on eventID without ever
// blocking the caller. A client whose send buffer is full misses the
// frame and is cancelled, so its pumps close the socket outside this
// lock and the Session marks the participant offline.
func (r *Registry) Broadcast(eventID uuid.UUID, frame []byte) {
	r.mu.Lock()
	clients := r.byEvent[eventID]
	targets := make([]*Client, 0, len(clients))
	for _, c := range clients {
		targets = append(targets, c)
	}
	r.mu.Unlock()

	for _, c := range targets {
		if !c.Enqueue(frame) {
			c.cancel()
		}
	}
}

// SendTo delivers frame to one participant's connection, if it is live.
func (r *Registry) SendTo(eventID, participantID uuid.UUID, frame []byte) {
	r.mu.Lock()
	clients := r.byEvent[eventID]
	c, ok := clients[participantID]
	r.mu.Unlock()
	if !ok {
		return
	}
	c.Enqueue(frame)
}

// ConnectedCount reports how many live connections an event currently
// has, for tests and diagnostics.
func (r *Registry) ConnectedCount(eventID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byEvent[eventID])
}
