package redisfanout

import (
	"context"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/pkg/hub"
)

// Broadcaster composes pkg/hub's in-process Registry (the authoritative
// delivery path) with a Publisher mirror, implementing
// internal/session.Broadcaster. Every frame a Session broadcasts reaches
// live connections through the Registry exactly as it would without
// Redis; the Publish side is best-effort and never blocks or fails the
// caller.
type Broadcaster struct {
	registry  *hub.Registry
	publisher *Publisher
	ctx       context.Context
}

// NewBroadcaster wraps registry with optional Redis fan-out. publisher
// may be nil (or wrap a nil client) to disable fan-out entirely.
func NewBroadcaster(ctx context.Context, registry *hub.Registry, publisher *Publisher) *Broadcaster {
	return &Broadcaster{registry: registry, publisher: publisher, ctx: ctx}
}

// Broadcast delivers frame to every live connection on eventID, then
// mirrors it to the optional Redis fan-out channel.
func (b *Broadcaster) Broadcast(eventID uuid.UUID, frame []byte) {
	b.registry.Broadcast(eventID, frame)
	b.publisher.Publish(b.ctx, eventID, frame)
}

// SendTo delivers frame to one participant's connection only; targeted
// frames are not mirrored to the spectator fan-out.
func (b *Broadcaster) SendTo(eventID, participantID uuid.UUID, frame []byte) {
	b.registry.SendTo(eventID, participantID, frame)
}
