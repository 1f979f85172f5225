// Package redisfanout gives spectator dashboards (a separate process
// with no websocket connection of its own, e.g. a venue's big screen
// renderer) a read-only replica of every frame an Event Session
// broadcasts. It is strictly optional: the in-process Registry remains
// the session's sole authority, so a nil client degrades this to a
// no-op rather than a dependency.
package redisfanout

import (
	"context"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

func channelName(eventID uuid.UUID) string {
	return fmt.Sprintf("eventhub:event:%s", eventID.String())
}

// Publisher mirrors every frame broadcast for an event onto a Redis
// channel, for any number of spectator-dashboard processes to subscribe
// to. A nil *redis.Client makes every method a no-op.
type Publisher struct {
	client *redis.Client
}

// NewPublisher wraps a redis client. client may be nil, in which case the
// returned Publisher is inert.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish mirrors frame to eventID's fan-out channel. Failures are logged
// and swallowed: a spectator dashboard missing a frame is not a reason to
// fail the authoritative in-process broadcast.
func (p *Publisher) Publish(ctx context.Context, eventID uuid.UUID, frame []byte) {
	if p == nil || p.client == nil {
		return
	}
	if err := p.client.Publish(ctx, channelName(eventID), frame).Err(); err != nil {
		log.Printf("redisfanout: publish to event %s: %v", eventID, err)
	}
}

// Subscribe opens a Redis subscription for eventID's fan-out channel and
// returns a channel of raw frame bytes. The caller must call the returned
// cancel function to close the subscription. Used by the spectator
// dashboard endpoint (or an external consumer) to read a live event
// without holding a websocket connection through pkg/hub.
func (p *Publisher) Subscribe(ctx context.Context, eventID uuid.UUID) (<-chan []byte, func(), error) {
	if p == nil || p.client == nil {
		return nil, func() {}, fmt.Errorf("redisfanout: no redis client configured")
	}

	sub := p.client.Subscribe(ctx, channelName(eventID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, func() {}, fmt.Errorf("redisfanout: subscribe to event %s: %w", eventID, err)
	}

	out := make(chan []byte, 16)
	msgs := sub.Channel()
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
				}
			}
		}
	}()

	return out, func() { sub.Close() }, nil
}
