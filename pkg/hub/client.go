// Package hub owns the live websocket connections for every Event: one
// Client per connected participant/presenter/host, a Registry that fans
// frames out to them, and the ping/pong heartbeat that detects a
// silently dead connection. Each Client runs a read pump and a write
// pump; outbound frames pass through a bounded buffer so a slow reader
// never stalls a broadcast.
package hub

import (
	"bytes"
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/liveqai/eventhub/pkg/wsproto"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 8192
	sendBufferSize = 32
)

var newline = []byte{'\n'}

// Dispatcher routes a decoded inbound frame to the Session that owns
// eventID. internal/session.Hub implements this.
type Dispatcher interface {
	Dispatch(ctx context.Context, eventID, participantID uuid.UUID, frame wsproto.Frame, displayName string)
	Disconnect(eventID, participantID uuid.UUID)
}

// Client is one live websocket connection bound to a participant within
// one event.
type Client struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	DisplayName string

	conn       *websocket.Conn
	registry   *Registry
	dispatcher Dispatcher

	send chan []byte

	pongWait   time.Duration
	pingPeriod time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewClient wraps an upgraded websocket connection. heartbeatIntervalS is
// the ping cadence and graceS is how long to wait for a pong before the
// connection is considered dead (defaults 15s/30s).
func NewClient(eventID, participantID uuid.UUID, displayName string, conn *websocket.Conn, registry *Registry, dispatcher Dispatcher, heartbeatIntervalS, graceS int) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:          participantID,
		EventID:     eventID,
		DisplayName: displayName,
		conn:        conn,
		registry:    registry,
		dispatcher:  dispatcher,
		send:        make(chan []byte, sendBufferSize),
		pongWait:    time.Duration(graceS) * time.Second,
		pingPeriod:  time.Duration(heartbeatIntervalS) * time.Second,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Enqueue attempts to hand frame to this client's write loop without
// blocking. A full send buffer means the connection is falling behind;
// the caller (Registry) drops it rather than stall the whole broadcast.
func (c *Client) Enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// ReadPump pumps inbound frames to the Dispatcher until the connection
// closes, then unregisters itself and notifies the Session.
func (c *Client) ReadPump() {
	defer func() {
		c.cancel()
		c.registry.Unregister(c)
		c.dispatcher.Disconnect(c.EventID, c.ID)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("hub: read error for participant %s: %v", c.ID, err)
			}
			return
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}

		frame, err := wsproto.Decode(raw)
		if err != nil {
			log.Printf("hub: malformed frame from participant %s: %v", c.ID, err)
			continue
		}

		c.dispatcher.Dispatch(c.ctx, c.EventID, c.ID, frame, c.DisplayName)
	}
}

// WritePump pumps queued frames to the connection and drives the ping
// cadence; it exits (closing the socket) if a write fails or ReadPump has
// already torn the connection down.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(frame)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(newline)
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
