package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/session"
	"github.com/liveqai/eventhub/pkg/redisfanout"
	"github.com/liveqai/eventhub/pkg/response"
)

// SpectatorHandler exposes read-only event views for dashboards that do
// not hold a participant websocket: a point-in-time snapshot, and a
// server-sent-event stream mirroring the session's broadcasts off the
// Redis fan-out channel (unavailable when Redis is not configured).
type SpectatorHandler struct {
	hub       *session.Hub
	publisher *redisfanout.Publisher
}

// NewSpectatorHandler creates a SpectatorHandler.
func NewSpectatorHandler(h *session.Hub, publisher *redisfanout.Publisher) *SpectatorHandler {
	return &SpectatorHandler{hub: h, publisher: publisher}
}

// GetState handles GET /api/v1/events/:id/state.
func (h *SpectatorHandler) GetState(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.WithError(c, http.StatusBadRequest, "Bad Request", "invalid event id")
		return
	}

	s, err := h.hub.GetOrCreate(c.Request.Context(), eventID)
	if err != nil {
		response.WithError(c, http.StatusNotFound, "Not Found", "event not found")
		return
	}

	snap, err := s.Snapshot(c.Request.Context())
	if err != nil {
		response.WithError(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	response.WithSuccess(c, http.StatusOK, "ok", snap)
}

// StreamEvents handles GET /api/v1/events/:id/stream, relaying the
// event's broadcast frames as server-sent events until the client goes
// away.
func (h *SpectatorHandler) StreamEvents(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.WithError(c, http.StatusBadRequest, "Bad Request", "invalid event id")
		return
	}

	frames, cancel, err := h.publisher.Subscribe(c.Request.Context(), eventID)
	if err != nil {
		response.WithError(c, http.StatusServiceUnavailable, "Unavailable", "event stream is not enabled")
		return
	}
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		frame, ok := <-frames
		if !ok {
			return false
		}
		c.SSEvent("message", string(frame))
		return true
	})
}
