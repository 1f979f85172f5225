package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/middleware"
	"github.com/liveqai/eventhub/internal/session"
	"github.com/liveqai/eventhub/pkg/response"
)

// EventResumeHandler lets a host reopen a completed event, debounced per
// event so a double-submitted resume does not run the transition twice.
type EventResumeHandler struct {
	hub *session.Hub
}

// NewEventResumeHandler creates an EventResumeHandler.
func NewEventResumeHandler(h *session.Hub) *EventResumeHandler {
	return &EventResumeHandler{hub: h}
}

// Resume handles POST /api/v1/events/:id/resume.
func (h *EventResumeHandler) Resume(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.WithError(c, http.StatusBadRequest, "Bad Request", "invalid event id")
		return
	}

	hostID := middleware.GetAuthHostID(c)

	if err := h.hub.ResumeEvent(c.Request.Context(), eventID, hostID); err != nil {
		writeJoinError(c, err)
		return
	}

	response.WithSuccess(c, http.StatusOK, "event resumed", gin.H{"event_id": eventID})
}
