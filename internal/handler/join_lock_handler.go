package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/dto"
	"github.com/liveqai/eventhub/internal/middleware"
	"github.com/liveqai/eventhub/internal/session"
	"github.com/liveqai/eventhub/pkg/response"
)

// JoinLockHandler exposes Session.SetJoinLock, a host-only control
// operation triggered over plain HTTP rather than the websocket, since
// the host toggles it from a dashboard before (or between) segments
// rather than in response to an in-session event.
type JoinLockHandler struct {
	hub *session.Hub
}

// NewJoinLockHandler creates a JoinLockHandler.
func NewJoinLockHandler(h *session.Hub) *JoinLockHandler {
	return &JoinLockHandler{hub: h}
}

// SetJoinLock handles PATCH /api/v1/events/:id/join-lock.
func (h *JoinLockHandler) SetJoinLock(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.WithError(c, http.StatusBadRequest, "Bad Request", "invalid event id")
		return
	}

	var req dto.JoinLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WithError(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	hostID := middleware.GetAuthHostID(c)

	s, err := h.hub.GetOrCreate(c.Request.Context(), eventID)
	if err != nil {
		response.WithError(c, http.StatusNotFound, "Not Found", "event not found")
		return
	}

	if err := s.SetJoinLock(c.Request.Context(), hostID, req.Locked); err != nil {
		writeJoinError(c, err)
		return
	}

	response.WithSuccess(c, http.StatusOK, "join lock updated", dto.JoinLockRequest{Locked: req.Locked})
}
