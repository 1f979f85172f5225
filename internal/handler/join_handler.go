package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/liveqai/eventhub/internal/dto"
	"github.com/liveqai/eventhub/internal/joinflow"
	"github.com/liveqai/eventhub/internal/session"
	"github.com/liveqai/eventhub/pkg/response"
)

// JoinHandler is the participant admission entrypoint:
// POST /api/v1/events/:code/join.
type JoinHandler struct {
	joinSvc *joinflow.Service
	hub     *session.Hub
}

// NewJoinHandler creates a JoinHandler.
func NewJoinHandler(joinSvc *joinflow.Service, hub *session.Hub) *JoinHandler {
	return &JoinHandler{joinSvc: joinSvc, hub: hub}
}

// Join handles POST /api/v1/events/:code/join.
func (h *JoinHandler) Join(c *gin.Context) {
	code := c.Param("code")

	var req dto.JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WithError(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	out, err := h.joinSvc.Join(c.Request.Context(), code, req.DeviceID, req.DisplayName, req.Avatar, h.hub)
	if err != nil {
		writeJoinError(c, err)
		return
	}

	resp := dto.JoinResponse{
		EventID:       out.Event.ID.String(),
		EventTitle:    out.Event.Title,
		ParticipantID: out.Participant.ID.String(),
		DisplayName:   out.Participant.DisplayName,
		SessionToken:  out.Participant.SessionToken,
		IsRejoining:   out.IsRejoining,
		IsLateJoiner:  out.Participant.IsLateJoiner,
	}
	response.WithSuccess(c, http.StatusOK, "joined", resp)
}

func writeJoinError(c *gin.Context, err error) {
	hubErr, ok := err.(*session.HubError)
	if !ok {
		response.WithError(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch hubErr.Kind {
	case session.ErrNotFound:
		status = http.StatusNotFound
	case session.ErrLocked:
		status = http.StatusLocked
	case session.ErrConflict:
		status = http.StatusConflict
	case session.ErrTooManyRequests:
		status = http.StatusTooManyRequests
	case session.ErrUnauthorized:
		status = http.StatusForbidden
	}
	response.WithError(c, status, "Join Failed", hubErr.Message)
}
