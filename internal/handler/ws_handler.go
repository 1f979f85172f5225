package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/liveqai/eventhub/internal/repository"
	"github.com/liveqai/eventhub/internal/session"
	"github.com/liveqai/eventhub/pkg/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler upgrades GET /ws/event/:eventId into a live connection.
// There is a single connection kind: hosts and presenters are just
// participants with extra authority the Session itself enforces, so
// auth is uniformly participant_id+session_token.
type WSHandler struct {
	hub      *session.Hub
	registry *hub.Registry
	repo     repository.Repository
	cfg      session.Config
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(h *session.Hub, registry *hub.Registry, repo repository.Repository, cfg session.Config) *WSHandler {
	return &WSHandler{hub: h, registry: registry, repo: repo, cfg: cfg}
}

// HandleConnection upgrades the request and starts the connection's
// ReadPump/WritePump once the participant_id and session_token query
// params have been validated against the repository.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	participantID, err := uuid.Parse(c.Query("participant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant_id"})
		return
	}

	token := c.Query("session_token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session_token is required"})
		return
	}

	participant, err := h.repo.GetParticipant(c.Request.Context(), participantID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown participant"})
		return
	}
	if participant.EventID != eventID || participant.SessionToken != token {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session_token does not match"})
		return
	}

	if _, err := h.hub.GetOrCreate(c.Request.Context(), eventID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := hub.NewClient(eventID, participantID, participant.DisplayName, conn, h.registry, h.hub, h.cfg.HeartbeatIntervalS, h.cfg.GracePeriodS)
	h.registry.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
