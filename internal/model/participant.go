package model

import (
	"time"

	"github.com/google/uuid"
)

// Participant is a device that has joined an Event.
type Participant struct {
	ID            uuid.UUID `json:"id" db:"id"`
	EventID       uuid.UUID `json:"eventId" db:"event_id"`
	DeviceID      string    `json:"deviceId" db:"device_id"`
	DisplayName   string    `json:"displayName" db:"display_name"`
	Avatar        string    `json:"avatar" db:"avatar"`
	SessionToken  string    `json:"-" db:"session_token"`
	JoinedAt      time.Time `json:"joinedAt" db:"joined_at"`
	IsLateJoiner  bool      `json:"isLateJoiner" db:"is_late_joiner"`
	TotalScore    int       `json:"totalScore" db:"total_score"`
	// TotalResponseTimeMs only ever grows; it is the leaderboard
	// tie-break across reconnects.
	TotalResponseTimeMs int64 `json:"totalResponseTimeMs" db:"total_response_time_ms"`
}

// NewParticipant creates a new participant record for a device joining an event.
func NewParticipant(eventID uuid.UUID, deviceID, displayName, avatar string, isLateJoiner bool) *Participant {
	return &Participant{
		ID:           uuid.New(),
		EventID:      eventID,
		DeviceID:     deviceID,
		DisplayName:  displayName,
		Avatar:       avatar,
		SessionToken: uuid.New().String(),
		JoinedAt:     time.Now(),
		IsLateJoiner: isLateJoiner,
	}
}
