package model

import (
	"time"

	"github.com/google/uuid"
)

// JoinAttempt records one device's attempt to join an event and its
// outcome, for audit; admission decisions never read it back.
type JoinAttempt struct {
	ID          uuid.UUID `json:"id" db:"id"`
	EventID     uuid.UUID `json:"eventId" db:"event_id"`
	DeviceID    string    `json:"deviceId" db:"device_id"`
	DisplayName string    `json:"displayName" db:"display_name"`
	Accepted    bool      `json:"accepted" db:"accepted"`
	Reason      string    `json:"reason,omitempty" db:"reason"`
	AttemptedAt time.Time `json:"attemptedAt" db:"attempted_at"`
}

// NewJoinAttempt creates a record of a join attempt outcome.
func NewJoinAttempt(eventID uuid.UUID, deviceID, displayName string, accepted bool, reason string) *JoinAttempt {
	return &JoinAttempt{
		ID:          uuid.New(),
		EventID:     eventID,
		DeviceID:    deviceID,
		DisplayName: displayName,
		Accepted:    accepted,
		Reason:      reason,
		AttemptedAt: time.Now(),
	}
}
