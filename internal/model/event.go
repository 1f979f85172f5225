package model

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus represents the lifecycle status of a live quiz event.
type EventStatus string

const (
	EventStatusScheduled EventStatus = "SCHEDULED"
	EventStatusLive      EventStatus = "LIVE"
	EventStatusCompleted EventStatus = "COMPLETED"
)

// Event is a live quiz event composed of sequential presenter segments.
type Event struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Title        string      `json:"title" db:"title"`
	HostID       uuid.UUID   `json:"hostId" db:"host_id"`
	JoinCode     string      `json:"joinCode" db:"join_code"`
	Status       EventStatus `json:"status" db:"status"`
	JoinLocked   bool        `json:"joinLocked" db:"join_locked"`
	JoinLockedAt *time.Time  `json:"joinLockedAt,omitempty" db:"join_locked_at"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
}

// NewEvent creates a new scheduled event with a freshly generated join code.
func NewEvent(title string, hostID uuid.UUID) *Event {
	now := time.Now()
	return &Event{
		ID:        uuid.New(),
		Title:     title,
		HostID:    hostID,
		JoinCode:  generateJoinCode(),
		Status:    EventStatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// generateJoinCode produces a short human-typeable code, avoiding
// visually similar characters (no I/O/0/1).
func generateJoinCode() string {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLength = 6

	result := make([]byte, codeLength)
	for i := range result {
		u := uuid.New()
		result[i] = charset[int(u[i%16])%len(charset)]
	}
	return string(result)
}
