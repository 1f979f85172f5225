package model

import (
	"time"

	"github.com/google/uuid"
)

// SegmentStatus tracks a presenter segment through recording and quiz play.
type SegmentStatus string

const (
	SegmentStatusPending    SegmentStatus = "PENDING"
	SegmentStatusRecording  SegmentStatus = "RECORDING"
	SegmentStatusProcessing SegmentStatus = "PROCESSING"
	SegmentStatusReady      SegmentStatus = "READY"
	SegmentStatusActive     SegmentStatus = "ACTIVE"
	SegmentStatusCompleted  SegmentStatus = "COMPLETED"
)

// Segment is one presenter's slot within an Event, identified by its
// position in the presenter rotation.
type Segment struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	EventID       uuid.UUID     `json:"eventId" db:"event_id"`
	PresenterID   uuid.UUID     `json:"presenterId" db:"presenter_id"`
	PresenterName string        `json:"presenterName" db:"presenter_name"`
	Position      int           `json:"position" db:"position"`
	Status        SegmentStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
}

// NewSegment creates a pending segment for a presenter at a rotation position.
func NewSegment(eventID, presenterID uuid.UUID, presenterName string, position int) *Segment {
	now := time.Now()
	return &Segment{
		ID:            uuid.New(),
		EventID:       eventID,
		PresenterID:   presenterID,
		PresenterName: presenterName,
		Position:      position,
		Status:        SegmentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
