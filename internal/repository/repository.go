// Package repository defines the narrow persistence API the Event Hub
// consumes, one interface per aggregate. Concrete implementations live
// in this package as Postgres* types, plus an in-memory implementation
// for tests.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/model"
)

// ErrNotFound is returned by lookups that find no row.
var ErrNotFound = errors.New("repository: not found")

// EventRepository is the narrow persistence API for Events.
type EventRepository interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*model.Event, error)
	GetEventByCode(ctx context.Context, code string) (*model.Event, error)
	CreateEvent(ctx context.Context, event *model.Event) error
	SetEventStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error
	SetEventJoinLock(ctx context.Context, id uuid.UUID, locked bool, lockedAt *time.Time) error
	FindActiveEventForDevice(ctx context.Context, deviceID string, excludeEventID uuid.UUID) (*model.Event, error)
}

// SegmentRepository is the narrow persistence API for Segments.
type SegmentRepository interface {
	GetSegment(ctx context.Context, id uuid.UUID) (*model.Segment, error)
	GetSegmentsByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Segment, error)
	SetSegmentStatus(ctx context.Context, id uuid.UUID, status model.SegmentStatus) error
}

// QuestionRepository is the narrow persistence API for Questions.
type QuestionRepository interface {
	GetQuestionsBySegment(ctx context.Context, segmentID uuid.UUID) ([]model.Question, error)
	CountEventQuestions(ctx context.Context, eventID uuid.UUID) (int, error)
	AggregateEventQuestions(ctx context.Context, eventID uuid.UUID, max int) ([]model.Question, error)
}

// ParticipantRepository is the narrow persistence API for Participants.
type ParticipantRepository interface {
	GetParticipantByDevice(ctx context.Context, eventID uuid.UUID, deviceID string) (*model.Participant, error)
	GetParticipant(ctx context.Context, id uuid.UUID) (*model.Participant, error)
	GetParticipantsByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Participant, error)
	CreateParticipant(ctx context.Context, p *model.Participant) error
	UpdateParticipant(ctx context.Context, p *model.Participant) error
}

// ScoreRepository is the narrow persistence API for scores and
// leaderboards.
type ScoreRepository interface {
	// UpsertSegmentScore atomically applies a scoring delta to both the
	// SegmentScore row and the Participant's running totals.
	UpsertSegmentScore(ctx context.Context, segmentID, participantID uuid.UUID, deltaScore int, correctInc int, responseTimeIncMs int64) error
	GetSegmentLeaderboard(ctx context.Context, segmentID uuid.UUID) ([]model.SegmentScore, error)
	GetEventLeaderboard(ctx context.Context, eventID uuid.UUID) ([]model.SegmentScore, error)
}

// JoinAttemptRepository records join attempts for audit purposes.
type JoinAttemptRepository interface {
	RecordJoinAttempt(ctx context.Context, attempt *model.JoinAttempt) error
}

// Repository aggregates every narrow interface the hub needs into one
// value for dependency injection.
type Repository interface {
	EventRepository
	SegmentRepository
	QuestionRepository
	ParticipantRepository
	ScoreRepository
	JoinAttemptRepository
}
