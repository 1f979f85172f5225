package model

import "github.com/google/uuid"

// SegmentScore is a participant's accumulated standing within one segment.
type SegmentScore struct {
	SegmentID             uuid.UUID `json:"segmentId" db:"segment_id"`
	ParticipantID         uuid.UUID `json:"participantId" db:"participant_id"`
	Score                 int       `json:"score" db:"score"`
	QuestionsAnswered     int       `json:"questionsAnswered" db:"questions_answered"`
	QuestionsCorrect      int       `json:"questionsCorrect" db:"questions_correct"`
	TotalResponseTimeMs   int64     `json:"totalResponseTimeMs" db:"total_response_time_ms"`
}

// NewSegmentScore creates a zeroed score row for a participant in a segment.
func NewSegmentScore(segmentID, participantID uuid.UUID) *SegmentScore {
	return &SegmentScore{SegmentID: segmentID, ParticipantID: participantID}
}
