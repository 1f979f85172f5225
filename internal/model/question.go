package model

import (
	"time"

	"github.com/google/uuid"
)

// Question is a multiple-choice question generated for a Segment.
type Question struct {
	ID            uuid.UUID `json:"id" db:"id"`
	SegmentID     uuid.UUID `json:"segmentId" db:"segment_id"`
	Text          string    `json:"text" db:"text"`
	OptionA       string    `json:"-" db:"option_a"`
	OptionB       string    `json:"-" db:"option_b"`
	OptionC       string    `json:"-" db:"option_c"`
	OptionD       string    `json:"-" db:"option_d"`
	CorrectOption string    `json:"-" db:"correct_option"` // A, B, C, or D
	Position      int       `json:"position" db:"position"`
	TimeLimitMs   int       `json:"timeLimitMs" db:"time_limit_ms"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// Options returns the four answer choices in display order.
func (q *Question) Options() []string {
	return []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD}
}

// CorrectAnswerText resolves the correct-option key to the answer text
// clients submit and reveal frames display.
func (q *Question) CorrectAnswerText() string {
	switch q.CorrectOption {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	default:
		return q.OptionD
	}
}

// NewQuestion creates a question with four options and a correct-option key.
func NewQuestion(segmentID uuid.UUID, text string, options [4]string, correctOption string, position, timeLimitMs int) *Question {
	return &Question{
		ID:            uuid.New(),
		SegmentID:     segmentID,
		Text:          text,
		OptionA:       options[0],
		OptionB:       options[1],
		OptionC:       options[2],
		OptionD:       options[3],
		CorrectOption: correctOption,
		Position:      position,
		TimeLimitMs:   timeLimitMs,
		CreatedAt:     time.Now(),
	}
}
