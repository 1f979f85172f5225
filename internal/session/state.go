// Package session implements the Event Session: the single-writer actor
// that owns one live Event's runtime state (participants, the active
// question, phase transitions, answer admission, pause/resume), and the
// Hub that registers one Session per event and routes inbound frames to
// it.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Phase is the event's quiz-phase state.
type Phase string

const (
	PhaseNotStarted      Phase = "not_started"
	PhaseShowingQuestion Phase = "showing_question"
	PhaseRevealingAnswer Phase = "revealing_answer"
	PhaseShowingLeaderboard Phase = "showing_leaderboard"
	PhaseBetweenQuestions Phase = "between_questions"
	PhaseSegmentComplete Phase = "segment_complete"
	PhaseMegaQuizReady   Phase = "mega_quiz_ready"
	PhaseMegaQuiz        Phase = "mega_quiz"
	PhaseEventComplete   Phase = "event_complete"
	PhasePresenterPaused Phase = "presenter_paused"
)

// PauseReason names why the presenter_paused phase was entered.
type PauseReason string

const (
	PauseNone                 PauseReason = ""
	PauseNoParticipants       PauseReason = "no_participants"
	PausePresenterDisconnected PauseReason = "presenter_disconnected"
	PauseAllDisconnected      PauseReason = "all_disconnected"
)

// JoinStatus tracks a participant's standing relative to the active quiz.
type JoinStatus string

const (
	JoinStatusJoined          JoinStatus = "joined"
	JoinStatusWaitingSegment  JoinStatus = "waiting_for_segment"
	JoinStatusActiveInQuiz    JoinStatus = "active_in_quiz"
	JoinStatusSegmentComplete JoinStatus = "segment_complete"
)

// ParticipantInfo mirrors presence/late-join metadata in memory; it is
// authoritative only for online/offline. Durable score totals live in
// the repository.
type ParticipantInfo struct {
	ParticipantID uuid.UUID
	DisplayName   string
	Online        bool
	JoinedAt      time.Time
	JoinStatus    JoinStatus
	IsLateJoiner  bool
}

// ActiveQuestion is one question of the current segment as cached for
// in-memory quiz play. CorrectAnswer is the resolved answer text, the
// same form clients submit in answer frames.
type ActiveQuestion struct {
	QuestionID    uuid.UUID
	Text          string
	CorrectAnswer string
	Options       []string
}

// GameState is the Event Session's mutable in-memory view of one live
// event. All access goes through the owning Session's mutex.
type GameState struct {
	CurrentSegmentID      uuid.UUID
	CurrentPresenterID    uuid.UUID
	CurrentQuestionID     uuid.UUID
	CurrentQuestionIndex  int
	QuestionStartedAt     time.Time
	TimeLimitMs           int

	QuizPhase             Phase
	PresenterPaused       bool
	PresenterPauseReason  PauseReason

	Questions      []ActiveQuestion
	TotalQuestions int

	Participants map[uuid.UUID]*ParticipantInfo
	// AnswersReceived maps participant_id to selected_answer for the
	// active question only; cleared on next question.
	AnswersReceived map[uuid.UUID]string
	// ScoredQuestionIDs guards zero-fill idempotency.
	ScoredQuestionIDs map[uuid.UUID]bool
}

// NewGameState creates a fresh, not-yet-started GameState.
func NewGameState() *GameState {
	return &GameState{
		QuizPhase:         PhaseNotStarted,
		Participants:      make(map[uuid.UUID]*ParticipantInfo),
		AnswersReceived:   make(map[uuid.UUID]string),
		ScoredQuestionIDs: make(map[uuid.UUID]bool),
	}
}

// ConnectedParticipantCount returns how many participants are online,
// excluding the given presenter id if nonzero (used by the no_participants
// pause check).
func (s *GameState) ConnectedParticipantCount(excludingPresenter uuid.UUID) int {
	count := 0
	for id, p := range s.Participants {
		if id == excludingPresenter {
			continue
		}
		if p.Online {
			count++
		}
	}
	return count
}

func (s *GameState) currentQuestion() (ActiveQuestion, bool) {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return ActiveQuestion{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}
