package wsproto

import "github.com/google/uuid"

// JoinPayload is the "join" client message.
type JoinPayload struct {
	UserID      string `json:"user_id"`
	SessionCode string `json:"session_code"`
	DeviceID    string `json:"device_id"`
	DisplayName string `json:"display_name"`
}

// AnswerPayload is the "answer" client message.
type AnswerPayload struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedAnswer string    `json:"selected_answer"`
	ResponseTimeMs int       `json:"response_time_ms"`
}

// PassPresenterPayload is the "pass_presenter" client message.
type PassPresenterPayload struct {
	NextPresenterUserID uuid.UUID `json:"next_presenter_user_id"`
}

// AdminSelectPresenterPayload is the "admin_select_presenter" client message.
type AdminSelectPresenterPayload struct {
	PresenterUserID uuid.UUID `json:"presenter_user_id"`
	SegmentID       uuid.UUID `json:"segment_id"`
}

// StartMegaQuizPayload is the "start_mega_quiz" client message.
type StartMegaQuizPayload struct {
	QuestionCount int `json:"question_count,omitempty"`
}

// ResumeSegmentPayload is the "resume_segment" client message.
type ResumeSegmentPayload struct {
	SegmentID uuid.UUID `json:"segment_id"`
}

// ParticipantInfo describes one connected participant for roster frames.
type ParticipantInfo struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Online      bool      `json:"online"`
	Score       int       `json:"score"`
}

// ConnectedPayload is sent to a newly admitted connection.
type ConnectedPayload struct {
	Participants []ParticipantInfo `json:"participants"`
}

// QuestionPayload is the "question" server message. It omits the correct
// answer, and every recipient, host and presenter included, receives
// this same payload.
type QuestionPayload struct {
	QuestionID     uuid.UUID `json:"question_id"`
	QuestionNumber int       `json:"question_number"`
	TotalQuestions int       `json:"total_questions"`
	Text           string    `json:"text"`
	Answers        []string  `json:"answers"`
	TimeLimitMs    int       `json:"time_limit"`
}

// DistributionItem is one answer's share of submitted responses.
type DistributionItem struct {
	Answer     string  `json:"answer"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RevealPayload is the "reveal" server message.
type RevealPayload struct {
	QuestionID         uuid.UUID           `json:"question_id"`
	QuestionNumber     int                 `json:"question_number"`
	QuestionText       string              `json:"question_text"`
	CorrectAnswer      string              `json:"correct_answer"`
	Distribution       []DistributionItem  `json:"distribution"`
	SegmentLeaderboard []LeaderboardEntry  `json:"segment_leaderboard"`
	EventLeaderboard   []LeaderboardEntry  `json:"event_leaderboard"`
}

// LeaderboardEntry is one ranked participant.
type LeaderboardEntry struct {
	ParticipantID       uuid.UUID `json:"participant_id"`
	DisplayName         string    `json:"display_name"`
	Score               int       `json:"score"`
	TotalResponseTimeMs int64     `json:"total_response_time_ms"`
	Rank                int       `json:"rank"`
}

// LeaderboardPayload is the "leaderboard" server message.
type LeaderboardPayload struct {
	Rankings []LeaderboardEntry `json:"rankings"`
}

// PhaseChangedPayload is the "phase_changed" server message.
type PhaseChangedPayload struct {
	Phase          string `json:"phase"`
	QuestionIndex  int    `json:"question_index"`
	TotalQuestions int    `json:"total_questions"`
}

// EventCompletePayload is the "event_complete" server message.
type EventCompletePayload struct {
	FinalLeaderboard []LeaderboardEntry `json:"final_leaderboard"`
	Winner           *LeaderboardEntry  `json:"winner,omitempty"`
	SegmentWinners   []SegmentWinner    `json:"segment_winners"`
}

// SegmentWinner names the top scorer of one completed segment.
type SegmentWinner struct {
	SegmentID     uuid.UUID `json:"segment_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	DisplayName   string    `json:"display_name"`
	Score         int       `json:"score"`
}

// MegaQuizReadyPayload is the "mega_quiz_ready" server message.
type MegaQuizReadyPayload struct {
	AvailableQuestions int    `json:"available_questions"`
	IsSingleSegment    bool   `json:"is_single_segment"`
	SingleSegmentMode  string `json:"single_segment_mode"`
}

// PresenterChangedPayload is the "presenter_changed" server message.
type PresenterChangedPayload struct {
	PresenterUserID uuid.UUID `json:"presenter_user_id"`
	PresenterName   string    `json:"presenter_name"`
}

// PresenterPausedPayload is the "presenter_paused" server message.
type PresenterPausedPayload struct {
	Reason string `json:"reason"`
}

// ErrorPayload is the "error" server message.
type ErrorPayload struct {
	Message string `json:"message"`
}

// StateRestoredPayload is sent to a reconnecting participant with enough
// state to resume without missing context.
type StateRestoredPayload struct {
	SegmentID         uuid.UUID         `json:"segment_id"`
	Phase             string            `json:"phase"`
	CurrentQuestionID *uuid.UUID        `json:"current_question_id,omitempty"`
	CurrentQuestion   string            `json:"current_question_text,omitempty"`
	TimeLimitMs       int               `json:"time_limit"`
	QuestionStartedAt *int64            `json:"question_started_at,omitempty"`
	YourScore         int               `json:"your_score"`
	YourAnswer        string            `json:"your_answer,omitempty"`
	Participants       []ParticipantInfo `json:"participants"`
}

// SpectatorSnapshotPayload is the read-only state a spectator dashboard
// long-polls from GET /api/v1/events/:id/state, carrying no
// participant-specific fields (no your_score/your_answer).
type SpectatorSnapshotPayload struct {
	EventID           uuid.UUID          `json:"event_id"`
	Phase             string             `json:"phase"`
	CurrentQuestionID *uuid.UUID         `json:"current_question_id,omitempty"`
	QuestionText      string             `json:"question_text,omitempty"`
	QuestionIndex     int                `json:"question_index"`
	TotalQuestions    int                `json:"total_questions"`
	TimeLimitMs       int                `json:"time_limit"`
	Participants      []ParticipantInfo  `json:"participants"`
	EventLeaderboard  []LeaderboardEntry `json:"event_leaderboard"`
}

// JoinLockStatusChangedPayload reports the event's join lock being
// switched on or off.
type JoinLockStatusChangedPayload struct {
	Locked bool `json:"locked"`
}

// ParticipantNameChangedPayload notifies a participant their display name
// was disambiguated at join time.
type ParticipantNameChangedPayload struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	DisplayName   string    `json:"display_name"`
}
