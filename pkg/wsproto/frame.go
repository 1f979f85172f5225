// Package wsproto implements the bidirectional JSON wire protocol the
// event hub speaks over each websocket connection: a tagged union of
// frame types discriminated by a "type" string field, with a typed
// payload struct per message kind.
package wsproto

import (
	"encoding/json"
	"fmt"
)

// Client→Server message type discriminators.
const (
	TypeJoin                 = "join"
	TypeAnswer                = "answer"
	TypeStartGame             = "start_game"
	TypeNextQuestion          = "next_question"
	TypeRevealAnswer          = "reveal_answer"
	TypeShowLeaderboard       = "show_leaderboard"
	TypeEndGame               = "end_game"
	TypePassPresenter         = "pass_presenter"
	TypeAdminSelectPresenter  = "admin_select_presenter"
	TypeStartMegaQuiz         = "start_mega_quiz"
	TypeSkipMegaQuiz          = "skip_mega_quiz"
	TypeSelectPresenter       = "select_presenter"
	TypeStartPresentation     = "start_presentation"
	TypeResumeSegment         = "resume_segment"
	TypePong                  = "pong"
)

// Server→Client message type discriminators.
const (
	TypeConnected              = "connected"
	TypeParticipantJoined      = "participant_joined"
	TypeParticipantLeft        = "participant_left"
	TypeQuestion               = "question"
	TypeAnswerReceived         = "answer_received"
	TypeReveal                 = "reveal"
	TypeLeaderboard            = "leaderboard"
	TypePhaseChanged           = "phase_changed"
	TypeSegmentComplete        = "segment_complete"
	TypeEventComplete          = "event_complete"
	TypeMegaQuizReady          = "mega_quiz_ready"
	TypeMegaQuizStarted        = "mega_quiz_started"
	TypePresenterChanged       = "presenter_changed"
	TypePresenterDisconnected  = "presenter_disconnected"
	TypePresenterPaused        = "presenter_paused"
	TypePresenterResumed       = "presenter_resumed"
	TypePresenterOverrideNeeded = "presenter_override_needed"
	TypeGameStarted            = "game_started"
	TypeGameEnded              = "game_ended"
	TypeError                  = "error"
	TypeStateRestored          = "state_restored"
	TypeJoinLockStatusChanged  = "join_lock_status_changed"
	TypeParticipantNameChanged = "participant_name_changed"
	TypeNoQuestionsGenerated   = "no_questions_generated"
	TypePing                   = "ping"
)

// Frame is the envelope every message is wrapped in on the wire.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode marshals a typed payload into a Frame's wire bytes.
func Encode(frameType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wsproto: marshal %s payload: %w", frameType, err)
	}
	return json.Marshal(Frame{Type: frameType, Payload: raw})
}

// EncodeBare marshals a Frame with no payload, e.g. "ping"/"pong".
func EncodeBare(frameType string) ([]byte, error) {
	return json.Marshal(Frame{Type: frameType})
}

// Decode parses raw inbound bytes into a Frame without touching the
// payload's inner shape; callers decode Payload further by Type.
func Decode(raw []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Frame{}, fmt.Errorf("wsproto: invalid frame: %w", err)
	}
	if f.Type == "" {
		return Frame{}, fmt.Errorf("wsproto: frame missing type discriminator")
	}
	return f, nil
}
