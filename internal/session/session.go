package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/model"
	"github.com/liveqai/eventhub/internal/repository"
	"github.com/liveqai/eventhub/pkg/clock"
	"github.com/liveqai/eventhub/pkg/wsproto"
)

// Broadcaster is the narrow fan-out interface a Session uses to deliver
// frames, implemented by the Hub's connection registry. A Session never
// holds its own mutex while calling into it.
type Broadcaster interface {
	Broadcast(eventID uuid.UUID, frame []byte)
	SendTo(eventID uuid.UUID, participantID uuid.UUID, frame []byte)
}

// Session is the single-writer actor for one live Event.
type Session struct {
	eventID uuid.UUID
	hostID  uuid.UUID

	repo        repository.Repository
	clock       clock.Clock
	cfg         Config
	broadcaster Broadcaster
	rng         *rand.Rand

	mu       sync.Mutex
	state    *GameState
	segments []model.Segment

	segmentResume *debounceMap
}

// New creates a Session for an already-loaded Event and its Segments.
func New(event *model.Event, segments []model.Segment, repo repository.Repository, clk clock.Clock, cfg Config, broadcaster Broadcaster) *Session {
	return &Session{
		eventID:     event.ID,
		hostID:      event.HostID,
		repo:        repo,
		clock:       clk,
		cfg:         cfg,
		broadcaster: broadcaster,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		state:       NewGameState(),
		segments:    segments,

		segmentResume: newDebounceMap(),
	}
}

func (s *Session) broadcast(frameType string, payload any) {
	frame, err := wsproto.Encode(frameType, payload)
	if err != nil {
		return
	}
	s.broadcaster.Broadcast(s.eventID, frame)
}

func (s *Session) sendTo(participantID uuid.UUID, frameType string, payload any) {
	frame, err := wsproto.Encode(frameType, payload)
	if err != nil {
		return
	}
	s.broadcaster.SendTo(s.eventID, participantID, frame)
}

func (s *Session) sendErrorTo(participantID uuid.UUID, err *HubError) {
	s.sendTo(participantID, wsproto.TypeError, wsproto.ErrorPayload{Message: err.Error()})
}

// ReportError delivers an operation's error to the participant who caused
// it, as an "error" wire frame, without tearing down their connection.
// It is the seam the Hub's dispatch loop uses after a Session method
// returns a non-nil error.
func (s *Session) ReportError(participantID uuid.UUID, err error) {
	if he, ok := err.(*HubError); ok {
		s.sendErrorTo(participantID, he)
		return
	}
	s.sendErrorTo(participantID, &HubError{Kind: ErrFatal, Message: err.Error()})
}

// isHostOrPresenter is the authorization rule for control operations:
// the event's host and the current segment's presenter may drive the
// quiz, nobody else.
func (s *Session) isHostOrPresenter(callerID uuid.UUID) bool {
	return callerID == s.hostID || callerID == s.state.CurrentPresenterID
}

func (s *Session) isHost(callerID uuid.UUID) bool {
	return callerID == s.hostID
}

func (s *Session) segmentByID(id uuid.UUID) (*model.Segment, bool) {
	for i := range s.segments {
		if s.segments[i].ID == id {
			return &s.segments[i], true
		}
	}
	return nil, false
}

func (s *Session) emitPhaseChanged() {
	s.mu.Lock()
	payload := wsproto.PhaseChangedPayload{
		Phase:          string(s.state.QuizPhase),
		QuestionIndex:  s.state.CurrentQuestionIndex,
		TotalQuestions: s.state.TotalQuestions,
	}
	s.mu.Unlock()
	s.broadcast(wsproto.TypePhaseChanged, payload)
}

// Pong records a heartbeat reply. Heartbeat liveness tracking itself
// lives in the connection layer (pkg/hub); the session only needs to
// know a participant is online, which Join/Disconnect already maintain.
func (s *Session) Pong(participantID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.state.Participants[participantID]; ok {
		p.Online = true
	}
}

// Disconnect marks a participant offline and runs presenter-pause logic
// if the departing participant was the presenter, or if it leaves nobody
// connected.
func (s *Session) Disconnect(participantID uuid.UUID) {
	s.mu.Lock()

	if p, ok := s.state.Participants[participantID]; ok {
		p.Online = false
	}

	var pauseEvent *wsproto.PresenterPausedPayload
	var presenterDropped bool
	if s.isActivePhase() && !s.state.PresenterPaused {
		switch {
		case participantID == s.state.CurrentPresenterID:
			s.enterPause(PausePresenterDisconnected)
			pauseEvent = &wsproto.PresenterPausedPayload{Reason: string(PausePresenterDisconnected)}
			presenterDropped = true
		case s.state.ConnectedParticipantCount(s.state.CurrentPresenterID) == 0 && !s.presenterOnline():
			s.enterPause(PauseAllDisconnected)
			pauseEvent = &wsproto.PresenterPausedPayload{Reason: string(PauseAllDisconnected)}
		}
	}
	segmentID := s.state.CurrentSegmentID

	s.mu.Unlock()

	s.broadcast(wsproto.TypeParticipantLeft, map[string]any{"user_id": participantID, "online": false})
	if pauseEvent != nil {
		if presenterDropped {
			s.broadcast(wsproto.TypePresenterDisconnected, map[string]any{"presenter_user_id": participantID})
			// The host can reassign via admin_select_presenter without
			// waiting out the reconnect window.
			s.sendTo(s.hostID, wsproto.TypePresenterOverrideNeeded, map[string]any{
				"segment_id":        segmentID,
				"presenter_user_id": participantID,
			})
		}
		s.broadcast(wsproto.TypePresenterPaused, *pauseEvent)
		s.emitPhaseChanged()
	}
}

// Phase reports the current quiz phase, used by joinflow to decide
// whether a newly joining participant is a late joiner and by the Hub's
// idle-session eviction sweep.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.QuizPhase
}

func (s *Session) presenterOnline() bool {
	p, ok := s.state.Participants[s.state.CurrentPresenterID]
	return ok && p.Online
}

func (s *Session) isActivePhase() bool {
	switch s.state.QuizPhase {
	case PhaseShowingQuestion, PhaseRevealingAnswer, PhaseShowingLeaderboard, PhaseBetweenQuestions:
		return true
	default:
		return false
	}
}

// loadSegmentQuestions fetches and caches the Question rows for a segment
// as ActiveQuestion entries ordered by position.
func (s *Session) loadSegmentQuestions(ctx context.Context, segmentID uuid.UUID) ([]ActiveQuestion, error) {
	questions, err := s.repo.GetQuestionsBySegment(ctx, segmentID)
	if err != nil {
		return nil, fmt.Errorf("load segment questions: %w", err)
	}
	out := make([]ActiveQuestion, len(questions))
	for i, q := range questions {
		out[i] = ActiveQuestion{
			QuestionID:    q.ID,
			Text:          q.Text,
			CorrectAnswer: q.CorrectAnswerText(),
			Options:       q.Options(),
		}
	}
	return out, nil
}
