package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/model"
	"github.com/liveqai/eventhub/internal/repository"
	"github.com/liveqai/eventhub/pkg/clock"
	"github.com/liveqai/eventhub/pkg/wsproto"
)

// Hub is the process-wide registry of live Sessions, one per Event. It
// owns no network state itself; pkg/hub's connection registry is its
// Broadcaster.
type Hub struct {
	repo        repository.Repository
	clock       clock.Clock
	cfg         Config
	broadcaster Broadcaster

	mu           sync.Mutex
	sessions     map[uuid.UUID]*Session
	lastActivity map[uuid.UUID]time.Time

	eventResume *debounceMap
}

// NewHub creates an empty Hub.
func NewHub(repo repository.Repository, clk clock.Clock, cfg Config, broadcaster Broadcaster) *Hub {
	return &Hub{
		repo:         repo,
		clock:        clk,
		cfg:          cfg,
		broadcaster:  broadcaster,
		sessions:     make(map[uuid.UUID]*Session),
		lastActivity: make(map[uuid.UUID]time.Time),
		eventResume:  newDebounceMap(),
	}
}

// ResumeEvent reopens a completed event for its host, returning it to
// LIVE so segments can be resumed. Attempts inside the per-event
// debounce window are rejected with too_many_requests, which the HTTP
// surface maps to 429.
func (h *Hub) ResumeEvent(ctx context.Context, eventID, callerID uuid.UUID) error {
	window := time.Duration(h.cfg.EventResumeDebounceS) * time.Second
	if !h.eventResume.Allow(eventID, h.clock.Now(), window) {
		return newError(ErrTooManyRequests, "event resume already in progress, try again shortly")
	}

	event, err := h.repo.GetEvent(ctx, eventID)
	if err != nil {
		return newError(ErrNotFound, "event not found")
	}
	if event.HostID != callerID {
		return newError(ErrUnauthorized, "only the host may resume the event")
	}
	if err := h.repo.SetEventStatus(ctx, eventID, model.EventStatusLive); err != nil {
		return fmt.Errorf("set event live: %w", err)
	}
	return nil
}

// GetOrCreate returns the live Session for eventID, loading the Event and
// its Segments from the repository and constructing a fresh Session the
// first time the event is touched.
func (h *Hub) GetOrCreate(ctx context.Context, eventID uuid.UUID) (*Session, error) {
	h.mu.Lock()
	if s, ok := h.sessions[eventID]; ok {
		h.lastActivity[eventID] = h.clock.Now()
		h.mu.Unlock()
		return s, nil
	}
	h.mu.Unlock()

	event, err := h.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	segments, err := h.repo.GetSegmentsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load segments: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[eventID]; ok {
		h.lastActivity[eventID] = h.clock.Now()
		return s, nil
	}
	s := New(event, segments, h.repo, h.clock, h.cfg, h.broadcaster)
	h.sessions[eventID] = s
	h.lastActivity[eventID] = h.clock.Now()
	return s, nil
}

// Session returns the already-loaded Session for eventID, if any.
func (h *Hub) Session(eventID uuid.UUID) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[eventID]
	return s, ok
}

// Dispatch decodes one inbound frame and routes it to the Session
// operation it names. callerID is the participant id of the connection
// the frame arrived on; it is both the subject of Join/Answer and the
// authorization principal for control operations.
func (h *Hub) Dispatch(ctx context.Context, eventID, callerID uuid.UUID, frame wsproto.Frame, displayName string) {
	s, err := h.GetOrCreate(ctx, eventID)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.lastActivity[eventID] = h.clock.Now()
	h.mu.Unlock()

	var opErr error
	switch frame.Type {
	case wsproto.TypeJoin:
		s.Join(ctx, callerID, displayName)
		return

	case wsproto.TypeAnswer:
		var p wsproto.AnswerPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return
		}
		opErr = s.Answer(ctx, callerID, p.QuestionID, p.SelectedAnswer, h.clock.Now())

	case wsproto.TypeStartGame, wsproto.TypeStartPresentation:
		opErr = s.StartGame(ctx, callerID)

	case wsproto.TypeRevealAnswer:
		opErr = s.RevealAnswer(ctx, callerID)

	case wsproto.TypeNextQuestion:
		opErr = s.NextQuestion(ctx, callerID)

	case wsproto.TypeShowLeaderboard:
		opErr = s.ShowLeaderboard(ctx, callerID)

	case wsproto.TypeEndGame:
		opErr = s.EndGame(ctx, callerID)

	case wsproto.TypePassPresenter:
		var p wsproto.PassPresenterPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return
		}
		opErr = s.PassPresenter(callerID, p.NextPresenterUserID)

	case wsproto.TypeAdminSelectPresenter, wsproto.TypeSelectPresenter:
		var p wsproto.AdminSelectPresenterPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return
		}
		opErr = s.AdminSelectPresenter(ctx, callerID, p.PresenterUserID, p.SegmentID)

	case wsproto.TypeStartMegaQuiz:
		var p wsproto.StartMegaQuizPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return
		}
		opErr = s.StartMegaQuiz(ctx, callerID, p.QuestionCount)

	case wsproto.TypeSkipMegaQuiz:
		opErr = s.SkipMegaQuiz(ctx, callerID)

	case wsproto.TypeResumeSegment:
		var p wsproto.ResumeSegmentPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return
		}
		opErr = s.ResumeSegment(ctx, callerID, p.SegmentID)

	case wsproto.TypePong:
		s.Pong(callerID)
		return

	default:
		s.ReportError(callerID, newError(ErrInvalidTransition, "unrecognized message type %q", frame.Type))
		return
	}

	if opErr != nil {
		s.ReportError(callerID, opErr)
	}
}

// Disconnect notifies the Session for eventID that a connection dropped,
// if the Session has already been created.
func (h *Hub) Disconnect(eventID, participantID uuid.UUID) {
	if s, ok := h.Session(eventID); ok {
		s.Disconnect(participantID)
	}
}

// Sweep evicts Sessions that are in event_complete and have seen no
// activity (GetOrCreate or Dispatch) for at least idleAfter. It should be
// called periodically by the process that owns the
// Hub (see the bootstrap ticker).
func (h *Hub) Sweep(idleAfter time.Duration) []uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.clock.Now()
	var evicted []uuid.UUID
	for id, s := range h.sessions {
		if s.Phase() != PhaseEventComplete {
			continue
		}
		if now.Sub(h.lastActivity[id]) < idleAfter {
			continue
		}
		delete(h.sessions, id)
		delete(h.lastActivity, id)
		evicted = append(evicted, id)
	}
	return evicted
}

// IsMidQuestion implements joinflow.PhaseChecker, used to mark a joining
// participant as a late joiner when the event is already mid-question,
// mid-reveal, or mid-leaderboard.
func (h *Hub) IsMidQuestion(eventID uuid.UUID) bool {
	s, ok := h.Session(eventID)
	if !ok {
		return false
	}
	switch s.Phase() {
	case PhaseShowingQuestion, PhaseRevealingAnswer, PhaseShowingLeaderboard:
		return true
	default:
		return false
	}
}
