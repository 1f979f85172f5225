// Package joinflow implements participant admission: event lookup, the
// join-lock grace check, device exclusivity, rejoin detection, and
// display-name uniquing. Each attempt runs through the Join Gate
// (internal/joingate) so that two devices racing to join the same event
// are resolved deterministically.
package joinflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/joingate"
	"github.com/liveqai/eventhub/internal/model"
	"github.com/liveqai/eventhub/internal/repository"
	"github.com/liveqai/eventhub/internal/session"
	"github.com/liveqai/eventhub/pkg/clock"
)

// PhaseChecker answers whether an event is currently mid-question,
// mid-reveal, or mid-leaderboard, which decides whether a newly joining
// participant is a late joiner.
type PhaseChecker interface {
	IsMidQuestion(eventID uuid.UUID) bool
}

// Config carries the join-gate acquisition timeout and lock grace period.
type Config struct {
	JoinLockGraceS       int
	GateAcquireTimeoutMs int
}

// Service runs the join algorithm against a Repository, serialized per
// event by a joingate.Gate.
type Service struct {
	repo  repository.Repository
	gate  *joingate.Gate
	clock clock.Clock
	cfg   Config
}

// New creates a join Service.
func New(repo repository.Repository, gate *joingate.Gate, clk clock.Clock, cfg Config) *Service {
	return &Service{repo: repo, gate: gate, clock: clk, cfg: cfg}
}

// Outcome is the result of a successful join.
type Outcome struct {
	Event       *model.Event
	Participant *model.Participant
	IsRejoining bool
}

// Join runs the full admission sequence for one request: lookup, lock
// grace, device exclusivity, rejoin, name uniquing. Rejections are
// *session.HubError with Kind one of not_found, locked, conflict, or
// too_many_requests (join gate busy), so the HTTP/websocket layer can
// translate them directly to wire error kinds; repository failures are
// returned as plain wrapped errors.
func (s *Service) Join(ctx context.Context, joinCode, deviceID, displayName, avatar string, phase PhaseChecker) (*Outcome, error) {
	event, err := s.repo.GetEventByCode(ctx, joinCode)
	if err != nil || event == nil {
		return nil, &session.HubError{Kind: session.ErrNotFound, Message: "no event with that join code"}
	}

	release, err := s.acquireGate(event.ID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.clock.Now()

	if event.JoinLocked && event.JoinLockedAt != nil && now.Sub(*event.JoinLockedAt) > time.Duration(s.cfg.JoinLockGraceS)*time.Second {
		s.recordAttempt(ctx, event.ID, deviceID, displayName, false, "locked")
		return nil, &session.HubError{Kind: session.ErrLocked, Message: "this event is not currently accepting joins"}
	}

	if other, err := s.repo.FindActiveEventForDevice(ctx, deviceID, event.ID); err != nil {
		return nil, fmt.Errorf("find active event for device: %w", err)
	} else if other != nil {
		s.recordAttempt(ctx, event.ID, deviceID, displayName, false, "conflict")
		return nil, &session.HubError{Kind: session.ErrConflict, Message: fmt.Sprintf("device already active in event %q", other.Title)}
	}

	existing, err := s.repo.GetParticipantByDevice(ctx, event.ID, deviceID)
	if err != nil && err != repository.ErrNotFound {
		return nil, fmt.Errorf("get participant by device: %w", err)
	}
	if existing != nil {
		existing.SessionToken = uuid.New().String()
		if err := s.repo.UpdateParticipant(ctx, existing); err != nil {
			return nil, fmt.Errorf("refresh rejoining participant: %w", err)
		}
		s.recordAttempt(ctx, event.ID, deviceID, existing.DisplayName, true, "")
		return &Outcome{Event: event, Participant: existing, IsRejoining: true}, nil
	}

	uniqueName, err := s.uniqueDisplayName(ctx, event.ID, displayName)
	if err != nil {
		return nil, err
	}

	isLateJoiner := phase != nil && phase.IsMidQuestion(event.ID)
	participant := model.NewParticipant(event.ID, deviceID, uniqueName, avatar, isLateJoiner)
	if err := s.repo.CreateParticipant(ctx, participant); err != nil {
		return nil, fmt.Errorf("create participant: %w", err)
	}
	s.recordAttempt(ctx, event.ID, deviceID, uniqueName, true, "")

	return &Outcome{Event: event, Participant: participant, IsRejoining: false}, nil
}

// acquireGate bounds join-gate acquisition to a hard timeout; a queue
// too long to clear in time surfaces as too_many_requests rather than a
// hung request.
func (s *Service) acquireGate(eventID string) (func(), error) {
	timeout := time.Duration(s.cfg.GateAcquireTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	acquired := make(chan func(), 1)
	go func() { acquired <- s.gate.Lock(eventID) }()

	select {
	case release := <-acquired:
		return release, nil
	case <-time.After(timeout):
		go func() { (<-acquired)() }()
		return nil, &session.HubError{Kind: session.ErrTooManyRequests, Message: "join is busy for this event, try again"}
	}
}

// uniqueDisplayName disambiguates requested names: trim whitespace, then
// if the trimmed base is taken (case-sensitive), append " 2", " 3", and
// so on until unique.
func (s *Service) uniqueDisplayName(ctx context.Context, eventID uuid.UUID, requested string) (string, error) {
	base := strings.TrimSpace(requested)
	existing, err := s.repo.GetParticipantsByEvent(ctx, eventID)
	if err != nil {
		return "", fmt.Errorf("list participants for uniquing: %w", err)
	}

	taken := make(map[string]bool, len(existing))
	for _, p := range existing {
		taken[p.DisplayName] = true
	}

	if !taken[base] {
		return base, nil
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s %d", base, i)
		if !taken[candidate] {
			return candidate, nil
		}
	}
}

func (s *Service) recordAttempt(ctx context.Context, eventID uuid.UUID, deviceID, displayName string, accepted bool, reason string) {
	attempt := model.NewJoinAttempt(eventID, deviceID, displayName, accepted, reason)
	_ = s.repo.RecordJoinAttempt(ctx, attempt)
}
