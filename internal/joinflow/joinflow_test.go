package joinflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/joingate"
	"github.com/liveqai/eventhub/internal/model"
	"github.com/liveqai/eventhub/internal/repository"
	"github.com/liveqai/eventhub/internal/session"
	"github.com/liveqai/eventhub/pkg/clock"
)

type neverMidQuestion struct{}

func (neverMidQuestion) IsMidQuestion(uuid.UUID) bool { return false }

type alwaysMidQuestion struct{}

func (alwaysMidQuestion) IsMidQuestion(uuid.UUID) bool { return true }

func newFixture(t *testing.T) (*Service, *repository.MemoryRepository, *model.Event) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	event := model.NewEvent("Friday Trivia", uuid.New())
	repo.PutEvent(event)
	clk := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := New(repo, joingate.New(), clk, Config{JoinLockGraceS: 5, GateAcquireTimeoutMs: 1000})
	return svc, repo, event
}

func TestJoinCreatesParticipant(t *testing.T) {
	svc, _, event := newFixture(t)
	out, err := svc.Join(context.Background(), event.JoinCode, "device-1", "Ada", "owl", neverMidQuestion{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.IsRejoining {
		t.Fatal("expected a fresh join, not a rejoin")
	}
	if out.Participant.DisplayName != "Ada" {
		t.Fatalf("display name = %q, want Ada", out.Participant.DisplayName)
	}
	if out.Participant.IsLateJoiner {
		t.Fatal("should not be marked a late joiner outside a question")
	}
}

func TestJoinUnknownCodeIsNotFound(t *testing.T) {
	svc, _, _ := newFixture(t)
	_, err := svc.Join(context.Background(), "NOSUCH", "device-1", "Ada", "", neverMidQuestion{})
	hubErr, ok := err.(*session.HubError)
	if !ok || hubErr.Kind != session.ErrNotFound {
		t.Fatalf("err = %v, want HubError{Kind: not_found}", err)
	}
}

func TestJoinDuplicateDisplayNameGetsSuffixed(t *testing.T) {
	svc, _, event := newFixture(t)
	ctx := context.Background()
	if _, err := svc.Join(ctx, event.JoinCode, "device-1", "Ada", "", neverMidQuestion{}); err != nil {
		t.Fatalf("first join: %v", err)
	}
	out, err := svc.Join(ctx, event.JoinCode, "device-2", "Ada", "", neverMidQuestion{})
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if out.Participant.DisplayName != "Ada 2" {
		t.Fatalf("display name = %q, want %q", out.Participant.DisplayName, "Ada 2")
	}

	out3, err := svc.Join(ctx, event.JoinCode, "device-3", "Ada", "", neverMidQuestion{})
	if err != nil {
		t.Fatalf("third join: %v", err)
	}
	if out3.Participant.DisplayName != "Ada 3" {
		t.Fatalf("display name = %q, want %q", out3.Participant.DisplayName, "Ada 3")
	}
}

func TestJoinDisplayNameIsTrimmedBeforeUniquing(t *testing.T) {
	svc, _, event := newFixture(t)
	ctx := context.Background()
	out, err := svc.Join(ctx, event.JoinCode, "device-1", "  Ada  ", "", neverMidQuestion{})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if out.Participant.DisplayName != "Ada" {
		t.Fatalf("display name = %q, want trimmed %q", out.Participant.DisplayName, "Ada")
	}
}

func TestRejoinReusesParticipantAndRefreshesToken(t *testing.T) {
	svc, _, event := newFixture(t)
	ctx := context.Background()
	first, err := svc.Join(ctx, event.JoinCode, "device-1", "Ada", "", neverMidQuestion{})
	if err != nil {
		t.Fatalf("first join: %v", err)
	}
	firstToken := first.Participant.SessionToken

	second, err := svc.Join(ctx, event.JoinCode, "device-1", "Ada", "", neverMidQuestion{})
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if !second.IsRejoining {
		t.Fatal("expected rejoin to be detected")
	}
	if second.Participant.ID != first.Participant.ID {
		t.Fatal("rejoin should reuse the same participant id")
	}
	if second.Participant.SessionToken == firstToken {
		t.Fatal("rejoin should rotate the session token")
	}
}

func TestJoinRejectsSecondActiveEventForSameDevice(t *testing.T) {
	svc, repo, event := newFixture(t)
	ctx := context.Background()
	if _, err := svc.Join(ctx, event.JoinCode, "device-1", "Ada", "", neverMidQuestion{}); err != nil {
		t.Fatalf("first join: %v", err)
	}

	other := model.NewEvent("Saturday Trivia", uuid.New())
	repo.PutEvent(other)
	_, err := svc.Join(ctx, other.JoinCode, "device-1", "Ada", "", neverMidQuestion{})
	hubErr, ok := err.(*session.HubError)
	if !ok || hubErr.Kind != session.ErrConflict {
		t.Fatalf("err = %v, want HubError{Kind: conflict}", err)
	}
}

func TestJoinLockedRejectsAfterGracePeriod(t *testing.T) {
	svc, repo, event := newFixture(t)
	ctx := context.Background()
	// Locked 6s before the fixture clock's now, past the 5s grace.
	lockedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(-6 * time.Second)
	if err := repo.SetEventJoinLock(ctx, event.ID, true, &lockedAt); err != nil {
		t.Fatalf("lock event: %v", err)
	}

	_, err := svc.Join(ctx, event.JoinCode, "device-1", "Ada", "", neverMidQuestion{})
	hubErr, ok := err.(*session.HubError)
	if !ok || hubErr.Kind != session.ErrLocked {
		t.Fatalf("err = %v, want HubError{Kind: locked}", err)
	}
}

func TestJoinLockedAllowsWithinGracePeriod(t *testing.T) {
	repo := repository.NewMemoryRepository()
	event := model.NewEvent("Friday Trivia", uuid.New())
	repo.PutEvent(event)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.NewFake(base)
	svc := New(repo, joingate.New(), clk, Config{JoinLockGraceS: 5, GateAcquireTimeoutMs: 1000})

	if err := repo.SetEventJoinLock(context.Background(), event.ID, true, &base); err != nil {
		t.Fatalf("lock event: %v", err)
	}
	clk.Advance(2 * time.Second)

	_, err := svc.Join(context.Background(), event.JoinCode, "device-1", "Ada", "", neverMidQuestion{})
	if err != nil {
		t.Fatalf("expected join within grace period to succeed, got %v", err)
	}
}

func TestJoinMidQuestionMarksLateJoiner(t *testing.T) {
	svc, _, event := newFixture(t)
	out, err := svc.Join(context.Background(), event.JoinCode, "device-1", "Ada", "", alwaysMidQuestion{})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !out.Participant.IsLateJoiner {
		t.Fatal("expected participant joining mid-question to be marked a late joiner")
	}
}
