package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/liveqai/eventhub/internal/model"
	"github.com/liveqai/eventhub/pkg/wsproto"
)

func newHubFixture(t *testing.T) (*Hub, *fixture) {
	t.Helper()
	f := newFixture(t, 2)
	h := NewHub(f.repo, f.clk, DefaultConfig(), f.bc)
	return h, f
}

func TestGetOrCreateReturnsSameSession(t *testing.T) {
	h, f := newHubFixture(t)
	ctx := context.Background()

	s1, err := h.GetOrCreate(ctx, f.event.ID)
	require.NoError(t, err)
	s2, err := h.GetOrCreate(ctx, f.event.ID)
	require.NoError(t, err)
	require.Same(t, s1, s2)
}

func TestGetOrCreateUnknownEventFails(t *testing.T) {
	h, _ := newHubFixture(t)
	_, err := h.GetOrCreate(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestDispatchRoutesAnswer(t *testing.T) {
	h, f := newHubFixture(t)
	ctx := context.Background()

	s, err := h.GetOrCreate(ctx, f.event.ID)
	require.NoError(t, err)
	s.Join(ctx, f.alice, "Alice")
	s.Join(ctx, f.bob, "Bob")
	require.NoError(t, s.StartGame(ctx, f.host))

	f.clk.Advance(2 * time.Second)
	payload, err := json.Marshal(wsproto.AnswerPayload{
		QuestionID:     s.state.CurrentQuestionID,
		SelectedAnswer: "Red",
	})
	require.NoError(t, err)
	h.Dispatch(ctx, f.event.ID, f.alice, wsproto.Frame{Type: wsproto.TypeAnswer, Payload: payload}, "Alice")

	require.Equal(t, "Red", s.state.AnswersReceived[f.alice])
	require.Equal(t, 1, f.bc.count(wsproto.TypeAnswerReceived))
}

func TestDispatchSendsErrorFrameOnRejection(t *testing.T) {
	h, f := newHubFixture(t)
	ctx := context.Background()

	s, err := h.GetOrCreate(ctx, f.event.ID)
	require.NoError(t, err)
	s.Join(ctx, f.alice, "Alice")

	// Answering with no active question is a stale rejection delivered
	// only to the offending caller, not broadcast.
	payload, _ := json.Marshal(wsproto.AnswerPayload{QuestionID: uuid.New(), SelectedAnswer: "Red"})
	h.Dispatch(ctx, f.event.ID, f.alice, wsproto.Frame{Type: wsproto.TypeAnswer, Payload: payload}, "Alice")

	frame, ok := f.bc.last(wsproto.TypeError)
	require.True(t, ok, "no error frame was sent")
	require.True(t, frame.direct)
	require.Equal(t, f.alice, frame.to)
}

func TestDispatchUnknownTypeSendsErrorFrame(t *testing.T) {
	h, f := newHubFixture(t)
	ctx := context.Background()

	h.Dispatch(ctx, f.event.ID, f.alice, wsproto.Frame{Type: "teleport"}, "Alice")

	frame, ok := f.bc.last(wsproto.TypeError)
	require.True(t, ok)
	require.Equal(t, f.alice, frame.to)
}

func TestSweepEvictsOnlyIdleCompletedSessions(t *testing.T) {
	h, f := newHubFixture(t)
	ctx := context.Background()

	s, err := h.GetOrCreate(ctx, f.event.ID)
	require.NoError(t, err)

	// A live session is never swept, no matter how stale.
	f.clk.Advance(time.Hour)
	require.Empty(t, h.Sweep(5*time.Minute))

	s.mu.Lock()
	s.state.QuizPhase = PhaseEventComplete
	s.mu.Unlock()

	// Completed but recently touched: still kept.
	_, err = h.GetOrCreate(ctx, f.event.ID)
	require.NoError(t, err)
	require.Empty(t, h.Sweep(5*time.Minute))

	f.clk.Advance(6 * time.Minute)
	evicted := h.Sweep(5 * time.Minute)
	require.Equal(t, []uuid.UUID{f.event.ID}, evicted)

	_, ok := h.Session(f.event.ID)
	require.False(t, ok)
}

func TestResumeEventIsHostOnlyAndDebounced(t *testing.T) {
	h, f := newHubFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.SetEventStatus(ctx, f.event.ID, model.EventStatusCompleted))

	requireKind(t, h.ResumeEvent(ctx, f.event.ID, f.alice), ErrUnauthorized)

	f.clk.Advance(3 * time.Second)
	require.NoError(t, h.ResumeEvent(ctx, f.event.ID, f.host))
	event, err := f.repo.GetEvent(ctx, f.event.ID)
	require.NoError(t, err)
	require.Equal(t, model.EventStatusLive, event.Status)

	f.clk.Advance(time.Second)
	requireKind(t, h.ResumeEvent(ctx, f.event.ID, f.host), ErrTooManyRequests)

	f.clk.Advance(2 * time.Second)
	require.NoError(t, h.ResumeEvent(ctx, f.event.ID, f.host))
}

func TestIsMidQuestionTracksPhase(t *testing.T) {
	h, f := newHubFixture(t)
	ctx := context.Background()

	require.False(t, h.IsMidQuestion(f.event.ID))

	s, err := h.GetOrCreate(ctx, f.event.ID)
	require.NoError(t, err)
	require.False(t, h.IsMidQuestion(f.event.ID))

	s.Join(ctx, f.alice, "Alice")
	require.NoError(t, s.StartGame(ctx, f.host))
	require.True(t, h.IsMidQuestion(f.event.ID))

	require.NoError(t, s.EndGame(ctx, f.host))
	require.False(t, h.IsMidQuestion(f.event.ID))
}
