package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/liveqai/eventhub/internal/megaquiz"
	"github.com/liveqai/eventhub/internal/model"
	"github.com/liveqai/eventhub/internal/repository"
	"github.com/liveqai/eventhub/pkg/clock"
	"github.com/liveqai/eventhub/pkg/wsproto"
)

// sentFrame is one frame the fake broadcaster captured, already split
// back into its type discriminator and raw payload.
type sentFrame struct {
	to      uuid.UUID // uuid.Nil for broadcasts
	direct  bool
	kind    string
	payload json.RawMessage
}

type captureBroadcaster struct {
	mu     sync.Mutex
	frames []sentFrame
}

func (b *captureBroadcaster) record(to uuid.UUID, direct bool, raw []byte) {
	f, err := wsproto.Decode(raw)
	if err != nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = append(b.frames, sentFrame{to: to, direct: direct, kind: f.Type, payload: f.Payload})
}

func (b *captureBroadcaster) Broadcast(_ uuid.UUID, frame []byte) { b.record(uuid.Nil, false, frame) }

func (b *captureBroadcaster) SendTo(_, participantID uuid.UUID, frame []byte) {
	b.record(participantID, true, frame)
}

func (b *captureBroadcaster) last(kind string) (sentFrame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.frames) - 1; i >= 0; i-- {
		if b.frames[i].kind == kind {
			return b.frames[i], true
		}
	}
	return sentFrame{}, false
}

func (b *captureBroadcaster) count(kind string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, f := range b.frames {
		if f.kind == kind {
			n++
		}
	}
	return n
}

type fixture struct {
	ctx       context.Context
	repo      *repository.MemoryRepository
	clk       *clock.Fake
	bc        *captureBroadcaster
	sess      *Session
	event     *model.Event
	seg       *model.Segment
	questions []model.Question

	host      uuid.UUID
	presenter uuid.UUID
	alice     uuid.UUID
	bob       uuid.UUID
	carol     uuid.UUID
}

// newFixture builds a live event with one active segment carrying
// numQuestions 30-second questions whose correct answer is always "Red".
func newFixture(t *testing.T, numQuestions int) *fixture {
	t.Helper()

	repo := repository.NewMemoryRepository()
	clk := clock.NewFake(time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	bc := &captureBroadcaster{}

	host := uuid.New()
	presenter := uuid.New()

	event := model.NewEvent("Demo Night", host)
	event.Status = model.EventStatusLive
	repo.PutEvent(event)

	seg := model.NewSegment(event.ID, presenter, "Dana", 0)
	seg.Status = model.SegmentStatusActive
	repo.PutSegment(seg)

	questions := make([]model.Question, numQuestions)
	for i := range questions {
		q := model.NewQuestion(seg.ID, fmt.Sprintf("Question %d", i+1),
			[4]string{"Red", "Blue", "Green", "Yellow"}, "A", i, 30000)
		questions[i] = *q
	}
	repo.PutQuestions(seg.ID, questions)

	sess := New(event, []model.Segment{*seg}, repo, clk, DefaultConfig(), bc)

	return &fixture{
		ctx:       context.Background(),
		repo:      repo,
		clk:       clk,
		bc:        bc,
		sess:      sess,
		event:     event,
		seg:       seg,
		questions: questions,
		host:      host,
		presenter: presenter,
		alice:     uuid.New(),
		bob:       uuid.New(),
		carol:     uuid.New(),
	}
}

// startQuiz joins the audience (and optionally the presenter) and starts
// the segment's quiz as the host.
func (f *fixture) startQuiz(t *testing.T, withPresenter bool) {
	t.Helper()
	if withPresenter {
		f.sess.Join(f.ctx, f.presenter, "Dana")
	}
	f.sess.Join(f.ctx, f.alice, "Alice")
	f.sess.Join(f.ctx, f.bob, "Bob")
	f.sess.Join(f.ctx, f.carol, "Carol")
	require.NoError(t, f.sess.StartGame(f.ctx, f.host))
}

// answerAfter advances the clock by d and submits an answer to the
// current question as participantID.
func (f *fixture) answerAfter(participantID uuid.UUID, d time.Duration, selected string) error {
	f.clk.Advance(d)
	return f.sess.Answer(f.ctx, participantID, f.sess.state.CurrentQuestionID, selected, f.clk.Now())
}

func (f *fixture) segmentScore(t *testing.T, participantID uuid.UUID) *model.SegmentScore {
	t.Helper()
	scores, err := f.repo.GetSegmentLeaderboard(f.ctx, f.seg.ID)
	require.NoError(t, err)
	for i := range scores {
		if scores[i].ParticipantID == participantID {
			return &scores[i]
		}
	}
	return nil
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	hubErr, ok := err.(*HubError)
	require.True(t, ok, "expected *HubError, got %v", err)
	require.Equal(t, kind, hubErr.Kind)
}

func TestDuplicateAnswerRejected(t *testing.T) {
	f := newFixture(t, 1)
	f.startQuiz(t, false)

	require.NoError(t, f.answerAfter(f.alice, 2*time.Second, "Red"))
	err := f.answerAfter(f.alice, time.Second, "Blue")
	requireKind(t, err, ErrDuplicate)

	require.Len(t, f.sess.state.AnswersReceived, 1)
	require.Equal(t, "Red", f.sess.state.AnswersReceived[f.alice])
}

func TestAnswerTimingBoundary(t *testing.T) {
	f := newFixture(t, 1)
	f.startQuiz(t, false)

	// 29.9s with a 30s limit and 500ms grace is still inside the window.
	require.NoError(t, f.answerAfter(f.alice, 29900*time.Millisecond, "Red"))

	// 30.6s is past limit+grace.
	err := f.answerAfter(f.bob, 700*time.Millisecond, "Red")
	requireKind(t, err, ErrTooLate)
}

func TestStaleQuestionRejected(t *testing.T) {
	f := newFixture(t, 2)
	f.startQuiz(t, false)

	err := f.sess.Answer(f.ctx, f.alice, uuid.New(), "Red", f.clk.Now())
	requireKind(t, err, ErrStale)
}

func TestLateJoinerCannotAnswerCurrentQuestion(t *testing.T) {
	f := newFixture(t, 2)
	f.startQuiz(t, false)

	f.clk.Advance(5 * time.Second)
	dave := uuid.New()
	f.sess.Join(f.ctx, dave, "Dave")

	err := f.sess.Answer(f.ctx, dave, f.sess.state.CurrentQuestionID, "Red", f.clk.Now())
	requireKind(t, err, ErrLateJoin)

	// The next question starts after their join, so they are admitted.
	require.NoError(t, f.sess.NextQuestion(f.ctx, f.host))
	require.NoError(t, f.answerAfter(dave, time.Second, "Red"))
}

func TestZeroFillIsIdempotent(t *testing.T) {
	f := newFixture(t, 2)
	f.startQuiz(t, false)

	require.NoError(t, f.answerAfter(f.alice, 2*time.Second, "Red"))

	// Reveal zero-fills Bob and Carol; advancing must not do it again.
	require.NoError(t, f.sess.RevealAnswer(f.ctx, f.host))
	require.NoError(t, f.sess.NextQuestion(f.ctx, f.host))

	for _, pid := range []uuid.UUID{f.bob, f.carol} {
		sc := f.segmentScore(t, pid)
		require.NotNil(t, sc)
		require.Equal(t, 1, sc.QuestionsAnswered)
		require.Equal(t, 0, sc.QuestionsCorrect)
		require.Equal(t, 0, sc.Score)
	}
}

// TestTwoQuestionQuiz plays the S1/S2 scenario end to end and asserts
// the exact speed-weighted scores.
func TestTwoQuestionQuiz(t *testing.T) {
	f := newFixture(t, 2)
	f.startQuiz(t, false)

	// Q1: Alice correct at 2s, Bob wrong at 5s, Carol silent.
	require.NoError(t, f.answerAfter(f.alice, 2*time.Second, "Red"))
	require.NoError(t, f.answerAfter(f.bob, 3*time.Second, "Blue"))
	require.NoError(t, f.sess.RevealAnswer(f.ctx, f.host))
	require.NoError(t, f.sess.NextQuestion(f.ctx, f.host))

	require.Equal(t, 933, f.segmentScore(t, f.alice).Score)
	require.Equal(t, 0, f.segmentScore(t, f.bob).Score)
	require.Equal(t, 0, f.segmentScore(t, f.carol).Score)

	// Q2: Alice correct at 10s, Carol correct at 3s, Bob times out.
	require.NoError(t, f.answerAfter(f.alice, 10*time.Second, "Red"))
	require.NoError(t, f.sess.Answer(f.ctx, f.carol, f.sess.state.CurrentQuestionID, "Red",
		f.sess.state.QuestionStartedAt.Add(3*time.Second)))
	require.NoError(t, f.sess.EndGame(f.ctx, f.host))

	require.Equal(t, 933+666, f.segmentScore(t, f.alice).Score)
	require.Equal(t, 900, f.segmentScore(t, f.carol).Score)
	require.Equal(t, 0, f.segmentScore(t, f.bob).Score)
	require.Equal(t, 2, f.segmentScore(t, f.bob).QuestionsAnswered)

	frame, ok := f.bc.last(wsproto.TypeSegmentComplete)
	require.True(t, ok, "segment_complete was never broadcast")
	var payload struct {
		EventLeaderboard []wsproto.LeaderboardEntry `json:"event_leaderboard"`
	}
	require.NoError(t, json.Unmarshal(frame.payload, &payload))
	require.Equal(t, f.alice, payload.EventLeaderboard[0].ParticipantID)
	require.Equal(t, 1599, payload.EventLeaderboard[0].Score)
}

func TestRevealBroadcastsDistribution(t *testing.T) {
	f := newFixture(t, 1)
	f.startQuiz(t, false)

	require.NoError(t, f.answerAfter(f.alice, time.Second, "Red"))
	require.NoError(t, f.answerAfter(f.bob, time.Second, "Red"))
	require.NoError(t, f.answerAfter(f.carol, time.Second, "Blue"))
	require.NoError(t, f.sess.RevealAnswer(f.ctx, f.host))

	frame, ok := f.bc.last(wsproto.TypeReveal)
	require.True(t, ok)
	var payload wsproto.RevealPayload
	require.NoError(t, json.Unmarshal(frame.payload, &payload))
	require.Equal(t, "Red", payload.CorrectAnswer)

	total := 0.0
	byAnswer := make(map[string]wsproto.DistributionItem)
	for _, item := range payload.Distribution {
		total += item.Percentage
		byAnswer[item.Answer] = item
	}
	require.InDelta(t, 100.0, total, 0.001)
	require.Equal(t, 2, byAnswer["Red"].Count)
	require.Equal(t, 1, byAnswer["Blue"].Count)
	require.Equal(t, 0, byAnswer["Green"].Count)
}

func TestPausedAnswersRejectedAndResumeKeepsIndex(t *testing.T) {
	f := newFixture(t, 3)
	f.startQuiz(t, true)
	require.NoError(t, f.sess.NextQuestion(f.ctx, f.host))
	require.Equal(t, 1, f.sess.state.CurrentQuestionIndex)

	f.sess.Disconnect(f.presenter)
	require.True(t, f.sess.state.PresenterPaused)
	require.Equal(t, PausePresenterDisconnected, f.sess.state.PresenterPauseReason)
	require.Equal(t, PhasePresenterPaused, f.sess.Phase())

	err := f.answerAfter(f.alice, time.Second, "Red")
	requireKind(t, err, ErrPaused)

	// The same presenter reconnecting resumes the same question with a
	// fresh started-at timestamp.
	f.clk.Advance(10 * time.Second)
	resumeAt := f.clk.Now()
	f.sess.Join(f.ctx, f.presenter, "Dana")

	require.False(t, f.sess.state.PresenterPaused)
	require.Equal(t, PhaseShowingQuestion, f.sess.Phase())
	require.Equal(t, 1, f.sess.state.CurrentQuestionIndex)
	require.Equal(t, resumeAt, f.sess.state.QuestionStartedAt)

	require.NoError(t, f.answerAfter(f.alice, time.Second, "Red"))
}

func TestPresenterDisconnectNotifiesHost(t *testing.T) {
	f := newFixture(t, 1)
	f.startQuiz(t, true)

	f.sess.Disconnect(f.presenter)

	_, ok := f.bc.last(wsproto.TypePresenterDisconnected)
	require.True(t, ok, "presenter_disconnected was never broadcast")

	frame, ok := f.bc.last(wsproto.TypePresenterOverrideNeeded)
	require.True(t, ok, "host was never offered an override")
	require.True(t, frame.direct)
	require.Equal(t, f.host, frame.to)
}

func TestStartGameWithoutAudiencePausesThenResumesOnArrival(t *testing.T) {
	f := newFixture(t, 1)
	f.sess.Join(f.ctx, f.presenter, "Dana")
	require.NoError(t, f.sess.StartGame(f.ctx, f.host))

	require.True(t, f.sess.state.PresenterPaused)
	require.Equal(t, PauseNoParticipants, f.sess.state.PresenterPauseReason)

	f.clk.Advance(3 * time.Second)
	f.sess.Join(f.ctx, f.alice, "Alice")

	require.False(t, f.sess.state.PresenterPaused)
	require.Equal(t, PhaseShowingQuestion, f.sess.Phase())
	require.NoError(t, f.answerAfter(f.alice, time.Second, "Red"))
}

// TestReconnectRestoresState is scenario S5: an answered question and its
// score survive a dropped connection, and the reconnector is not demoted
// to late joiner.
func TestReconnectRestoresState(t *testing.T) {
	f := newFixture(t, 1)
	f.startQuiz(t, false)

	require.NoError(t, f.answerAfter(f.alice, 2*time.Second, "Red"))
	f.clk.Advance(time.Second)
	f.sess.Disconnect(f.alice)

	f.clk.Advance(7 * time.Second)
	f.sess.Join(f.ctx, f.alice, "")

	frame, ok := f.bc.last(wsproto.TypeStateRestored)
	require.True(t, ok, "state_restored was never sent")
	require.Equal(t, f.alice, frame.to)

	var payload wsproto.StateRestoredPayload
	require.NoError(t, json.Unmarshal(frame.payload, &payload))
	require.Equal(t, 933, payload.YourScore)
	require.Equal(t, "Red", payload.YourAnswer)

	info := f.sess.state.Participants[f.alice]
	require.False(t, info.IsLateJoiner)
	require.True(t, info.Online)
}

func TestCompletionProjection(t *testing.T) {
	t.Run("questions available offers mega quiz", func(t *testing.T) {
		f := newFixture(t, 2)
		f.startQuiz(t, false)
		require.NoError(t, f.sess.EndGame(f.ctx, f.host))

		require.Equal(t, PhaseMegaQuizReady, f.sess.Phase())
		frame, ok := f.bc.last(wsproto.TypeMegaQuizReady)
		require.True(t, ok)
		var payload wsproto.MegaQuizReadyPayload
		require.NoError(t, json.Unmarshal(frame.payload, &payload))
		require.Equal(t, 2, payload.AvailableQuestions)
		require.True(t, payload.IsSingleSegment)
	})

	t.Run("no questions completes the event", func(t *testing.T) {
		f := newFixture(t, 1)
		f.startQuiz(t, false)
		require.NoError(t, f.answerAfter(f.alice, 2*time.Second, "Red"))

		// Simulate the projector running with an empty question pool.
		f.repo.PutQuestions(f.seg.ID, nil)
		require.NoError(t, f.repo.SetSegmentStatus(f.ctx, f.seg.ID, model.SegmentStatusCompleted))
		require.NoError(t, f.sess.maybeFinalizeEvent(f.ctx))

		require.Equal(t, PhaseEventComplete, f.sess.Phase())
		frame, ok := f.bc.last(wsproto.TypeEventComplete)
		require.True(t, ok)
		var payload wsproto.EventCompletePayload
		require.NoError(t, json.Unmarshal(frame.payload, &payload))
		require.NotNil(t, payload.Winner)
		require.Equal(t, f.alice, payload.Winner.ParticipantID)

		event, err := f.repo.GetEvent(f.ctx, f.event.ID)
		require.NoError(t, err)
		require.Equal(t, model.EventStatusCompleted, event.Status)
	})
}

// TestMegaQuizReadyWithSkipModeAndMultipleSegments is scenario S3: the
// offer is emitted whenever questions exist, even with skip configured.
func TestMegaQuizReadyWithSkipModeAndMultipleSegments(t *testing.T) {
	f := newFixture(t, 3)

	seg2 := model.NewSegment(f.event.ID, uuid.New(), "Elif", 1)
	seg2.Status = model.SegmentStatusCompleted
	f.repo.PutSegment(seg2)
	questions2 := make([]model.Question, 3)
	for i := range questions2 {
		q := model.NewQuestion(seg2.ID, fmt.Sprintf("Bonus %d", i+1),
			[4]string{"Red", "Blue", "Green", "Yellow"}, "A", i, 30000)
		questions2[i] = *q
	}
	f.repo.PutQuestions(seg2.ID, questions2)

	cfg := DefaultConfig()
	cfg.MegaQuizSingleSegmentMode = megaquiz.ModeSkip
	f.sess = New(f.event, []model.Segment{*f.seg, *seg2}, f.repo, f.clk, cfg, f.bc)

	f.startQuiz(t, false)
	require.NoError(t, f.sess.EndGame(f.ctx, f.host))

	frame, ok := f.bc.last(wsproto.TypeMegaQuizReady)
	require.True(t, ok, "mega_quiz_ready was never broadcast")
	var payload wsproto.MegaQuizReadyPayload
	require.NoError(t, json.Unmarshal(frame.payload, &payload))
	require.Equal(t, 6, payload.AvailableQuestions)
	require.False(t, payload.IsSingleSegment)
	require.Equal(t, string(megaquiz.ModeSkip), payload.SingleSegmentMode)
}

func TestMegaQuizControlsAreHostOnly(t *testing.T) {
	f := newFixture(t, 2)
	f.startQuiz(t, false)
	require.NoError(t, f.sess.EndGame(f.ctx, f.host))
	require.Equal(t, PhaseMegaQuizReady, f.sess.Phase())

	requireKind(t, f.sess.StartMegaQuiz(f.ctx, f.alice, 0), ErrUnauthorized)
	requireKind(t, f.sess.SkipMegaQuiz(f.ctx, f.alice), ErrUnauthorized)

	require.NoError(t, f.sess.StartMegaQuiz(f.ctx, f.host, 1))
	require.Equal(t, PhaseMegaQuiz, f.sess.Phase())
	require.Equal(t, 1, f.sess.state.TotalQuestions)
}

func TestSkipMegaQuizFinalizesEvent(t *testing.T) {
	f := newFixture(t, 1)
	f.startQuiz(t, false)
	require.NoError(t, f.answerAfter(f.alice, 2*time.Second, "Red"))
	require.NoError(t, f.sess.EndGame(f.ctx, f.host))
	require.Equal(t, PhaseMegaQuizReady, f.sess.Phase())

	require.NoError(t, f.sess.SkipMegaQuiz(f.ctx, f.host))
	require.Equal(t, PhaseEventComplete, f.sess.Phase())

	frame, ok := f.bc.last(wsproto.TypeEventComplete)
	require.True(t, ok)
	var payload wsproto.EventCompletePayload
	require.NoError(t, json.Unmarshal(frame.payload, &payload))
	require.Len(t, payload.SegmentWinners, 1)
	require.Equal(t, f.alice, payload.SegmentWinners[0].ParticipantID)
}

func TestControlOperationsRequireHostOrPresenter(t *testing.T) {
	f := newFixture(t, 2)
	f.startQuiz(t, true)

	requireKind(t, f.sess.NextQuestion(f.ctx, f.alice), ErrUnauthorized)
	requireKind(t, f.sess.RevealAnswer(f.ctx, f.alice), ErrUnauthorized)
	requireKind(t, f.sess.EndGame(f.ctx, f.alice), ErrUnauthorized)

	// The presenter may drive the quiz.
	require.NoError(t, f.sess.RevealAnswer(f.ctx, f.presenter))
	require.NoError(t, f.sess.NextQuestion(f.ctx, f.presenter))
}

func TestPassPresenterRules(t *testing.T) {
	f := newFixture(t, 1)
	f.startQuiz(t, true)

	requireKind(t, f.sess.PassPresenter(f.presenter, f.presenter), ErrInvalidTransition)

	offline := uuid.New()
	requireKind(t, f.sess.PassPresenter(f.presenter, offline), ErrInvalidTransition)

	require.NoError(t, f.sess.PassPresenter(f.presenter, f.alice))
	require.Equal(t, f.alice, f.sess.state.CurrentPresenterID)

	frame, ok := f.bc.last(wsproto.TypePresenterChanged)
	require.True(t, ok)
	var payload wsproto.PresenterChangedPayload
	require.NoError(t, json.Unmarshal(frame.payload, &payload))
	require.Equal(t, f.alice, payload.PresenterUserID)
	require.Equal(t, "Alice", payload.PresenterName)
}

func TestAdminSelectPresenterResumesPause(t *testing.T) {
	f := newFixture(t, 1)
	f.startQuiz(t, true)
	f.sess.Disconnect(f.presenter)
	require.True(t, f.sess.state.PresenterPaused)

	requireKind(t, f.sess.AdminSelectPresenter(f.ctx, f.alice, f.bob, f.seg.ID), ErrUnauthorized)

	require.NoError(t, f.sess.AdminSelectPresenter(f.ctx, f.host, f.bob, f.seg.ID))
	require.False(t, f.sess.state.PresenterPaused)
	require.Equal(t, f.bob, f.sess.state.CurrentPresenterID)
	require.Equal(t, PhaseShowingQuestion, f.sess.Phase())
}

func TestResumeSegmentIsDebounced(t *testing.T) {
	f := newFixture(t, 1)
	f.startQuiz(t, true)
	f.sess.Disconnect(f.presenter)
	require.True(t, f.sess.state.PresenterPaused)

	require.NoError(t, f.sess.ResumeSegment(f.ctx, f.host, f.seg.ID))
	require.Equal(t, PhaseShowingQuestion, f.sess.Phase())

	// Immediately re-pausing and retrying inside the 2s window trips the
	// debounce before any state is touched.
	f.sess.Disconnect(f.presenter)
	f.clk.Advance(time.Second)
	requireKind(t, f.sess.ResumeSegment(f.ctx, f.host, f.seg.ID), ErrTooManyRequests)

	f.clk.Advance(2 * time.Second)
	require.NoError(t, f.sess.ResumeSegment(f.ctx, f.host, f.seg.ID))
}

func TestJoinBroadcastsRoster(t *testing.T) {
	f := newFixture(t, 1)

	f.sess.Join(f.ctx, f.alice, "Alice")

	frame, ok := f.bc.last(wsproto.TypeConnected)
	require.True(t, ok)
	require.Equal(t, f.alice, frame.to)

	f.sess.Join(f.ctx, f.bob, "Bob")
	joined, ok := f.bc.last(wsproto.TypeParticipantJoined)
	require.True(t, ok)
	require.False(t, joined.direct)

	var payload wsproto.ParticipantInfo
	require.NoError(t, json.Unmarshal(joined.payload, &payload))
	require.Equal(t, f.bob, payload.UserID)
}
