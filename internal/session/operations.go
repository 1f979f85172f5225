package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/leaderboard"
	"github.com/liveqai/eventhub/internal/megaquiz"
	"github.com/liveqai/eventhub/internal/model"
	"github.com/liveqai/eventhub/internal/scoring"
	"github.com/liveqai/eventhub/pkg/wsproto"
)

// Join registers a connected participant. New participants get a
// connected roster and a participant_joined broadcast; participants
// already known to this session (a reconnect) get a state_restored
// snapshot instead. Either arrival may resume a paused quiz.
func (s *Session) Join(ctx context.Context, participantID uuid.UUID, displayName string) {
	now := s.clock.Now()

	s.mu.Lock()

	info, reconnect := s.state.Participants[participantID]
	if reconnect {
		info.Online = true
		if displayName != "" {
			info.DisplayName = displayName
		}
	} else {
		info = &ParticipantInfo{
			ParticipantID: participantID,
			DisplayName:   displayName,
			Online:        true,
			JoinedAt:      now,
			JoinStatus:    JoinStatusJoined,
		}
		if s.isActivePhase() {
			info.JoinStatus = JoinStatusWaitingSegment
			info.IsLateJoiner = true
		}
		s.state.Participants[participantID] = info
	}

	resumed := s.maybeResumeOnArrival(participantID, now)

	participants := s.snapshotParticipantsLocked()
	q, hasQuestion := s.state.currentQuestion()
	phase := s.state.QuizPhase
	qIndex := s.state.CurrentQuestionIndex
	totalQ := s.state.TotalQuestions
	timeLimit := s.state.TimeLimitMs
	startedAt := s.state.QuestionStartedAt
	yourAnswer := s.state.AnswersReceived[participantID]

	s.mu.Unlock()

	if reconnect {
		var qID *uuid.UUID
		var startedAtUnix *int64
		if hasQuestion {
			id := q.QuestionID
			qID = &id
			ts := startedAt.UnixMilli()
			startedAtUnix = &ts
		}
		s.sendTo(participantID, wsproto.TypeStateRestored, wsproto.StateRestoredPayload{
			SegmentID:         s.currentSegmentIDSnapshot(),
			Phase:             string(phase),
			CurrentQuestionID: qID,
			CurrentQuestion:   q.Text,
			TimeLimitMs:       timeLimit,
			QuestionStartedAt: startedAtUnix,
			YourScore:         s.participantScore(ctx, participantID),
			YourAnswer:        yourAnswer,
			Participants:      participants,
		})
	} else {
		s.sendTo(participantID, wsproto.TypeConnected, wsproto.ConnectedPayload{Participants: participants})
		s.broadcast(wsproto.TypeParticipantJoined, wsproto.ParticipantInfo{
			UserID:      participantID,
			DisplayName: displayName,
			Online:      true,
		})
	}

	if resumed {
		s.broadcast(wsproto.TypePresenterResumed, struct{}{})
		s.emitPhaseChanged()
		if hasQuestion {
			s.broadcastQuestion(q, qIndex, totalQ, timeLimit)
		}
	}
}

func (s *Session) currentSegmentIDSnapshot() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentSegmentID
}

// participantScore reads the participant's accumulated event total for a
// state_restored snapshot. A persistence failure degrades to 0 rather
// than blocking the reconnect.
func (s *Session) participantScore(ctx context.Context, participantID uuid.UUID) int {
	scores, err := s.repo.GetEventLeaderboard(ctx, s.eventID)
	if err != nil {
		return 0
	}
	for _, sc := range scores {
		if sc.ParticipantID == participantID {
			return sc.Score
		}
	}
	return 0
}

// maybeResumeOnArrival handles the two arrival-triggered resume cases:
// an audience member showing up while paused for lack of one, and the
// missing presenter coming back. Caller must already hold s.mu.
func (s *Session) maybeResumeOnArrival(participantID uuid.UUID, now time.Time) bool {
	if !s.state.PresenterPaused {
		return false
	}
	switch s.state.PresenterPauseReason {
	case PauseNoParticipants:
		if participantID != s.state.CurrentPresenterID {
			s.resumeFromPauseLocked(now)
			return true
		}
	case PausePresenterDisconnected:
		if participantID == s.state.CurrentPresenterID {
			s.resumeFromPauseLocked(now)
			return true
		}
	}
	return false
}

// resumeFromPauseLocked clears the pause and resets question_started_at
// to now; the question index is untouched. Caller must hold s.mu.
func (s *Session) resumeFromPauseLocked(now time.Time) {
	s.state.PresenterPaused = false
	s.state.PresenterPauseReason = PauseNone
	s.state.QuizPhase = PhaseShowingQuestion
	s.state.QuestionStartedAt = now
}

func (s *Session) enterPause(reason PauseReason) {
	s.state.PresenterPaused = true
	s.state.PresenterPauseReason = reason
	s.state.QuizPhase = PhasePresenterPaused
}

func (s *Session) snapshotParticipantsLocked() []wsproto.ParticipantInfo {
	out := make([]wsproto.ParticipantInfo, 0, len(s.state.Participants))
	for _, p := range s.state.Participants {
		out = append(out, wsproto.ParticipantInfo{
			UserID:      p.ParticipantID,
			DisplayName: p.DisplayName,
			Online:      p.Online,
		})
	}
	return out
}

func (s *Session) broadcastQuestion(q ActiveQuestion, index, total, timeLimitMs int) {
	s.broadcast(wsproto.TypeQuestion, wsproto.QuestionPayload{
		QuestionID:     q.QuestionID,
		QuestionNumber: index + 1,
		TotalQuestions: total,
		Text:           q.Text,
		Answers:        q.Options,
		TimeLimitMs:    timeLimitMs,
	})
}

// Answer admits or rejects a submission in a fixed check order (stale,
// paused, late join, duplicate, too late) and, on success, records and
// scores it.
func (s *Session) Answer(ctx context.Context, participantID, questionID uuid.UUID, selected string, now time.Time) error {
	s.mu.Lock()

	if s.state.CurrentQuestionID == uuid.Nil || questionID != s.state.CurrentQuestionID {
		s.mu.Unlock()
		return newError(ErrStale, "no active question or question_id mismatch")
	}
	if s.state.PresenterPaused {
		s.mu.Unlock()
		return newError(ErrPaused, "quiz is paused")
	}
	info, known := s.state.Participants[participantID]
	if !known {
		s.mu.Unlock()
		return newError(ErrUnauthorized, "participant not registered with this session")
	}
	if info.JoinedAt.After(s.state.QuestionStartedAt) {
		s.mu.Unlock()
		return newError(ErrLateJoin, "joined after the current question started")
	}
	if _, answered := s.state.AnswersReceived[participantID]; answered {
		s.mu.Unlock()
		return newError(ErrDuplicate, "already answered this question")
	}

	elapsedMs := now.Sub(s.state.QuestionStartedAt).Milliseconds()
	if elapsedMs >= int64(s.state.TimeLimitMs+s.cfg.AnswerTimeoutGraceMs) {
		s.mu.Unlock()
		return newError(ErrTooLate, "answer window has closed")
	}

	s.state.AnswersReceived[participantID] = selected
	q, _ := s.state.currentQuestion()
	isCorrect := selected == q.CorrectAnswer
	responseTimeMs := int(elapsedMs)
	delta := scoring.ScoreAnswer(s.state.TimeLimitMs, responseTimeMs, isCorrect)
	segmentID := s.state.CurrentSegmentID

	s.mu.Unlock()

	correctInc := 0
	if isCorrect {
		correctInc = 1
	}
	if err := s.repo.UpsertSegmentScore(ctx, segmentID, participantID, delta, correctInc, int64(responseTimeMs)); err != nil {
		return fmt.Errorf("upsert segment score: %w", err)
	}

	s.broadcast(wsproto.TypeAnswerReceived, map[string]any{"user_id": participantID})
	return nil
}

// StartGame initializes the question sequence for the segment currently
// marked active and transitions to showing_question, or presenter_paused
// if no non-presenter participant is connected yet.
func (s *Session) StartGame(ctx context.Context, callerID uuid.UUID) error {
	s.mu.Lock()
	if !s.isHostOrPresenter(callerID) {
		s.mu.Unlock()
		return newError(ErrUnauthorized, "only the host or presenter may start the game")
	}
	segment := s.activeSegmentLocked()
	if segment == nil {
		s.mu.Unlock()
		return newError(ErrInvalidTransition, "no segment is ready to start")
	}
	s.mu.Unlock()

	questions, err := s.loadSegmentQuestions(ctx, segment.ID)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		s.NoQuestionsGenerated(segment.ID)
		return newError(ErrInvalidTransition, "segment has no generated questions")
	}

	now := s.clock.Now()
	timeLimitMs := s.cfg.TimePerQuestionS * 1000

	s.mu.Lock()
	s.state.CurrentSegmentID = segment.ID
	s.state.CurrentPresenterID = segment.PresenterID
	s.state.Questions = questions
	s.state.TotalQuestions = len(questions)
	s.state.CurrentQuestionIndex = 0
	s.state.CurrentQuestionID = questions[0].QuestionID
	s.state.TimeLimitMs = timeLimitMs
	s.state.QuestionStartedAt = now
	s.state.AnswersReceived = make(map[uuid.UUID]string)

	noParticipants := s.state.ConnectedParticipantCount(segment.PresenterID) == 0
	if noParticipants {
		s.enterPause(PauseNoParticipants)
	} else {
		s.state.QuizPhase = PhaseShowingQuestion
	}
	q := questions[0]
	total := s.state.TotalQuestions
	s.mu.Unlock()

	if err := s.repo.SetSegmentStatus(ctx, segment.ID, model.SegmentStatusActive); err != nil {
		return fmt.Errorf("set segment active: %w", err)
	}

	s.broadcast(wsproto.TypeGameStarted, map[string]any{"segment_id": segment.ID})
	s.emitPhaseChanged()
	if !noParticipants {
		s.broadcastQuestion(q, 0, total, timeLimitMs)
	} else {
		s.broadcast(wsproto.TypePresenterPaused, wsproto.PresenterPausedPayload{Reason: string(PauseNoParticipants)})
	}
	return nil
}

// activeSegmentLocked returns the segment whose Status is ACTIVE, the
// segment the recording/transcription pipeline has already promoted to
// quiz-ready play. Caller must hold s.mu.
func (s *Session) activeSegmentLocked() *model.Segment {
	for i := range s.segments {
		if s.segments[i].Status == model.SegmentStatusActive {
			return &s.segments[i]
		}
	}
	return nil
}

// zeroFillCurrentQuestion records a zero-score "answered" entry for every
// participant who missed the current question, idempotent per question
// via ScoredQuestionIDs so repeated advance signals cannot double-count.
func (s *Session) zeroFillCurrentQuestion(ctx context.Context) error {
	s.mu.Lock()
	qID := s.state.CurrentQuestionID
	if qID == uuid.Nil || s.state.ScoredQuestionIDs[qID] {
		s.mu.Unlock()
		return nil
	}
	s.state.ScoredQuestionIDs[qID] = true

	var toZero []uuid.UUID
	for pid, info := range s.state.Participants {
		if info.JoinStatus == JoinStatusSegmentComplete {
			continue
		}
		if _, answered := s.state.AnswersReceived[pid]; answered {
			continue
		}
		toZero = append(toZero, pid)
		if info.JoinStatus == JoinStatusWaitingSegment {
			info.JoinStatus = JoinStatusActiveInQuiz
		}
	}
	segmentID := s.state.CurrentSegmentID
	s.mu.Unlock()

	for _, pid := range toZero {
		if err := s.repo.UpsertSegmentScore(ctx, segmentID, pid, 0, 0, 0); err != nil {
			return fmt.Errorf("zero-fill participant %s: %w", pid, err)
		}
	}
	return nil
}

func (s *Session) buildDistribution(options []string, answers map[uuid.UUID]string) []wsproto.DistributionItem {
	total := len(answers)
	counts := make(map[string]int, len(options))
	for _, a := range answers {
		counts[a]++
	}
	items := make([]wsproto.DistributionItem, 0, len(options))
	for _, opt := range options {
		pct := 0.0
		if total > 0 {
			pct = float64(counts[opt]) / float64(total) * 100
		}
		items = append(items, wsproto.DistributionItem{Answer: opt, Count: counts[opt], Percentage: pct})
	}
	return items
}

func (s *Session) displayName(participantID uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info, ok := s.state.Participants[participantID]; ok {
		return info.DisplayName
	}
	return ""
}

func (s *Session) toLeaderboardEntries(scores []model.SegmentScore) []wsproto.LeaderboardEntry {
	ranked := leaderboard.Build(toEntries(scores))
	out := make([]wsproto.LeaderboardEntry, len(ranked))
	for i, r := range ranked {
		out[i] = wsproto.LeaderboardEntry{
			ParticipantID:       r.ParticipantID,
			DisplayName:         s.displayName(r.ParticipantID),
			Score:               r.Score,
			TotalResponseTimeMs: r.TotalResponseTimeMs,
			Rank:                r.Rank,
		}
	}
	return out
}

// toLeaderboardEntriesLocked is toLeaderboardEntries for callers that
// already hold s.mu (displayName would deadlock on it).
func (s *Session) toLeaderboardEntriesLocked(scores []model.SegmentScore) []wsproto.LeaderboardEntry {
	ranked := leaderboard.Build(toEntries(scores))
	out := make([]wsproto.LeaderboardEntry, len(ranked))
	for i, r := range ranked {
		out[i] = wsproto.LeaderboardEntry{
			ParticipantID:       r.ParticipantID,
			DisplayName:         s.displayNameLocked(r.ParticipantID),
			Score:               r.Score,
			TotalResponseTimeMs: r.TotalResponseTimeMs,
			Rank:                r.Rank,
		}
	}
	return out
}

func toEntries(scores []model.SegmentScore) []leaderboard.Entry {
	out := make([]leaderboard.Entry, len(scores))
	for i, sc := range scores {
		out[i] = leaderboard.Entry{
			ParticipantID:       sc.ParticipantID,
			Score:               sc.Score,
			TotalResponseTimeMs: sc.TotalResponseTimeMs,
		}
	}
	return out
}

// RevealAnswer zero-fills the current question, computes the answer
// distribution, and broadcasts reveal with fresh segment+event
// leaderboards.
func (s *Session) RevealAnswer(ctx context.Context, callerID uuid.UUID) error {
	s.mu.Lock()
	if !s.isHostOrPresenter(callerID) {
		s.mu.Unlock()
		return newError(ErrUnauthorized, "only the host or presenter may reveal the answer")
	}
	q, hasQuestion := s.state.currentQuestion()
	if !hasQuestion {
		s.mu.Unlock()
		return newError(ErrInvalidTransition, "no active question to reveal")
	}
	answers := make(map[uuid.UUID]string, len(s.state.AnswersReceived))
	for k, v := range s.state.AnswersReceived {
		answers[k] = v
	}
	segmentID := s.state.CurrentSegmentID
	qIndex := s.state.CurrentQuestionIndex
	s.mu.Unlock()

	if err := s.zeroFillCurrentQuestion(ctx); err != nil {
		return err
	}

	segScores, err := s.repo.GetSegmentLeaderboard(ctx, segmentID)
	if err != nil {
		return fmt.Errorf("get segment leaderboard: %w", err)
	}
	evtScores, err := s.repo.GetEventLeaderboard(ctx, s.eventID)
	if err != nil {
		return fmt.Errorf("get event leaderboard: %w", err)
	}

	s.mu.Lock()
	s.state.QuizPhase = PhaseRevealingAnswer
	s.mu.Unlock()

	s.broadcast(wsproto.TypeReveal, wsproto.RevealPayload{
		QuestionID:         q.QuestionID,
		QuestionNumber:     qIndex + 1,
		QuestionText:       q.Text,
		CorrectAnswer:      q.CorrectAnswer,
		Distribution:       s.buildDistribution(q.Options, answers),
		SegmentLeaderboard: s.toLeaderboardEntries(segScores),
		EventLeaderboard:   s.toLeaderboardEntries(evtScores),
	})
	s.emitPhaseChanged()
	return nil
}

// NextQuestion zero-fills the current question then advances to the next
// question or, if it was the last, to segment_complete.
func (s *Session) NextQuestion(ctx context.Context, callerID uuid.UUID) error {
	s.mu.Lock()
	if !s.isHostOrPresenter(callerID) {
		s.mu.Unlock()
		return newError(ErrUnauthorized, "only the host or presenter may advance the question")
	}
	s.mu.Unlock()

	if err := s.zeroFillCurrentQuestion(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	nextIndex := s.state.CurrentQuestionIndex + 1
	if nextIndex >= len(s.state.Questions) {
		s.mu.Unlock()
		return s.endSegment(ctx)
	}

	q := s.state.Questions[nextIndex]
	s.state.CurrentQuestionIndex = nextIndex
	s.state.CurrentQuestionID = q.QuestionID
	s.state.QuestionStartedAt = s.clock.Now()
	s.state.AnswersReceived = make(map[uuid.UUID]string)
	s.state.QuizPhase = PhaseShowingQuestion
	timeLimit := s.state.TimeLimitMs
	total := s.state.TotalQuestions
	s.mu.Unlock()

	s.emitPhaseChanged()
	s.broadcastQuestion(q, nextIndex, total, timeLimit)
	return nil
}

// ShowLeaderboard broadcasts an explicit leaderboard frame without
// otherwise altering question admission state.
func (s *Session) ShowLeaderboard(ctx context.Context, callerID uuid.UUID) error {
	s.mu.Lock()
	if !s.isHostOrPresenter(callerID) {
		s.mu.Unlock()
		return newError(ErrUnauthorized, "only the host or presenter may show the leaderboard")
	}
	s.state.QuizPhase = PhaseShowingLeaderboard
	s.mu.Unlock()

	scores, err := s.repo.GetEventLeaderboard(ctx, s.eventID)
	if err != nil {
		return fmt.Errorf("get event leaderboard: %w", err)
	}
	s.broadcast(wsproto.TypeLeaderboard, wsproto.LeaderboardPayload{Rankings: s.toLeaderboardEntries(scores)})
	s.emitPhaseChanged()
	return nil
}

// EndGame ends the current segment outright, regardless of which
// question it is on.
func (s *Session) EndGame(ctx context.Context, callerID uuid.UUID) error {
	s.mu.Lock()
	if !s.isHostOrPresenter(callerID) {
		s.mu.Unlock()
		return newError(ErrUnauthorized, "only the host or presenter may end the game")
	}
	s.mu.Unlock()

	if err := s.zeroFillCurrentQuestion(ctx); err != nil {
		return err
	}
	s.broadcast(wsproto.TypeGameEnded, map[string]any{"ended_by": callerID})
	return s.endSegment(ctx)
}

// endSegment marks the current segment completed, broadcasts its
// completion payload, and if every segment of the event is now
// completed, runs the mega-quiz projection.
func (s *Session) endSegment(ctx context.Context) error {
	s.mu.Lock()
	segmentID := s.state.CurrentSegmentID
	s.state.QuizPhase = PhaseSegmentComplete
	s.mu.Unlock()

	if segmentID == uuid.Nil {
		return newError(ErrInvalidTransition, "no active segment to end")
	}

	if err := s.repo.SetSegmentStatus(ctx, segmentID, model.SegmentStatusCompleted); err != nil {
		return fmt.Errorf("set segment completed: %w", err)
	}

	segScores, err := s.repo.GetSegmentLeaderboard(ctx, segmentID)
	if err != nil {
		return fmt.Errorf("get segment leaderboard: %w", err)
	}
	evtScores, err := s.repo.GetEventLeaderboard(ctx, s.eventID)
	if err != nil {
		return fmt.Errorf("get event leaderboard: %w", err)
	}

	segmentLeaderboard := s.toLeaderboardEntries(segScores)
	eventLeaderboard := s.toLeaderboardEntries(evtScores)
	var segmentWinner *wsproto.LeaderboardEntry
	if len(segmentLeaderboard) > 0 {
		segmentWinner = &segmentLeaderboard[0]
	}
	var eventLeader *wsproto.LeaderboardEntry
	if len(eventLeaderboard) > 0 {
		eventLeader = &eventLeaderboard[0]
	}

	presenterName, segmentTitle := s.segmentDisplayInfo(segmentID)

	s.broadcast(wsproto.TypeSegmentComplete, map[string]any{
		"segment_id":          segmentID,
		"segment_title":       segmentTitle,
		"presenter_name":      presenterName,
		"segment_leaderboard": segmentLeaderboard,
		"event_leaderboard":   eventLeaderboard,
		"segment_winner":      segmentWinner,
		"event_leader":        eventLeader,
	})
	s.emitPhaseChanged()

	return s.maybeFinalizeEvent(ctx)
}

func (s *Session) segmentDisplayInfo(segmentID uuid.UUID) (presenterName, title string) {
	seg, ok := s.segmentByID(segmentID)
	if !ok {
		return "", ""
	}
	return seg.PresenterName, fmt.Sprintf("Segment %d", seg.Position+1)
}

// maybeFinalizeEvent checks whether every segment of the event has
// reached completed, and if so either offers a mega-quiz round or
// finalizes the event outright.
func (s *Session) maybeFinalizeEvent(ctx context.Context) error {
	segments, err := s.repo.GetSegmentsByEvent(ctx, s.eventID)
	if err != nil {
		return fmt.Errorf("get segments by event: %w", err)
	}
	for _, seg := range segments {
		if seg.Status != model.SegmentStatusCompleted {
			return nil
		}
	}

	count, err := s.repo.CountEventQuestions(ctx, s.eventID)
	if err != nil {
		return fmt.Errorf("count event questions: %w", err)
	}

	meta := megaquiz.Metadata{
		AvailableQuestions: count,
		IsSingleSegment:    len(segments) <= 1,
		SingleSegmentMode:  s.cfg.MegaQuizSingleSegmentMode,
	}

	s.mu.Lock()
	s.segments = segments
	s.mu.Unlock()

	if megaquiz.ShouldEmitMegaQuizReady(meta) {
		s.mu.Lock()
		s.state.QuizPhase = PhaseMegaQuizReady
		s.mu.Unlock()
		s.broadcast(wsproto.TypeMegaQuizReady, wsproto.MegaQuizReadyPayload{
			AvailableQuestions: meta.AvailableQuestions,
			IsSingleSegment:    meta.IsSingleSegment,
			SingleSegmentMode:  string(meta.SingleSegmentMode),
		})
		s.emitPhaseChanged()
		return nil
	}
	return s.finalizeEvent(ctx, segments)
}

// finalizeEvent broadcasts event_complete with the final leaderboard,
// overall winner, and per-segment winners.
func (s *Session) finalizeEvent(ctx context.Context, segments []model.Segment) error {
	evtScores, err := s.repo.GetEventLeaderboard(ctx, s.eventID)
	if err != nil {
		return fmt.Errorf("get event leaderboard: %w", err)
	}
	finalLeaderboard := s.toLeaderboardEntries(evtScores)
	var winner *wsproto.LeaderboardEntry
	if len(finalLeaderboard) > 0 {
		winner = &finalLeaderboard[0]
	}

	segmentWinners := make([]wsproto.SegmentWinner, 0, len(segments))
	for _, seg := range segments {
		if seg.Status != model.SegmentStatusCompleted {
			continue
		}
		scores, err := s.repo.GetSegmentLeaderboard(ctx, seg.ID)
		if err != nil {
			return fmt.Errorf("get segment leaderboard for %s: %w", seg.ID, err)
		}
		top := leaderboard.Winner(toEntries(scores))
		if top == nil {
			continue
		}
		segmentWinners = append(segmentWinners, wsproto.SegmentWinner{
			SegmentID:     seg.ID,
			ParticipantID: top.ParticipantID,
			DisplayName:   s.displayName(top.ParticipantID),
			Score:         top.Score,
		})
	}

	s.mu.Lock()
	s.state.QuizPhase = PhaseEventComplete
	s.mu.Unlock()

	if err := s.repo.SetEventStatus(ctx, s.eventID, model.EventStatusCompleted); err != nil {
		return fmt.Errorf("set event completed: %w", err)
	}

	s.broadcast(wsproto.TypeEventComplete, wsproto.EventCompletePayload{
		FinalLeaderboard: finalLeaderboard,
		Winner:           winner,
		SegmentWinners:   segmentWinners,
	})
	s.emitPhaseChanged()
	return nil
}

// PassPresenter transfers presenter status to another currently-online
// participant, callable by the host or the current presenter.
func (s *Session) PassPresenter(callerID, nextPresenterID uuid.UUID) error {
	s.mu.Lock()

	if !s.isHostOrPresenter(callerID) {
		s.mu.Unlock()
		return newError(ErrUnauthorized, "only the host or presenter may pass the presenter role")
	}
	if nextPresenterID == s.state.CurrentPresenterID {
		s.mu.Unlock()
		return newError(ErrInvalidTransition, "cannot pass presenter role to the current presenter")
	}
	next, ok := s.state.Participants[nextPresenterID]
	if !ok || !next.Online {
		s.mu.Unlock()
		return newError(ErrInvalidTransition, "target participant is not online")
	}

	s.state.CurrentPresenterID = nextPresenterID
	nextName := next.DisplayName
	s.mu.Unlock()

	s.broadcast(wsproto.TypePresenterChanged, wsproto.PresenterChangedPayload{
		PresenterUserID: nextPresenterID,
		PresenterName:   nextName,
	})
	return nil
}

// AdminSelectPresenter is the host-only override that assigns a presenter
// for a specific segment and, if that segment is the one currently live,
// resumes a paused quiz. The new presenter is kept in the Session's
// in-memory segment list only; the repository call re-saves the
// segment's status and does not record the presenter.
func (s *Session) AdminSelectPresenter(ctx context.Context, callerID, presenterID, segmentID uuid.UUID) error {
	s.mu.Lock()
	if !s.isHost(callerID) {
		s.mu.Unlock()
		return newError(ErrUnauthorized, "only the host may assign a presenter directly")
	}
	seg, found := s.segmentByID(segmentID)
	if !found {
		s.mu.Unlock()
		return newError(ErrNotFound, "segment not found")
	}
	seg.PresenterID = presenterID

	isCurrent := segmentID == s.state.CurrentSegmentID
	var resumed bool
	if isCurrent {
		s.state.CurrentPresenterID = presenterID
		if s.state.PresenterPaused {
			s.resumeFromPauseLocked(s.clock.Now())
			resumed = true
		}
	}
	presenterName := s.displayNameLocked(presenterID)
	q, hasQuestion := s.state.currentQuestion()
	qIndex := s.state.CurrentQuestionIndex
	total := s.state.TotalQuestions
	timeLimit := s.state.TimeLimitMs
	s.mu.Unlock()

	if err := s.repo.SetSegmentStatus(ctx, segmentID, seg.Status); err != nil {
		return fmt.Errorf("persist segment status: %w", err)
	}

	s.broadcast(wsproto.TypePresenterChanged, wsproto.PresenterChangedPayload{
		PresenterUserID: presenterID,
		PresenterName:   presenterName,
	})
	if resumed {
		s.broadcast(wsproto.TypePresenterResumed, struct{}{})
		s.emitPhaseChanged()
		if hasQuestion {
			s.broadcastQuestion(q, qIndex, total, timeLimit)
		}
	}
	return nil
}

func (s *Session) displayNameLocked(participantID uuid.UUID) string {
	if info, ok := s.state.Participants[participantID]; ok {
		return info.DisplayName
	}
	return ""
}

// StartMegaQuiz aggregates questions across every segment of the event,
// shuffles them, and caps the result at count (0 = unlimited), then
// begins the mega-quiz round.
func (s *Session) StartMegaQuiz(ctx context.Context, callerID uuid.UUID, count int) error {
	s.mu.Lock()
	if !s.isHost(callerID) {
		s.mu.Unlock()
		return newError(ErrUnauthorized, "only the host may start the mega-quiz")
	}
	if s.state.QuizPhase != PhaseMegaQuizReady {
		s.mu.Unlock()
		return newError(ErrInvalidTransition, "mega-quiz is not ready")
	}
	segments := append([]model.Segment(nil), s.segments...)
	s.mu.Unlock()

	var questionsBySegment [][]model.Question
	for _, seg := range segments {
		qs, err := s.repo.GetQuestionsBySegment(ctx, seg.ID)
		if err != nil {
			return fmt.Errorf("load segment questions for mega-quiz: %w", err)
		}
		questionsBySegment = append(questionsBySegment, qs)
	}

	s.mu.Lock()
	aggregated := megaquiz.Aggregate(questionsBySegment, count, s.rng)
	questions := make([]ActiveQuestion, len(aggregated))
	for i, q := range aggregated {
		questions[i] = ActiveQuestion{
			QuestionID:    q.ID,
			Text:          q.Text,
			CorrectAnswer: q.CorrectAnswerText(),
			Options:       q.Options(),
		}
	}
	s.state.Questions = questions
	s.state.TotalQuestions = len(questions)
	s.state.CurrentQuestionIndex = 0
	s.state.TimeLimitMs = s.cfg.TimePerQuestionS * 1000
	s.state.AnswersReceived = make(map[uuid.UUID]string)
	s.state.QuizPhase = PhaseMegaQuiz

	if len(questions) == 0 {
		s.mu.Unlock()
		return s.finalizeEvent(ctx, segments)
	}

	s.state.CurrentQuestionID = questions[0].QuestionID
	s.state.QuestionStartedAt = s.clock.Now()
	q := questions[0]
	total := s.state.TotalQuestions
	timeLimit := s.state.TimeLimitMs
	s.mu.Unlock()

	s.broadcast(wsproto.TypeMegaQuizStarted, map[string]any{"total_questions": total})
	s.emitPhaseChanged()
	s.broadcastQuestion(q, 0, total, timeLimit)
	return nil
}

// SkipMegaQuiz finalizes the event using the leaderboard already in hand,
// bypassing the mega-quiz round.
func (s *Session) SkipMegaQuiz(ctx context.Context, callerID uuid.UUID) error {
	s.mu.Lock()
	if !s.isHost(callerID) {
		s.mu.Unlock()
		return newError(ErrUnauthorized, "only the host may skip the mega-quiz")
	}
	if s.state.QuizPhase != PhaseMegaQuizReady {
		s.mu.Unlock()
		return newError(ErrInvalidTransition, "mega-quiz is not ready")
	}
	segments := append([]model.Segment(nil), s.segments...)
	s.mu.Unlock()

	return s.finalizeEvent(ctx, segments)
}

// ResumeSegment brings a segment's quiz back after an interruption: for
// the segment currently loaded it lifts a presenter pause in place,
// keeping the question index; for any other segment it re-enters quiz
// play from that segment's first question. Attempts inside the
// per-segment debounce window are rejected with too_many_requests.
func (s *Session) ResumeSegment(ctx context.Context, callerID, segmentID uuid.UUID) error {
	now := s.clock.Now()
	window := time.Duration(s.cfg.SegmentResumeDebounceS) * time.Second
	if !s.segmentResume.Allow(segmentID, now, window) {
		return newError(ErrTooManyRequests, "segment resume already in progress, try again shortly")
	}

	s.mu.Lock()
	if !s.isHostOrPresenter(callerID) {
		s.mu.Unlock()
		return newError(ErrUnauthorized, "only the host or presenter may resume a segment")
	}

	if segmentID == s.state.CurrentSegmentID {
		if !s.state.PresenterPaused {
			s.mu.Unlock()
			return newError(ErrInvalidTransition, "segment is already live")
		}
		s.resumeFromPauseLocked(now)
		q, hasQuestion := s.state.currentQuestion()
		qIndex := s.state.CurrentQuestionIndex
		total := s.state.TotalQuestions
		timeLimit := s.state.TimeLimitMs
		s.mu.Unlock()

		s.broadcast(wsproto.TypePresenterResumed, struct{}{})
		s.emitPhaseChanged()
		if hasQuestion {
			s.broadcastQuestion(q, qIndex, total, timeLimit)
		}
		return nil
	}

	seg, found := s.segmentByID(segmentID)
	if !found {
		s.mu.Unlock()
		return newError(ErrNotFound, "segment not found")
	}
	presenterID := seg.PresenterID
	s.mu.Unlock()

	questions, err := s.loadSegmentQuestions(ctx, segmentID)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		s.NoQuestionsGenerated(segmentID)
		return newError(ErrInvalidTransition, "segment has no generated questions")
	}

	if err := s.repo.SetSegmentStatus(ctx, segmentID, model.SegmentStatusActive); err != nil {
		return fmt.Errorf("set segment active: %w", err)
	}

	timeLimitMs := s.cfg.TimePerQuestionS * 1000
	s.mu.Lock()
	s.state.CurrentSegmentID = segmentID
	s.state.CurrentPresenterID = presenterID
	s.state.Questions = questions
	s.state.TotalQuestions = len(questions)
	s.state.CurrentQuestionIndex = 0
	s.state.CurrentQuestionID = questions[0].QuestionID
	s.state.TimeLimitMs = timeLimitMs
	s.state.QuestionStartedAt = s.clock.Now()
	s.state.AnswersReceived = make(map[uuid.UUID]string)
	s.state.QuizPhase = PhaseShowingQuestion
	q := questions[0]
	total := s.state.TotalQuestions
	s.mu.Unlock()

	s.broadcast(wsproto.TypeGameStarted, map[string]any{"segment_id": segmentID})
	s.emitPhaseChanged()
	s.broadcastQuestion(q, 0, total, timeLimitMs)
	return nil
}

// NoQuestionsGenerated informationally notifies the event that a segment
// has no generated questions yet. It does not transition the segment's
// status; the host must explicitly end the game for this segment once
// they accept no quiz will run for it.
func (s *Session) NoQuestionsGenerated(segmentID uuid.UUID) {
	s.broadcast(wsproto.TypeNoQuestionsGenerated, map[string]any{"segment_id": segmentID})
}
