package session

import (
	"context"
	"fmt"

	"github.com/liveqai/eventhub/pkg/wsproto"
)

// Snapshot builds a read-only view of the session for the spectator
// dashboard's long-poll endpoint, deliberately omitting every
// participant-specific field a live websocket push would carry (no
// your_score, no your_answer: this is for a screen nobody owns).
func (s *Session) Snapshot(ctx context.Context) (wsproto.SpectatorSnapshotPayload, error) {
	scores, err := s.repo.GetEventLeaderboard(ctx, s.eventID)
	if err != nil {
		return wsproto.SpectatorSnapshotPayload{}, fmt.Errorf("load event leaderboard: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := wsproto.SpectatorSnapshotPayload{
		EventID:          s.eventID,
		Phase:            string(s.state.QuizPhase),
		QuestionIndex:    s.state.CurrentQuestionIndex,
		TotalQuestions:   s.state.TotalQuestions,
		TimeLimitMs:      s.state.TimeLimitMs,
		Participants:     s.snapshotParticipantsLocked(),
		EventLeaderboard: s.toLeaderboardEntriesLocked(scores),
	}
	if q, ok := s.state.currentQuestion(); ok {
		id := q.QuestionID
		snap.CurrentQuestionID = &id
		snap.QuestionText = q.Text
	}
	return snap, nil
}
