package session

import "github.com/liveqai/eventhub/internal/megaquiz"

// Config carries the per-process quiz tunables, loaded by
// internal/config and threaded down to the Hub and every Session it
// creates.
type Config struct {
	TimePerQuestionS          int
	AnswerTimeoutGraceMs      int
	HeartbeatIntervalS        int
	GracePeriodS              int
	ReconnectWindowS          int
	MegaQuizSingleSegmentMode megaquiz.SingleSegmentMode
	JoinLockGraceS            int
	EventResumeDebounceS      int
	SegmentResumeDebounceS    int
	NumFakeAnswers            int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		TimePerQuestionS:          30,
		AnswerTimeoutGraceMs:      500,
		HeartbeatIntervalS:        15,
		GracePeriodS:              30,
		ReconnectWindowS:          60,
		MegaQuizSingleSegmentMode: megaquiz.ModeRemix,
		JoinLockGraceS:            5,
		EventResumeDebounceS:      2,
		SegmentResumeDebounceS:    2,
		NumFakeAnswers:            3,
	}
}
