package leaderboard

import (
	"testing"

	"github.com/google/uuid"
)

func TestBuildOrdersByScoreThenSpeed(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	entries := []Entry{
		{ParticipantID: a, DisplayName: "Alice", Score: 500, TotalResponseTimeMs: 4000},
		{ParticipantID: b, DisplayName: "Bob", Score: 500, TotalResponseTimeMs: 2000},
		{ParticipantID: c, DisplayName: "Cara", Score: 900, TotalResponseTimeMs: 9000},
	}

	ranked := Build(entries)

	if ranked[0].ParticipantID != c || ranked[0].Rank != 1 {
		t.Fatalf("expected Cara first by score, got %+v", ranked[0])
	}
	if ranked[1].ParticipantID != b || ranked[1].Rank != 2 {
		t.Fatalf("expected Bob second (tie-break by speed), got %+v", ranked[1])
	}
	if ranked[2].ParticipantID != a || ranked[2].Rank != 3 {
		t.Fatalf("expected Alice third, got %+v", ranked[2])
	}
}

func TestWinnerEmpty(t *testing.T) {
	if Winner(nil) != nil {
		t.Fatal("expected nil winner for empty entries")
	}
}
