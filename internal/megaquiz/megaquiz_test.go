package megaquiz

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/model"
)

func questions(n int) []model.Question {
	out := make([]model.Question, n)
	for i := range out {
		out[i] = *model.NewQuestion(uuid.New(), "q", [4]string{"a", "b", "c", "d"}, "A", i, 30000)
	}
	return out
}

func TestShouldEmitMegaQuizReadyIgnoresSingleSegmentMode(t *testing.T) {
	meta := GetMetadata([][]model.Question{questions(3)}, ModeSkip)
	if !meta.IsSingleSegment {
		t.Fatal("expected single segment pool to be flagged as such")
	}
	if !ShouldEmitMegaQuizReady(meta) {
		t.Fatal("expected mega_quiz_ready to be offered even in skip mode when questions exist")
	}
}

func TestShouldEmitMegaQuizReadyFalseWhenEmpty(t *testing.T) {
	meta := GetMetadata(nil, ModeRemix)
	if ShouldEmitMegaQuizReady(meta) {
		t.Fatal("expected no mega_quiz_ready when no questions are available")
	}
}

func TestAggregateCapsCount(t *testing.T) {
	pool := [][]model.Question{questions(5), questions(5)}
	rng := rand.New(rand.NewSource(1))
	got := Aggregate(pool, 4, rng)
	if len(got) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(got))
	}
}

func TestAggregateUnlimitedReturnsAll(t *testing.T) {
	pool := [][]model.Question{questions(3), questions(2)}
	rng := rand.New(rand.NewSource(1))
	got := Aggregate(pool, 0, rng)
	if len(got) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(got))
	}
}
