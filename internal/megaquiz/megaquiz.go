// Package megaquiz aggregates questions across an event's completed
// segments into a final remix round.
package megaquiz

import (
	"math/rand"

	"github.com/liveqai/eventhub/internal/model"
)

// SingleSegmentMode selects what happens when only one segment
// contributed questions.
type SingleSegmentMode string

const (
	ModeRemix SingleSegmentMode = "remix"
	ModeSkip  SingleSegmentMode = "skip"
)

// Metadata summarizes the pool available for a mega-quiz round.
type Metadata struct {
	AvailableQuestions int
	IsSingleSegment    bool
	SingleSegmentMode  SingleSegmentMode
}

// CountAvailable returns the total number of questions across all
// supplied per-segment question slices.
func CountAvailable(questionsBySegment [][]model.Question) int {
	total := 0
	for _, qs := range questionsBySegment {
		total += len(qs)
	}
	return total
}

// GetMetadata computes the mega-quiz metadata for the given segments'
// question pools and the configured single-segment mode.
func GetMetadata(questionsBySegment [][]model.Question, mode SingleSegmentMode) Metadata {
	segmentsWithQuestions := 0
	for _, qs := range questionsBySegment {
		if len(qs) > 0 {
			segmentsWithQuestions++
		}
	}
	return Metadata{
		AvailableQuestions: CountAvailable(questionsBySegment),
		IsSingleSegment:    segmentsWithQuestions <= 1,
		SingleSegmentMode:  mode,
	}
}

// ShouldEmitMegaQuizReady decides whether a mega_quiz_ready frame should
// be emitted once every segment is complete.
//
// The offer goes out whenever any question exists, regardless of
// single-segment mode: "skip" is enforced by the client (or by a host
// immediately sending skip_mega_quiz), never by the hub suppressing the
// offer.
func ShouldEmitMegaQuizReady(meta Metadata) bool {
	return meta.AvailableQuestions > 0
}

// Aggregate unions all questions across segments, shuffles them with rng,
// and caps the result at count (0 means unlimited).
func Aggregate(questionsBySegment [][]model.Question, count int, rng *rand.Rand) []model.Question {
	var all []model.Question
	for _, qs := range questionsBySegment {
		all = append(all, qs...)
	}

	rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	if count > 0 && count < len(all) {
		return all[:count]
	}
	return all
}
