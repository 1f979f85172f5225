// Package leaderboard builds ranked standings from segment scores:
// score descending, with accumulated response time as the speed
// tie-break.
package leaderboard

import (
	"sort"

	"github.com/google/uuid"
)

// Entry is one participant's ranked standing.
type Entry struct {
	ParticipantID       uuid.UUID
	DisplayName         string
	Score               int
	TotalResponseTimeMs int64
}

// Ranked is a sorted Entry with its computed rank (1-based).
type Ranked struct {
	Entry
	Rank int
}

// Build sorts entries by score descending, then total response time
// ascending, and assigns 1-based ranks.
func Build(entries []Entry) []Ranked {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].TotalResponseTimeMs < sorted[j].TotalResponseTimeMs
	})

	ranked := make([]Ranked, len(sorted))
	for i, e := range sorted {
		ranked[i] = Ranked{Entry: e, Rank: i + 1}
	}
	return ranked
}

// Winner returns the top-ranked entry, or nil if entries is empty.
func Winner(entries []Entry) *Ranked {
	ranked := Build(entries)
	if len(ranked) == 0 {
		return nil
	}
	return &ranked[0]
}
