package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// debounceMap tracks the last attempt time per id so rapid repeated
// resume signals (a host double-click, a flapping client retry loop) are
// rejected with too_many_requests instead of re-running the transition.
// Entries older than ten windows are pruned whenever an attempt is
// allowed, to keep the map from growing with dead ids.
type debounceMap struct {
	mu   sync.Mutex
	last map[uuid.UUID]time.Time
}

func newDebounceMap() *debounceMap {
	return &debounceMap{last: make(map[uuid.UUID]time.Time)}
}

// Allow reports whether now falls outside the debounce window of the last
// allowed attempt for id and, if so, records now as that attempt; a
// rejected attempt is not recorded.
func (d *debounceMap) Allow(id uuid.UUID, now time.Time, window time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.last[id]; ok && now.Sub(prev) < window {
		return false
	}
	d.last[id] = now

	for k, t := range d.last {
		if now.Sub(t) > 10*window {
			delete(d.last, k)
		}
	}
	return true
}
