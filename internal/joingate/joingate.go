// Package joingate serializes join admission checks per event so that two
// devices racing to claim the same display name or device slot are
// resolved deterministically: one mutex per event id, taken for the
// duration of the join transaction.
package joingate

import "sync"

// Gate hands out one mutex per event id, created lazily and evicted once
// no goroutine references it anymore.
type Gate struct {
	mu    sync.Mutex
	locks map[string]*refCountedMutex
}

type refCountedMutex struct {
	mu   sync.Mutex
	refs int
}

// New creates an empty Gate.
func New() *Gate {
	return &Gate{locks: make(map[string]*refCountedMutex)}
}

// Lock blocks until the caller holds the serialization lock for eventID.
// The returned func releases it and must be called exactly once.
func (g *Gate) Lock(eventID string) func() {
	g.mu.Lock()
	rm, ok := g.locks[eventID]
	if !ok {
		rm = &refCountedMutex{}
		g.locks[eventID] = rm
	}
	rm.refs++
	g.mu.Unlock()

	rm.mu.Lock()

	return func() {
		rm.mu.Unlock()

		g.mu.Lock()
		rm.refs--
		if rm.refs == 0 {
			delete(g.locks, eventID)
		}
		g.mu.Unlock()
	}
}

// Size reports how many events currently have an outstanding lock entry,
// for tests and diagnostics.
func (g *Gate) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}
