package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/pkg/wsproto"
)

// SetJoinLock toggles the event's admission lock, host-only. The
// persisted locked_at timestamp is what joinflow checks against the
// grace window, so this is the one control operation that writes through
// the repository directly rather than mutating in-memory state.
func (s *Session) SetJoinLock(ctx context.Context, callerID uuid.UUID, locked bool) error {
	s.mu.Lock()
	isHost := s.isHost(callerID)
	s.mu.Unlock()

	if !isHost {
		return newError(ErrUnauthorized, "only the host can change the join lock")
	}

	var lockedAt *time.Time
	if locked {
		now := s.clock.Now()
		lockedAt = &now
	}
	if err := s.repo.SetEventJoinLock(ctx, s.eventID, locked, lockedAt); err != nil {
		return newError(ErrFatal, "persist join lock: %v", err)
	}

	s.broadcast(wsproto.TypeJoinLockStatusChanged, wsproto.JoinLockStatusChangedPayload{Locked: locked})
	return nil
}
