package session

import "fmt"

// ErrorKind is the string kind an error surfaces to clients as; clients
// branch on the kind, never on message text.
type ErrorKind string

const (
	ErrStale             ErrorKind = "stale"
	ErrPaused            ErrorKind = "paused"
	ErrLateJoin          ErrorKind = "late_join"
	ErrDuplicate         ErrorKind = "duplicate"
	ErrTooLate           ErrorKind = "too_late"
	ErrUnauthorized      ErrorKind = "unauthorized"
	ErrNotFound          ErrorKind = "not_found"
	ErrConflict          ErrorKind = "conflict"
	ErrLocked            ErrorKind = "locked"
	ErrTooManyRequests   ErrorKind = "too_many_requests"
	ErrInvalidTransition ErrorKind = "invalid_transition"
	ErrFatal             ErrorKind = "fatal_session_failure"
)

// HubError is a kind-tagged error. Session operations return it and
// Session.ReportError delivers it to the caller as an error wire frame
// without tearing down the connection; this holds for every kind,
// fatal_session_failure included, and no kind closes the connection or
// the Session. The join-time kinds also surface over HTTP, where the
// handlers map them to status codes.
type HubError struct {
	Kind    ErrorKind
	Message string
}

func (e *HubError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...any) *HubError {
	return &HubError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
