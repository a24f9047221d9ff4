package meetings

import (
	"errors"
	"fmt"
)

// ErrMeetingNotFound covers both an unknown code and a meeting that
// outlived its expires_at. Retrying the same code will not help.
var ErrMeetingNotFound = errors.New("meeting not found or expired")

// ErrNotAuthorized is returned for host-only operations attempted by a
// non-host.
var ErrNotAuthorized = errors.New("not authorized")

// PartialCreateError reports a meeting row that was inserted but whose
// host participant insert failed. When CleanupFailed is set the
// compensating delete also failed and the orphaned row is left for
// expiry to reap.
type PartialCreateError struct {
	MeetingID     string
	CleanupFailed bool
	Cause         error
}

func (e *PartialCreateError) Error() string {
	if e.CleanupFailed {
		return fmt.Sprintf("meeting %s created but host participant insert failed (cleanup also failed, row orphaned until expiry): %v", e.MeetingID, e.Cause)
	}
	return fmt.Sprintf("meeting %s rolled back after host participant insert failed: %v", e.MeetingID, e.Cause)
}

func (e *PartialCreateError) Unwrap() error { return e.Cause }
