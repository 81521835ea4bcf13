package booking

import "time"

// SelfCancellationNotice is how far ahead of the start a guest may still cancel
// on their own.
const SelfCancellationNotice = 24 * time.Hour

// CheckSelfCancellation allows a guest cancellation only while more than
// SelfCancellationNotice remains before start.
func CheckSelfCancellation(start, now time.Time) error {
	if start.Sub(now) > SelfCancellationNotice {
		return nil
	}
	return ErrCancellationWindowClosed
}

// Clock is the source of "now" for the booking service.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
