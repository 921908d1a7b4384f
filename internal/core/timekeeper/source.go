package timekeeper

import "time"

// RemainingSource is the single source of truth for the time left in the
// current session: a Deadline while running, a Saved duration otherwise.
type RemainingSource interface {
	RemainingAt(now time.Time) time.Duration
	isRemainingSource()
}

// Deadline is the absolute instant at which a running session ends.
type Deadline struct {
	At time.Time
}

// RemainingAt returns the clamped time left until the deadline.
func (source Deadline) RemainingAt(now time.Time) time.Duration {
	return Remaining(now, source.At)
}

func (Deadline) isRemainingSource() {}

// Saved is the time left captured when a session was paused. A zero value
// means the next start uses the full session duration.
type Saved struct {
	Remaining time.Duration
}

// RemainingAt returns the saved duration; it does not depend on now.
func (source Saved) RemainingAt(time.Time) time.Duration {
	if source.Remaining < 0 {
		return 0
	}
	return source.Remaining
}

func (Saved) isRemainingSource() {}
