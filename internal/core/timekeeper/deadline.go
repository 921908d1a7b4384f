package timekeeper

import (
	"fmt"
	"time"
)

// ComputeDeadline returns the instant at which a session of length d that
// starts at now reaches zero.
func ComputeDeadline(now time.Time, d time.Duration) time.Time {
	return now.Add(d)
}

// Remaining returns the time left until deadline, clamped at zero.
func Remaining(now, deadline time.Time) time.Duration {
	left := deadline.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// DisplaySeconds rounds d up to whole seconds. A displayed 1 means some time
// is still left; 0 is shown only once nothing remains.
func DisplaySeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
