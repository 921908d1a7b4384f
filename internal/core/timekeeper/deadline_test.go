package timekeeper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemainingRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for _, d := range []time.Duration{0, time.Nanosecond, 999 * time.Millisecond, time.Second, 25 * time.Minute} {
		assert.Equal(t, d, Remaining(now, ComputeDeadline(now, d)), "duration %s", d)
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for _, late := range []time.Duration{time.Nanosecond, time.Second, time.Hour} {
		assert.Equal(t, time.Duration(0), Remaining(deadline.Add(late), deadline))
	}
}

func TestDisplaySecondsRoundsUp(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{in: -time.Second, want: 0},
		{in: 0, want: 0},
		{in: time.Millisecond, want: 1},
		{in: 999 * time.Millisecond, want: 1},
		{in: time.Second, want: 1},
		{in: time.Second + time.Nanosecond, want: 2},
		{in: 25 * time.Minute, want: 1500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplaySeconds(tt.in), "input %s", tt.in)
	}
}

func TestDisplaySecondsMonotonicAsTimeAdvances(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	deadline := ComputeDeadline(start, 3*time.Second)

	previous := DisplaySeconds(Remaining(start, deadline))
	for step := time.Duration(0); step <= 5*time.Second; step += 37 * time.Millisecond {
		current := DisplaySeconds(Remaining(start.Add(step), deadline))
		assert.LessOrEqual(t, current, previous)
		assert.GreaterOrEqual(t, current, 0)
		previous = current
	}
	assert.Equal(t, 0, previous)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "25:00", FormatClock(1500))
	assert.Equal(t, "00:59", FormatClock(59))
	assert.Equal(t, "00:00", FormatClock(-3))
	assert.Equal(t, "120:05", FormatClock(7205))
}

func TestRemainingSources(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	var source RemainingSource = Deadline{At: now.Add(10 * time.Minute)}
	assert.Equal(t, 10*time.Minute, source.RemainingAt(now))
	assert.Equal(t, time.Duration(0), source.RemainingAt(now.Add(time.Hour)))

	source = Saved{Remaining: 10 * time.Minute}
	assert.Equal(t, 10*time.Minute, source.RemainingAt(now.Add(time.Hour)))
	assert.Equal(t, time.Duration(0), Saved{Remaining: -time.Second}.RemainingAt(now))
}
