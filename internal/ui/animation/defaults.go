package animation

import "time"

// DefaultConfig returns a slow heartbeat: a long rest followed by a quick squish.
func DefaultConfig() Config {
	return Config{
		HoldDuration: Range{
			Min: 700 * time.Millisecond,
			Max: 900 * time.Millisecond,
		},
		SquishDuration: Range{
			Min: 120 * time.Millisecond,
			Max: 160 * time.Millisecond,
		},
	}
}
