package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfiguration marks session settings outside their domain.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// MaxMinutes caps a single focus or rest session at one day.
const MaxMinutes = 24 * 60

// ValidMinutes reports whether minutes is a usable session length.
func ValidMinutes(minutes int) bool {
	return minutes > 0 && minutes <= MaxMinutes
}

// SessionConfig holds the applied focus/rest durations and target set count.
type SessionConfig struct {
	FocusMinutes int
	RestMinutes  int
	// TargetSets is the number of focus+rest sets to run. Zero means the
	// sets repeat until reset.
	TargetSets int
	Applied    bool
}

// Validate reports whether the configuration may be applied.
func (config SessionConfig) Validate() error {
	if !ValidMinutes(config.FocusMinutes) {
		return fmt.Errorf("%w: focus minutes must be between 1 and %d, got %d", ErrInvalidConfiguration, MaxMinutes, config.FocusMinutes)
	}
	if !ValidMinutes(config.RestMinutes) {
		return fmt.Errorf("%w: rest minutes must be between 1 and %d, got %d", ErrInvalidConfiguration, MaxMinutes, config.RestMinutes)
	}
	if config.TargetSets < 0 {
		return fmt.Errorf("%w: repeat count must not be negative, got %d", ErrInvalidConfiguration, config.TargetSets)
	}
	return nil
}

// Infinite reports whether sets repeat until reset.
func (config SessionConfig) Infinite() bool {
	return config.TargetSets == 0
}

// FocusDuration returns the length of one focus session.
func (config SessionConfig) FocusDuration() time.Duration {
	return time.Duration(config.FocusMinutes) * time.Minute
}

// RestDuration returns the length of one rest session.
func (config SessionConfig) RestDuration() time.Duration {
	return time.Duration(config.RestMinutes) * time.Minute
}

// SetProgress tracks completed sets within a configured run.
type SetProgress struct {
	Completed int
	// Remaining is only meaningful when Infinite is false.
	Remaining int
	Infinite  bool
}

// NewSetProgress returns zeroed progress for the given configuration.
func NewSetProgress(config SessionConfig) SetProgress {
	return SetProgress{
		Remaining: config.TargetSets,
		Infinite:  config.Infinite(),
	}
}

// Record counts one finished set.
func (progress *SetProgress) Record() {
	progress.Completed++
	if !progress.Infinite && progress.Remaining > 0 {
		progress.Remaining--
	}
}

// HasNext reports whether another set should start.
func (progress SetProgress) HasNext() bool {
	return progress.Infinite || progress.Remaining > 0
}
