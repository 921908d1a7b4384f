package preferences

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"tomato/internal/core/model"
	"tomato/internal/core/timekeeper"
)

var (
	// ErrInvalidPreset indicates a preset string that is not "focus-rest" minutes.
	ErrInvalidPreset = errors.New("invalid preset")
	// ErrInvalidRepeat indicates a repeat count that is not a non-negative integer.
	ErrInvalidRepeat = errors.New("invalid repeat count")
	// ErrRepeatNotInteger indicates a decimal repeat count. ParseRepeat returns
	// the floored value alongside it as a suggestion.
	ErrRepeatNotInteger = errors.New("repeat count must be a whole number")
)

// Preset is a focus/rest pair offered in the session picker.
type Preset struct {
	FocusMinutes int
	RestMinutes  int
}

// String renders the preset as "focus-rest".
func (preset Preset) String() string {
	return fmt.Sprintf("%d-%d", preset.FocusMinutes, preset.RestMinutes)
}

// Settings defines editable user preferences.
type Settings struct {
	FocusMinutes int
	RestMinutes  int
	Presets      []Preset

	TickInterval time.Duration

	AlarmRepeat int
	AlarmGap    time.Duration
	// AlarmFile optionally points to an .ogg or .wav file used instead of the
	// built in tone.
	AlarmFile  string
	ClickSound bool

	Language string
	LogLevel string

	Autostart bool
	// IdleResyncAfter is the idle stretch after which returning activity
	// resynchronises the timer. Zero disables the watcher.
	IdleResyncAfter time.Duration
}

// DefaultSettings returns default settings for Tomato.
func DefaultSettings() Settings {
	return Settings{
		FocusMinutes:    25,
		RestMinutes:     5,
		Presets:         []Preset{{25, 5}, {50, 10}, {15, 3}},
		TickInterval:    timekeeper.DefaultTickInterval,
		AlarmRepeat:     4,
		AlarmGap:        150 * time.Millisecond,
		ClickSound:      true,
		LogLevel:        "info",
		Autostart:       false,
		IdleResyncAfter: time.Minute,
	}
}

// SessionDefaults returns the durations shown before a configuration is applied.
func (settings Settings) SessionDefaults() model.SessionConfig {
	return model.SessionConfig{
		FocusMinutes: settings.FocusMinutes,
		RestMinutes:  settings.RestMinutes,
	}
}

// TimeKeeperConfig converts settings to timekeeper options. Sinks and the
// clock are left for the caller to fill in.
func (settings Settings) TimeKeeperConfig() timekeeper.Config {
	return timekeeper.Config{TickInterval: settings.TickInterval}
}

// PresetLabels returns the presets as picker options.
func (settings Settings) PresetLabels() []string {
	labels := make([]string, 0, len(settings.Presets))
	for _, preset := range settings.Presets {
		labels = append(labels, preset.String())
	}
	return labels
}

// ParsePreset parses a "focus-rest" minutes string such as "25-5".
func ParsePreset(text string) (Preset, error) {
	focusText, restText, ok := strings.Cut(strings.TrimSpace(text), "-")
	if !ok {
		return Preset{}, fmt.Errorf("parse preset %q: %w", text, ErrInvalidPreset)
	}
	focus, focusOK := parseMinutes(focusText)
	rest, restOK := parseMinutes(restText)
	if !focusOK || !restOK {
		return Preset{}, fmt.Errorf("parse preset %q: %w", text, ErrInvalidPreset)
	}
	return Preset{FocusMinutes: focus, RestMinutes: rest}, nil
}

// ParseRepeat parses the repeat count field. Zero means unbounded.
//
// A decimal such as "2.7" is rejected with ErrRepeatNotInteger and the
// floored value (2) is returned so the form can offer it instead.
func ParseRepeat(text string) (int, error) {
	raw := strings.TrimSpace(text)
	if strings.Contains(raw, ".") {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 || math.IsInf(value, 0) || math.IsNaN(value) {
			return 0, fmt.Errorf("parse repeat %q: %w", text, ErrInvalidRepeat)
		}
		return int(math.Floor(value)), fmt.Errorf("parse repeat %q: %w", text, ErrRepeatNotInteger)
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("parse repeat %q: %w", text, ErrInvalidRepeat)
	}
	return value, nil
}

// ParseSession combines the preset picker and repeat field into a session
// configuration ready to apply.
func ParseSession(presetText, repeatText string) (model.SessionConfig, error) {
	preset, err := ParsePreset(presetText)
	if err != nil {
		return model.SessionConfig{}, err
	}
	repeat, err := ParseRepeat(repeatText)
	if err != nil {
		return model.SessionConfig{}, err
	}
	return model.SessionConfig{
		FocusMinutes: preset.FocusMinutes,
		RestMinutes:  preset.RestMinutes,
		TargetSets:   repeat,
	}, nil
}

// parseMinutes accepts a session length between one minute and one day.
func parseMinutes(value string) (int, bool) {
	minutes, ok := parsePositiveInt(value)
	if !ok || !model.ValidMinutes(minutes) {
		return 0, false
	}
	return minutes, true
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
