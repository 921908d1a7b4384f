package timekeeper

import (
	"time"

	"tomato/internal/core/model"
)

// Kind is the type of the current session.
type Kind string

const (
	KindFocus Kind = "focus"
	KindRest  Kind = "rest"
)

// Phase is the lifecycle position of the current session.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhasePaused   Phase = "paused"
	PhaseComplete Phase = "complete"
)

// State names a position of the session state machine, e.g. "focus.running".
type State struct {
	Kind  Kind
	Phase Phase
}

func (state State) String() string {
	switch state.Phase {
	case PhaseIdle, PhaseComplete:
		return string(state.Phase)
	}
	return string(state.Kind) + "." + string(state.Phase)
}

// StatusKey identifies a status line; sinks translate it.
type StatusKey string

const (
	StatusWelcome  StatusKey = "welcome"
	StatusReady    StatusKey = "ready"
	StatusFocusing StatusKey = "focusing"
	StatusResting  StatusKey = "resting"
	StatusPaused   StatusKey = "paused"
	StatusComplete StatusKey = "complete"
)

// ColorToken names a status color.
type ColorToken string

const (
	ColorFocus ColorToken = "tomato-red"
	ColorRest  ColorToken = "tomato-green"
	ColorMuted ColorToken = "muted"
)

// Status is a status line together with its color.
type Status struct {
	Key   StatusKey
	Color ColorToken
}

// Indicator describes the running tomato.
type Indicator struct {
	Running  bool
	RestMode bool
}

// ProgressView is what a sink needs to draw the set counter.
type ProgressView struct {
	model.SetProgress
	Configured bool
	Target     int
}

// ToastKey identifies a short-lived message.
type ToastKey string

const (
	ToastNotConfigured ToastKey = "not_configured"
	ToastRunComplete   ToastKey = "run_complete"
	ToastRestStarted   ToastKey = "rest_started"
	ToastSetComplete   ToastKey = "set_complete"
	ToastAllComplete   ToastKey = "all_complete"
	ToastApplied       ToastKey = "applied"
	ToastReset         ToastKey = "reset"
	ToastSessionActive ToastKey = "session_active"
	ToastInvalidConfig ToastKey = "invalid_config"
)

// Toast is a user-facing ephemeral message. Sets carries the completed set
// count for messages that mention it.
type Toast struct {
	Key  ToastKey
	Sets int
}

// Display receives render calls from the core. Implementations must not call
// back into the TimeKeeper.
type Display interface {
	RenderTime(seconds int)
	RenderStatus(status Status)
	RenderRunning(indicator Indicator)
	RenderSetProgress(progress ProgressView)
}

// Notifier receives fire-and-forget notifications from the core.
type Notifier interface {
	// NotifySessionBoundary fires once per focus→rest, rest→focus and
	// all-complete transition.
	NotifySessionBoundary()
	NotifyToast(toast Toast)
	// Silence stops a boundary alarm that is still playing.
	Silence()
}

// EventType defines the type of TimeKeeper event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
	EventFinished    EventType = "session_finished"
)

// Event represents a TimeKeeper update for observers.
type Event struct {
	Type      EventType
	State     State
	Remaining time.Duration
	Progress  model.SetProgress
	At        time.Time
}

// Snapshot is a consistent copy of the TimeKeeper state.
type Snapshot struct {
	State     State
	Config    model.SessionConfig
	Progress  model.SetProgress
	Source    RemainingSource
	Remaining time.Duration
	Scheduled bool
}
