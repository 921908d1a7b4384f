// Package timekeeper is the session timing core: deadline arithmetic, the
// periodic tick scheduler and the focus/rest state machine.
//
// Remaining time is never accumulated. While a session runs the machine
// holds an absolute deadline and derives the time left from it on every
// evaluation, so missed or late ticks only make the next evaluation observe a
// larger gap.
package timekeeper

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tomato/internal/core/clock"
	"tomato/internal/core/model"
	"tomato/internal/log"
)

var (
	// ErrNotConfigured indicates a start was attempted before a configuration was applied.
	ErrNotConfigured = errors.New("session not configured")
	// ErrSessionActive indicates a configuration change while a session is in progress.
	ErrSessionActive = errors.New("session in progress")
	// ErrRunComplete indicates a start after every set finished; a reset is required.
	ErrRunComplete = errors.New("all sessions complete")
)

// Config contains runtime options for TimeKeeper.
type Config struct {
	TickInterval time.Duration
	Clock        clock.Clock
	Display      Display
	Notifier     Notifier
	Logger       *zerolog.Logger
}

// TimeKeeper owns the session state and drives the display.
type TimeKeeper struct {
	mu        sync.Mutex
	clock     clock.Clock
	display   Display
	notifier  Notifier
	logger    zerolog.Logger
	scheduler *Scheduler

	config   model.SessionConfig
	progress model.SetProgress
	kind     Kind
	phase    Phase
	source   RemainingSource

	events []chan Event
	closed bool
}

// New creates a TimeKeeper in the idle state. defaults supplies the
// durations shown before a configuration is applied; its Applied flag is
// ignored.
func New(defaults model.SessionConfig, options Config) *TimeKeeper {
	if options.Clock == nil {
		options.Clock = clock.System
	}
	if options.Display == nil {
		options.Display = nopDisplay{}
	}
	if options.Notifier == nil {
		options.Notifier = nopNotifier{}
	}
	logger := log.WithComponent("timekeeper")
	if options.Logger != nil {
		logger = *options.Logger
	}

	defaults.Applied = false
	defaults.TargetSets = 0

	keeper := &TimeKeeper{
		clock:    options.Clock,
		display:  options.Display,
		notifier: options.Notifier,
		logger:   logger,
		config:   defaults,
		progress: model.SetProgress{Infinite: true},
		kind:     KindFocus,
		phase:    PhaseIdle,
		source:   Saved{},
	}
	keeper.scheduler = NewScheduler(options.Clock, options.TickInterval, &keeper.mu, SchedulerHooks{
		OnTick:     keeper.onTickLocked,
		OnFinished: keeper.onSessionFinishedLocked,
	})
	return keeper
}

// Render pushes the complete current state to the display.
func (keeper *TimeKeeper) Render() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	now := keeper.clock.Now()
	keeper.display.RenderTime(DisplaySeconds(keeper.remainingLocked(now)))
	keeper.display.RenderRunning(keeper.indicatorLocked())
	keeper.display.RenderStatus(keeper.statusLocked())
	keeper.display.RenderSetProgress(keeper.progressViewLocked())
}

// Subscribe registers a new observer channel.
func (keeper *TimeKeeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		close(ch)
		return ch
	}
	keeper.events = append(keeper.events, ch)
	keeper.mu.Unlock()
	return ch
}

// Close stops scheduling and closes observers.
func (keeper *TimeKeeper) Close() {
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	keeper.closed = true
	keeper.scheduler.Stop()
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Toggle starts or resumes a stopped session and pauses a running one.
func (keeper *TimeKeeper) Toggle() error {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	if !keeper.config.Applied {
		keeper.notifier.NotifyToast(Toast{Key: ToastNotConfigured})
		return ErrNotConfigured
	}

	switch keeper.phase {
	case PhaseComplete:
		keeper.notifier.NotifyToast(Toast{Key: ToastRunComplete, Sets: keeper.progress.Completed})
		return ErrRunComplete
	case PhaseRunning:
		keeper.pauseLocked()
	default:
		keeper.startLocked()
	}
	return nil
}

// ApplyConfiguration replaces the session configuration. It is accepted only
// when no session is in progress.
func (keeper *TimeKeeper) ApplyConfiguration(config model.SessionConfig) error {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	if err := config.Validate(); err != nil {
		keeper.notifier.NotifyToast(Toast{Key: ToastInvalidConfig})
		return fmt.Errorf("apply configuration: %w", err)
	}
	if keeper.phase != PhaseIdle && keeper.phase != PhaseComplete {
		keeper.notifier.NotifyToast(Toast{Key: ToastSessionActive})
		return fmt.Errorf("apply configuration: %w", ErrSessionActive)
	}

	config.Applied = true
	keeper.config = config
	keeper.progress = model.NewSetProgress(config)
	keeper.resetRuntimeLocked()

	keeper.display.RenderSetProgress(keeper.progressViewLocked())
	keeper.display.RenderStatus(Status{Key: StatusReady, Color: ColorFocus})
	keeper.notifier.NotifyToast(Toast{Key: ToastApplied})

	keeper.logger.Info().
		Int("focus_minutes", config.FocusMinutes).
		Int("rest_minutes", config.RestMinutes).
		Int("target_sets", config.TargetSets).
		Msg("configuration applied")
	keeper.emitStateLocked()
	return nil
}

// Reset stops the current session and returns to an idle focus session.
// A full reset also clears the applied configuration and set progress.
func (keeper *TimeKeeper) Reset(full bool) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	keeper.resetLocked(full)
	keeper.notifier.NotifyToast(Toast{Key: ToastReset})
}

// Resync re-evaluates a running session immediately. Hosts call it when the
// application returns to the foreground, because periodic ticks may have
// been suspended meanwhile. It reports whether a session finished.
func (keeper *TimeKeeper) Resync() bool {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	if keeper.phase != PhaseRunning {
		return false
	}
	finished := keeper.scheduler.Evaluate()
	keeper.logger.Debug().Bool("finished", finished).Msg("resynchronized")
	return finished
}

// Snapshot returns a consistent copy of the current state.
func (keeper *TimeKeeper) Snapshot() Snapshot {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	return Snapshot{
		State:     keeper.stateLocked(),
		Config:    keeper.config,
		Progress:  keeper.progress,
		Source:    keeper.source,
		Remaining: keeper.remainingLocked(keeper.clock.Now()),
		Scheduled: keeper.scheduler.Armed(),
	}
}

func (keeper *TimeKeeper) startLocked() {
	duration := keeper.sessionDurationLocked()
	if saved, ok := keeper.source.(Saved); ok && saved.Remaining > 0 {
		duration = saved.Remaining
	}

	keeper.phase = PhaseRunning
	keeper.display.RenderRunning(keeper.indicatorLocked())
	keeper.display.RenderStatus(keeper.statusLocked())

	deadline := ComputeDeadline(keeper.clock.Now(), duration)
	keeper.source = Deadline{At: deadline}
	keeper.logger.Debug().
		Str("state", keeper.stateLocked().String()).
		Dur("duration", duration).
		Msg("session started")
	keeper.emitStateLocked()

	// The immediate evaluation may finish the session and transition again.
	keeper.scheduler.Start(deadline)
}

func (keeper *TimeKeeper) pauseLocked() {
	remaining := keeper.source.RemainingAt(keeper.clock.Now())
	keeper.scheduler.Stop()
	keeper.source = Saved{Remaining: remaining}
	keeper.phase = PhasePaused

	keeper.display.RenderRunning(keeper.indicatorLocked())
	keeper.display.RenderStatus(keeper.statusLocked())
	keeper.display.RenderTime(DisplaySeconds(remaining))

	keeper.logger.Debug().
		Str("state", keeper.stateLocked().String()).
		Dur("remaining", remaining).
		Msg("session paused")
	keeper.emitStateLocked()
}

func (keeper *TimeKeeper) onTickLocked(remaining time.Duration) {
	keeper.display.RenderTime(DisplaySeconds(remaining))
	keeper.emitLocked(Event{
		Type:      EventProgress,
		State:     keeper.stateLocked(),
		Remaining: remaining,
		Progress:  keeper.progress,
		At:        keeper.clock.Now(),
	})
}

func (keeper *TimeKeeper) onSessionFinishedLocked() {
	finished := keeper.stateLocked()
	keeper.emitLocked(Event{
		Type:     EventFinished,
		State:    finished,
		Progress: keeper.progress,
		At:       keeper.clock.Now(),
	})
	keeper.notifier.NotifySessionBoundary()
	keeper.logger.Info().Str("state", finished.String()).Msg("session finished")

	if keeper.kind == KindFocus {
		// Rest always follows focus.
		keeper.kind = KindRest
		keeper.source = Saved{}
		keeper.notifier.NotifyToast(Toast{Key: ToastRestStarted})
		keeper.startLocked()
		return
	}

	keeper.progress.Record()
	keeper.display.RenderSetProgress(keeper.progressViewLocked())

	if keeper.progress.HasNext() {
		keeper.kind = KindFocus
		keeper.source = Saved{}
		keeper.notifier.NotifyToast(Toast{Key: ToastSetComplete, Sets: keeper.progress.Completed})
		keeper.startLocked()
		return
	}
	keeper.finishAllLocked()
}

func (keeper *TimeKeeper) finishAllLocked() {
	keeper.scheduler.Stop()
	keeper.phase = PhaseComplete
	keeper.kind = KindFocus
	keeper.source = Saved{}

	keeper.display.RenderRunning(Indicator{})
	keeper.display.RenderStatus(Status{Key: StatusComplete, Color: ColorFocus})
	keeper.display.RenderTime(DisplaySeconds(keeper.config.FocusDuration()))
	keeper.notifier.NotifyToast(Toast{Key: ToastAllComplete, Sets: keeper.progress.Completed})

	keeper.logger.Info().Int("completed_sets", keeper.progress.Completed).Msg("all sessions complete")
	keeper.emitStateLocked()
}

func (keeper *TimeKeeper) resetLocked(full bool) {
	wasComplete := keeper.phase == PhaseComplete
	keeper.notifier.Silence()
	keeper.resetRuntimeLocked()

	switch {
	case full:
		keeper.config.Applied = false
		keeper.config.TargetSets = 0
		keeper.progress = model.SetProgress{Infinite: true}
		keeper.display.RenderSetProgress(keeper.progressViewLocked())
	case wasComplete:
		keeper.progress.Remaining = keeper.config.TargetSets
		keeper.display.RenderSetProgress(keeper.progressViewLocked())
	}
	keeper.display.RenderStatus(keeper.statusLocked())

	keeper.logger.Info().Bool("full", full).Msg("timer reset")
	keeper.emitStateLocked()
}

func (keeper *TimeKeeper) resetRuntimeLocked() {
	keeper.scheduler.Stop()
	keeper.phase = PhaseIdle
	keeper.kind = KindFocus
	keeper.source = Saved{}

	keeper.display.RenderRunning(Indicator{})
	keeper.display.RenderTime(DisplaySeconds(keeper.config.FocusDuration()))
}

func (keeper *TimeKeeper) sessionDurationLocked() time.Duration {
	if keeper.kind == KindRest {
		return keeper.config.RestDuration()
	}
	return keeper.config.FocusDuration()
}

// remainingLocked reports the time shown for the current state. An idle
// machine shows the full session length.
func (keeper *TimeKeeper) remainingLocked(now time.Time) time.Duration {
	if saved, ok := keeper.source.(Saved); ok && saved.Remaining <= 0 && keeper.phase != PhaseRunning {
		return keeper.sessionDurationLocked()
	}
	return keeper.source.RemainingAt(now)
}

func (keeper *TimeKeeper) stateLocked() State {
	return State{Kind: keeper.kind, Phase: keeper.phase}
}

func (keeper *TimeKeeper) indicatorLocked() Indicator {
	return Indicator{
		Running:  keeper.phase == PhaseRunning,
		RestMode: keeper.kind == KindRest && keeper.phase != PhaseIdle && keeper.phase != PhaseComplete,
	}
}

func (keeper *TimeKeeper) statusLocked() Status {
	switch keeper.phase {
	case PhaseRunning:
		if keeper.kind == KindRest {
			return Status{Key: StatusResting, Color: ColorRest}
		}
		return Status{Key: StatusFocusing, Color: ColorFocus}
	case PhasePaused:
		return Status{Key: StatusPaused, Color: ColorMuted}
	case PhaseComplete:
		return Status{Key: StatusComplete, Color: ColorFocus}
	}
	if keeper.config.Applied {
		return Status{Key: StatusReady, Color: ColorFocus}
	}
	return Status{Key: StatusWelcome, Color: ColorFocus}
}

func (keeper *TimeKeeper) progressViewLocked() ProgressView {
	return ProgressView{
		SetProgress: keeper.progress,
		Configured:  keeper.config.Applied,
		Target:      keeper.config.TargetSets,
	}
}

func (keeper *TimeKeeper) emitStateLocked() {
	keeper.emitLocked(Event{
		Type:      EventStateChange,
		State:     keeper.stateLocked(),
		Remaining: keeper.remainingLocked(keeper.clock.Now()),
		Progress:  keeper.progress,
		At:        keeper.clock.Now(),
	})
}

func (keeper *TimeKeeper) emitLocked(event Event) {
	for _, ch := range keeper.events {
		select {
		case ch <- event:
		default:
		}
	}
}

type nopDisplay struct{}

func (nopDisplay) RenderTime(int)                 {}
func (nopDisplay) RenderStatus(Status)            {}
func (nopDisplay) RenderRunning(Indicator)        {}
func (nopDisplay) RenderSetProgress(ProgressView) {}

type nopNotifier struct{}

func (nopNotifier) NotifySessionBoundary() {}
func (nopNotifier) NotifyToast(Toast)      {}
func (nopNotifier) Silence()               {}
