package timekeeper

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomato/internal/core/clock"
	"tomato/internal/core/model"
)

type recordingDisplay struct {
	times      []int
	statuses   []Status
	indicators []Indicator
	progress   []ProgressView
}

func (display *recordingDisplay) RenderTime(seconds int) {
	display.times = append(display.times, seconds)
}
func (display *recordingDisplay) RenderStatus(status Status) {
	display.statuses = append(display.statuses, status)
}
func (display *recordingDisplay) RenderRunning(state Indicator) {
	display.indicators = append(display.indicators, state)
}
func (display *recordingDisplay) RenderSetProgress(p ProgressView) {
	display.progress = append(display.progress, p)
}

func (display *recordingDisplay) lastTime() int {
	return display.times[len(display.times)-1]
}

func (display *recordingDisplay) lastStatus() Status {
	return display.statuses[len(display.statuses)-1]
}

type recordingNotifier struct {
	boundaries int
	toasts     []Toast
	silenced   int
}

func (notifier *recordingNotifier) NotifySessionBoundary() { notifier.boundaries++ }
func (notifier *recordingNotifier) NotifyToast(toast Toast) {
	notifier.toasts = append(notifier.toasts, toast)
}
func (notifier *recordingNotifier) Silence() { notifier.silenced++ }

func (notifier *recordingNotifier) lastToast() Toast {
	return notifier.toasts[len(notifier.toasts)-1]
}

type harness struct {
	clock    *clock.Fake
	display  *recordingDisplay
	notifier *recordingNotifier
	keeper   *TimeKeeper
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	nop := zerolog.Nop()
	h := &harness{
		clock:    clock.NewFake(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)),
		display:  &recordingDisplay{},
		notifier: &recordingNotifier{},
	}
	h.keeper = New(model.SessionConfig{FocusMinutes: 25, RestMinutes: 5}, Config{
		Clock:    h.clock,
		Display:  h.display,
		Notifier: h.notifier,
		Logger:   &nop,
	})
	t.Cleanup(h.keeper.Close)
	return h
}

func (h *harness) apply(t *testing.T, focus, rest, repeat int) {
	t.Helper()
	require.NoError(t, h.keeper.ApplyConfiguration(model.SessionConfig{
		FocusMinutes: focus,
		RestMinutes:  rest,
		TargetSets:   repeat,
	}))
}

func (h *harness) state() State {
	return h.keeper.Snapshot().State
}

func TestToggleBeforeConfigurationIsRejected(t *testing.T) {
	h := newHarness(t)

	err := h.keeper.Toggle()
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, ToastNotConfigured, h.notifier.lastToast().Key)

	snap := h.keeper.Snapshot()
	assert.Equal(t, PhaseIdle, snap.State.Phase)
	assert.False(t, snap.Scheduled)
	assert.Equal(t, 0, h.clock.ActiveTasks())
}

func TestApplyRejectsInvalidConfiguration(t *testing.T) {
	h := newHarness(t)
	h.apply(t, 25, 5, 2)

	err := h.keeper.ApplyConfiguration(model.SessionConfig{FocusMinutes: 0, RestMinutes: 5})
	require.ErrorIs(t, err, model.ErrInvalidConfiguration)
	assert.Equal(t, ToastInvalidConfig, h.notifier.lastToast().Key)

	snap := h.keeper.Snapshot()
	assert.Equal(t, 25, snap.Config.FocusMinutes)
	assert.Equal(t, 2, snap.Config.TargetSets)
	assert.True(t, snap.Config.Applied)
}

func TestApplyRejectsSessionsLongerThanADay(t *testing.T) {
	h := newHarness(t)

	for _, repeat := range []int{3, 0} {
		err := h.keeper.ApplyConfiguration(model.SessionConfig{FocusMinutes: 200_000_000, RestMinutes: 200_000_000, TargetSets: repeat})
		require.ErrorIs(t, err, model.ErrInvalidConfiguration)
	}
	require.ErrorIs(t, h.keeper.Toggle(), ErrNotConfigured)
	assert.Equal(t, PhaseIdle, h.state().Phase)

	h.apply(t, model.MaxMinutes, model.MaxMinutes, 0)
	require.NoError(t, h.keeper.Toggle())

	snap := h.keeper.Snapshot()
	assert.Equal(t, State{Kind: KindFocus, Phase: PhaseRunning}, snap.State)
	assert.Equal(t, 24*time.Hour, snap.Remaining)
	assert.Equal(t, 0, snap.Progress.Completed)
}

func TestFiniteRunScenario(t *testing.T) {
	h := newHarness(t)
	h.apply(t, 25, 5, 2)
	require.NoError(t, h.keeper.Toggle())
	assert.Equal(t, State{Kind: KindFocus, Phase: PhaseRunning}, h.state())
	assert.Equal(t, 1500, h.display.lastTime())

	h.clock.Advance(25 * time.Minute)
	snap := h.keeper.Snapshot()
	assert.Equal(t, State{Kind: KindRest, Phase: PhaseRunning}, snap.State)
	assert.Equal(t, 0, snap.Progress.Completed)
	assert.Equal(t, 300, h.display.lastTime())
	assert.Equal(t, Status{Key: StatusResting, Color: ColorRest}, h.display.lastStatus())

	h.clock.Advance(5 * time.Minute)
	snap = h.keeper.Snapshot()
	assert.Equal(t, State{Kind: KindFocus, Phase: PhaseRunning}, snap.State)
	assert.Equal(t, 1, snap.Progress.Completed)
	assert.Equal(t, 1, snap.Progress.Remaining)
	assert.Equal(t, Toast{Key: ToastSetComplete, Sets: 1}, h.notifier.lastToast())

	h.clock.Advance(25 * time.Minute)
	h.clock.Advance(5 * time.Minute)
	snap = h.keeper.Snapshot()
	assert.Equal(t, PhaseComplete, snap.State.Phase)
	assert.Equal(t, 2, snap.Progress.Completed)
	assert.Equal(t, 0, snap.Progress.Remaining)
	assert.False(t, snap.Scheduled)
	assert.Equal(t, 0, h.clock.ActiveTasks())
	assert.Equal(t, Toast{Key: ToastAllComplete, Sets: 2}, h.notifier.lastToast())
	assert.Equal(t, Status{Key: StatusComplete, Color: ColorFocus}, h.display.lastStatus())

	// focus→rest, rest→focus, focus→rest, all complete.
	assert.Equal(t, 4, h.notifier.boundaries)

	require.ErrorIs(t, h.keeper.Toggle(), ErrRunComplete)
	assert.Equal(t, PhaseComplete, h.state().Phase)
}

func TestInfiniteRunNeverCompletes(t *testing.T) {
	h := newHarness(t)
	h.apply(t, 25, 5, 0)
	require.True(t, h.keeper.Snapshot().Progress.Infinite)
	require.NoError(t, h.keeper.Toggle())

	for i := 0; i < 10; i++ {
		h.clock.Advance(25 * time.Minute)
		h.clock.Advance(5 * time.Minute)
	}

	snap := h.keeper.Snapshot()
	assert.Equal(t, State{Kind: KindFocus, Phase: PhaseRunning}, snap.State)
	assert.Equal(t, 10, snap.Progress.Completed)
	assert.True(t, snap.Progress.Infinite)
	assert.Equal(t, 1, h.clock.ActiveTasks())
}

func TestPauseAndResumeKeepsRemaining(t *testing.T) {
	h := newHarness(t)
	h.apply(t, 25, 5, 1)
	require.NoError(t, h.keeper.Toggle())

	h.clock.Advance(15 * time.Minute)
	require.NoError(t, h.keeper.Toggle())

	snap := h.keeper.Snapshot()
	assert.Equal(t, State{Kind: KindFocus, Phase: PhasePaused}, snap.State)
	assert.Equal(t, Saved{Remaining: 10 * time.Minute}, snap.Source)
	assert.False(t, snap.Scheduled)
	assert.Equal(t, 0, h.clock.ActiveTasks())
	assert.Equal(t, 600, h.display.lastTime())
	assert.Equal(t, Status{Key: StatusPaused, Color: ColorMuted}, h.display.lastStatus())

	// Time spent paused does not count.
	h.clock.Advance(time.Hour)
	resumedAt := h.clock.Now()
	require.NoError(t, h.keeper.Toggle())

	snap = h.keeper.Snapshot()
	assert.Equal(t, State{Kind: KindFocus, Phase: PhaseRunning}, snap.State)
	assert.Equal(t, Deadline{At: resumedAt.Add(10 * time.Minute)}, snap.Source)
}

func TestApplyRejectedWhileRunningUntilReset(t *testing.T) {
	h := newHarness(t)
	h.apply(t, 25, 5, 2)
	require.NoError(t, h.keeper.Toggle())
	h.clock.Advance(time.Minute)
	before := h.keeper.Snapshot()

	err := h.keeper.ApplyConfiguration(model.SessionConfig{FocusMinutes: 50, RestMinutes: 10, TargetSets: 1})
	require.ErrorIs(t, err, ErrSessionActive)

	after := h.keeper.Snapshot()
	assert.Equal(t, before.State, after.State)
	assert.Equal(t, before.Config, after.Config)
	assert.Equal(t, before.Source, after.Source)
	assert.True(t, after.Scheduled)

	h.keeper.Reset(false)
	require.NoError(t, h.keeper.ApplyConfiguration(model.SessionConfig{FocusMinutes: 50, RestMinutes: 10, TargetSets: 1}))
	assert.Equal(t, 50, h.keeper.Snapshot().Config.FocusMinutes)
	assert.Equal(t, 3000, h.display.lastTime())
}

func TestTickAndResyncFinishAtMostOnce(t *testing.T) {
	h := newHarness(t)
	h.apply(t, 1, 1, 1)
	require.NoError(t, h.keeper.Toggle())

	events := h.keeper.Subscribe(16)

	// The host is backgrounded: ticks stop while the deadline passes.
	h.clock.Jump(time.Minute)

	assert.True(t, h.keeper.Resync())
	h.clock.Fire()
	assert.False(t, h.keeper.Resync())

	assert.Equal(t, 1, h.notifier.boundaries)
	assert.Equal(t, State{Kind: KindRest, Phase: PhaseRunning}, h.state())

	finished := 0
	for len(events) > 0 {
		if event := <-events; event.Type == EventFinished {
			finished++
		}
	}
	assert.Equal(t, 1, finished)
}

func TestResyncCatchesSessionsMissedInBackground(t *testing.T) {
	h := newHarness(t)
	h.apply(t, 25, 5, 3)
	require.NoError(t, h.keeper.Toggle())

	h.clock.Jump(40 * time.Minute)
	require.True(t, h.keeper.Resync())

	// The rest session starts at the resync instant, not at the missed deadline.
	snap := h.keeper.Snapshot()
	assert.Equal(t, State{Kind: KindRest, Phase: PhaseRunning}, snap.State)
	assert.Equal(t, 5*time.Minute, snap.Remaining)
}

func TestResyncIgnoredWhenNotRunning(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.keeper.Resync())

	h.apply(t, 25, 5, 1)
	require.NoError(t, h.keeper.Toggle())
	require.NoError(t, h.keeper.Toggle())
	h.clock.Jump(time.Hour)
	assert.False(t, h.keeper.Resync())
	assert.Equal(t, PhasePaused, h.state().Phase)
}

func TestRestartAfterCompletionUsesFullDuration(t *testing.T) {
	h := newHarness(t)
	h.apply(t, 25, 5, 1)
	require.NoError(t, h.keeper.Toggle())
	h.clock.Advance(25 * time.Minute)
	h.clock.Advance(5 * time.Minute)
	require.Equal(t, PhaseComplete, h.state().Phase)

	h.keeper.Reset(false)
	snap := h.keeper.Snapshot()
	assert.Equal(t, PhaseIdle, snap.State.Phase)
	assert.Equal(t, 1, snap.Progress.Completed)
	assert.Equal(t, 1, snap.Progress.Remaining)

	require.NoError(t, h.keeper.Toggle())
	assert.Equal(t, 25*time.Minute, h.keeper.Snapshot().Remaining)
}

func TestFullResetClearsConfiguration(t *testing.T) {
	h := newHarness(t)
	h.apply(t, 25, 5, 2)
	require.NoError(t, h.keeper.Toggle())
	h.clock.Advance(25 * time.Minute)
	h.clock.Advance(5 * time.Minute)

	h.keeper.Reset(true)

	snap := h.keeper.Snapshot()
	assert.Equal(t, State{Kind: KindFocus, Phase: PhaseIdle}, snap.State)
	assert.False(t, snap.Config.Applied)
	assert.Equal(t, model.SetProgress{Infinite: true}, snap.Progress)
	assert.Equal(t, Saved{}, snap.Source)
	assert.False(t, snap.Scheduled)
	assert.Equal(t, 0, h.clock.ActiveTasks())
	assert.Equal(t, 1, h.notifier.silenced)
	assert.Equal(t, ToastReset, h.notifier.lastToast().Key)
	assert.Equal(t, Status{Key: StatusWelcome, Color: ColorFocus}, h.display.lastStatus())
	assert.Equal(t, 1500, h.display.lastTime())

	last := h.display.progress[len(h.display.progress)-1]
	assert.False(t, last.Configured)

	require.ErrorIs(t, h.keeper.Toggle(), ErrNotConfigured)
}

func TestResetWhileRestingReturnsToFocus(t *testing.T) {
	h := newHarness(t)
	h.apply(t, 25, 5, 2)
	require.NoError(t, h.keeper.Toggle())
	h.clock.Advance(25 * time.Minute)
	h.clock.Advance(time.Minute)
	require.NoError(t, h.keeper.Toggle())

	h.keeper.Reset(false)
	snap := h.keeper.Snapshot()
	assert.Equal(t, State{Kind: KindFocus, Phase: PhaseIdle}, snap.State)
	assert.True(t, snap.Config.Applied)
	assert.Equal(t, 25*time.Minute, snap.Remaining)
	assert.Equal(t, Indicator{}, h.display.indicators[len(h.display.indicators)-1])
}

func TestDisplayNeverShowsNegativeAfterLateTick(t *testing.T) {
	h := newHarness(t)
	h.apply(t, 1, 1, 1)
	require.NoError(t, h.keeper.Toggle())

	h.clock.Advance(59*time.Second + 900*time.Millisecond)
	assert.Equal(t, 1, h.display.lastTime())

	h.clock.Advance(10 * time.Second)
	for _, seconds := range h.display.times {
		assert.GreaterOrEqual(t, seconds, 0)
	}
	assert.Contains(t, h.display.times, 0)
}

func TestRenderPushesCurrentState(t *testing.T) {
	h := newHarness(t)
	h.keeper.Render()

	assert.Equal(t, 1500, h.display.lastTime())
	assert.Equal(t, Status{Key: StatusWelcome, Color: ColorFocus}, h.display.lastStatus())
	last := h.display.progress[len(h.display.progress)-1]
	assert.False(t, last.Configured)
	assert.True(t, last.Infinite)
}

func TestCloseStopsSchedulingAndObservers(t *testing.T) {
	h := newHarness(t)
	h.apply(t, 25, 5, 1)
	events := h.keeper.Subscribe(1)
	require.NoError(t, h.keeper.Toggle())

	h.keeper.Close()
	h.keeper.Close()

	assert.Equal(t, 0, h.clock.ActiveTasks())
	for range events {
	}
	_, open := <-h.keeper.Subscribe(1)
	assert.False(t, open)
}
