package terminal

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tomato/internal/core/clock"
	"tomato/internal/core/model"
	"tomato/internal/core/timekeeper"
	"tomato/internal/i18n"
)

type recordingController struct {
	mu       sync.Mutex
	toggles  int
	partials int
	fulls    int
	resyncs  int
}

func (c *recordingController) Toggle() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toggles++
	return nil
}

func (c *recordingController) Reset(full bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if full {
		c.fulls++
		return
	}
	c.partials++
}

func (c *recordingController) Resync() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resyncs++
	return false
}

type countingSound struct {
	alarms, stops int
}

func (sound *countingSound) PlayAlarm() { sound.alarms++ }
func (sound *countingSound) Stop()      { sound.stops++ }

func TestSessionDispatchesKeys(t *testing.T) {
	defer goleak.VerifyNone(t)

	controller := &recordingController{}
	renderer := NewRenderer(io.Discard, nil, false)
	session := NewSession(strings.NewReader(" sr q ignored"), controller, renderer, Options{})
	assert.False(t, session.IsTerminal())

	require.NoError(t, session.Run(context.Background()))

	assert.Equal(t, 2, controller.toggles)
	assert.Equal(t, 1, controller.partials)
	assert.Equal(t, 1, controller.fulls)
}

func TestSessionKeepsRunningAfterInputEnds(t *testing.T) {
	defer goleak.VerifyNone(t)

	events := make(chan timekeeper.Event, 1)
	controller := &recordingController{}
	session := NewSession(strings.NewReader(""), controller, NewRenderer(io.Discard, nil, false), Options{
		Events:         events,
		ExitOnComplete: true,
	})

	finished := make(chan error, 1)
	go func() { finished <- session.Run(context.Background()) }()

	select {
	case <-finished:
		t.Fatal("session ended at end of input")
	case <-time.After(50 * time.Millisecond):
	}

	events <- timekeeper.Event{
		Type:  timekeeper.EventStateChange,
		State: timekeeper.State{Kind: timekeeper.KindFocus, Phase: timekeeper.PhaseComplete},
	}
	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("session did not end on completion")
	}
}

func TestSessionStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	session := NewSession(strings.NewReader(""), &recordingController{}, NewRenderer(io.Discard, nil, false), Options{})

	finished := make(chan error, 1)
	go func() { finished <- session.Run(ctx) }()
	cancel()

	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("session ignored cancellation")
	}
}

func TestRendererFollowsTimeKeeper(t *testing.T) {
	i18n.SetLanguage("en")
	var out bytes.Buffer
	sound := &countingSound{}
	renderer := NewRenderer(&out, sound, false)

	fake := clock.NewFake(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC))
	nop := zerolog.Nop()
	keeper := timekeeper.New(model.SessionConfig{FocusMinutes: 25, RestMinutes: 5}, timekeeper.Config{
		Clock:    fake,
		Display:  renderer,
		Notifier: renderer,
		Logger:   &nop,
	})
	defer keeper.Close()
	keeper.Render()

	line := renderer.Line()
	assert.Contains(t, line, "25:00")
	assert.Contains(t, line, "The tomato is waiting for you!")
	assert.Contains(t, line, "Completed sets: 0 / ?")

	assert.ErrorIs(t, keeper.Toggle(), timekeeper.ErrNotConfigured)
	assert.Contains(t, renderer.Line(), "Enter a repeat count")

	require.NoError(t, keeper.ApplyConfiguration(model.SessionConfig{FocusMinutes: 1, RestMinutes: 1, TargetSets: 1}))
	require.NoError(t, keeper.Toggle())
	fake.Advance(30 * time.Second)
	assert.Contains(t, renderer.Line(), "00:30")
	assert.Contains(t, renderer.Line(), "🍅▶")

	fake.Advance(30 * time.Second)
	assert.Equal(t, 1, sound.alarms)
	assert.Contains(t, out.String(), "\a")
	assert.Contains(t, renderer.Line(), "☕▶")
	assert.Contains(t, renderer.Line(), "Resting")

	keeper.Reset(true)
	assert.Equal(t, 1, sound.stops)
}

func TestRendererDropsExpiredToast(t *testing.T) {
	i18n.SetLanguage("en")
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	renderer := NewRenderer(io.Discard, nil, false)
	renderer.now = func() time.Time { return now }

	renderer.NotifyToast(timekeeper.Toast{Key: timekeeper.ToastReset})
	assert.Contains(t, renderer.Line(), "Timer reset")

	now = now.Add(3 * time.Second)
	assert.NotContains(t, renderer.Line(), "Timer reset")
}

func TestRendererRedrawsInPlace(t *testing.T) {
	var out bytes.Buffer
	renderer := NewRenderer(&out, nil, true)

	renderer.RenderTime(90)
	renderer.RenderTime(90)
	renderer.Finish()

	assert.Equal(t, 1, strings.Count(out.String(), "\r\x1b[2K"))
	assert.Contains(t, out.String(), "01:30")
	assert.True(t, strings.HasSuffix(out.String(), "\r\n"))
}
