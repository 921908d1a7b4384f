package tray

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tomato/internal/core/timekeeper"
	"tomato/internal/i18n"
)

func TestStatusFollowsEvents(t *testing.T) {
	i18n.SetLanguage("en")
	manager := New(nil, Callbacks{})

	assert.Equal(t, "🍅 00:00", manager.Status())
	assert.True(t, manager.restartItem.Disabled)

	manager.Update(timekeeper.Event{
		Type:      timekeeper.EventProgress,
		State:     timekeeper.State{Kind: timekeeper.KindFocus, Phase: timekeeper.PhaseRunning},
		Remaining: 12*time.Minute + 300*time.Millisecond,
	})
	assert.Equal(t, "🍅 12:01", manager.Status())
	assert.Equal(t, "Pause", manager.toggleItem.Label)
	assert.False(t, manager.restartItem.Disabled)

	manager.Update(timekeeper.Event{
		Type:  timekeeper.EventFinished,
		State: timekeeper.State{Kind: timekeeper.KindFocus, Phase: timekeeper.PhaseRunning},
	})
	assert.Equal(t, "🍅 12:01", manager.Status())

	manager.Update(timekeeper.Event{
		Type:      timekeeper.EventStateChange,
		State:     timekeeper.State{Kind: timekeeper.KindRest, Phase: timekeeper.PhasePaused},
		Remaining: 4 * time.Minute,
	})
	assert.Equal(t, "☕ 04:00 (Paused)", manager.Status())
	assert.Equal(t, "Start", manager.toggleItem.Label)

	manager.Update(timekeeper.Event{
		Type:  timekeeper.EventStateChange,
		State: timekeeper.State{Kind: timekeeper.KindFocus, Phase: timekeeper.PhaseComplete},
	})
	assert.Equal(t, "🎉 Done!", manager.Status())
	assert.True(t, manager.toggleItem.Disabled)
}

func TestMenuItemsInvokeCallbacks(t *testing.T) {
	toggles := 0
	manager := New(nil, Callbacks{OnToggle: func() { toggles++ }})

	manager.toggleItem.Action()
	manager.restartItem.Action()
	assert.Equal(t, 1, toggles)
}
