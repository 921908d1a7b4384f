package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"tomato/internal/core/timekeeper"
	"tomato/internal/i18n"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnPreferences func()
	OnToggle      func()
	OnRestart     func()
	OnReset       func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	toggleItem  *fyne.MenuItem
	restartItem *fyne.MenuItem
	callbacks   Callbacks
	state       timekeeper.State
	remaining   int
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		state:     timekeeper.State{Kind: timekeeper.KindFocus, Phase: timekeeper.PhaseIdle},
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true
	manager.toggleItem = fyne.NewMenuItem(i18n.T("Start"), manager.call(func() func() { return manager.callbacks.OnToggle }))
	manager.restartItem = fyne.NewMenuItem("Restart session", manager.call(func() func() { return manager.callbacks.OnRestart }))

	manager.refreshStatus()
	return manager
}

// Update applies a timekeeper event to the menu. Call it on the UI thread.
func (manager *Manager) Update(event timekeeper.Event) {
	manager.state = event.State
	if event.Type != timekeeper.EventFinished {
		manager.remaining = timekeeper.DisplaySeconds(event.Remaining)
	}
	manager.refreshStatus()
}

// Status returns the text shown in the disabled status entry.
func (manager *Manager) Status() string {
	return manager.statusItem.Label
}

func (manager *Manager) refreshStatus() {
	clock := timekeeper.FormatClock(manager.remaining)
	switch manager.state.Phase {
	case timekeeper.PhaseRunning:
		manager.statusItem.Label = fmt.Sprintf("%s %s", kindLabel(manager.state.Kind), clock)
		manager.toggleItem.Label = i18n.T("Pause")
	case timekeeper.PhasePaused:
		manager.statusItem.Label = fmt.Sprintf("%s %s (%s)", kindLabel(manager.state.Kind), clock, i18n.T("Paused"))
		manager.toggleItem.Label = i18n.T("Start")
	case timekeeper.PhaseComplete:
		manager.statusItem.Label = i18n.Status(timekeeper.StatusComplete)
		manager.toggleItem.Label = i18n.T("Start")
	default:
		manager.statusItem.Label = fmt.Sprintf("%s %s", kindLabel(manager.state.Kind), clock)
		manager.toggleItem.Label = i18n.T("Start")
	}
	manager.toggleItem.Disabled = manager.state.Phase == timekeeper.PhaseComplete
	manager.restartItem.Disabled = manager.state.Phase == timekeeper.PhaseIdle
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("Tomato",
		manager.statusItem,
		fyne.NewMenuItem(i18n.T("Show Tomato"), manager.call(func() func() { return manager.callbacks.OnShow })),
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		manager.restartItem,
		fyne.NewMenuItem(i18n.T("Reset"), manager.call(func() func() { return manager.callbacks.OnReset })),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences", manager.call(func() func() { return manager.callbacks.OnPreferences })),
		fyne.NewMenuItem(i18n.T("Quit"), manager.call(func() func() { return manager.callbacks.OnQuit })),
	))
}

// call resolves the handler at tap time so callbacks may be replaced.
func (manager *Manager) call(handler func() func()) func() {
	return func() {
		if fn := handler(); fn != nil {
			fn()
		}
	}
}

func kindLabel(kind timekeeper.Kind) string {
	if kind == timekeeper.KindRest {
		return "☕"
	}
	return "🍅"
}
