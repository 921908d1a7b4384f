// Package display is the desktop window: the tomato, the countdown, the
// status line, the set counter and the session picker.
package display

import (
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"tomato/internal/core/model"
	"tomato/internal/core/timekeeper"
	"tomato/internal/i18n"
	"tomato/internal/ui/animation"
	"tomato/internal/ui/preferences"
	"tomato/resources"
)

const toastDuration = 2500 * time.Millisecond

// Controller is the part of the timekeeper the window drives.
type Controller interface {
	Toggle() error
	Reset(full bool)
	ApplyConfiguration(config model.SessionConfig) error
}

// Sound plays the alarm and the button click.
type Sound interface {
	PlayAlarm()
	PlayClick()
	Stop()
}

// Window manages the main UI. It is the timekeeper's display and
// notification sink.
type Window struct {
	app        fyne.App
	window     fyne.Window
	image      *canvas.Image
	tomato     *TappableContainer
	timeText   *canvas.Text
	statusText *canvas.Text
	counter    *widget.Label
	toast      *widget.Label
	reset      *widget.Button
	form       *preferences.Form
	engine     *animation.Engine
	sound      Sound

	controller Controller
	foreground atomic.Bool

	toastMu    sync.Mutex
	toastTimer *time.Timer
	toastGen   uint64
}

// New creates the main window. The controller is attached afterwards with
// SetController because the timekeeper needs the window as its sink.
func New(app fyne.App, settings preferences.Settings, sound Sound) *Window {
	window := app.NewWindow("Tomato")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	display := &Window{
		app:    app,
		window: window,
		sound:  sound,
	}
	display.foreground.Store(true)

	display.image = canvas.NewImageFromResource(resources.MustSprite(resources.Tomato))
	display.image.FillMode = canvas.ImageFillContain
	display.image.SetMinSize(fyne.NewSize(180, 180))
	display.tomato = NewTappableContainer(display.image, display.handleToggle, nil)

	display.timeText = canvas.NewText(timekeeper.FormatClock(settings.FocusMinutes*60), colorFor(timekeeper.ColorFocus))
	display.timeText.Alignment = fyne.TextAlignCenter
	display.timeText.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	display.timeText.TextSize = 48

	display.statusText = canvas.NewText(i18n.Status(timekeeper.StatusWelcome), colorFor(timekeeper.ColorFocus))
	display.statusText.Alignment = fyne.TextAlignCenter
	display.statusText.TextSize = 16

	display.counter = widget.NewLabel("")
	display.counter.Alignment = fyne.TextAlignCenter

	display.toast = widget.NewLabel("")
	display.toast.Alignment = fyne.TextAlignCenter
	display.toast.Wrapping = fyne.TextWrapWord
	display.toast.Hide()

	display.reset = widget.NewButton(i18n.T("Reset"), display.handleReset)
	display.form = preferences.NewForm(settings, display.handleApply, display.ShowToast)

	display.engine = animation.New(animation.DefaultConfig(),
		animation.Sprites{Still: resources.MustSprite(resources.Tomato), Squish: resources.MustSprite(resources.TomatoSquish)},
		animation.Sprites{Still: resources.MustSprite(resources.TomatoRest), Squish: resources.MustSprite(resources.TomatoRestSquish)},
		display.setSprite,
	)

	content := container.NewVBox(
		display.statusText,
		container.NewCenter(display.tomato),
		display.timeText,
		display.counter,
		display.form.Content(),
		container.NewHBox(layout.NewSpacer(), display.reset, layout.NewSpacer()),
		display.toast,
	)
	window.SetContent(container.NewPadded(content))
	window.Resize(fyne.NewSize(340, 520))
	return display
}

// SetController attaches the timekeeper.
func (display *Window) SetController(controller Controller) {
	display.controller = controller
}

// Show displays the window.
func (display *Window) Show() {
	display.window.Show()
	display.window.RequestFocus()
}

// Window returns the underlying fyne window.
func (display *Window) Window() fyne.Window {
	return display.window
}

// UpdateSettings refreshes the session picker after a settings change.
func (display *Window) UpdateSettings(settings preferences.Settings) {
	fyne.Do(func() {
		display.form.UpdateSettings(settings)
	})
}

// SetForeground records whether the application has focus. Boundary toasts
// become system notifications while it does not.
func (display *Window) SetForeground(foreground bool) {
	display.foreground.Store(foreground)
}

// Close stops the animation and pending toast timers.
func (display *Window) Close() {
	display.engine.Stop()
	display.toastMu.Lock()
	if display.toastTimer != nil {
		display.toastTimer.Stop()
	}
	display.toastMu.Unlock()
}

// RenderTime implements timekeeper.Display.
func (display *Window) RenderTime(seconds int) {
	text := timekeeper.FormatClock(seconds)
	fyne.Do(func() {
		display.timeText.Text = text
		display.timeText.Refresh()
		display.window.SetTitle(text + " · Tomato")
	})
}

// RenderStatus implements timekeeper.Display.
func (display *Window) RenderStatus(status timekeeper.Status) {
	text := i18n.Status(status.Key)
	fill := colorFor(status.Color)
	fyne.Do(func() {
		display.statusText.Text = text
		display.statusText.Color = fill
		display.statusText.Refresh()
		if status.Color != timekeeper.ColorMuted {
			display.timeText.Color = fill
			display.timeText.Refresh()
		}
	})
}

// RenderRunning implements timekeeper.Display.
func (display *Window) RenderRunning(indicator timekeeper.Indicator) {
	display.engine.Show(indicator)
}

// RenderSetProgress implements timekeeper.Display.
func (display *Window) RenderSetProgress(view timekeeper.ProgressView) {
	text := i18n.SetCounter(view)
	fyne.Do(func() {
		display.counter.SetText(text)
	})
}

// NotifySessionBoundary implements timekeeper.Notifier.
func (display *Window) NotifySessionBoundary() {
	if display.sound != nil {
		display.sound.PlayAlarm()
	}
}

// NotifyToast implements timekeeper.Notifier.
func (display *Window) NotifyToast(toast timekeeper.Toast) {
	text := i18n.Toast(toast)
	display.ShowToast(text)

	switch toast.Key {
	case timekeeper.ToastRestStarted, timekeeper.ToastSetComplete, timekeeper.ToastAllComplete:
		if !display.foreground.Load() {
			display.app.SendNotification(fyne.NewNotification("Tomato", text))
		}
	}
}

// Silence implements timekeeper.Notifier.
func (display *Window) Silence() {
	if display.sound != nil {
		display.sound.Stop()
	}
}

// ShowToast shows text under the controls for a short while.
func (display *Window) ShowToast(text string) {
	display.toastMu.Lock()
	display.toastGen++
	generation := display.toastGen
	if display.toastTimer != nil {
		display.toastTimer.Stop()
	}
	display.toastTimer = time.AfterFunc(toastDuration, func() {
		display.hideToast(generation)
	})
	display.toastMu.Unlock()

	fyne.Do(func() {
		display.toast.SetText(text)
		display.toast.Show()
	})
}

func (display *Window) hideToast(generation uint64) {
	display.toastMu.Lock()
	current := display.toastGen == generation
	display.toastMu.Unlock()
	if !current {
		return
	}
	fyne.Do(func() {
		display.toast.Hide()
	})
}

func (display *Window) setSprite(resource fyne.Resource) {
	fyne.Do(func() {
		display.image.Resource = resource
		display.image.Refresh()
	})
}

func (display *Window) handleToggle() {
	display.click()
	if display.controller != nil {
		_ = display.controller.Toggle()
	}
}

func (display *Window) handleReset() {
	display.click()
	if display.controller != nil {
		display.controller.Reset(true)
	}
}

func (display *Window) handleApply(config model.SessionConfig) error {
	display.click()
	if display.controller == nil {
		return nil
	}
	return display.controller.ApplyConfiguration(config)
}

func (display *Window) click() {
	if display.sound != nil {
		display.sound.PlayClick()
	}
}

func colorFor(token timekeeper.ColorToken) color.Color {
	switch token {
	case timekeeper.ColorRest:
		return color.NRGBA{R: 0x2f, G: 0x9e, B: 0x44, A: 0xff}
	case timekeeper.ColorMuted:
		return color.NRGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	}
	return color.NRGBA{R: 0xe5, G: 0x48, B: 0x4d, A: 0xff}
}
