// Package terminal renders the timer on a text terminal and reads single
// key commands.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tomato/internal/core/timekeeper"
	"tomato/internal/i18n"
)

const toastDuration = 2500 * time.Millisecond

var (
	focusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	restStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("71")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	toastStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236")).Padding(0, 1)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Sound plays the alarm.
type Sound interface {
	PlayAlarm()
	Stop()
}

// Renderer is a timekeeper display and notification sink that redraws a
// single status line.
type Renderer struct {
	mu sync.Mutex

	out   io.Writer
	sound Sound
	now   func() time.Time
	// inPlace rewrites the line with a carriage return instead of printing
	// a new line per update.
	inPlace bool

	seconds    int
	status     timekeeper.Status
	indicator  timekeeper.Indicator
	counter    string
	toast      string
	toastUntil time.Time
	last       string
}

// NewRenderer creates a renderer writing to out. inPlace should be true when
// out is a terminal.
func NewRenderer(out io.Writer, sound Sound, inPlace bool) *Renderer {
	return &Renderer{
		out:     out,
		sound:   sound,
		now:     time.Now,
		inPlace: inPlace,
		status:  timekeeper.Status{Key: timekeeper.StatusWelcome, Color: timekeeper.ColorFocus},
	}
}

// RenderTime implements timekeeper.Display.
func (renderer *Renderer) RenderTime(seconds int) {
	renderer.update(func() { renderer.seconds = seconds })
}

// RenderStatus implements timekeeper.Display.
func (renderer *Renderer) RenderStatus(status timekeeper.Status) {
	renderer.update(func() { renderer.status = status })
}

// RenderRunning implements timekeeper.Display.
func (renderer *Renderer) RenderRunning(indicator timekeeper.Indicator) {
	renderer.update(func() { renderer.indicator = indicator })
}

// RenderSetProgress implements timekeeper.Display.
func (renderer *Renderer) RenderSetProgress(view timekeeper.ProgressView) {
	counter := i18n.SetCounter(view)
	renderer.update(func() { renderer.counter = counter })
}

// NotifySessionBoundary implements timekeeper.Notifier. The terminal bell
// rings along with the alarm.
func (renderer *Renderer) NotifySessionBoundary() {
	renderer.mu.Lock()
	_, _ = io.WriteString(renderer.out, "\a")
	renderer.mu.Unlock()
	if renderer.sound != nil {
		renderer.sound.PlayAlarm()
	}
}

// NotifyToast implements timekeeper.Notifier.
func (renderer *Renderer) NotifyToast(toast timekeeper.Toast) {
	text := i18n.Toast(toast)
	renderer.update(func() {
		renderer.toast = text
		renderer.toastUntil = renderer.now().Add(toastDuration)
	})
}

// Silence implements timekeeper.Notifier.
func (renderer *Renderer) Silence() {
	if renderer.sound != nil {
		renderer.sound.Stop()
	}
}

// Line returns the current status line without terminal control sequences.
func (renderer *Renderer) Line() string {
	renderer.mu.Lock()
	defer renderer.mu.Unlock()
	return renderer.lineLocked()
}

// Finish moves the cursor past the status line.
func (renderer *Renderer) Finish() {
	renderer.mu.Lock()
	defer renderer.mu.Unlock()
	if renderer.inPlace {
		_, _ = io.WriteString(renderer.out, "\r\n")
	}
}

func (renderer *Renderer) update(change func()) {
	renderer.mu.Lock()
	defer renderer.mu.Unlock()
	change()
	renderer.drawLocked()
}

func (renderer *Renderer) drawLocked() {
	line := renderer.lineLocked()
	if line == renderer.last {
		return
	}
	renderer.last = line
	if renderer.inPlace {
		// Raw mode: return to column 0 and clear the line first.
		_, _ = fmt.Fprintf(renderer.out, "\r\x1b[2K%s", line)
		return
	}
	_, _ = fmt.Fprintln(renderer.out, line)
}

func (renderer *Renderer) lineLocked() string {
	style := focusStyle
	switch renderer.status.Color {
	case timekeeper.ColorRest:
		style = restStyle
	case timekeeper.ColorMuted:
		style = mutedStyle
	}

	icon := "🍅"
	if renderer.indicator.RestMode {
		icon = "☕"
	}
	if renderer.indicator.Running {
		icon += "▶"
	}

	parts := []string{
		icon,
		style.Render(timekeeper.FormatClock(renderer.seconds)),
		style.Render(i18n.Status(renderer.status.Key)),
	}
	if renderer.counter != "" {
		parts = append(parts, mutedStyle.Render(renderer.counter))
	}
	if renderer.toast != "" && renderer.now().Before(renderer.toastUntil) {
		parts = append(parts, toastStyle.Render(renderer.toast))
	}
	return strings.Join(parts, "  ")
}

// Help describes the key bindings.
func Help() string {
	return helpStyle.Render("space: start/pause  s: restart session  r: reset  q: quit")
}
