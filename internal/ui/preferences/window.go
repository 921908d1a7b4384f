package preferences

import (
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"tomato/internal/i18n"
)

var languageOptions = []string{"auto", "en", "ko"}

// Window handles the preferences UI.
type Window struct {
	window    fyne.Window
	settings  Settings
	onSave    func(Settings)
	focus     *widget.Entry
	rest      *widget.Entry
	alarm     *widget.Entry
	alarmGap  *widget.Entry
	alarmFile *widget.Entry
	click     *widget.Check
	language  *widget.Select
	autostart *widget.Check
	idle      *widget.Entry
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Tomato Settings")

	prefs := &Window{
		window:    window,
		onSave:    onSave,
		focus:     widget.NewEntry(),
		rest:      widget.NewEntry(),
		alarm:     widget.NewEntry(),
		alarmGap:  widget.NewEntry(),
		alarmFile: widget.NewEntry(),
		click:     widget.NewCheck("Click sound", nil),
		language:  widget.NewSelect(languageOptions, nil),
		autostart: widget.NewCheck(i18n.T("Start at login"), nil),
		idle:      widget.NewEntry(),
	}
	prefs.alarmFile.SetPlaceHolder("built in tone")
	prefs.UpdateSettings(settings)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Session", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Default focus"), prefs.focus, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Default rest"), prefs.rest, widget.NewLabel("min")),
		widget.NewLabelWithStyle("Sound", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Alarm plays"), prefs.alarm, widget.NewLabel("times")),
		container.NewHBox(widget.NewLabel("Pause between plays"), prefs.alarmGap, widget.NewLabel("ms")),
		container.NewBorder(nil, nil, widget.NewLabel("Alarm file"), nil, prefs.alarmFile),
		prefs.click,
		widget.NewLabelWithStyle("General", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Language"), prefs.language),
		container.NewHBox(widget.NewLabel("Resync after idle"), prefs.idle, widget.NewLabel("sec")),
		prefs.autostart,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", func() { window.Hide() })
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(420, 460))
	window.SetCloseIntercept(func() { window.Hide() })

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.focus.SetText(strconv.Itoa(settings.FocusMinutes))
	prefs.rest.SetText(strconv.Itoa(settings.RestMinutes))
	prefs.alarm.SetText(strconv.Itoa(settings.AlarmRepeat))
	prefs.alarmGap.SetText(strconv.Itoa(int(settings.AlarmGap.Milliseconds())))
	prefs.alarmFile.SetText(settings.AlarmFile)
	prefs.click.SetChecked(settings.ClickSound)
	prefs.autostart.SetChecked(settings.Autostart)
	prefs.idle.SetText(strconv.Itoa(int(settings.IdleResyncAfter.Seconds())))

	language := settings.Language
	if language == "" {
		language = "auto"
	}
	prefs.language.SetSelected(language)
}

func (prefs *Window) handleSave() {
	prefs.settings = prefs.collect()
	if prefs.onSave != nil {
		prefs.onSave(prefs.settings)
	}
	prefs.window.Hide()
}

// collect reads the fields back, keeping the previous value for any field
// that does not parse.
func (prefs *Window) collect() Settings {
	settings := prefs.settings

	if minutes, ok := parseMinutes(prefs.focus.Text); ok {
		settings.FocusMinutes = minutes
	}
	if minutes, ok := parseMinutes(prefs.rest.Text); ok {
		settings.RestMinutes = minutes
	}
	if count, ok := parsePositiveInt(prefs.alarm.Text); ok {
		settings.AlarmRepeat = count
	}
	if millis, err := strconv.Atoi(prefs.alarmGap.Text); err == nil && millis >= 0 {
		settings.AlarmGap = time.Duration(millis) * time.Millisecond
	}
	if seconds, err := strconv.Atoi(prefs.idle.Text); err == nil && seconds >= 0 {
		settings.IdleResyncAfter = time.Duration(seconds) * time.Second
	}

	settings.AlarmFile = prefs.alarmFile.Text
	settings.ClickSound = prefs.click.Checked
	settings.Autostart = prefs.autostart.Checked
	settings.Language = prefs.language.Selected
	if settings.Language == "auto" {
		settings.Language = ""
	}
	return settings
}
