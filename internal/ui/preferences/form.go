package preferences

import (
	"errors"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"tomato/internal/core/model"
	"tomato/internal/i18n"
)

// Form holds the session picker shown under the tomato: a preset select, the
// repeat count and the apply button.
type Form struct {
	preset  *widget.Select
	repeat  *widget.Entry
	apply   *widget.Button
	content fyne.CanvasObject

	onApply   func(model.SessionConfig) error
	onMessage func(string)
}

// NewForm builds the session picker. onApply receives a parsed configuration;
// onMessage shows input errors to the user.
func NewForm(settings Settings, onApply func(model.SessionConfig) error, onMessage func(string)) *Form {
	form := &Form{
		onApply:   onApply,
		onMessage: onMessage,
	}

	form.preset = widget.NewSelect(settings.PresetLabels(), nil)
	form.selectDefault(settings)

	form.repeat = widget.NewEntry()
	form.repeat.SetPlaceHolder(i18n.T("Repeat (0 = infinite)"))
	form.repeat.OnSubmitted = func(string) { _ = form.Submit() }

	form.apply = widget.NewButton(i18n.T("Apply"), func() { _ = form.Submit() })

	form.content = container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel(i18n.T("Preset")), nil, form.preset),
		container.NewBorder(nil, nil, nil, form.apply, form.repeat),
	)
	return form
}

// Content returns the canvas object to embed.
func (form *Form) Content() fyne.CanvasObject {
	return form.content
}

// UpdateSettings replaces the preset options, keeping the current choice when
// it still exists.
func (form *Form) UpdateSettings(settings Settings) {
	selected := form.preset.Selected
	form.preset.Options = settings.PresetLabels()
	for _, option := range form.preset.Options {
		if option == selected {
			form.preset.Refresh()
			return
		}
	}
	form.selectDefault(settings)
	form.preset.Refresh()
}

// Submit parses the fields and hands the configuration to onApply.
func (form *Form) Submit() error {
	config, err := ParseSession(form.preset.Selected, form.repeat.Text)
	switch {
	case errors.Is(err, ErrRepeatNotInteger):
		suggestion, _ := ParseRepeat(form.repeat.Text)
		form.repeat.SetText(strconv.Itoa(suggestion))
		form.message(i18n.T("😭 The repeat count must be a whole number!"))
		return err
	case err != nil:
		form.message(i18n.T("😭 Enter a valid repeat count!"))
		return err
	}

	if form.onApply == nil {
		return nil
	}
	return form.onApply(config)
}

func (form *Form) selectDefault(settings Settings) {
	current := Preset{FocusMinutes: settings.FocusMinutes, RestMinutes: settings.RestMinutes}.String()
	for _, option := range form.preset.Options {
		if option == current {
			form.preset.SetSelected(option)
			return
		}
	}
	if len(form.preset.Options) > 0 {
		form.preset.SetSelected(form.preset.Options[0])
	}
}

func (form *Form) message(text string) {
	if form.onMessage != nil {
		form.onMessage(text)
	}
}
