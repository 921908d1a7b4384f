package preferences

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomato/internal/core/model"
	"tomato/internal/core/timekeeper"
)

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	assert.Equal(t, []string{"25-5", "50-10", "15-3"}, settings.PresetLabels())
	assert.Equal(t, timekeeper.DefaultTickInterval, settings.TimeKeeperConfig().TickInterval)
	assert.Equal(t, 4, settings.AlarmRepeat)
	assert.Equal(t, 150*time.Millisecond, settings.AlarmGap)
	assert.Equal(t, model.SessionConfig{FocusMinutes: 25, RestMinutes: 5}, settings.SessionDefaults())
}

func TestParsePreset(t *testing.T) {
	preset, err := ParsePreset(" 50-10 ")
	require.NoError(t, err)
	assert.Equal(t, Preset{FocusMinutes: 50, RestMinutes: 10}, preset)

	for _, text := range []string{"", "25", "25-", "-5", "0-5", "25-x", "a-b", "1441-5", "25-200000000"} {
		_, err := ParsePreset(text)
		assert.ErrorIs(t, err, ErrInvalidPreset, "preset %q", text)
	}
}

func TestParseRepeat(t *testing.T) {
	tests := []struct {
		text    string
		want    int
		wantErr error
	}{
		{text: "0", want: 0},
		{text: "3", want: 3},
		{text: " 12 ", want: 12},
		{text: "2.7", want: 2, wantErr: ErrRepeatNotInteger},
		{text: "0.5", want: 0, wantErr: ErrRepeatNotInteger},
		{text: "-1", wantErr: ErrInvalidRepeat},
		{text: "-1.5", wantErr: ErrInvalidRepeat},
		{text: "", wantErr: ErrInvalidRepeat},
		{text: "three", wantErr: ErrInvalidRepeat},
		{text: "1.2.3", wantErr: ErrInvalidRepeat},
	}
	for _, tt := range tests {
		got, err := ParseRepeat(tt.text)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "repeat %q", tt.text)
		} else {
			assert.NoError(t, err, "repeat %q", tt.text)
		}
		assert.Equal(t, tt.want, got, "repeat %q", tt.text)
	}
}

func TestParseSession(t *testing.T) {
	config, err := ParseSession("15-3", "2")
	require.NoError(t, err)
	assert.Equal(t, model.SessionConfig{FocusMinutes: 15, RestMinutes: 3, TargetSets: 2}, config)
	require.NoError(t, config.Validate())

	_, err = ParseSession("15-3", "x")
	assert.ErrorIs(t, err, ErrInvalidRepeat)
}
