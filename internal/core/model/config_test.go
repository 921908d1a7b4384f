package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  SessionConfig
		wantErr bool
	}{
		{name: "classic", config: SessionConfig{FocusMinutes: 25, RestMinutes: 5, TargetSets: 4}},
		{name: "infinite", config: SessionConfig{FocusMinutes: 50, RestMinutes: 10}},
		{name: "zero focus", config: SessionConfig{RestMinutes: 5}, wantErr: true},
		{name: "negative rest", config: SessionConfig{FocusMinutes: 25, RestMinutes: -1}, wantErr: true},
		{name: "one day focus", config: SessionConfig{FocusMinutes: MaxMinutes, RestMinutes: 5}},
		{name: "focus longer than a day", config: SessionConfig{FocusMinutes: MaxMinutes + 1, RestMinutes: 5}, wantErr: true},
		{name: "rest overflowing duration", config: SessionConfig{FocusMinutes: 25, RestMinutes: 200_000_000}, wantErr: true},
		{name: "negative repeat", config: SessionConfig{FocusMinutes: 25, RestMinutes: 5, TargetSets: -2}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfiguration)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSessionConfigDurations(t *testing.T) {
	config := SessionConfig{FocusMinutes: 25, RestMinutes: 5}
	assert.Equal(t, 25*time.Minute, config.FocusDuration())
	assert.Equal(t, 5*time.Minute, config.RestDuration())
	assert.True(t, config.Infinite())
}

func TestSetProgressFinite(t *testing.T) {
	progress := NewSetProgress(SessionConfig{FocusMinutes: 1, RestMinutes: 1, TargetSets: 2})
	require.True(t, progress.HasNext())

	progress.Record()
	assert.Equal(t, 1, progress.Completed)
	assert.Equal(t, 1, progress.Remaining)
	assert.True(t, progress.HasNext())

	progress.Record()
	assert.Equal(t, 2, progress.Completed)
	assert.Equal(t, 0, progress.Remaining)
	assert.False(t, progress.HasNext())
}

func TestSetProgressInfinite(t *testing.T) {
	progress := NewSetProgress(SessionConfig{FocusMinutes: 1, RestMinutes: 1})
	for i := 0; i < 50; i++ {
		progress.Record()
	}
	assert.True(t, progress.Infinite)
	assert.Equal(t, 50, progress.Completed)
	assert.Equal(t, 0, progress.Remaining)
	assert.True(t, progress.HasNext())
}
