package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"tomato/internal/core/model"
	"tomato/internal/log"
	"tomato/internal/ui/preferences"
)

const (
	settingsFileName     = "settings.yaml"
	settingsTomlFileName = "settings.toml"
)

type fileSettings struct {
	FocusMinutes      int      `yaml:"focus_minutes" toml:"focus_minutes"`
	RestMinutes       int      `yaml:"rest_minutes" toml:"rest_minutes"`
	Presets           []string `yaml:"presets,omitempty" toml:"presets,omitempty"`
	TickIntervalMs    int      `yaml:"tick_interval_ms" toml:"tick_interval_ms"`
	AlarmRepeat       int      `yaml:"alarm_repeat" toml:"alarm_repeat"`
	AlarmGapMs        int      `yaml:"alarm_gap_ms" toml:"alarm_gap_ms"`
	AlarmFile         string   `yaml:"alarm_file,omitempty" toml:"alarm_file,omitempty"`
	ClickSound        *bool    `yaml:"click_sound,omitempty" toml:"click_sound,omitempty"`
	Language          string   `yaml:"language,omitempty" toml:"language,omitempty"`
	LogLevel          string   `yaml:"log_level,omitempty" toml:"log_level,omitempty"`
	Autostart         *bool    `yaml:"autostart,omitempty" toml:"autostart,omitempty"`
	IdleResyncSeconds *int     `yaml:"idle_resync_seconds,omitempty" toml:"idle_resync_seconds,omitempty"`
}

// LoadSettings reads user preferences from the config directory.
// If no config file exists, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	configPath, err := ResolveConfigPath(appName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	return LoadSettingsFrom(configPath)
}

// LoadSettingsFrom reads user preferences from path. The format follows the
// extension: .toml is decoded as TOML, anything else as YAML.
func LoadSettingsFrom(configPath string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData fileSettings
	if isToml(configPath) {
		if _, err := toml.Decode(string(rawData), &fileData); err != nil {
			return settings, fmt.Errorf("parse settings toml: %w", err)
		}
	} else if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyFileSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to the config directory.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := ResolveConfigPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsTo(configPath, settings)
}

// SaveSettingsTo writes user preferences to path in the format its extension
// names.
func SaveSettingsTo(configPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := toFileSettings(settings)

	var serialized []byte
	if isToml(configPath) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(fileData); err != nil {
			return fmt.Errorf("marshal settings toml: %w", err)
		}
		serialized = buf.Bytes()
	} else {
		var err error
		serialized, err = yaml.Marshal(fileData)
		if err != nil {
			return fmt.Errorf("marshal settings yaml: %w", err)
		}
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// ResolveConfigPath returns the settings file for appName. An existing
// settings.toml wins over the default settings.yaml.
func ResolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	dir := filepath.Join(configDir, appName)
	tomlPath := filepath.Join(dir, settingsTomlFileName)
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	return filepath.Join(dir, settingsFileName), nil
}

func isToml(configPath string) bool {
	return strings.EqualFold(filepath.Ext(configPath), ".toml")
}

func toFileSettings(settings preferences.Settings) fileSettings {
	clickSound := settings.ClickSound
	autostart := settings.Autostart
	idleSeconds := int(settings.IdleResyncAfter / time.Second)
	return fileSettings{
		FocusMinutes:      settings.FocusMinutes,
		RestMinutes:       settings.RestMinutes,
		Presets:           settings.PresetLabels(),
		TickIntervalMs:    int(settings.TickInterval / time.Millisecond),
		AlarmRepeat:       settings.AlarmRepeat,
		AlarmGapMs:        int(settings.AlarmGap / time.Millisecond),
		AlarmFile:         settings.AlarmFile,
		ClickSound:        &clickSound,
		Language:          settings.Language,
		LogLevel:          settings.LogLevel,
		Autostart:         &autostart,
		IdleResyncSeconds: &idleSeconds,
	}
}

func applyFileSettings(settings *preferences.Settings, fileData fileSettings) {
	if model.ValidMinutes(fileData.FocusMinutes) {
		settings.FocusMinutes = fileData.FocusMinutes
	}
	if model.ValidMinutes(fileData.RestMinutes) {
		settings.RestMinutes = fileData.RestMinutes
	}
	if presets := parsePresets(fileData.Presets); len(presets) > 0 {
		settings.Presets = presets
	}
	// Below 10ms the tick loop would only burn CPU.
	if fileData.TickIntervalMs >= 10 && fileData.TickIntervalMs <= 1000 {
		settings.TickInterval = time.Duration(fileData.TickIntervalMs) * time.Millisecond
	}
	if fileData.AlarmRepeat > 0 {
		settings.AlarmRepeat = fileData.AlarmRepeat
	}
	if fileData.AlarmGapMs > 0 {
		settings.AlarmGap = time.Duration(fileData.AlarmGapMs) * time.Millisecond
	}
	if fileData.IdleResyncSeconds != nil && *fileData.IdleResyncSeconds >= 0 {
		settings.IdleResyncAfter = time.Duration(*fileData.IdleResyncSeconds) * time.Second
	}
	if fileData.ClickSound != nil {
		settings.ClickSound = *fileData.ClickSound
	}
	if fileData.Autostart != nil {
		settings.Autostart = *fileData.Autostart
	}

	settings.AlarmFile = fileData.AlarmFile
	settings.Language = fileData.Language
	if fileData.LogLevel != "" {
		settings.LogLevel = fileData.LogLevel
	}
}

func parsePresets(values []string) []preferences.Preset {
	presets := make([]preferences.Preset, 0, len(values))
	for _, value := range values {
		preset, err := preferences.ParsePreset(value)
		if err != nil {
			logger := log.WithComponent("storage")
			logger.Warn().Err(err).Msg("ignoring preset")
			continue
		}
		presets = append(presets, preset)
	}
	return presets
}
