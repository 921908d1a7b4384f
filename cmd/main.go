// Package main implements the tomato pomodoro timer.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tomato/internal/audio"
	"tomato/internal/core/model"
	"tomato/internal/core/timekeeper"
	"tomato/internal/i18n"
	"tomato/internal/log"
	"tomato/internal/storage"
	"tomato/internal/ui/preferences"
)

const (
	appName = "Tomato"
	appID   = "com.tomato.app"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "tomato",
	Short:             "Tomato - a pomodoro timer",
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
	RunE:              runGUI,
}

var (
	configPathFlag string
	logLevelFlag   string
	languageFlag   string
	sessionFlags   sessionOptions
)

// loaded is the state shared by every command after flags are parsed.
var loaded struct {
	settings   preferences.Settings
	configPath string
}

type sessionOptions struct {
	focus  int
	rest   int
	repeat int
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPathFlag, "config", "", "Settings file (.yaml or .toml)")
	flags.StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&languageFlag, "lang", "", "Interface language (en, ko)")
	addSessionFlags(flags, &sessionFlags)
}

func addSessionFlags(flags *pflag.FlagSet, options *sessionOptions) {
	flags.IntVar(&options.focus, "focus", 0, "Focus minutes (default from settings)")
	flags.IntVar(&options.rest, "rest", 0, "Rest minutes (default from settings)")
	flags.IntVar(&options.repeat, "repeat", 0, "Sets to run, 0 repeats until reset")
}

// loadRuntime reads settings, applies flag overrides and configures logging
// and the interface language.
func loadRuntime(cmd *cobra.Command, _ []string) error {
	configPath := configPathFlag
	if configPath == "" {
		resolved, err := storage.ResolveConfigPath(appName)
		if err != nil {
			return err
		}
		configPath = resolved
	}

	settings, loadErr := storage.LoadSettingsFrom(configPath)

	if flags := cmd.Flags(); flags.Changed("focus") {
		settings.FocusMinutes = sessionFlags.focus
	}
	if flags := cmd.Flags(); flags.Changed("rest") {
		settings.RestMinutes = sessionFlags.rest
	}
	if logLevelFlag != "" {
		settings.LogLevel = logLevelFlag
	}
	if languageFlag != "" {
		settings.Language = languageFlag
	}

	log.Configure(log.Config{Level: settings.LogLevel})
	i18n.SetLanguage(settings.Language)

	logger := log.WithComponent("main")
	if loadErr != nil {
		// A broken file should not keep the timer from starting.
		logger.Warn().Err(loadErr).Str("path", configPath).Msg("using default settings")
	}
	logger.Debug().Str("path", configPath).Str("lang", i18n.Language()).Msg("settings loaded")

	loaded.settings = settings
	loaded.configPath = configPath
	return nil
}

// sessionFromFlags returns the configuration to apply at startup and whether
// one was requested on the command line.
func sessionFromFlags(cmd *cobra.Command, settings preferences.Settings) (model.SessionConfig, bool) {
	config := model.SessionConfig{
		FocusMinutes: settings.FocusMinutes,
		RestMinutes:  settings.RestMinutes,
		TargetSets:   sessionFlags.repeat,
	}
	return config, cmd.Flags().Changed("repeat")
}

func newKeeper(settings preferences.Settings, display timekeeper.Display, notifier timekeeper.Notifier) *timekeeper.TimeKeeper {
	options := settings.TimeKeeperConfig()
	options.Display = display
	options.Notifier = notifier
	logger := log.WithComponent("timekeeper")
	options.Logger = &logger
	return timekeeper.New(settings.SessionDefaults(), options)
}

func audioConfig(settings preferences.Settings) audio.Config {
	return audio.Config{
		Repeat: settings.AlarmRepeat,
		Gap:    settings.AlarmGap,
		File:   settings.AlarmFile,
		Click:  settings.ClickSound,
	}
}

// newPlayer opens the speaker, falling back to silence when there is no
// audio device.
func newPlayer(settings preferences.Settings, mute bool) *audio.Player {
	logger := log.WithComponent("main")
	var out audio.Output = audio.Mute{}
	if !mute {
		speaker, err := audio.OpenSpeaker()
		if err != nil {
			logger.Warn().Err(err).Msg("audio disabled")
		}
		out = speaker
	}
	player, err := audio.NewPlayer(audioConfig(settings), out)
	if err != nil {
		logger.Warn().Err(err).Msg("alarm file unusable")
	}
	return player
}

type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit %d: %v", e.code, e.err)
}

func (e exitError) ExitCode() int {
	return e.code
}

func (e exitError) Unwrap() error {
	return e.err
}
