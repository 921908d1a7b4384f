package main

import (
	"context"
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/cobra"

	"tomato/internal/core/timekeeper"
	"tomato/internal/i18n"
	"tomato/internal/log"
	"tomato/internal/platform"
	"tomato/internal/storage"
	"tomato/internal/ui/display"
	"tomato/internal/ui/preferences"
	"tomato/internal/ui/tray"
	"tomato/resources"
)

func runGUI(cmd *cobra.Command, _ []string) error {
	logger := log.WithComponent("main")
	settings := loaded.settings

	var mainWindow *display.Window
	guard, err := platform.AcquireSingleInstance(appName, func() {
		fyne.Do(func() {
			if mainWindow != nil {
				mainWindow.Show()
			}
		})
	})
	if err != nil {
		logger.Info().Err(err).Msg("showing the running instance")
		return platform.ActivateRunning(appName)
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustLogo())

	player := newPlayer(settings, false)
	mainWindow = display.New(fyneApp, settings, player)
	defer mainWindow.Close()

	keeper := newKeeper(settings, mainWindow, mainWindow)
	defer keeper.Close()
	mainWindow.SetController(keeper)
	keeper.Render()

	if config, ok := sessionFromFlags(cmd, settings); ok {
		if err := keeper.ApplyConfiguration(config); err != nil {
			return exitError{code: 2, err: err}
		}
	}

	// The scheduler keeps ticking in the background but a suspended machine
	// stops it; coming back resyncs from the deadline.
	lifecycle := fyneApp.Lifecycle()
	lifecycle.SetOnEnteredForeground(func() {
		mainWindow.SetForeground(true)
		if keeper.Resync() {
			logger.Debug().Msg("resynced on focus")
		}
	})
	lifecycle.SetOnExitedForeground(func() {
		mainWindow.SetForeground(false)
	})

	activity := startActivityWatcher(settings, keeper)
	defer func() { activity.Stop() }()

	autostart := platform.NewService()
	var prefsWindow *preferences.Window
	applySettings := func(updated preferences.Settings) {
		i18n.SetLanguage(updated.Language)
		mainWindow.UpdateSettings(updated)
		prefsWindow.UpdateSettings(updated)
		if err := player.Configure(audioConfig(updated)); err != nil {
			logger.Warn().Err(err).Msg("alarm file unusable")
		}
		activity.Stop()
		activity = startActivityWatcher(updated, keeper)
	}
	prefsWindow = preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		if err := storage.SaveSettingsTo(loaded.configPath, updated); err != nil {
			logger.Error().Err(err).Msg("save settings")
		}
		if err := platform.SyncAutostart(autostart, appName, updated.Autostart); err != nil && !errors.Is(err, platform.ErrAutostartUnsupported) {
			logger.Warn().Err(err).Msg("update autostart")
		}
		applySettings(updated)
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	watcher := storage.NewWatcher(loaded.configPath, func(updated preferences.Settings) {
		fyne.Do(func() { applySettings(updated) })
	})
	if err := watcher.Start(ctx); err != nil {
		logger.Warn().Err(err).Msg("settings file changes will not be picked up")
	}
	defer watcher.Wait()
	defer cancel()

	if desktopApp, ok := fyneApp.(desktop.App); ok {
		startTray(fyneApp, desktopApp, keeper, mainWindow, prefsWindow)
		mainWindow.Window().SetCloseIntercept(mainWindow.Window().Hide)
	} else {
		logger.Info().Msg("system tray unsupported on this platform")
		mainWindow.Window().SetMaster()
	}

	mainWindow.Show()
	fyneApp.Run()
	return nil
}

func startTray(fyneApp fyne.App, desktopApp desktop.App, keeper *timekeeper.TimeKeeper, mainWindow *display.Window, prefsWindow *preferences.Window) {
	manager := tray.New(desktopApp, tray.Callbacks{
		OnShow:        mainWindow.Show,
		OnPreferences: prefsWindow.Show,
		OnToggle: func() {
			// Refusals are reported to the user as toasts.
			_ = keeper.Toggle()
		},
		OnRestart: func() { keeper.Reset(false) },
		OnReset:   func() { keeper.Reset(true) },
		OnQuit:    fyneApp.Quit,
	})
	desktopApp.SetSystemTrayIcon(resources.MustLogo())

	events := keeper.Subscribe(16)
	go func() {
		for event := range events {
			fyne.Do(func() { manager.Update(event) })
		}
	}()
}

func startActivityWatcher(settings preferences.Settings, keeper *timekeeper.TimeKeeper) *platform.ActivityWatcher {
	watcher := platform.NewActivityWatcher(platform.NewIdleProvider(), platform.ActivityConfig{
		Threshold: settings.IdleResyncAfter,
		OnReturn:  func() { keeper.Resync() },
	})
	if settings.IdleResyncAfter <= 0 {
		return watcher
	}
	if err := watcher.Start(); err != nil && !errors.Is(err, platform.ErrIdleUnsupported) {
		log.WithComponent("main").Warn().Err(err).Msg("idle watcher disabled")
	}
	return watcher
}
