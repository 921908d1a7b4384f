package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"tomato/internal/log"
	"tomato/internal/ui/preferences"
)

const watchDebounce = 300 * time.Millisecond

// Watcher reloads the settings file whenever it changes on disk.
type Watcher struct {
	path     string
	onChange func(preferences.Settings)
	logger   zerolog.Logger

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for path. onChange runs on the watcher
// goroutine with the freshly loaded settings.
func NewWatcher(path string, onChange func(preferences.Settings)) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		logger:   log.WithComponent("settings-watch"),
	}
}

// Start begins watching until ctx is cancelled. The parent directory is
// watched so that editors which replace the file are still noticed.
func (watch *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(watch.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch settings directory: %w", err)
	}
	watch.watcher = watcher

	watch.logger.Debug().Str("path", watch.path).Msg("watching settings file")
	watch.wg.Add(1)
	go watch.loop(ctx)
	return nil
}

// Wait blocks until the watch loop has exited.
func (watch *Watcher) Wait() {
	watch.wg.Wait()
}

func (watch *Watcher) loop(ctx context.Context) {
	defer watch.wg.Done()
	defer func() { _ = watch.watcher.Close() }()

	var debounce *time.Timer
	var debounceC <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watch.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(watch.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				debounce.Reset(watchDebounce)
			}
			debounceC = debounce.C

		case <-debounceC:
			debounceC = nil
			watch.reload()

		case err, ok := <-watch.watcher.Errors:
			if !ok {
				return
			}
			watch.logger.Error().Err(err).Msg("settings watcher error")
		}
	}
}

func (watch *Watcher) reload() {
	settings, err := LoadSettingsFrom(watch.path)
	if err != nil {
		watch.logger.Warn().Err(err).Msg("keeping previous settings")
		return
	}
	watch.logger.Info().Str("path", watch.path).Msg("settings reloaded")
	if watch.onChange != nil {
		watch.onChange(settings)
	}
}
