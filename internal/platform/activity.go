package platform

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tomato/internal/core/clock"
	"tomato/internal/log"
)

const defaultActivityPoll = 5 * time.Second

// ActivityWatcher calls OnReturn when the user comes back after being idle
// for at least Threshold.
type ActivityWatcher struct {
	provider  IdleProvider
	threshold time.Duration
	interval  time.Duration
	clock     clock.Clock
	onReturn  func()
	logger    zerolog.Logger

	mu      sync.Mutex
	task    clock.Task
	wasIdle bool
}

// ActivityConfig contains runtime options for ActivityWatcher.
type ActivityConfig struct {
	Threshold time.Duration
	// Interval between idle queries. Defaults to five seconds.
	Interval time.Duration
	Clock    clock.Clock
	OnReturn func()
}

// NewActivityWatcher creates a stopped watcher.
func NewActivityWatcher(provider IdleProvider, config ActivityConfig) *ActivityWatcher {
	if config.Interval <= 0 {
		config.Interval = defaultActivityPoll
	}
	if config.Clock == nil {
		config.Clock = clock.System
	}
	return &ActivityWatcher{
		provider:  provider,
		threshold: config.Threshold,
		interval:  config.Interval,
		clock:     config.Clock,
		onReturn:  config.OnReturn,
		logger:    log.WithComponent("activity"),
	}
}

// Start queries idle time once and begins polling. It returns ErrIdleUnsupported when
// the platform cannot report idle time; nothing is scheduled in that case.
func (watcher *ActivityWatcher) Start() error {
	if _, err := watcher.provider.IdleDuration(); errors.Is(err, ErrIdleUnsupported) {
		return err
	}

	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if watcher.task != nil {
		return nil
	}
	watcher.task = watcher.clock.Every(watcher.interval, watcher.poll)
	watcher.logger.Debug().Dur("threshold", watcher.threshold).Msg("activity watcher started")
	return nil
}

// Stop ends polling. It is safe to call more than once.
func (watcher *ActivityWatcher) Stop() {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if watcher.task != nil {
		watcher.task.Stop()
		watcher.task = nil
	}
}

func (watcher *ActivityWatcher) poll() {
	idle, err := watcher.provider.IdleDuration()
	if err != nil {
		watcher.logger.Debug().Err(err).Msg("idle query failed")
		return
	}

	watcher.mu.Lock()
	returned := false
	if idle >= watcher.threshold {
		watcher.wasIdle = true
	} else if watcher.wasIdle {
		watcher.wasIdle = false
		returned = true
	}
	watcher.mu.Unlock()

	if returned {
		watcher.logger.Debug().Msg("user returned")
		if watcher.onReturn != nil {
			watcher.onReturn()
		}
	}
}
