package timekeeper

import (
	"sync"
	"time"

	"tomato/internal/core/clock"
)

// DefaultTickInterval oversamples the one second display four times so that
// scheduler jitter never shows a stale second.
const DefaultTickInterval = 250 * time.Millisecond

// SchedulerHooks are invoked on every evaluation.
type SchedulerHooks struct {
	OnTick     func(remaining time.Duration)
	OnFinished func()
}

// Scheduler re-evaluates a deadline periodically and reports completion.
//
// All methods must be called with the locker held. Periodic callbacks take
// the same locker, so they are delivered serially with the owner's other
// operations. Each Start bumps a generation; callbacks from an older
// generation are dropped, which keeps completion at most once per deadline.
type Scheduler struct {
	clock    clock.Clock
	interval time.Duration
	locker   sync.Locker
	hooks    SchedulerHooks

	task       clock.Task
	deadline   time.Time
	armed      bool
	generation uint64
}

// NewScheduler creates an idle scheduler.
func NewScheduler(source clock.Clock, interval time.Duration, locker sync.Locker, hooks SchedulerHooks) *Scheduler {
	if source == nil {
		source = clock.System
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if locker == nil {
		locker = &sync.Mutex{}
	}
	return &Scheduler{
		clock:    source,
		interval: interval,
		locker:   locker,
		hooks:    hooks,
	}
}

// Start cancels any running loop, evaluates deadline once right away and then
// arms the periodic evaluation.
func (scheduler *Scheduler) Start(deadline time.Time) {
	scheduler.Stop()
	scheduler.generation++
	generation := scheduler.generation
	scheduler.deadline = deadline
	scheduler.armed = true

	if scheduler.evaluate() {
		return
	}
	if generation != scheduler.generation {
		return
	}

	scheduler.task = scheduler.clock.Every(scheduler.interval, func() {
		scheduler.locker.Lock()
		defer scheduler.locker.Unlock()
		if generation != scheduler.generation || !scheduler.armed {
			return
		}
		scheduler.evaluate()
	})
}

// Stop cancels the periodic evaluation. Stopping an idle scheduler is a no-op.
func (scheduler *Scheduler) Stop() {
	if scheduler.task != nil {
		scheduler.task.Stop()
		scheduler.task = nil
	}
	if scheduler.armed {
		scheduler.armed = false
		scheduler.generation++
	}
}

// Evaluate runs one evaluation cycle synchronously. It reports whether the
// session finished during this call.
func (scheduler *Scheduler) Evaluate() bool {
	if !scheduler.armed {
		return false
	}
	return scheduler.evaluate()
}

// Armed reports whether a deadline is being tracked.
func (scheduler *Scheduler) Armed() bool {
	return scheduler.armed
}

// Deadline returns the tracked deadline. It is meaningful only while armed.
func (scheduler *Scheduler) Deadline() time.Time {
	return scheduler.deadline
}

// Interval returns the periodic evaluation interval.
func (scheduler *Scheduler) Interval() time.Duration {
	return scheduler.interval
}

func (scheduler *Scheduler) evaluate() bool {
	remaining := Remaining(scheduler.clock.Now(), scheduler.deadline)
	if scheduler.hooks.OnTick != nil {
		scheduler.hooks.OnTick(remaining)
	}
	if remaining > 0 {
		return false
	}

	// Disarm before signalling so a concurrent evaluation cannot finish the
	// same deadline twice.
	scheduler.Stop()
	if scheduler.hooks.OnFinished != nil {
		scheduler.hooks.OnFinished()
	}
	return true
}
