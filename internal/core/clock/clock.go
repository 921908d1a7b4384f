// Package clock supplies the time source used by the timer core.
//
// Now must carry a monotonic reading so that deadline arithmetic is immune to
// wall clock adjustments. Every schedules a periodic callback; the returned
// Task is the only long-lived resource and must be stopped by its owner.
package clock

import (
	"sync"
	"time"
)

// Task is a periodic callback that can be cancelled.
type Task interface {
	// Stop cancels the task. Calling Stop more than once is a no-op.
	Stop()
}

// Clock provides the current instant and periodic callbacks.
type Clock interface {
	Now() time.Time
	Every(interval time.Duration, fn func()) Task
}

// System is the Clock backed by the runtime.
var System Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Every(interval time.Duration, fn func()) Task {
	task := &tickerTask{stopCh: make(chan struct{})}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-task.stopCh:
				return
			case <-ticker.C:
				// Stop may have raced with the tick.
				select {
				case <-task.stopCh:
					return
				default:
				}
				fn()
			}
		}
	}()

	return task
}

type tickerTask struct {
	once   sync.Once
	stopCh chan struct{}
}

func (task *tickerTask) Stop() {
	task.once.Do(func() {
		close(task.stopCh)
	})
}
