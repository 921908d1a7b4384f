package clock

import (
	"sync"
	"time"
)

// Fake is a manually driven Clock for tests.
//
// Advance moves time forward and fires every due task once, no matter how
// many intervals were skipped. This mirrors a throttled or suspended host
// where a late tick observes a large elapsed gap. Jump moves time without
// firing anything.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	tasks []*fakeTask
}

type fakeTask struct {
	interval time.Duration
	next     time.Time
	fn       func()
	stopped  bool
	owner    *Fake
}

// NewFake returns a Fake clock positioned at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (fake *Fake) Now() time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.now
}

// Every registers fn to fire each interval of fake time.
func (fake *Fake) Every(interval time.Duration, fn func()) Task {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	task := &fakeTask{
		interval: interval,
		next:     fake.now.Add(interval),
		fn:       fn,
		owner:    fake,
	}
	fake.tasks = append(fake.tasks, task)
	return task
}

// Advance moves time forward by d and fires due tasks.
func (fake *Fake) Advance(d time.Duration) {
	fake.mu.Lock()
	fake.now = fake.now.Add(d)
	fake.mu.Unlock()
	fake.fireDue()
}

// Jump moves time forward by d without firing any task.
func (fake *Fake) Jump(d time.Duration) {
	fake.mu.Lock()
	fake.now = fake.now.Add(d)
	fake.mu.Unlock()
}

// Fire delivers every task that is due at the current instant.
func (fake *Fake) Fire() {
	fake.fireDue()
}

// ActiveTasks reports the number of tasks that have not been stopped.
func (fake *Fake) ActiveTasks() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return len(fake.tasks)
}

func (fake *Fake) fireDue() {
	fake.mu.Lock()
	now := fake.now
	var due []*fakeTask
	for _, task := range fake.tasks {
		if !task.next.After(now) {
			task.next = now.Add(task.interval)
			due = append(due, task)
		}
	}
	fake.mu.Unlock()

	// Callbacks may stop tasks or register new ones.
	for _, task := range due {
		fake.mu.Lock()
		stopped := task.stopped
		fake.mu.Unlock()
		if stopped {
			continue
		}
		task.fn()
	}
}

func (task *fakeTask) Stop() {
	fake := task.owner
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if task.stopped {
		return
	}
	task.stopped = true
	for i, candidate := range fake.tasks {
		if candidate == task {
			fake.tasks = append(fake.tasks[:i], fake.tasks[i+1:]...)
			break
		}
	}
}
