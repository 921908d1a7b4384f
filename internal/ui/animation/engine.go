package animation

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"tomato/internal/core/timekeeper"
)

// Range defines a duration range with random sampling.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Random returns a random duration within the range.
func (value Range) Random(rng *rand.Rand) time.Duration {
	if value.Max <= value.Min {
		return value.Min
	}
	delta := value.Max - value.Min
	return value.Min + time.Duration(rng.Int63n(int64(delta)))
}

// Config contains animation timing values.
type Config struct {
	HoldDuration   Range
	SquishDuration Range
}

// Sprites is one tomato color: the resting frame and the squished frame.
type Sprites struct {
	Still  fyne.Resource
	Squish fyne.Resource
}

// Engine animates the tomato while a session runs.
type Engine struct {
	mu           sync.Mutex
	config       Config
	focus        Sprites
	rest         Sprites
	updateSprite func(fyne.Resource)
	cancel       context.CancelFunc
	done         chan struct{}
	current      timekeeper.Indicator
	started      bool
	rng          *rand.Rand
}

// New creates a new animation engine.
func New(config Config, focus, rest Sprites, updateSprite func(fyne.Resource)) *Engine {
	return &Engine{
		config:       config,
		focus:        focus,
		rest:         rest,
		updateSprite: updateSprite,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Show switches the tomato to match the indicator. A running indicator
// starts the pulse loop; anything else shows the still frame.
func (engine *Engine) Show(indicator timekeeper.Indicator) {
	engine.mu.Lock()
	if engine.started && engine.current == indicator {
		engine.mu.Unlock()
		return
	}
	engine.current = indicator
	engine.started = true
	engine.mu.Unlock()

	sprites := engine.focus
	if indicator.RestMode {
		sprites = engine.rest
	}
	if !indicator.Running {
		engine.Stop()
		engine.updateSprite(sprites.Still)
		return
	}
	engine.start(func(ctx context.Context) {
		engine.runPulse(ctx, sprites)
	})
}

// Stop terminates any active animation and waits for it to exit.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	cancel, done := engine.cancel, engine.done
	engine.cancel, engine.done = nil, nil
	engine.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (engine *Engine) start(run func(context.Context)) {
	engine.Stop()

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	engine.mu.Lock()
	engine.cancel = cancel
	engine.done = done
	engine.mu.Unlock()

	go func() {
		defer close(done)
		run(runCtx)
	}()
}

func (engine *Engine) runPulse(ctx context.Context, sprites Sprites) {
	for {
		engine.updateSprite(sprites.Still)
		if !sleepWithContext(ctx, engine.random(engine.config.HoldDuration)) {
			return
		}
		engine.updateSprite(sprites.Squish)
		if !sleepWithContext(ctx, engine.random(engine.config.SquishDuration)) {
			return
		}
	}
}

func (engine *Engine) random(value Range) time.Duration {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return value.Random(engine.rng)
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
