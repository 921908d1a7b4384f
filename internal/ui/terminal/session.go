package terminal

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"tomato/internal/core/timekeeper"
)

// Controller is the part of the timekeeper the key loop drives.
type Controller interface {
	Toggle() error
	Reset(full bool)
	Resync() bool
}

// Options configures a Session.
type Options struct {
	// Events, when set together with ExitOnComplete, ends the session once
	// the run completes.
	Events         <-chan timekeeper.Event
	ExitOnComplete bool
	Logger         *zerolog.Logger
}

// Session reads keys from a terminal and forwards them to a Controller.
type Session struct {
	in         io.Reader
	controller Controller
	renderer   *Renderer
	options    Options
	logger     zerolog.Logger

	fd    int
	isTTY bool
	saved *term.State
}

// NewSession creates a key session reading from in.
func NewSession(in io.Reader, controller Controller, renderer *Renderer, options Options) *Session {
	session := &Session{
		in:         in,
		controller: controller,
		renderer:   renderer,
		options:    options,
		logger:     zerolog.Nop(),
	}
	if options.Logger != nil {
		session.logger = options.Logger.With().Str("component", "terminal").Logger()
	}
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		session.fd = int(file.Fd())
		session.isTTY = true
	}
	return session
}

// IsTerminal reports whether the session reads from an interactive terminal.
func (session *Session) IsTerminal() bool {
	return session.isTTY
}

// Run blocks until ctx is cancelled, the user quits, or the run completes
// with ExitOnComplete set.
func (session *Session) Run(ctx context.Context) error {
	if err := session.enterRaw(); err != nil {
		return err
	}
	defer session.leaveRaw()
	defer session.renderer.Finish()

	done := make(chan struct{})
	defer close(done)
	keys := session.readKeys(done)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, append([]os.Signal{os.Interrupt}, resumeSignals...)...)
	defer signal.Stop(signals)

	events := session.options.Events
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-signals:
			if sig == os.Interrupt {
				return nil
			}
			// Resumed after a stop: the terminal mode and the timer are stale.
			session.logger.Debug().Str("signal", sig.String()).Msg("resumed")
			if err := session.enterRaw(); err != nil {
				return err
			}
			session.controller.Resync()
		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if quit := session.handleKey(key); quit {
				return nil
			}
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if session.options.ExitOnComplete && event.State.Phase == timekeeper.PhaseComplete {
				return nil
			}
		}
	}
}

func (session *Session) handleKey(key byte) bool {
	switch key {
	case ' ', '\r', '\n':
		if err := session.controller.Toggle(); err != nil && !errors.Is(err, timekeeper.ErrNotConfigured) && !errors.Is(err, timekeeper.ErrRunComplete) {
			session.logger.Warn().Err(err).Msg("toggle failed")
		}
	case 's', 'S':
		session.controller.Reset(false)
	case 'r', 'R':
		session.controller.Reset(true)
	case 'q', 'Q', 0x03:
		return true
	case 0x1a:
		session.suspend()
	}
	return false
}

func (session *Session) readKeys(done <-chan struct{}) <-chan byte {
	keys := make(chan byte)
	go func() {
		defer close(keys)
		buf := make([]byte, 16)
		for {
			n, err := session.in.Read(buf)
			for _, key := range buf[:n] {
				select {
				case keys <- key:
				case <-done:
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					session.logger.Debug().Err(err).Msg("key input closed")
				}
				return
			}
		}
	}()
	return keys
}

func (session *Session) enterRaw() error {
	if !session.isTTY {
		return nil
	}
	state, err := term.MakeRaw(session.fd)
	if err != nil {
		return err
	}
	if session.saved == nil {
		session.saved = state
	}
	return nil
}

func (session *Session) leaveRaw() {
	if session.saved == nil {
		return
	}
	if err := term.Restore(session.fd, session.saved); err != nil {
		session.logger.Warn().Err(err).Msg("restore terminal")
	}
}

// suspend restores the terminal and stops the process the way Ctrl-Z does
// in cooked mode. Raw mode is re-entered when SIGCONT arrives.
func (session *Session) suspend() {
	session.leaveRaw()
	if err := stopSelf(); err != nil {
		session.logger.Debug().Err(err).Msg("suspend unsupported")
		_ = session.enterRaw()
	}
}
