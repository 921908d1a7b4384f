// Package audio plays the session alarm and the button click.
package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
	"github.com/rs/zerolog"

	"tomato/internal/log"
)

// SampleRate is the rate the speaker is opened with. Custom alarm files are
// resampled to it.
const SampleRate beep.SampleRate = 44100

const (
	toneDuration  = 400 * time.Millisecond
	toneFrequency = 880.0
	clickDuration = 30 * time.Millisecond
)

// Output is where streamers are mixed. The speaker implements it; tests use
// a recording fake.
type Output interface {
	Play(streamers ...beep.Streamer)
	Lock()
	Unlock()
}

// Config controls the alarm sequence.
type Config struct {
	// Repeat is how many times the alarm sound plays per session boundary.
	Repeat int
	// Gap is the silence between two plays.
	Gap time.Duration
	// File optionally replaces the built in tone with an .ogg or .wav file.
	File  string
	Click bool
}

// Player owns the decoded sounds and the currently ringing alarm.
type Player struct {
	mu     sync.Mutex
	out    Output
	config Config
	logger zerolog.Logger

	alarm   *beep.Buffer
	click   *beep.Buffer
	ringing *beep.Ctrl
}

// NewPlayer prepares the alarm and click buffers. A custom alarm file that
// cannot be decoded falls back to the built in tone and is reported in the
// returned error; the player is usable either way.
func NewPlayer(config Config, out Output) (*Player, error) {
	if config.Repeat <= 0 {
		config.Repeat = 1
	}
	if config.Gap < 0 {
		config.Gap = 0
	}
	if out == nil {
		out = Mute{}
	}

	player := &Player{
		out:    out,
		config: config,
		logger: log.WithComponent("audio"),
		alarm:  toneBuffer(toneFrequency, toneDuration),
		click:  toneBuffer(1200, clickDuration),
	}

	if config.File == "" {
		return player, nil
	}
	custom, err := loadFile(config.File)
	if err != nil {
		player.logger.Warn().Err(err).Str("file", config.File).Msg("using built in alarm tone")
		return player, err
	}
	player.alarm = custom
	return player, nil
}

// Configure swaps in new alarm settings. A custom file that cannot be decoded
// leaves the built in tone in place and is reported in the returned error.
func (player *Player) Configure(config Config) error {
	next, err := NewPlayer(config, player.out)

	player.mu.Lock()
	defer player.mu.Unlock()
	player.config = next.config
	player.alarm = next.alarm
	return err
}

// PlayAlarm rings the alarm sequence, replacing one that is still ringing.
func (player *Player) PlayAlarm() {
	player.mu.Lock()
	defer player.mu.Unlock()

	player.stopLocked()
	ctrl := &beep.Ctrl{Streamer: player.alarmSequence()}
	player.ringing = ctrl
	player.out.Play(ctrl)
	player.logger.Debug().Int("repeat", player.config.Repeat).Msg("alarm ringing")
}

// PlayClick plays the short button click, if enabled.
func (player *Player) PlayClick() {
	player.mu.Lock()
	defer player.mu.Unlock()
	if !player.config.Click {
		return
	}
	player.out.Play(player.click.Streamer(0, player.click.Len()))
}

// Stop silences a ringing alarm. Clicks are left alone.
func (player *Player) Stop() {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.stopLocked()
}

func (player *Player) stopLocked() {
	if player.ringing == nil {
		return
	}
	player.out.Lock()
	player.ringing.Streamer = nil
	player.out.Unlock()
	player.ringing = nil
}

// alarmSequence plays the alarm Repeat times with Gap of silence in between.
func (player *Player) alarmSequence() beep.Streamer {
	gap := SampleRate.N(player.config.Gap)
	parts := make([]beep.Streamer, 0, player.config.Repeat*2)
	for i := 0; i < player.config.Repeat; i++ {
		if i > 0 && gap > 0 {
			parts = append(parts, beep.Silence(gap))
		}
		parts = append(parts, player.alarm.Streamer(0, player.alarm.Len()))
	}
	return beep.Seq(parts...)
}

// Mute discards everything. It stands in when no audio device is available.
type Mute struct{}

func (Mute) Play(...beep.Streamer) {}
func (Mute) Lock()                 {}
func (Mute) Unlock()               {}

type speakerOutput struct{}

func (speakerOutput) Play(streamers ...beep.Streamer) { speaker.Play(streamers...) }
func (speakerOutput) Lock()                           { speaker.Lock() }
func (speakerOutput) Unlock()                         { speaker.Unlock() }

var (
	speakerOnce sync.Once
	speakerErr  error
)

// OpenSpeaker initialises the audio device once and returns it as an Output.
func OpenSpeaker() (Output, error) {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(SampleRate, SampleRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return Mute{}, fmt.Errorf("initialize speaker: %w", speakerErr)
	}
	return speakerOutput{}, nil
}

func toneBuffer(frequency float64, duration time.Duration) *beep.Buffer {
	total := SampleRate.N(duration)
	position := 0
	tone := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if position >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if position >= total {
				break
			}
			t := float64(position) / float64(SampleRate)
			// Linear fade out avoids a click at the end of the tone.
			envelope := 1 - float64(position)/float64(total)
			value := 0.5 * envelope * math.Sin(2*math.Pi*frequency*t)
			samples[i][0] = value
			samples[i][1] = value
			position++
			n++
		}
		return n, true
	})

	buffer := beep.NewBuffer(beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2})
	buffer.Append(tone)
	return buffer
}

func loadFile(path string) (*beep.Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alarm file: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		streamer, format, err = vorbis.Decode(file)
	case ".wav":
		streamer, format, err = wav.Decode(file)
	default:
		_ = file.Close()
		return nil, fmt.Errorf("unsupported alarm file %q", filepath.Ext(path))
	}
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("decode alarm file: %w", err)
	}
	defer streamer.Close()

	var source beep.Streamer = streamer
	if format.SampleRate != SampleRate {
		source = beep.Resample(4, format.SampleRate, SampleRate, streamer)
	}
	buffer := beep.NewBuffer(beep.Format{SampleRate: SampleRate, NumChannels: format.NumChannels, Precision: format.Precision})
	buffer.Append(source)
	return buffer, nil
}
