// Package audio drives playback of the synthesized buffers through a
// gesture-gated session: the session must be unlocked from a user-initiated
// action before script-initiated playback is allowed to start.
package audio

import (
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/rs/zerolog"

	"spotiwake/pkg/tone"
)

// Player is the slice of *oto.Player the controller uses. Tests supply fakes.
type Player interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(volume float64)
	Seek(offset int64, whence int) (int64, error)
}

// PlayerFactory builds a player over a sample source.
type PlayerFactory func(r io.Reader) Player

// keepaliveVolume keeps the keepalive loop just above zero so the platform
// treats the session as active without the loop being audible.
const keepaliveVolume = 0.01

// Global audio context singleton
var (
	otoCtx     *oto.Context
	otoCtxOnce sync.Once
)

func initContext(log zerolog.Logger) *oto.Context {
	otoCtxOnce.Do(func() {
		ctx, readyChan, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   tone.AlarmSampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize audio context")
			return
		}

		// Wait for the hardware audio devices to be ready
		<-readyChan
		otoCtx = ctx
	})
	return otoCtx
}

// Controller is the audio session state machine: Locked transitions to
// Unlocked exactly once, crossed with Idle/Playing for the alarm tone. Both
// player sources are assigned once at unlock and never reassigned.
type Controller struct {
	mu  sync.Mutex
	log zerolog.Logger

	// newPlayer is replaceable in tests; nil means oto-backed players.
	newPlayer PlayerFactory

	alarm     Player
	alarmSrc  *Loop
	keepalive Player

	unlocked bool
	playing  bool

	retryDelay time.Duration
}

// NewController returns a locked, idle controller. No audio resources are
// acquired until Unlock.
func NewController(log zerolog.Logger) *Controller {
	return &Controller{
		log:        log.With().Str("component", "audio").Logger(),
		retryDelay: 250 * time.Millisecond,
	}
}

// ensurePlayers creates both players exactly once. The keepalive loop is all
// zero samples, so feeding its 22050 Hz data through the shared 44100 Hz
// context stays inaudible.
func (c *Controller) ensurePlayers() bool {
	if c.alarm != nil {
		return true
	}

	factory := c.newPlayer
	if factory == nil {
		ctx := initContext(c.log)
		if ctx == nil {
			return false
		}
		factory = func(r io.Reader) Player { return ctx.NewPlayer(r) }
	}

	c.alarmSrc = NewLoop(tone.AlarmPCM())
	c.alarm = factory(c.alarmSrc)
	c.keepalive = factory(NewLoop(tone.KeepalivePCM()))
	return true
}

// Unlock primes the session from within a user-initiated action: the alarm
// player is started and immediately paused and rewound to register it for
// later script-initiated playback, and the keepalive loop is started at
// minimal volume and left running. Issuing both operations is enough to
// transition to Unlocked; failures are logged, not surfaced.
func (c *Controller) Unlock() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unlocked {
		return
	}
	if !c.ensurePlayers() {
		c.log.Warn().Msg("unlock skipped, audio context unavailable")
		return
	}

	c.alarm.Play()
	c.alarm.Pause()
	if _, err := c.alarm.Seek(0, io.SeekStart); err != nil {
		c.log.Warn().Err(err).Msg("failed to rewind alarm buffer during unlock")
	}

	c.keepalive.SetVolume(keepaliveVolume)
	c.keepalive.Play()

	c.unlocked = true
	c.log.Info().Msg("audio session unlocked")
}

// Unlocked reports whether the session has been unlocked.
func (c *Controller) Unlocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unlocked
}

// Play rewinds the looping alarm buffer, raises volume to maximum, and starts
// playback. Idempotent while already playing. If the platform refuses to
// start, one retry is attempted after a short delay; the final failure is
// logged only, never returned.
func (c *Controller) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playing {
		return
	}
	if !c.ensurePlayers() {
		c.log.Warn().Msg("cannot play alarm tone, audio context unavailable")
		return
	}

	if _, err := c.alarm.Seek(0, io.SeekStart); err != nil {
		c.log.Warn().Err(err).Msg("failed to rewind alarm buffer")
	}
	c.alarm.SetVolume(1.0)
	c.alarm.Play()
	c.playing = true

	if !c.alarm.IsPlaying() {
		player := c.alarm
		delay := c.retryDelay
		go func() {
			time.Sleep(delay)
			c.mu.Lock()
			defer c.mu.Unlock()
			if !c.playing || player.IsPlaying() {
				return
			}
			player.Play()
			if !player.IsPlaying() {
				c.log.Error().Msg("alarm tone rejected by platform after retry")
			}
		}()
	}
}

// Stop pauses and rewinds the alarm buffer. Safe to call when already idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.alarm == nil {
		c.playing = false
		return
	}
	c.alarm.Pause()
	if _, err := c.alarm.Seek(0, io.SeekStart); err != nil {
		c.log.Warn().Err(err).Msg("failed to rewind alarm buffer")
	}
	c.playing = false
}

// IsPlaying reports whether the alarm tone is currently sounding.
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}
