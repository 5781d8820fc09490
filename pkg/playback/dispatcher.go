// Package playback routes a fired alarm to the best available output: a
// registered local streaming device, any active remote device, or the local
// synthesized tone as the final fallback that cannot fail.
package playback

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"spotiwake/pkg/models"
)

// Via tags which strategy ended up producing sound.
type Via string

const (
	ViaDevice   Via = "device"   // registered local SDK device
	ViaRemote   Via = "remote"   // an active device found via the remote API
	ViaFallback Via = "fallback" // local synthesized tone + deep link
)

var (
	errNoLocalDevice = errors.New("no local playback device registered")
	errNoDevices     = errors.New("no remote playback devices available")
)

// Device describes a remote playback device.
type Device struct {
	ID     string
	Name   string
	Active bool
}

// RemotePlayer is the narrow interface onto the streaming service. Credentials
// and token refresh are the caller's problem; calls assume a valid session.
type RemotePlayer interface {
	PlayOnDevice(ctx context.Context, deviceID, trackURI string) error
	ListActiveDevices(ctx context.Context) ([]Device, error)
	Pause(ctx context.Context) error
	SetVolume(ctx context.Context, volume float64) error
}

// ToneSession is the slice of the audio session controller the dispatcher
// drives.
type ToneSession interface {
	Play()
	Stop()
}

// URLOpener opens the deep-link fallback in the external player. fyne.App
// satisfies this.
type URLOpener interface {
	OpenURL(u *url.URL) error
}

const (
	activeDeviceCacheKey = "active-device"
	remoteCallTimeout    = 10 * time.Second
)

// Dispatcher tries playback strategies in order, falling through on any
// error. No strategy failure ever propagates to the scheduler; the last
// strategy is pure in-memory synthesis and always produces sound.
type Dispatcher struct {
	mu            sync.Mutex
	localDeviceID string

	remote  RemotePlayer
	session ToneSession
	opener  URLOpener
	log     zerolog.Logger

	// devices remembers the last active device briefly so back-to-back
	// dispatches skip the device listing round trip.
	devices *cache.Cache

	rampDuration time.Duration
}

// New creates a dispatcher. opener may be nil when no deep-link target exists.
func New(remote RemotePlayer, session ToneSession, opener URLOpener, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		remote:       remote,
		session:      session,
		opener:       opener,
		log:          log.With().Str("component", "playback").Logger(),
		devices:      cache.New(30*time.Second, time.Minute),
		rampDuration: 30 * time.Second,
	}
}

// SetLocalDevice registers the local SDK playback device handle, reported by
// the collaborator's readiness callback. An empty id unregisters it.
func (d *Dispatcher) SetLocalDevice(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.localDeviceID = id
}

// Dispatch starts playback for the fired alarm and reports which path
// succeeded. Every strategy failure is logged and the next strategy attempted;
// the call never returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, alarm models.Alarm) Via {
	strategies := []struct {
		via Via
		run func(context.Context, models.TrackRef) error
	}{
		{ViaDevice, d.playOnLocalDevice},
		{ViaRemote, d.playOnActiveDevice},
	}

	for _, s := range strategies {
		err := s.run(ctx, alarm.Track)
		if err == nil {
			d.log.Info().Str("via", string(s.via)).Str("alarm", alarm.ID).Msg("remote playback started")
			return s.via
		}
		d.log.Warn().Err(err).Str("via", string(s.via)).Msg("playback strategy failed")
	}

	// Final fallback: the synthesized tone plus a deep link into the
	// external player as a convenience.
	d.session.Play()
	d.openTrackLink(alarm.Track)
	d.log.Info().Str("via", string(ViaFallback)).Str("alarm", alarm.ID).Msg("falling back to synthesized tone")
	return ViaFallback
}

func (d *Dispatcher) playOnLocalDevice(ctx context.Context, track models.TrackRef) error {
	d.mu.Lock()
	deviceID := d.localDeviceID
	d.mu.Unlock()

	if deviceID == "" {
		return errNoLocalDevice
	}
	if err := d.remote.PlayOnDevice(ctx, deviceID, trackURI(track)); err != nil {
		return err
	}

	// Ramp the server-side volume from silent to full so the wake-up is
	// gentle regardless of the device's last volume.
	go d.volumeRamp(ctx)
	return nil
}

func (d *Dispatcher) playOnActiveDevice(ctx context.Context, track models.TrackRef) error {
	deviceID, err := d.activeDeviceID(ctx)
	if err != nil {
		return err
	}
	return d.remote.PlayOnDevice(ctx, deviceID, trackURI(track))
}

func (d *Dispatcher) activeDeviceID(ctx context.Context) (string, error) {
	if cached, ok := d.devices.Get(activeDeviceCacheKey); ok {
		return cached.(string), nil
	}

	list, err := d.remote.ListActiveDevices(ctx)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", errNoDevices
	}

	chosen := list[0]
	for _, dev := range list {
		if dev.Active {
			chosen = dev
			break
		}
	}

	d.devices.Set(activeDeviceCacheKey, chosen.ID, cache.DefaultExpiration)
	return chosen.ID, nil
}

func (d *Dispatcher) volumeRamp(ctx context.Context) {
	const steps = 30
	interval := d.rampDuration / steps

	if err := d.remote.SetVolume(ctx, 0); err != nil {
		d.log.Debug().Err(err).Msg("volume ramp aborted")
		return
	}
	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
		if err := d.remote.SetVolume(ctx, float64(i)/steps); err != nil {
			d.log.Debug().Err(err).Msg("volume ramp aborted")
			return
		}
	}
}

// StopTone silences the local synthesized tone only.
func (d *Dispatcher) StopTone() {
	d.session.Stop()
}

// Pause stops the local tone and asks the remote player to pause. Both are
// attempted unconditionally; the dispatcher does not track which strategy
// started the current playback.
func (d *Dispatcher) Pause() {
	d.session.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
	defer cancel()
	if err := d.remote.Pause(ctx); err != nil {
		d.log.Warn().Err(err).Msg("remote pause failed")
	}
}

func (d *Dispatcher) openTrackLink(track models.TrackRef) {
	if d.opener == nil || track.ID == "" {
		return
	}
	u, err := url.Parse("https://open.spotify.com/track/" + track.ID)
	if err != nil {
		return
	}
	if err := d.opener.OpenURL(u); err != nil {
		d.log.Warn().Err(err).Msg("failed to open track link")
	}
}

func trackURI(track models.TrackRef) string {
	if track.URI != "" {
		return track.URI
	}
	return "spotify:track:" + track.ID
}
