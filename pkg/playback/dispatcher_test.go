package playback

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotiwake/pkg/models"
)

type fakeRemote struct {
	mu sync.Mutex

	playErr error
	listErr error
	devices []Device

	plays       []string // device ids, in order
	uris        []string
	listCalls   int
	pauseCalls  int
	volumeCalls []float64
}

func (f *fakeRemote) PlayOnDevice(ctx context.Context, deviceID, trackURI string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return f.playErr
	}
	f.plays = append(f.plays, deviceID)
	f.uris = append(f.uris, trackURI)
	return nil
}

func (f *fakeRemote) ListActiveDevices(ctx context.Context) ([]Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.devices, f.listErr
}

func (f *fakeRemote) Pause(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauseCalls++
	return nil
}

func (f *fakeRemote) SetVolume(ctx context.Context, volume float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumeCalls = append(f.volumeCalls, volume)
	return nil
}

func (f *fakeRemote) volumeCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.volumeCalls)
}

type fakeSession struct {
	playCalls int
	stopCalls int
}

func (f *fakeSession) Play() { f.playCalls++ }
func (f *fakeSession) Stop() { f.stopCalls++ }

type fakeOpener struct {
	opened []*url.URL
}

func (f *fakeOpener) OpenURL(u *url.URL) error {
	f.opened = append(f.opened, u)
	return nil
}

var testTrack = models.TrackRef{ID: "4uLU6hMC", URI: "spotify:track:4uLU6hMC", Name: "Morning Song"}

func newTestDispatcher() (*Dispatcher, *fakeRemote, *fakeSession, *fakeOpener) {
	remote := &fakeRemote{}
	session := &fakeSession{}
	opener := &fakeOpener{}
	d := New(remote, session, opener, zerolog.Nop())
	d.rampDuration = 30 * time.Millisecond
	return d, remote, session, opener
}

func TestDispatchPrefersLocalDevice(t *testing.T) {
	d, remote, session, _ := newTestDispatcher()
	d.SetLocalDevice("local-1")

	via := d.Dispatch(context.Background(), models.Alarm{ID: "a1", Track: testTrack})
	assert.Equal(t, ViaDevice, via)

	remote.mu.Lock()
	assert.Equal(t, []string{"local-1"}, remote.plays)
	assert.Equal(t, []string{"spotify:track:4uLU6hMC"}, remote.uris)
	remote.mu.Unlock()
	assert.Zero(t, session.playCalls)

	// The ramp runs in the background from silent toward full volume.
	require.Eventually(t, func() bool {
		return remote.volumeCallCount() >= 2
	}, time.Second, time.Millisecond)
	remote.mu.Lock()
	assert.Equal(t, 0.0, remote.volumeCalls[0])
	remote.mu.Unlock()
}

func TestDispatchFallsThroughToActiveDevice(t *testing.T) {
	d, remote, session, _ := newTestDispatcher()
	// No local device registered.
	remote.devices = []Device{
		{ID: "idle-1", Name: "Kitchen"},
		{ID: "active-1", Name: "Bedroom", Active: true},
	}

	via := d.Dispatch(context.Background(), models.Alarm{ID: "a1", Track: testTrack})
	assert.Equal(t, ViaRemote, via)

	remote.mu.Lock()
	assert.Equal(t, []string{"active-1"}, remote.plays)
	remote.mu.Unlock()
	assert.Zero(t, session.playCalls)
}

func TestDispatchFallsBackToTone(t *testing.T) {
	d, remote, session, opener := newTestDispatcher()
	d.SetLocalDevice("local-1")
	remote.playErr = errors.New("device gone")
	remote.listErr = errors.New("api down")

	via := d.Dispatch(context.Background(), models.Alarm{ID: "a1", Track: testTrack})
	assert.Equal(t, ViaFallback, via)
	assert.Equal(t, 1, session.playCalls)

	require.Len(t, opener.opened, 1)
	assert.Equal(t, "https://open.spotify.com/track/4uLU6hMC", opener.opened[0].String())
}

func TestDispatchNoDevicesFallsBack(t *testing.T) {
	d, _, session, _ := newTestDispatcher()

	via := d.Dispatch(context.Background(), models.Alarm{ID: "a1", Track: testTrack})
	assert.Equal(t, ViaFallback, via)
	assert.Equal(t, 1, session.playCalls)
}

func TestActiveDeviceCached(t *testing.T) {
	d, remote, _, _ := newTestDispatcher()
	remote.devices = []Device{{ID: "active-1", Active: true}}

	d.Dispatch(context.Background(), models.Alarm{ID: "a1", Track: testTrack})
	d.Dispatch(context.Background(), models.Alarm{ID: "a2", Track: testTrack})

	remote.mu.Lock()
	defer remote.mu.Unlock()
	assert.Equal(t, 1, remote.listCalls, "second dispatch reuses the cached device")
	assert.Equal(t, []string{"active-1", "active-1"}, remote.plays)
}

func TestPauseStopsBothPaths(t *testing.T) {
	d, remote, session, _ := newTestDispatcher()

	d.Pause()
	assert.Equal(t, 1, session.stopCalls)
	remote.mu.Lock()
	assert.Equal(t, 1, remote.pauseCalls)
	remote.mu.Unlock()
}

func TestStopToneLeavesRemoteAlone(t *testing.T) {
	d, remote, session, _ := newTestDispatcher()

	d.StopTone()
	assert.Equal(t, 1, session.stopCalls)
	remote.mu.Lock()
	assert.Zero(t, remote.pauseCalls)
	remote.mu.Unlock()
}

func TestDispatchWithoutOpenerIsSafe(t *testing.T) {
	remote := &fakeRemote{}
	session := &fakeSession{}
	d := New(remote, session, nil, zerolog.Nop())

	via := d.Dispatch(context.Background(), models.Alarm{ID: "a1", Track: models.TrackRef{ID: "x"}})
	assert.Equal(t, ViaFallback, via)
	assert.Equal(t, 1, session.playCalls)
}

func TestTrackURIFallsBackToID(t *testing.T) {
	d, remote, _, _ := newTestDispatcher()
	d.SetLocalDevice("local-1")

	d.Dispatch(context.Background(), models.Alarm{ID: "a1", Track: models.TrackRef{ID: "abc123"}})

	remote.mu.Lock()
	defer remote.mu.Unlock()
	require.Len(t, remote.uris, 1)
	assert.Equal(t, "spotify:track:abc123", remote.uris[0])
}
