package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient("test-token")
	c.baseURL = server.URL
	return c
}

func TestPlayOnDevice(t *testing.T) {
	var gotAuth, gotDevice string
	var gotBody struct {
		URIs []string `json:"uris"`
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/me/player/play", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotDevice = r.URL.Query().Get("device_id")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.PlayOnDevice(context.Background(), "dev-1", "spotify:track:abc")
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "dev-1", gotDevice)
	assert.Equal(t, []string{"spotify:track:abc"}, gotBody.URIs)
}

func TestListActiveDevices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/me/player/devices", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"devices":[
			{"id":"d1","name":"Kitchen","is_active":false},
			{"id":"d2","name":"Bedroom","is_active":true}
		]}`))
	})

	devices, err := c.ListActiveDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "d1", devices[0].ID)
	assert.False(t, devices[0].Active)
	assert.Equal(t, "Bedroom", devices[1].Name)
	assert.True(t, devices[1].Active)
}

func TestSetVolumeClampsAndConverts(t *testing.T) {
	var percents []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me/player/volume", r.URL.Path)
		percents = append(percents, r.URL.Query().Get("volume_percent"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.SetVolume(context.Background(), 0.5))
	require.NoError(t, c.SetVolume(context.Background(), -1))
	require.NoError(t, c.SetVolume(context.Background(), 2))
	assert.Equal(t, []string{"50", "0", "100"}, percents)
}

func TestPause(t *testing.T) {
	var called bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/me/player/pause", r.URL.Path)
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Pause(context.Background()))
	assert.True(t, called)
}

func TestErrorIncludesStatusAndBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"status":404,"message":"Device not found"}}`))
	})

	err := c.PlayOnDevice(context.Background(), "gone", "spotify:track:abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "Device not found")
}
