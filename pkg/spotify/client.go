// Package spotify implements the remote-player interface against the Spotify
// Web API player endpoints. Authentication is out of scope: the client is
// handed a bearer token assumed to be valid for the duration of a call.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"spotiwake/pkg/playback"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// Client talks to the player endpoints of the streaming API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient returns a client using the given bearer token.
func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
	}
}

var _ playback.RemotePlayer = (*Client)(nil)

// PlayOnDevice starts playback of the track URI on the given device.
func (c *Client) PlayOnDevice(ctx context.Context, deviceID, trackURI string) error {
	body, err := json.Marshal(map[string]any{"uris": []string{trackURI}})
	if err != nil {
		return err
	}
	endpoint := c.baseURL + "/me/player/play?device_id=" + url.QueryEscape(deviceID)
	return c.do(ctx, http.MethodPut, endpoint, body, nil)
}

// ListActiveDevices returns the devices currently known to the user's account.
func (c *Client) ListActiveDevices(ctx context.Context) ([]playback.Device, error) {
	var parsed struct {
		Devices []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			IsActive bool   `json:"is_active"`
		} `json:"devices"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/me/player/devices", nil, &parsed); err != nil {
		return nil, err
	}

	devices := make([]playback.Device, 0, len(parsed.Devices))
	for _, d := range parsed.Devices {
		devices = append(devices, playback.Device{ID: d.ID, Name: d.Name, Active: d.IsActive})
	}
	return devices, nil
}

// Pause pauses playback on the user's currently active device.
func (c *Client) Pause(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, c.baseURL+"/me/player/pause", nil, nil)
}

// SetVolume sets the active device's volume, 0..1.
func (c *Client) SetVolume(ctx context.Context, volume float64) error {
	if volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}
	percent := strconv.Itoa(int(volume * 100))
	return c.do(ctx, http.MethodPut, c.baseURL+"/me/player/volume?volume_percent="+percent, nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("spotify: %s %s returned %d: %s", method, endpoint, resp.StatusCode, bytes.TrimSpace(payload))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
