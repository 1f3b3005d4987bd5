// Package playback issues the request that starts a playlist context on a device.
package playback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlister/internal/shared"
)

// DefaultBaseURL is the Web API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

// TokenProvider resolves a fresh access token.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// TriggerOpts configures a [Trigger].
type TriggerOpts struct {
	Tokens     TokenProvider
	HTTPClient *http.Client
	BaseURL    string
	Logger     *log.Logger
}

// Trigger starts remote playback.
type Trigger struct {
	tokens     TokenProvider
	httpClient *http.Client
	baseURL    string
	logger     *log.Logger
}

// NewTrigger creates a [Trigger].
func NewTrigger(opts TriggerOpts) *Trigger {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Trigger{
		tokens:     opts.Tokens,
		httpClient: opts.HTTPClient,
		baseURL:    opts.BaseURL,
		logger:     shared.WithLogger(opts.Logger, "component", "playback"),
	}
}

type playRequest struct {
	ContextURI string `json:"context_uri"`
	PositionMs int    `json:"position_ms"`
}

// Start sends exactly one start-playback request for contextURI on deviceID.
//
// A 403 is reported as an account tier error. Every other failure is a
// playback request error.
func (t *Trigger) Start(ctx context.Context, deviceID, contextURI string) error {
	requestFailed := func(err error) error {
		t.logger.Error("error starting playback", "error", err)
		return shared.NewAppError(shared.KindPlaybackRequest, "Error starting playback: "+err.Error(), err)
	}

	token, err := t.tokens.AccessToken(ctx)
	if err != nil {
		return requestFailed(err)
	}

	body, err := json.Marshal(playRequest{ContextURI: contextURI, PositionMs: 0})
	if err != nil {
		return requestFailed(err)
	}

	endpoint := fmt.Sprintf("%s/me/player/play?device_id=%s", t.baseURL, url.QueryEscape(deviceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return requestFailed(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	t.logger.Info("starting playback", "device", deviceID, "context", contextURI)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return requestFailed(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusForbidden:
		t.logger.Warn("playback forbidden", "status", resp.StatusCode)
		return shared.NewAppError(shared.KindAccountTier, shared.MsgPremiumRequired,
			fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		t.logger.Warn("playback request failed", "status", resp.StatusCode)
		return shared.NewAppError(shared.KindPlaybackRequest, "Failed to start playback: "+http.StatusText(resp.StatusCode),
			fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode))
	}

	return nil
}

// Pairing remembers the last (device, target) pair a trigger fired for.
type Pairing struct {
	mu     sync.Mutex
	device string
	target string
}

// Claim reports whether the trigger should fire for device and target. It is
// true only when both are present and differ from the last claimed pair,
// which it then records.
func (p *Pairing) Claim(device, target string) bool {
	if device == "" || target == "" {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device == device && p.target == target {
		return false
	}
	p.device, p.target = device, target
	return true
}

// Reset forgets the last pair.
func (p *Pairing) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.device, p.target = "", ""
}
