package player

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlister/internal/models"
	"github.com/desertthunder/playlister/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultPollInterval paces device and state polling.
const DefaultPollInterval = time.Second

// ConnectOpts configures a [ConnectSDK].
type ConnectOpts struct {
	BaseURL      string // Web API root with trailing slash; empty uses the library default
	Transport    http.RoundTripper
	PollInterval time.Duration
	Logger       *log.Logger
}

// ConnectSDK drives a Spotify Connect device (spotifyd, librespot, a desktop
// client) through the Web API. A device is registered once a device with the
// configured name shows up in the account's device list.
type ConnectSDK struct {
	opts   ConnectOpts
	logger *log.Logger
}

// NewConnectSDK creates a [ConnectSDK].
func NewConnectSDK(opts ConnectOpts) *ConnectSDK {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &ConnectSDK{opts: opts, logger: shared.WithLogger(opts.Logger, "component", "connect")}
}

// Load is immediate: the Web API needs no client-side runtime.
func (s *ConnectSDK) Load(ctx context.Context) <-chan error {
	ready := make(chan error, 1)
	ready <- ctx.Err()
	return ready
}

// Unload is a no-op.
func (s *ConnectSDK) Unload() {}

// NewDevice implements [SDK].
func (s *ConnectSDK) NewDevice(opts DeviceOptions, emit func(Event)) Device {
	httpClient := &http.Client{Transport: &oauth2.Transport{
		Source: &callbackSource{token: opts.Token},
		Base:   s.opts.Transport,
	}}

	var clientOpts []spotify.ClientOption
	if s.opts.BaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(s.opts.BaseURL))
	}

	return &connectDevice{
		client:   spotify.New(httpClient, clientOpts...),
		name:     opts.Name,
		volume:   opts.Volume,
		emit:     emit,
		interval: s.opts.PollInterval,
		logger:   shared.WithLogger(s.logger, "device", opts.Name),
	}
}

// callbackSource resolves the token through the device's callback on every request.
type callbackSource struct {
	token TokenFunc
}

func (c *callbackSource) Token() (*oauth2.Token, error) {
	access, err := c.token(context.Background())
	if err != nil {
		return nil, err
	}
	if access == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}, nil
}

type connectDevice struct {
	client   *spotify.Client
	name     string
	volume   float64
	emit     func(Event)
	interval time.Duration
	logger   *log.Logger

	mu     sync.Mutex
	id     spotify.ID
	paused bool
	last   string
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Connect checks that the API accepts our token and starts polling for the device.
func (d *connectDevice) Connect(ctx context.Context) (bool, error) {
	if _, err := d.client.PlayerDevices(ctx); err != nil {
		if d.report(err) {
			return false, nil
		}
		return false, err
	}

	pollCtx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()

	d.wg.Add(1)
	go d.poll(pollCtx)
	return true, nil
}

// Disconnect stops polling. It does not pause the remote device.
func (d *connectDevice) Disconnect() {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.wg.Wait()
}

func (d *connectDevice) options() *spotify.PlayOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.id
	return &spotify.PlayOptions{DeviceID: &id}
}

func (d *connectDevice) TogglePlay(ctx context.Context) error {
	d.mu.Lock()
	paused := d.paused
	d.mu.Unlock()

	if paused {
		return d.command(d.client.PlayOpt(ctx, d.options()))
	}
	return d.command(d.client.PauseOpt(ctx, d.options()))
}

func (d *connectDevice) NextTrack(ctx context.Context) error {
	return d.command(d.client.NextOpt(ctx, d.options()))
}

func (d *connectDevice) PreviousTrack(ctx context.Context) error {
	return d.command(d.client.PreviousOpt(ctx, d.options()))
}

func (d *connectDevice) command(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
}

func (d *connectDevice) poll(ctx context.Context) {
	defer d.wg.Done()

	limiter := rate.NewLimiter(rate.Every(d.interval), 1)
	registered := false

	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		devices, err := d.client.PlayerDevices(ctx)
		if err != nil {
			if ctx.Err() != nil || d.report(err) {
				return
			}
			continue
		}

		dev, found := findDevice(devices, d.name)
		switch {
		case found && !registered:
			registered = true
			d.mu.Lock()
			d.id = dev.ID
			d.mu.Unlock()
			d.logger.Info("device registered", "id", dev.ID)
			if d.volume > 0 {
				if err := d.client.VolumeOpt(ctx, int(d.volume*100), &spotify.PlayOptions{DeviceID: &dev.ID}); err != nil {
					d.logger.Warn("failed to set volume", "error", err)
				}
			}
			d.emit(Event{Kind: EventReady, DeviceID: string(dev.ID)})
		case !found && registered:
			d.emit(Event{Kind: EventNotReady, DeviceID: string(*d.options().DeviceID)})
			return
		case !found:
			continue
		}

		state, err := d.client.PlayerState(ctx)
		if err != nil {
			if ctx.Err() != nil || d.report(err) {
				return
			}
			continue
		}
		if state == nil || state.Device.ID != dev.ID {
			continue
		}

		ps := PlaybackFromSpotify(state)
		key := fmt.Sprintf("%t|%s", ps.Paused, trackKey(ps.Track))

		d.mu.Lock()
		d.paused = ps.Paused
		changed := key != d.last
		d.last = key
		d.mu.Unlock()

		if changed {
			d.emit(Event{Kind: EventStateChanged, State: ps})
		}
	}
}

// report turns fatal API errors into device events and reports whether one was sent.
func (d *connectDevice) report(err error) bool {
	var apiErr spotify.Error
	if !errors.As(err, &apiErr) {
		d.emit(Event{Kind: EventPlaybackError, Message: err.Error()})
		return false
	}

	switch apiErr.Status {
	case http.StatusUnauthorized:
		d.emit(Event{Kind: EventAuthenticationError, Message: apiErr.Message})
		return true
	case http.StatusForbidden:
		if strings.Contains(strings.ToLower(apiErr.Message), "scope") {
			d.emit(Event{Kind: EventAuthenticationError, Message: "Invalid token scopes: " + apiErr.Message})
		} else {
			d.emit(Event{Kind: EventAccountError, Message: apiErr.Message})
		}
		return true
	default:
		d.emit(Event{Kind: EventPlaybackError, Message: apiErr.Message})
		return false
	}
}

func findDevice(devices []spotify.PlayerDevice, name string) (spotify.PlayerDevice, bool) {
	for _, dev := range devices {
		if dev.Name == name {
			return dev, true
		}
	}
	return spotify.PlayerDevice{}, false
}

func trackKey(t *models.Track) string {
	if t == nil {
		return ""
	}
	return t.ID
}

// PlaybackFromSpotify converts the API player state.
func PlaybackFromSpotify(state *spotify.PlayerState) *models.PlaybackState {
	ps := &models.PlaybackState{
		Paused:     !state.Playing,
		PositionMs: int(state.Progress),
	}
	if state.Item == nil {
		return ps
	}

	item := state.Item
	artists := make([]string, 0, len(item.Artists))
	for _, a := range item.Artists {
		artists = append(artists, a.Name)
	}
	images := make([]models.Image, 0, len(item.Album.Images))
	for _, img := range item.Album.Images {
		images = append(images, models.Image{URL: img.URL, Width: int(img.Width), Height: int(img.Height)})
	}

	ps.DurationMs = int(item.Duration)
	ps.Track = &models.Track{
		ID:          string(item.ID),
		URI:         string(item.URI),
		Name:        item.Name,
		Artists:     artists,
		Album:       item.Album.Name,
		AlbumImages: images,
	}
	return ps
}
