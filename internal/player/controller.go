package player

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlister/internal/models"
	"github.com/desertthunder/playlister/internal/playback"
	"github.com/desertthunder/playlister/internal/shared"
)

const (
	DefaultDeviceName = "Web Playlist Player"
	DefaultVolume     = 0.5

	queueSize = 64
)

// Snapshot is the controller state as seen by the UI.
type Snapshot struct {
	State    State
	DeviceID string
	Target   string
	Playback models.PlaybackState
	Err      error
}

// Playing reports whether the device is believed to be playing.
func (s Snapshot) Playing() bool { return !s.Playback.Paused }

// ErrorMessage returns the text to render for Err.
func (s Snapshot) ErrorMessage() string { return shared.UserMessage(s.Err) }

// Options configures a [Controller].
type Options struct {
	SDK        SDK
	Tokens     TokenFunc
	Starter    Starter
	DeviceName string
	Volume     float64
	Logger     *log.Logger
}

// Controller owns at most one device for its lifetime.
type Controller struct {
	sdk     SDK
	tokens  TokenFunc
	starter Starter
	name    string
	volume  float64
	logger  *log.Logger

	queue   chan any
	updates chan Snapshot
	done    chan struct{}
	stopped chan struct{}

	mu     sync.RWMutex
	snap   Snapshot
	device Device

	// loop goroutine only
	pairing playback.Pairing

	startOnce sync.Once
	closeOnce sync.Once
	cancel    context.CancelFunc
}

// NewController creates a controller in the Uninitialized state.
func NewController(opts Options) *Controller {
	if opts.DeviceName == "" {
		opts.DeviceName = DefaultDeviceName
	}
	if opts.Volume == 0 {
		opts.Volume = DefaultVolume
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Controller{
		sdk:     opts.SDK,
		tokens:  opts.Tokens,
		starter: opts.Starter,
		name:    opts.DeviceName,
		volume:  opts.Volume,
		logger:  shared.WithLogger(opts.Logger, "component", "player"),
		queue:   make(chan any, queueSize),
		updates: make(chan Snapshot, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		snap:    Snapshot{State: Uninitialized, Playback: models.PlaybackState{Paused: true}},
	}
}

// queued messages
type (
	sdkLoaded     struct{ err error }
	tokenResolved struct {
		token string
		err   error
	}
	connectFinished struct {
		ok  bool
		err error
	}
	deviceEvent     struct{ Event }
	playRequested   struct{ target string }
	triggerFinished struct{ err error }
)

// Start boots the backend and runs the event loop until ctx ends or Close is called.
func (c *Controller) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		ctx, c.cancel = context.WithCancel(ctx)
		go c.run(ctx)
	})
}

// Updates delivers snapshots, newest first. It is closed once the controller stops.
func (c *Controller) Updates() <-chan Snapshot { return c.updates }

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Play requests playback of contextURI once the device is ready.
func (c *Controller) Play(contextURI string) {
	c.post(playRequested{target: contextURI})
}

// TogglePlayPause delegates to the device. State is left for the next notification.
func (c *Controller) TogglePlayPause(ctx context.Context) error {
	d, err := c.readyDevice()
	if err != nil {
		return err
	}
	return d.TogglePlay(ctx)
}

// SkipNext delegates to the device.
func (c *Controller) SkipNext(ctx context.Context) error {
	d, err := c.readyDevice()
	if err != nil {
		return err
	}
	return d.NextTrack(ctx)
}

// SkipPrevious delegates to the device.
func (c *Controller) SkipPrevious(ctx context.Context) error {
	d, err := c.readyDevice()
	if err != nil {
		return err
	}
	return d.PreviousTrack(ctx)
}

// Close disconnects the device, unloads the backend and stops the loop.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		started := false
		c.startOnce.Do(func() {})
		if c.cancel != nil {
			started = true
			c.cancel()
		}
		if started {
			<-c.stopped
		} else {
			close(c.updates)
		}
	})
}

func (c *Controller) readyDevice() (Device, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap.State != Ready || c.device == nil {
		return nil, shared.ErrDeviceNotReady
	}
	return c.device, nil
}

// post enqueues msg unless the controller has stopped.
func (c *Controller) post(msg any) {
	select {
	case c.queue <- msg:
	case <-c.done:
	case <-c.stopped:
	}
}

func (c *Controller) emit(ev Event) {
	c.post(deviceEvent{ev})
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.stopped)
	defer close(c.updates)

	c.update(func(s *Snapshot) { s.State = ScriptLoading })

	ready := c.sdk.Load(ctx)
	go func() {
		select {
		case err := <-ready:
			c.post(sdkLoaded{err: err})
		case <-ctx.Done():
		}
	}()

	for {
		select {
		case <-ctx.Done():
			c.teardown()
			return
		case msg := <-c.queue:
			c.apply(ctx, msg)
		}
	}
}

// apply is the only place state changes.
func (c *Controller) apply(ctx context.Context, msg any) {
	state := c.Snapshot().State

	switch m := msg.(type) {
	case sdkLoaded:
		if state != ScriptLoading {
			return
		}
		if m.err != nil {
			c.fail(shared.NewAppError(shared.KindDevice, shared.MsgSDKLoadFailed, m.err))
			return
		}
		c.update(func(s *Snapshot) { s.State = SDKReady })
		c.update(func(s *Snapshot) { s.State = TokenPending })
		go func() {
			token, err := c.tokens(ctx)
			c.post(tokenResolved{token: token, err: err})
		}()

	case tokenResolved:
		if state != TokenPending {
			return
		}
		switch {
		case m.err != nil && errors.Is(m.err, shared.ErrNotAuthenticated):
			c.fail(shared.NewAppError(shared.KindAuth, shared.MsgNoAccessToken, m.err))
			return
		case m.err != nil:
			c.fail(shared.NewAppError(shared.KindAuth, "Failed to get Spotify token: "+m.err.Error(), m.err))
			return
		case m.token == "":
			c.fail(shared.NewAppError(shared.KindAuth, shared.MsgNoAccessToken, nil))
			return
		}

		device := c.sdk.NewDevice(DeviceOptions{Name: c.name, Volume: c.volume, Token: c.tokens}, c.emit)
		c.mu.Lock()
		c.device = device
		c.snap.State = DeviceConnecting
		c.mu.Unlock()
		c.publish()

		go func() {
			ok, err := device.Connect(ctx)
			c.post(connectFinished{ok: ok, err: err})
		}()

	case connectFinished:
		if state.Terminal() {
			return
		}
		switch {
		case m.err != nil:
			c.fail(shared.NewAppError(shared.KindDevice, "Connection error: "+m.err.Error(), m.err))
		case !m.ok:
			c.fail(shared.NewAppError(shared.KindDevice, shared.MsgDeviceConnectFailed, nil))
		}

	case deviceEvent:
		c.applyDeviceEvent(ctx, state, m.Event)

	case playRequested:
		c.update(func(s *Snapshot) { s.Target = m.target })
		c.maybeTrigger(ctx)

	case triggerFinished:
		if state.Terminal() {
			c.logger.Debug("playback trigger finished after teardown state", "state", state, "error", m.err)
			return
		}
		if m.err != nil {
			c.fail(m.err)
			return
		}
		c.update(func(s *Snapshot) { s.Playback.Paused = false })
	}
}

func (c *Controller) applyDeviceEvent(ctx context.Context, state State, ev Event) {
	switch ev.Kind {
	case EventReady:
		if state.Terminal() {
			c.logger.Warn("ignoring ready after terminal state", "state", state, "device", ev.DeviceID)
			return
		}
		c.logger.Info("device ready", "device", ev.DeviceID)
		c.update(func(s *Snapshot) {
			s.State = Ready
			s.DeviceID = ev.DeviceID
		})
		c.maybeTrigger(ctx)

	case EventNotReady:
		if state != Ready {
			return
		}
		c.logger.Warn("device offline", "device", ev.DeviceID)
		c.update(func(s *Snapshot) {
			s.State = Offline
			s.DeviceID = ""
		})

	case EventStateChanged:
		if ev.State == nil {
			return
		}
		c.update(func(s *Snapshot) {
			s.Playback.Paused = ev.State.Paused
			s.Playback.PositionMs = ev.State.PositionMs
			s.Playback.DurationMs = ev.State.DurationMs
			if ev.State.Track != nil {
				track := *ev.State.Track
				s.Playback.Track = &track
			}
		})

	case EventInitializationError:
		c.fail(shared.NewAppError(shared.KindDevice, "Player initialization error: "+ev.Message, nil))

	case EventAuthenticationError:
		if strings.Contains(ev.Message, "Invalid token scopes") {
			c.fail(shared.NewAppError(shared.KindScope, shared.MsgScopeRemediation, errors.New(ev.Message)))
			return
		}
		c.fail(shared.NewAppError(shared.KindAuth, "Authentication error: "+ev.Message, nil))

	case EventAccountError:
		c.fail(shared.NewAppError(shared.KindAccountTier, "Account error (Premium required): "+ev.Message, nil))

	case EventPlaybackError:
		c.logger.Error("playback error", "message", ev.Message)
	}
}

func (c *Controller) maybeTrigger(ctx context.Context) {
	snap := c.Snapshot()
	if snap.State != Ready || c.starter == nil {
		return
	}
	if !c.pairing.Claim(snap.DeviceID, snap.Target) {
		return
	}

	c.logger.Info("starting playback", "device", snap.DeviceID, "target", snap.Target)
	go func() {
		err := c.starter.Start(ctx, snap.DeviceID, snap.Target)
		c.post(triggerFinished{err: err})
	}()
}

func (c *Controller) fail(err error) {
	c.logger.Error("player error", "error", err)
	c.update(func(s *Snapshot) {
		s.State = Errored
		s.Err = err
	})
}

func (c *Controller) update(fn func(*Snapshot)) {
	c.mu.Lock()
	fn(&c.snap)
	c.mu.Unlock()
	c.publish()
}

// publish replaces any unread snapshot with the current one.
func (c *Controller) publish() {
	snap := c.Snapshot()
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- snap:
	default:
	}
}

func (c *Controller) teardown() {
	c.mu.Lock()
	device := c.device
	c.device = nil
	c.mu.Unlock()

	if device != nil {
		device.Disconnect()
	}
	c.sdk.Unload()
	c.logger.Debug("player torn down")
}
