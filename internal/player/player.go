package player

import (
	"context"

	"github.com/desertthunder/playlister/internal/models"
)

// State is the controller's lifecycle position.
type State int

const (
	Uninitialized State = iota
	ScriptLoading
	SDKReady
	TokenPending
	DeviceConnecting
	Ready
	Offline
	Errored
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case ScriptLoading:
		return "script_loading"
	case SDKReady:
		return "sdk_ready"
	case TokenPending:
		return "token_pending"
	case DeviceConnecting:
		return "device_connecting"
	case Ready:
		return "ready"
	case Offline:
		return "offline"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == Offline || s == Errored
}

// EventKind names a device notification.
type EventKind int

const (
	EventReady EventKind = iota + 1
	EventNotReady
	EventStateChanged
	EventInitializationError
	EventAuthenticationError
	EventAccountError
	EventPlaybackError
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventNotReady:
		return "not_ready"
	case EventStateChanged:
		return "player_state_changed"
	case EventInitializationError:
		return "initialization_error"
	case EventAuthenticationError:
		return "authentication_error"
	case EventAccountError:
		return "account_error"
	case EventPlaybackError:
		return "playback_error"
	default:
		return "unknown"
	}
}

// Event is a notification pushed by a [Device].
type Event struct {
	Kind     EventKind
	DeviceID string                // ready, not_ready
	State    *models.PlaybackState // player_state_changed; nil means no state
	Message  string                // error kinds
}

// TokenFunc resolves an access token.
type TokenFunc func(ctx context.Context) (string, error)

// DeviceOptions configures a new device.
type DeviceOptions struct {
	Name   string
	Volume float64
	Token  TokenFunc // called on every authentication challenge
}

// SDK loads a playback backend and creates devices on it.
type SDK interface {
	// Load starts loading the backend. The returned channel receives exactly
	// one value: nil once the backend is ready, or the load failure.
	Load(ctx context.Context) <-chan error
	// NewDevice creates a device that reports through emit.
	NewDevice(opts DeviceOptions, emit func(Event)) Device
	// Unload releases whatever Load acquired.
	Unload()
}

// Device is a playback endpoint registered with the backend.
type Device interface {
	// Connect starts registration. A false result without error means the
	// backend refused the connection.
	Connect(ctx context.Context) (bool, error)
	Disconnect()
	TogglePlay(ctx context.Context) error
	NextTrack(ctx context.Context) error
	PreviousTrack(ctx context.Context) error
}

// Starter starts a playback context on a device.
type Starter interface {
	Start(ctx context.Context, deviceID, contextURI string) error
}
