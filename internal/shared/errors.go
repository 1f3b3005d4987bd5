package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrStateMismatch    = fmt.Errorf("authorization state mismatch")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrDeviceNotReady     = fmt.Errorf("playback device not ready")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// ErrorKind classifies errors that end up on screen.
type ErrorKind int

const (
	KindAuth ErrorKind = iota + 1
	KindScope
	KindAccountTier
	KindDevice
	KindPlaybackRequest
	KindCatalogLoad
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindScope:
		return "scope"
	case KindAccountTier:
		return "account_tier"
	case KindDevice:
		return "device"
	case KindPlaybackRequest:
		return "playback_request"
	case KindCatalogLoad:
		return "catalog_load"
	default:
		return "unknown"
	}
}

// Static, human readable messages for each failure the user can see.
const (
	MsgConnectFailed       = "Failed to connect to Spotify. Please try again."
	MsgCatalogFailed       = "Failed to fetch playlists. Please try again."
	MsgScopeRemediation    = "Spotify Premium is required, and you may need to re-login with the correct permissions. Please log out and log in again."
	MsgPremiumRequired     = "Premium account required for playback control"
	MsgSDKLoadFailed       = "Failed to load Spotify Player SDK"
	MsgNoAccessToken       = "No access token available"
	MsgDeviceConnectFailed = "Failed to connect to Spotify player"
	MsgDeviceOffline       = "Spotify device went offline"
	MsgPremiumNote         = "Note: Spotify Web Playback requires a Premium account."
)

// AppError is a terminal, user facing failure. Message is rendered verbatim.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any *AppError of the same kind, so callers can compare against
// the Err* kind sentinels below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

var (
	ErrAuth            = &AppError{Kind: KindAuth}
	ErrScope           = &AppError{Kind: KindScope}
	ErrAccountTier     = &AppError{Kind: KindAccountTier}
	ErrDevice          = &AppError{Kind: KindDevice}
	ErrPlaybackRequest = &AppError{Kind: KindPlaybackRequest}
	ErrCatalogLoad     = &AppError{Kind: KindCatalogLoad}
)

// NewAppError builds an [AppError] of the given kind.
func NewAppError(kind ErrorKind, msg string, err error) *AppError {
	return &AppError{Kind: kind, Message: msg, Err: err}
}

// UserMessage returns the text to render for err. Errors outside the taxonomy
// fall back to their own text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
