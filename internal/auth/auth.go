package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlister/internal/shared"
	"github.com/desertthunder/playlister/internal/storage"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// Storage keys. Each contains "spotify" so logout clears it.
const (
	KeyAccessToken  = "spotify_access_token"
	KeyCodeVerifier = "spotify_code_verifier"
	KeyAuthState    = "spotify_auth_state"
)

// Scopes is the fixed scope set requested at login.
var Scopes = []string{
	"streaming",
	"user-read-email",
	"user-read-private",
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"playlist-read-private",
	"playlist-read-collaborative",
	"app-remote-control",
}

// Endpoint is Spotify's OAuth2 endpoint. Public PKCE clients send the
// client id in the form body.
var Endpoint = oauth2.Endpoint{
	AuthURL:   spotifyAuthURL,
	TokenURL:  spotifyTokenURL,
	AuthStyle: oauth2.AuthStyleInParams,
}

// Session is an authenticated credential bundle. It is read-only outside this package.
type Session struct {
	token *oauth2.Token
}

// Expiry returns when the access token expires. The zero time means never.
func (s *Session) Expiry() time.Time { return s.token.Expiry }

// Refreshable reports whether the session carries a refresh token.
func (s *Session) Refreshable() bool { return s.token.RefreshToken != "" }

// GatewayOpts configures a [Gateway].
type GatewayOpts struct {
	ClientID    string
	RedirectURL string
	Store       storage.Store
	Logger      *log.Logger
	Endpoint    *oauth2.Endpoint // defaults to [Endpoint]
	HTTPClient  *http.Client     // used for token exchange and refresh
}

// Gateway wraps an [oauth2.Config] and the session cache.
type Gateway struct {
	config     *oauth2.Config
	store      storage.Store
	logger     *log.Logger
	httpClient *http.Client
	mu         sync.Mutex
}

// NewGateway creates a [Gateway].
func NewGateway(opts GatewayOpts) (*Gateway, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: client id", shared.ErrMissingConfig)
	}
	if opts.RedirectURL == "" {
		return nil, fmt.Errorf("%w: redirect uri", shared.ErrMissingConfig)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store", shared.ErrMissingArgument)
	}

	endpoint := Endpoint
	if opts.Endpoint != nil {
		endpoint = *opts.Endpoint
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Gateway{
		config: &oauth2.Config{
			ClientID:    opts.ClientID,
			RedirectURL: opts.RedirectURL,
			Scopes:      Scopes,
			Endpoint:    endpoint,
		},
		store:      opts.Store,
		logger:     shared.WithLogger(logger, "component", "auth"),
		httpClient: opts.HTTPClient,
	}, nil
}

// Config returns the underlying OAuth2 configuration.
func (g *Gateway) Config() *oauth2.Config { return g.config }

func (g *Gateway) oauthContext(ctx context.Context) context.Context {
	if g.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

// Login clears cached session fragments, records a new PKCE verifier and state,
// and returns the authorization URL to open in a browser.
func (g *Gateway) Login(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := storage.ClearSessionKeys(ctx, g.store); err != nil {
		return "", fmt.Errorf("failed to clear session: %w", err)
	}

	verifier := oauth2.GenerateVerifier()
	state := shared.GenerateID()

	if err := g.store.Set(ctx, KeyCodeVerifier, verifier); err != nil {
		return "", err
	}
	if err := g.store.Set(ctx, KeyAuthState, state); err != nil {
		return "", err
	}

	g.logger.Debug("starting authorization", "state", state)
	return g.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// EnsureSession returns the current session.
//
// When current carries an authorization callback the code is exchanged first.
// Otherwise a cached token is reused. Without either it returns
// [shared.ErrNotAuthenticated]. Exchange failures are an [shared.AppError] of
// kind [shared.KindAuth] and are not retried.
func (g *Gateway) EnsureSession(ctx context.Context, current *url.URL) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if current != nil {
		q := current.Query()
		if q.Has("code") || q.Has("error") {
			return g.exchange(ctx, q)
		}
	}

	tok, err := g.loadToken(ctx)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, shared.ErrNotAuthenticated
	}
	if !tok.Valid() && tok.RefreshToken == "" {
		g.logger.Warn("cached token expired without refresh token")
		g.clear(ctx)
		return nil, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, shared.ErrTokenExpired)
	}
	return &Session{token: tok}, nil
}

func (g *Gateway) exchange(ctx context.Context, q url.Values) (*Session, error) {
	fail := func(err error) (*Session, error) {
		g.logger.Error("authorization failed", "error", err)
		return nil, shared.NewAppError(shared.KindAuth, shared.MsgConnectFailed, err)
	}

	if e := q.Get("error"); e != "" {
		return fail(fmt.Errorf("authorization denied: %s %s", e, q.Get("error_description")))
	}

	state, _, err := g.store.Get(ctx, KeyAuthState)
	if err != nil {
		return fail(err)
	}
	if state == "" || q.Get("state") != state {
		return fail(shared.ErrStateMismatch)
	}

	verifier, ok, err := g.store.Get(ctx, KeyCodeVerifier)
	if err != nil {
		return fail(err)
	}
	if !ok {
		return fail(fmt.Errorf("%w: code verifier", shared.ErrMissingArgument))
	}

	tok, err := g.config.Exchange(g.oauthContext(ctx), q.Get("code"), oauth2.VerifierOption(verifier))
	if err != nil {
		return fail(fmt.Errorf("token exchange failed: %w", err))
	}

	for _, key := range []string{KeyCodeVerifier, KeyAuthState} {
		if err := g.store.Remove(ctx, key); err != nil {
			g.logger.Warn("failed to remove login key", "key", key, "error", err)
		}
	}

	if err := g.saveToken(ctx, tok); err != nil {
		return fail(err)
	}

	g.logger.Info("authorization complete", "expiry", tok.Expiry)
	return &Session{token: tok}, nil
}

// AccessToken resolves a fresh access token, refreshing and persisting it when
// it has expired. A failed refresh destroys the session.
func (g *Gateway) AccessToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	tok, err := g.loadToken(ctx)
	if err != nil {
		return "", err
	}
	if tok == nil {
		return "", shared.ErrNotAuthenticated
	}

	fresh, err := g.config.TokenSource(g.oauthContext(ctx), tok).Token()
	if err != nil {
		g.logger.Error("token refresh failed", "error", err)
		g.clear(ctx)
		return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	if fresh.AccessToken != tok.AccessToken {
		if fresh.RefreshToken == "" {
			fresh.RefreshToken = tok.RefreshToken
		}
		if err := g.saveToken(ctx, fresh); err != nil {
			return "", err
		}
		g.logger.Debug("access token refreshed", "expiry", fresh.Expiry)
	}

	return fresh.AccessToken, nil
}

// Logout removes every session key from the store.
func (g *Gateway) Logout(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed, err := storage.ClearSessionKeys(ctx, g.store)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	g.logger.Info("logged out", "keys", len(removed))
	return nil
}

func (g *Gateway) clear(ctx context.Context) {
	if _, err := storage.ClearSessionKeys(ctx, g.store); err != nil {
		g.logger.Warn("failed to clear session", "error", err)
	}
}

func (g *Gateway) loadToken(ctx context.Context) (*oauth2.Token, error) {
	raw, ok, err := g.store.Get(ctx, KeyAccessToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		g.logger.Warn("discarding unreadable cached token", "error", err)
		if err := g.store.Remove(ctx, KeyAccessToken); err != nil {
			g.logger.Warn("failed to remove cached token", "error", err)
		}
		return nil, nil
	}
	return &tok, nil
}

func (g *Gateway) saveToken(ctx context.Context, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return g.store.Set(ctx, KeyAccessToken, string(data))
}

// StripAuthParams returns a copy of u without the authorization callback parameters.
func StripAuthParams(u *url.URL) *url.URL {
	stripped := *u
	q := stripped.Query()
	for _, key := range []string{"code", "state", "error", "error_description"} {
		q.Del(key)
	}
	stripped.RawQuery = q.Encode()
	return &stripped
}
