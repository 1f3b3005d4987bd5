package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlister/internal/auth"
	"github.com/desertthunder/playlister/internal/catalog"
	"github.com/desertthunder/playlister/internal/playback"
	"github.com/desertthunder/playlister/internal/player"
	"github.com/desertthunder/playlister/internal/shared"
	"github.com/desertthunder/playlister/internal/storage"
	"github.com/urfave/cli/v3"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

const (
	envFile      = ".env"
	tuiLogPath   = "./tmp/playlister-tui.log"
	loginTimeout = 2 * time.Minute
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config       *shared.Config
	store        storage.Store
	gateway      *auth.Gateway
	httpClient   *http.Client
	endpoint     *oauth2.Endpoint
	apiBaseURL   string
	logger       *log.Logger
	output       io.Writer
	input        io.Reader
	openBrowser  func(string) error
	loginTimeout time.Duration
	closers      []func() error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	Store       storage.Store
	HTTPClient  *http.Client
	Endpoint    *oauth2.Endpoint // accounts service, defaults to [auth.Endpoint]
	APIBaseURL  string           // Web API root without trailing slash
	Logger      *log.Logger
	Output      io.Writer
	Input       io.Reader
	OpenBrowser func(string) error
	Timeout     time.Duration
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = playback.DefaultBaseURL
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.Timeout <= 0 {
		opts.Timeout = loginTimeout
	}

	return &Runner{
		config:       opts.Config,
		store:        opts.Store,
		httpClient:   opts.HTTPClient,
		endpoint:     opts.Endpoint,
		apiBaseURL:   opts.APIBaseURL,
		logger:       opts.Logger,
		output:       opts.Output,
		input:        opts.Input,
		openBrowser:  opts.OpenBrowser,
		loginTimeout: opts.Timeout,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, playCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by components built afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the storage handle.
func (r *Runner) Close() {
	for _, c := range r.closers {
		if err := c(); err != nil {
			r.logger.Warn("close failed", "error", err)
		}
	}
	r.closers = nil
}

// loadConfig reads path, falling back to defaults plus environment overrides
// when the file does not exist.
func (r *Runner) loadConfig(path string) (*shared.Config, error) {
	if err := shared.LoadEnvFile(envFile); err != nil {
		r.logger.Warn("failed to load env file", "error", err)
	}

	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		config := shared.DefaultConfig()
		config.ApplyEnv()
		return config, nil
	}
	return shared.LoadConfig(path)
}

// bootstrap loads configuration, opens storage and builds the session gateway.
func (r *Runner) bootstrap(cmd *cli.Command) error {
	if r.gateway != nil {
		return nil
	}

	if r.config == nil {
		config, err := r.loadConfig(cmd.String("config"))
		if err != nil {
			return err
		}
		r.config = config
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	if r.store == nil {
		store, err := storage.Open(r.config.Storage.Path)
		if err != nil {
			return err
		}
		r.store = store
		r.closers = append(r.closers, store.Close)
	}

	gateway, err := auth.NewGateway(auth.GatewayOpts{
		ClientID:    r.config.Spotify.ClientID,
		RedirectURL: r.config.RedirectURI(),
		Store:       r.store,
		Logger:      r.logger,
		Endpoint:    r.endpoint,
		HTTPClient:  r.httpClient,
	})
	if err != nil {
		return err
	}
	r.gateway = gateway
	return nil
}

// requireSession fails with a hint when no session is cached.
func (r *Runner) requireSession(ctx context.Context) error {
	if _, err := r.gateway.EnsureSession(ctx, nil); err != nil {
		return fmt.Errorf("%w (run 'playlister auth login')", err)
	}
	return nil
}

func (r *Runner) spotifyOptions() []spotify.ClientOption {
	return []spotify.ClientOption{spotify.WithBaseURL(r.apiBaseURL + "/")}
}

func (r *Runner) newCatalog(ctx context.Context) *catalog.Loader {
	fetcher := catalog.NewSpotifyFetcher(r.gateway.HTTPClient(ctx), r.spotifyOptions()...)
	return catalog.NewLoader(fetcher, r.logger)
}

// newController builds a fresh controller on a Connect device.
func (r *Runner) newController() *player.Controller {
	sdk := player.NewConnectSDK(player.ConnectOpts{
		BaseURL:      r.apiBaseURL + "/",
		Transport:    r.httpClient.Transport,
		PollInterval: r.config.Player.PollInterval.Duration,
		Logger:       r.logger,
	})
	trigger := playback.NewTrigger(playback.TriggerOpts{
		Tokens:     r.gateway,
		HTTPClient: r.httpClient,
		BaseURL:    r.apiBaseURL,
		Logger:     r.logger,
	})
	return player.NewController(player.Options{
		SDK:        sdk,
		Tokens:     r.gateway.AccessToken,
		Starter:    trigger,
		DeviceName: r.config.Player.DeviceName,
		Volume:     r.config.Player.Volume,
		Logger:     r.logger,
	})
}

func playlistIDs(cmd *cli.Command) []string {
	if ids := cmd.StringSlice("id"); len(ids) > 0 {
		return ids
	}
	return catalog.DefaultPlaylistIDs
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
