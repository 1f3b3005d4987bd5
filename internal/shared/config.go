package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	EnvClientID    = "SPOTIFY_CLIENT_ID"
	EnvRedirectURI = "SPOTIFY_REDIRECT_URI"

	Development = "development"
	Production  = "production"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Spotify SpotifyConfig `toml:"spotify"`
	App     AppConfig     `toml:"app"`
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Player  PlayerConfig  `toml:"player"`
}

// SpotifyConfig contains Spotify application credentials. PKCE needs no secret.
type SpotifyConfig struct {
	ClientID    string `toml:"client_id"`
	RedirectURI string `toml:"redirect_uri"`
}

// AppConfig selects between local development and the published deployment.
type AppConfig struct {
	Environment  string `toml:"environment"`
	PublishedURL string `toml:"published_url"`
}

// ServerConfig contains the local OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig contains the local key/value store settings.
type StorageConfig struct {
	Path string `toml:"path"`
}

// PlayerConfig contains playback device settings.
type PlayerConfig struct {
	DeviceName   string   `toml:"device_name"`
	Volume       float64  `toml:"volume"`
	PollInterval Duration `toml:"poll_interval"`
}

// Duration decodes TOML strings such as "500ms" into a [time.Duration].
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path,
// then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.ApplyEnv()
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvFile loads a .env file into the process environment when it exists.
// Variables already set are left alone.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides the client id and redirect URI from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvClientID); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv(EnvRedirectURI); v != "" {
		c.Spotify.RedirectURI = v
	}
}

// IsDevelopment reports whether the app runs against a local callback.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "" || c.App.Environment == Development
}

// RedirectURI returns the local override in development and the fixed published URL otherwise.
func (c *Config) RedirectURI() string {
	if c.IsDevelopment() {
		return c.Spotify.RedirectURI
	}
	return c.App.PublishedURL
}

// Validate checks the fields every command depends on.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientID == "your_spotify_client_id" {
		return fmt.Errorf("%w: spotify client_id must be set in config.toml or %s", ErrMissingConfig, EnvClientID)
	}
	if c.RedirectURI() == "" {
		return fmt.Errorf("%w: no redirect URI for environment %q", ErrInvalidConfig, c.App.Environment)
	}
	switch c.App.Environment {
	case "", Development, Production:
	default:
		return fmt.Errorf("%w: unknown environment %q", ErrInvalidConfig, c.App.Environment)
	}
	return nil
}
