// Package config builds the process configuration once at start-up. Values
// come from an optional TOML file and are then overridden by environment
// variables, so a deployment can run from the environment alone.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	// ErrMissingCredentials is returned by Validate when the Spotify client
	// credentials are absent.
	ErrMissingCredentials = errors.New("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set")
	// ErrInvalidConfig wraps errors caused by malformed or missing values such
	// as an unparsable FETCH_TIMEOUT or an empty frontend URL.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the full set of settings for the web process.
type Config struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
}

// SpotifyConfig holds the OAuth client and API settings.
type SpotifyConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURL  string   `toml:"redirect_url"`
	APIURL       string   `toml:"api_url"`
	FetchTimeout Duration `toml:"fetch_timeout"`
}

// ServerConfig holds HTTP listener and browser-facing settings.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	FrontendURL    string   `toml:"frontend_url"`
	AllowedOrigins []string `toml:"allowed_origins"`
	SigningKey     string   `toml:"signing_key"`
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration lets TOML files use strings such as "10s".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used for local development.
func Default() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURL:  "http://127.0.0.1:8000/callback",
			APIURL:       "https://api.spotify.com/v1",
			FetchTimeout: Duration{10 * time.Second},
		},
		Server: ServerConfig{
			Addr:           ":8000",
			FrontendURL:    "http://localhost:5173",
			AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (when non-empty) over the defaults and then applies the
// environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"SPOTIFY_CLIENT_ID":     &c.Spotify.ClientID,
		"SPOTIFY_CLIENT_SECRET": &c.Spotify.ClientSecret,
		"SPOTIFY_REDIRECT_URL":  &c.Spotify.RedirectURL,
		"SPOTIFY_API_URL":       &c.Spotify.APIURL,
		"LISTEN_ADDR":           &c.Server.Addr,
		"FRONTEND_URL":          &c.Server.FrontendURL,
		"SIGNING_KEY":           &c.Server.SigningKey,
		"LOG_LEVEL":             &c.Log.Level,
		"LOG_FORMAT":            &c.Log.Format,
	}
	for name, dst := range str {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
	if v, ok := lookup("FETCH_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: FETCH_TIMEOUT: %v", ErrInvalidConfig, err)
		}
		c.Spotify.FetchTimeout = Duration{d}
	}
	return nil
}

// Validate reports settings the web server cannot run without.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return ErrMissingCredentials
	}
	if c.Spotify.RedirectURL == "" || c.Server.FrontendURL == "" {
		return fmt.Errorf("%w: redirect and frontend URLs are required", ErrInvalidConfig)
	}
	return nil
}
