package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Music-City-Go/pkg/config"
)

func testConfig(apiURL string) *config.Config {
	cfg := config.Default()
	cfg.Spotify.ClientID = "id"
	cfg.Spotify.ClientSecret = "secret"
	cfg.Spotify.APIURL = apiURL
	cfg.Server.SigningKey = "test-key"
	return cfg
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log, err = newLogger(config.LogConfig{Level: "warn"})
	require.NoError(t, err)
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	_, err = newLogger(config.LogConfig{Level: "loud"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

// TestLoginUsesSpotifyAuthorizeURL checks that the real authenticator is
// wired with the client ID, redirect URL and the listening scopes.
func TestLoginUsesSpotifyAuthorizeURL(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	app, err := newApplication(testConfig(""), log)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	app.Routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/login", nil))

	require.Equal(t, http.StatusFound, rr.Code)
	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.spotify.com", loc.Host)
	q := loc.Query()
	assert.Equal(t, "id", q.Get("client_id"))
	assert.Equal(t, "http://127.0.0.1:8000/callback", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "user-top-read")
	assert.Contains(t, q.Get("scope"), "user-read-recently-played")
	assert.NotEmpty(t, q.Get("state"))
}

func TestEphemeralSigningKey(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	cfg := testConfig("")
	cfg.Server.SigningKey = ""
	app, err := newApplication(cfg, log)
	require.NoError(t, err)
	assert.Len(t, app.SignKey, 32)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestServeRequiresCredentials(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")
	err := newCommand().Run(context.Background(), []string{"music-city", "serve"})
	assert.ErrorIs(t, err, config.ErrMissingCredentials)
}

func TestCityDataCommand(t *testing.T) {
	upstream := newFakeSpotify(t, nil)
	t.Setenv("SPOTIFY_API_URL", upstream.URL)

	cmd := newCommand()
	var out bytes.Buffer
	cmd.Writer = &out
	err := cmd.Run(context.Background(), []string{"music-city", "--log-level", "error", "city-data", "--token", "cli-token"})
	require.NoError(t, err)

	var resp struct {
		TopArtists   []map[string]any `json:"top_artists"`
		RecentTracks []map[string]any `json:"recent_tracks"`
		Stats        map[string]any   `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Len(t, resp.TopArtists, 2)
	assert.Len(t, resp.RecentTracks, 2)
	assert.Equal(t, "Hit", resp.Stats["last_played"])
}

func TestCityDataCommandRequiresToken(t *testing.T) {
	t.Setenv("SPOTIFY_TOKEN", "")
	os.Unsetenv("SPOTIFY_TOKEN")
	cmd := newCommand()
	cmd.Writer = &bytes.Buffer{}
	cmd.ErrWriter = &bytes.Buffer{}
	err := cmd.Run(context.Background(), []string{"music-city", "city-data"})
	assert.Error(t, err)
}

func TestConfigFlagLoadsFile(t *testing.T) {
	upstream := newFakeSpotify(t, nil)
	path := filepath.Join(t.TempDir(), "music-city.toml")
	body := "[spotify]\napi_url = \"" + upstream.URL + "\"\n\n[log]\nlevel = \"error\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("SPOTIFY_API_URL", "")

	cmd := newCommand()
	var out bytes.Buffer
	cmd.Writer = &out
	err := cmd.Run(context.Background(), []string{"music-city", "--config", path, "city-data", "--token", "t", "--pretty"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "\n  \"top_artists\"")
}
