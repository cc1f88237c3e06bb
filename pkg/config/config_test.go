package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "http://127.0.0.1:8000/callback", cfg.Spotify.RedirectURL)
	assert.Equal(t, 10*time.Second, cfg.Spotify.FetchTimeout.Duration)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingCredentials)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{
		"SPOTIFY_CLIENT_ID":     "id",
		"SPOTIFY_CLIENT_SECRET": "secret",
		"ALLOWED_ORIGINS":       "https://a.example, https://b.example,",
		"FETCH_TIMEOUT":         "3s",
		"LOG_LEVEL":             "",
	}))
	require.NoError(t, err)
	assert.Equal(t, "id", cfg.Spotify.ClientID)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.Spotify.FetchTimeout.Duration)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvBadTimeout(t *testing.T) {
	err := Default().applyEnv(envMap(map[string]string{"FETCH_TIMEOUT": "soon"}))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[spotify]
client_id = "file-id"
client_secret = "file-secret"
fetch_timeout = "250ms"

[server]
addr = ":9000"
allowed_origins = ["https://city.example"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	t.Setenv("LISTEN_ADDR", ":9100")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "file-id", cfg.Spotify.ClientID)
	assert.Equal(t, 250*time.Millisecond, cfg.Spotify.FetchTimeout.Duration)
	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, []string{"https://city.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "http://localhost:5173", cfg.Server.FrontendURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
