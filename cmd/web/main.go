// Command web runs Music-City-Go. The serve subcommand starts the HTTP server
// exposing the Spotify login flow and the city data API; city-data runs one
// aggregation for a token and prints the JSON response, which is handy when
// debugging against a real account.
//
// Configuration comes from an optional TOML file (--config) overridden by
// environment variables; see pkg/config for the full list.

package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	libspotify "github.com/zmb3/spotify"

	"Music-City-Go/pkg/config"
	"Music-City-Go/pkg/handlers"
	"Music-City-Go/pkg/metrics"
	"Music-City-Go/pkg/music"
	"Music-City-Go/pkg/spotify"
)

// scopes requested during login. user-library-read is not used by the
// aggregation today but keeps tokens compatible with the frontend.
var scopes = []string{
	libspotify.ScopeUserTopRead,
	libspotify.ScopeUserReadRecentlyPlayed,
	libspotify.ScopeUserLibraryRead,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newCommand().Run(ctx, os.Args); err != nil {
		logrus.WithError(err).Fatal("music-city")
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "music-city",
		Usage: "Aggregate Spotify listening history into mainstream statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML configuration file",
				Sources: cli.EnvVars("CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override the configured log level",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address, overrides LISTEN_ADDR"},
				},
				Action: runServe,
			},
			{
				Name:  "city-data",
				Usage: "aggregate once for an access token and print the JSON response",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Usage:    "Spotify user access token",
						Sources:  cli.EnvVars("SPOTIFY_TOKEN"),
						Required: true,
					},
					&cli.BoolFlag{Name: "pretty", Usage: "indent the output"},
				},
				Action: runCityData,
			},
		},
	}
}

// setup loads the configuration and builds the logger shared by every
// component.
func setup(cmd *cli.Command) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newLogger(c config.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()
	lvl, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: log level: %v", config.ErrInvalidConfig, err)
	}
	log.SetLevel(lvl)
	if c.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}

// newEngine wires the Spotify adapter into the aggregation engine.
func newEngine(cfg *config.Config, m *metrics.Metrics, log logrus.FieldLogger) *music.Engine {
	timeout := cfg.Spotify.FetchTimeout.Duration
	return &music.Engine{
		Fetcher: spotify.New(cfg.Spotify.APIURL, &http.Client{Timeout: timeout}),
		Timeout: timeout,
		Log:     log,
		Metrics: m,
	}
}

// newApplication bundles the dependencies used by the HTTP handlers.
func newApplication(cfg *config.Config, log logrus.FieldLogger) (*handlers.Application, error) {
	key := []byte(cfg.Server.SigningKey)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		log.Warn("SIGNING_KEY not set, using an ephemeral key; pending logins break on restart")
	}
	auth := libspotify.NewAuthenticator(cfg.Spotify.RedirectURL, scopes...)
	auth.SetAuthInfo(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)

	m := metrics.New()
	return &handlers.Application{
		Engine:         newEngine(cfg, m, log),
		Authenticator:  auth,
		FrontendURL:    cfg.Server.FrontendURL,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SignKey:        key,
		Metrics:        m,
		Log:            log,
	}, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	if addr := cmd.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	app, err := newApplication(cfg, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runCityData(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	token := cmd.String("token")
	if token == "" {
		return errors.New("a Spotify access token is required")
	}
	res := newEngine(cfg, nil, log).Aggregate(ctx, token)
	if len(res.Degraded) > 0 {
		log.WithField("degraded", res.Degraded).Warn("some collections could not be fetched")
	}
	enc := json.NewEncoder(cmd.Root().Writer)
	if cmd.Bool("pretty") {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res.Response)
}
