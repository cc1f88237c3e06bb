// Package handlers contains the HTTP surface of Music-City-Go: the Spotify
// OAuth login and callback, the city data API and the operational endpoints.
// Handlers are methods on Application so their dependencies are explicit and
// easy to replace in tests.

package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"Music-City-Go/pkg/metrics"
	"Music-City-Go/pkg/music"
)

// authenticator is the subset of spotify.Authenticator used by the OAuth
// handlers.
type authenticator interface {
	AuthURL(state string) string
	Token(state string, r *http.Request) (*oauth2.Token, error)
}

// aggregator produces the city data for a bearer token.
type aggregator interface {
	Aggregate(ctx context.Context, token string) music.Result
}

// Application holds the dependencies shared by all handlers.
type Application struct {
	Engine        aggregator
	Authenticator authenticator
	// FrontendURL receives the access token after a successful login.
	FrontendURL    string
	AllowedOrigins []string
	SignKey        []byte
	Metrics        *metrics.Metrics
	Log            logrus.FieldLogger
}

func (app *Application) logger() logrus.FieldLogger {
	if app.Log != nil {
		return app.Log
	}
	return logrus.StandardLogger()
}

// Routes registers every endpoint and wraps the mux in the middleware chain.
func (app *Application) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", app.Login)
	mux.HandleFunc("/callback", app.OAuthCallback)
	mux.HandleFunc("/api/city-data", app.CityDataJSON)
	mux.HandleFunc("/healthz", app.Healthz)
	if app.Metrics != nil {
		mux.Handle("/metrics", app.Metrics.Handler())
	}

	var h http.Handler = mux
	h = SecurityHeaders(h)
	h = CORS(app.AllowedOrigins)(h)
	return app.RequestLogger(h)
}

// Healthz reports that the process is serving.
func (app *Application) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
