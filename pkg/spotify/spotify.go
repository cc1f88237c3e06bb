// Package spotify is the credential adapter between the aggregation engine
// and the Spotify Web API. It turns a user's bearer token into authorized GET
// requests for the three listening endpoints the engine reads.
//
// Tokens are attached through an oauth2 static token source so the adapter
// never builds Authorization headers by hand.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"Music-City-Go/pkg/music"
)

const (
	// DefaultBaseURL is the Spotify Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1"
	// PageLimit is the single fixed page size requested per endpoint.
	PageLimit = 50
	// TimeRange selects the window for the top artists and tracks.
	TimeRange = "medium_term"
)

// ErrStatus is wrapped by errors caused by a non-2xx upstream response.
var ErrStatus = errors.New("spotify: unexpected status")

// Client fetches listening resources. The zero value talks to the public API
// with a 10 second HTTP timeout.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// Ensure interface compliance at compile time.
var _ music.Fetcher = (*Client)(nil)

// New returns a Client for baseURL, falling back to DefaultBaseURL.
func New(baseURL string, httpClient *http.Client) *Client {
	return &Client{BaseURL: baseURL, HTTP: httpClient}
}

// ResourceURL builds the endpoint for res including its fixed query.
func (c *Client) ResourceURL(res music.Resource) (string, error) {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	limit := strconv.Itoa(PageLimit)
	var (
		path   string
		params url.Values
	)
	switch res {
	case music.ResourceTopArtists:
		path, params = "/me/top/artists", url.Values{"limit": {limit}, "time_range": {TimeRange}}
	case music.ResourceTopTracks:
		path, params = "/me/top/tracks", url.Values{"limit": {limit}, "time_range": {TimeRange}}
	case music.ResourceRecent:
		path, params = "/me/player/recently-played", url.Values{"limit": {limit}}
	default:
		return "", fmt.Errorf("spotify: unknown resource %q", res)
	}
	return base + path + "?" + params.Encode(), nil
}

// httpClient wraps the configured client with a transport that presents
// token as a bearer credential.
func (c *Client) httpClient(ctx context.Context, token string) *http.Client {
	base := c.HTTP
	if base == nil {
		base = &http.Client{Timeout: 10 * time.Second}
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	hc.Timeout = base.Timeout
	return hc
}

// Fetch implements music.Fetcher. A non-2xx response is returned as an error
// wrapping ErrStatus; the engine treats it as an empty collection.
func (c *Client) Fetch(ctx context.Context, token string, res music.Resource) (music.Page, error) {
	u, err := c.ResourceURL(res)
	if err != nil {
		return music.Page{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return music.Page{}, fmt.Errorf("spotify %s: %w", res, err)
	}
	resp, err := c.httpClient(ctx, token).Do(req)
	if err != nil {
		return music.Page{}, fmt.Errorf("spotify %s: %w", res, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return music.Page{}, fmt.Errorf("%w: %s %s", ErrStatus, res, resp.Status)
	}
	var page music.Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return music.Page{}, fmt.Errorf("spotify %s: decode: %w", res, err)
	}
	return page, nil
}
