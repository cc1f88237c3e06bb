// Package music aggregates a user's Spotify listening history into the
// enriched "city data" response. The raw collections are fetched through a
// Fetcher and then deduplicated, cross-referenced and summarised entirely in
// memory.
//
// Artist and Track alias the zmb3/spotify types so payloads decode straight
// from the Web API JSON without an intermediate mapping layer.
package music

import (
	"context"
	"encoding/json"

	libspotify "github.com/zmb3/spotify"
)

// Artist is a raw top artist as returned by /me/top/artists.
type Artist = libspotify.FullArtist

// Track is a raw track. Top tracks and the track embedded in a play event
// share this shape.
type Track = libspotify.FullTrack

// PlayEvent is one entry of /me/player/recently-played. Track is nil when the
// upstream item carries no track object.
type PlayEvent struct {
	Track    *Track `json:"track"`
	PlayedAt string `json:"played_at"`
}

// Resource names one of the three collections the engine reads.
type Resource string

const (
	ResourceTopArtists Resource = "artists"
	ResourceTopTracks  Resource = "tracks"
	ResourceRecent     Resource = "recent"
)

// Resources lists every collection fetched for one aggregation.
var Resources = []Resource{ResourceTopArtists, ResourceTopTracks, ResourceRecent}

// Page is the `{items: [...]}` envelope shared by all three endpoints. Items is
// left undecoded so the engine can pick the element type per resource.
type Page struct {
	Items json.RawMessage `json:"items"`
}

// Fetcher retrieves a named resource on behalf of the holder of token.
type Fetcher interface {
	// Fetch returns the parsed page for res. Any error is treated by the
	// engine as a soft failure and the resource degrades to an empty page.
	Fetch(ctx context.Context, token string, res Resource) (Page, error)
}
