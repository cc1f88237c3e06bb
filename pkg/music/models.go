package music

import libspotify "github.com/zmb3/spotify"

const (
	// TypeArtist and TypeTrack tag enriched nodes so clients can tell the
	// two collections apart once merged.
	TypeArtist = "artist"
	TypeTrack  = "track"

	// UnknownTrack is reported as last_played when no play event is usable.
	UnknownTrack = "unknown"
)

// EnrichedArtist is a top artist decorated with recent-play and top-track
// cross references.
type EnrichedArtist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres"`
	Image      *string  `json:"image"`
	IsRecent   bool     `json:"is_recent"`
	TopTrack   *string  `json:"top_track"`
	Type       string   `json:"type"`
}

// EnrichedRecentTrack is a deduplicated play event. TrackInstanceID joins the
// track ID and the played_at timestamp.
type EnrichedRecentTrack struct {
	ID              string  `json:"id"`
	TrackInstanceID string  `json:"track_instance_id"`
	Name            string  `json:"name"`
	Popularity      int     `json:"popularity"`
	Image           *string `json:"image"`
	IsRecent        bool    `json:"is_recent"`
	TopTrack        *string `json:"top_track"`
	Type            string  `json:"type"`
	ArtistName      string  `json:"artist_name"`
}

// Stats summarises how mainstream the user's listening is.
type Stats struct {
	TopMainstreamScore    float64 `json:"top_mainstream_score"`
	RecentMainstreamScore float64 `json:"recent_mainstream_score"`
	TotalGenres           int     `json:"total_genres"`
	TotalRecentArtists    int     `json:"total_recent_artists"`
	LastPlayed            string  `json:"last_played"`
}

// Response is the body served by /api/city-data.
type Response struct {
	TopArtists   []EnrichedArtist      `json:"top_artists"`
	RecentTracks []EnrichedRecentTrack `json:"recent_tracks"`
	Stats        Stats                 `json:"stats"`
}

// primaryArtist returns the first credited artist of t.
func primaryArtist(t *Track) (libspotify.SimpleArtist, bool) {
	if t == nil || len(t.Artists) == 0 {
		return libspotify.SimpleArtist{}, false
	}
	return t.Artists[0], true
}

// firstImage returns the URL of the first (largest) image or nil.
func firstImage(images []libspotify.Image) *string {
	if len(images) == 0 {
		return nil
	}
	u := images[0].URL
	return &u
}
