package music

// index holds the lookups that let enrichment run in a single pass over each
// collection.
type index struct {
	recentArtistIDs  map[string]struct{}
	topTrackByArtist map[string]string
	topTrackIDs      map[string]struct{}
}

// buildIndex cross-references the deduplicated recent plays with the top
// tracks. When an artist has several top tracks the last one in list order
// is kept.
func buildIndex(recent []PlayEvent, topTracks []Track) index {
	idx := index{
		recentArtistIDs:  make(map[string]struct{}, len(recent)),
		topTrackByArtist: make(map[string]string, len(topTracks)),
		topTrackIDs:      make(map[string]struct{}, len(topTracks)),
	}
	for _, ev := range recent {
		if a, ok := primaryArtist(ev.Track); ok {
			idx.recentArtistIDs[string(a.ID)] = struct{}{}
		}
	}
	for i := range topTracks {
		t := &topTracks[i]
		idx.topTrackIDs[string(t.ID)] = struct{}{}
		if a, ok := primaryArtist(t); ok {
			idx.topTrackByArtist[string(a.ID)] = t.Name
		}
	}
	return idx
}

// enrichArtists projects every top artist, in order, onto an EnrichedArtist.
func enrichArtists(artists []Artist, idx index) []EnrichedArtist {
	out := make([]EnrichedArtist, 0, len(artists))
	for _, a := range artists {
		id := string(a.ID)
		genres := a.Genres
		if genres == nil {
			genres = []string{}
		}
		ea := EnrichedArtist{
			ID:         id,
			Name:       a.Name,
			Popularity: a.Popularity,
			Genres:     genres,
			Image:      firstImage(a.Images),
			Type:       TypeArtist,
		}
		_, ea.IsRecent = idx.recentArtistIDs[id]
		if name, ok := idx.topTrackByArtist[id]; ok {
			ea.TopTrack = &name
		}
		out = append(out, ea)
	}
	return out
}

// enrichRecent projects deduplicated play events onto EnrichedRecentTrack.
// Every event passed in must carry a track; DedupeRecent guarantees this.
func enrichRecent(recent []PlayEvent, idx index) []EnrichedRecentTrack {
	out := make([]EnrichedRecentTrack, 0, len(recent))
	for _, ev := range recent {
		t := ev.Track
		id := string(t.ID)
		rt := EnrichedRecentTrack{
			ID:              id,
			TrackInstanceID: id + ev.PlayedAt,
			Name:            t.Name,
			Popularity:      t.Popularity,
			Image:           firstImage(t.Album.Images),
			IsRecent:        true,
			Type:            TypeTrack,
		}
		if _, ok := idx.topTrackIDs[id]; ok {
			name := t.Name
			rt.TopTrack = &name
		}
		if a, ok := primaryArtist(t); ok {
			rt.ArtistName = a.Name
		}
		out = append(out, rt)
	}
	return out
}
