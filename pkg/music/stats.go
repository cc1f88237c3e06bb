package music

// computeStats derives the mainstream summary. Artist figures come from the
// raw top artists, recent figures from the deduplicated plays and last_played
// from the raw recent stream. Events without a track are ignored.
func computeStats(artists []Artist, recent []PlayEvent, rawRecent []PlayEvent) Stats {
	var s Stats

	genres := make(map[string]struct{})
	if len(artists) > 0 {
		sum := 0
		for _, a := range artists {
			sum += a.Popularity
			for _, g := range a.Genres {
				genres[g] = struct{}{}
			}
		}
		s.TopMainstreamScore = float64(sum) / float64(len(artists))
	}
	s.TotalGenres = len(genres)

	names := make(map[string]struct{})
	sum, n := 0, 0
	for _, ev := range recent {
		if ev.Track == nil {
			continue
		}
		sum += ev.Track.Popularity
		n++
		if a, ok := primaryArtist(ev.Track); ok {
			names[a.Name] = struct{}{}
		}
	}
	if n > 0 {
		s.RecentMainstreamScore = float64(sum) / float64(n)
	}
	s.TotalRecentArtists = len(names)

	s.LastPlayed = UnknownTrack
	if len(rawRecent) > 0 && rawRecent[0].Track != nil {
		s.LastPlayed = rawRecent[0].Track.Name
	}
	return s
}
