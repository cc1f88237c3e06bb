package music

// DedupeRecent collapses the recently-played stream to one event per track
// ID. The first occurrence in source order wins, which for Spotify is the most
// recent play. Events without a track are dropped.
func DedupeRecent(events []PlayEvent) []PlayEvent {
	seen := make(map[string]struct{}, len(events))
	out := make([]PlayEvent, 0, len(events))
	for _, ev := range events {
		if ev.Track == nil {
			continue
		}
		id := string(ev.Track.ID)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, ev)
	}
	return out
}
