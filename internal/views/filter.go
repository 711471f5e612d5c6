package views

import (
	"strings"

	"kaseti/internal/sdk"
)

// FilterAlbums keeps albums whose name or artist contains the query,
// case-insensitive. An empty query keeps everything; a genre filter is
// applied first.
func FilterAlbums(albums []sdk.Album, query, genre string) []sdk.Album {
	needle := strings.ToLower(strings.TrimSpace(query))
	kept := make([]sdk.Album, 0, len(albums))

	for _, album := range albums {
		if genre != "" && !strings.EqualFold(album.Genre, genre) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(album.Name), needle) &&
			!strings.Contains(strings.ToLower(album.Artist), needle) {
			continue
		}
		kept = append(kept, album)
	}

	return kept
}

// FilterTracks keeps tracks whose name, artist, or album contains the
// query, case-insensitive.
func FilterTracks(tracks []sdk.Track, query, genre string) []sdk.Track {
	needle := strings.ToLower(strings.TrimSpace(query))
	kept := make([]sdk.Track, 0, len(tracks))

	for _, track := range tracks {
		if genre != "" && !strings.EqualFold(track.Genre, genre) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(track.Name), needle) &&
			!strings.Contains(strings.ToLower(track.Artist), needle) &&
			!strings.Contains(strings.ToLower(track.Album), needle) {
			continue
		}
		kept = append(kept, track)
	}

	return kept
}
