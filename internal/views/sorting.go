package views

import (
	"sort"
	"strings"

	"kaseti/internal/sdk"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) multiplier() int {
	if o == SortDesc {
		return -1
	}
	return 1
}

// SortAlbums orders a copy of albums by the requested key. Unknown keys
// fall back to release year.
func SortAlbums(albums []sdk.Album, sortBy string, order SortOrder) []sdk.Album {
	sorted := append([]sdk.Album(nil), albums...)
	m := order.multiplier()

	switch sortBy {
	case "title", "name":
		sort.SliceStable(sorted, func(i, j int) bool {
			return m*compareFold(sorted[i].Name, sorted[j].Name) < 0
		})
	case "artist":
		sort.SliceStable(sorted, func(i, j int) bool {
			return m*compareFold(sorted[i].Artist, sorted[j].Artist) < 0
		})
	default: // "year", "release"
		sort.SliceStable(sorted, func(i, j int) bool {
			return m*(sorted[i].Year-sorted[j].Year) < 0
		})
	}

	return sorted
}

// SortTracks orders a copy of tracks by the requested key. Artist and
// album sorts tiebreak on (disc, track position) ascending regardless of
// the chosen order, since within-album ordering is not a user-facing sort
// axis. An unknown key keeps the input order.
func SortTracks(tracks []sdk.Track, sortBy string, order SortOrder) []sdk.Track {
	sorted := append([]sdk.Track(nil), tracks...)
	m := order.multiplier()

	switch sortBy {
	case "title", "name":
		sort.SliceStable(sorted, func(i, j int) bool {
			return m*compareFold(sorted[i].Name, sorted[j].Name) < 0
		})
	case "artist":
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i], sorted[j]
			if c := m * compareFold(a.Artist, b.Artist); c != 0 {
				return c < 0
			}
			if c := m * compareFold(a.Album, b.Album); c != 0 {
				return c < 0
			}
			return albumOrderLess(a, b)
		})
	case "album":
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i], sorted[j]
			if c := m * compareFold(a.Album, b.Album); c != 0 {
				return c < 0
			}
			return albumOrderLess(a, b)
		})
	case "duration":
		sort.SliceStable(sorted, func(i, j int) bool {
			if order == SortDesc {
				return sorted[i].Duration > sorted[j].Duration
			}
			return sorted[i].Duration < sorted[j].Duration
		})
	}

	return sorted
}

// albumOrderLess is the always-ascending within-album tiebreak.
func albumOrderLess(a, b sdk.Track) bool {
	discA, discB := ResolveDiscNumber(a), ResolveDiscNumber(b)
	if discA != discB {
		return discA < discB
	}
	return a.TrackPosition < b.TrackPosition
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
