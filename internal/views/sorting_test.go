package views

import (
	"testing"

	"kaseti/internal/sdk"
)

func intPtr(v int) *int { return &v }

func TestSortAlbumsByYearDescending(t *testing.T) {
	t.Parallel()

	albums := []sdk.Album{
		{ID: "a", Name: "Old", Year: 1998},
		{ID: "b", Name: "New", Year: 2024},
		{ID: "c", Name: "Mid", Year: 2010},
	}

	sorted := SortAlbums(albums, "release", SortDesc)
	if sorted[0].ID != "b" || sorted[1].ID != "c" || sorted[2].ID != "a" {
		t.Fatalf("expected newest first, got %v", albumIDs(sorted))
	}

	// Input is left untouched.
	if albums[0].ID != "a" {
		t.Fatalf("expected input order preserved, got %v", albumIDs(albums))
	}
}

func TestSortAlbumsByTitleIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	albums := []sdk.Album{
		{ID: "a", Name: "zebra"},
		{ID: "b", Name: "Apple"},
		{ID: "c", Name: "mango"},
	}

	sorted := SortAlbums(albums, "title", SortAsc)
	if sorted[0].ID != "b" || sorted[1].ID != "c" || sorted[2].ID != "a" {
		t.Fatalf("expected case-insensitive title order, got %v", albumIDs(sorted))
	}
}

func TestSortAlbumsUnknownKeyFallsBackToYear(t *testing.T) {
	t.Parallel()

	albums := []sdk.Album{
		{ID: "a", Year: 2020},
		{ID: "b", Year: 2001},
	}

	sorted := SortAlbums(albums, "mystery", SortAsc)
	if sorted[0].ID != "b" {
		t.Fatalf("expected year fallback, got %v", albumIDs(sorted))
	}
}

func TestSortTracksByArtistKeepsAlbumOrderAscending(t *testing.T) {
	t.Parallel()

	tracks := []sdk.Track{
		{ID: "b2", Artist: "Beta", Album: "Second", TrackPosition: 2},
		{ID: "a1", Artist: "Alpha", Album: "First", TrackPosition: 1},
		{ID: "b1", Artist: "Beta", Album: "Second", TrackPosition: 1},
		{ID: "b3", Artist: "Beta", Album: "Second", TrackPosition: 3, DiscNumber: intPtr(2)},
	}

	// Descending artist order must still keep disc/position ascending
	// inside each album.
	sorted := SortTracks(tracks, "artist", SortDesc)
	want := []string{"b1", "b2", "b3", "a1"}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Fatalf("expected order %v, got %v", want, trackIDs(sorted))
		}
	}
}

func TestSortTracksByAlbumTiebreaksOnDiscThenPosition(t *testing.T) {
	t.Parallel()

	tracks := []sdk.Track{
		{ID: "d2t1", Album: "Album", TrackPosition: 1, Disc: intPtr(2)},
		{ID: "d1t2", Album: "Album", TrackPosition: 2},
		{ID: "d1t1", Album: "Album", TrackPosition: 1},
	}

	sorted := SortTracks(tracks, "album", SortAsc)
	want := []string{"d1t1", "d1t2", "d2t1"}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Fatalf("expected order %v, got %v", want, trackIDs(sorted))
		}
	}
}

func TestSortTracksByDuration(t *testing.T) {
	t.Parallel()

	tracks := []sdk.Track{
		{ID: "mid", Duration: 180},
		{ID: "long", Duration: 600},
		{ID: "short", Duration: 30},
	}

	sorted := SortTracks(tracks, "duration", SortDesc)
	if sorted[0].ID != "long" || sorted[2].ID != "short" {
		t.Fatalf("expected longest first, got %v", trackIDs(sorted))
	}
}

func TestSortTracksUnknownKeyKeepsInputOrder(t *testing.T) {
	t.Parallel()

	tracks := []sdk.Track{{ID: "x"}, {ID: "y"}, {ID: "z"}}
	sorted := SortTracks(tracks, "mystery", SortAsc)
	for i, track := range tracks {
		if sorted[i].ID != track.ID {
			t.Fatalf("expected input order preserved, got %v", trackIDs(sorted))
		}
	}
}

func albumIDs(albums []sdk.Album) []string {
	ids := make([]string, 0, len(albums))
	for _, album := range albums {
		ids = append(ids, album.ID)
	}
	return ids
}

func trackIDs(tracks []sdk.Track) []string {
	ids := make([]string, 0, len(tracks))
	for _, track := range tracks {
		ids = append(ids, track.ID)
	}
	return ids
}
