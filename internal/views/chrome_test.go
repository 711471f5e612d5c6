package views

import (
	"testing"

	"kaseti/internal/sdk"
	"kaseti/internal/store"
)

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{61, "1:01"},
		{754, "12:34"},
		{3661, "1:01:01"},
		{-5, "0:00"},
	}

	for _, tc := range cases {
		if got := FormatDuration(tc.seconds); got != tc.want {
			t.Fatalf("FormatDuration(%v): expected %q, got %q", tc.seconds, tc.want, got)
		}
	}
}

func TestRenderChromeProgressIsCapped(t *testing.T) {
	t.Parallel()

	state := store.State{CurrentTime: 250, Duration: 200}
	model := RenderChrome(state)
	if model.Progress != 1 {
		t.Fatalf("expected progress capped at 1, got %v", model.Progress)
	}

	state = store.State{CurrentTime: 50, Duration: 200}
	if got := RenderChrome(state).Progress; got != 0.25 {
		t.Fatalf("expected progress 0.25, got %v", got)
	}

	// Zero duration never divides.
	state = store.State{CurrentTime: 50}
	if got := RenderChrome(state).Progress; got != 0 {
		t.Fatalf("expected progress 0 without duration, got %v", got)
	}
}

func TestRenderChromeCarriesTrackLabels(t *testing.T) {
	t.Parallel()

	state := store.State{
		CurrentTrack: &sdk.Track{
			Name:     "One More Time",
			Artist:   "Daft Punk",
			Album:    "Discovery",
			CoverURL: "https://cdn/cover.jpg",
		},
		IsPlaying: true,
		Queue:     []sdk.Track{{ID: "a"}, {ID: "b"}},
	}

	model := RenderChrome(state)
	if !model.HasTrack || model.TrackName != "One More Time" || model.TrackArtist != "Daft Punk" {
		t.Fatalf("expected track labels, got %+v", model)
	}
	if model.QueueLength != 2 {
		t.Fatalf("expected queue length 2, got %d", model.QueueLength)
	}

	empty := RenderChrome(store.State{})
	if empty.HasTrack || empty.TrackName != "" {
		t.Fatalf("expected empty chrome without a track, got %+v", empty)
	}
}
