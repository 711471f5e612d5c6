package views

import (
	"fmt"
	"sort"
	"strings"

	"kaseti/internal/sdk"
)

// extrasDisc is where heuristically detected bonus material lands when
// the catalog carries no disc metadata for it.
const extrasDisc = 2

var extrasMarkers = []string{"extra", "bonus"}

type DiscGroup struct {
	Disc   int         `json:"disc"`
	Title  string      `json:"title"`
	Tracks []sdk.Track `json:"tracks"`
}

// ResolveDiscNumber reads the disc from whichever metadata field the
// catalog happened to fill, defaulting to disc 1.
func ResolveDiscNumber(track sdk.Track) int {
	switch {
	case track.DiscNumber != nil && *track.DiscNumber > 0:
		return *track.DiscNumber
	case track.Disc != nil && *track.Disc > 0:
		return *track.Disc
	case track.PartPosition != nil && *track.PartPosition > 0:
		return *track.PartPosition
	default:
		return 1
	}
}

// IsExtraTrack is the pragmatic bonus-material heuristic: an "extra" or
// "bonus" substring in the track name, album name, or media URL. It only
// applies to tracks without explicit disc metadata.
func IsExtraTrack(track sdk.Track) bool {
	haystacks := []string{track.Name, track.Album, track.CDNURL}
	if track.Part != nil {
		haystacks = append(haystacks, *track.Part)
	}

	for _, haystack := range haystacks {
		lowered := strings.ToLower(haystack)
		for _, marker := range extrasMarkers {
			if strings.Contains(lowered, marker) {
				return true
			}
		}
	}

	return false
}

func classifyDisc(track sdk.Track) int {
	if track.DiscNumber == nil && track.Disc == nil && track.PartPosition == nil && IsExtraTrack(track) {
		return extrasDisc
	}
	return ResolveDiscNumber(track)
}

// GroupTracksByDisc splits an album's tracks into disc groups, ascending
// by disc with tracks ascending by position inside each group.
func GroupTracksByDisc(tracks []sdk.Track) []DiscGroup {
	byDisc := make(map[int][]sdk.Track)
	for _, track := range tracks {
		disc := classifyDisc(track)
		byDisc[disc] = append(byDisc[disc], track)
	}

	discs := make([]int, 0, len(byDisc))
	for disc := range byDisc {
		discs = append(discs, disc)
	}
	sort.Ints(discs)

	groups := make([]DiscGroup, 0, len(discs))
	for _, disc := range discs {
		grouped := byDisc[disc]
		sort.SliceStable(grouped, func(i, j int) bool {
			return grouped[i].TrackPosition < grouped[j].TrackPosition
		})

		title := fmt.Sprintf("Disc %d", disc)
		if disc == extrasDisc && hasOnlyHeuristicExtras(grouped) {
			title = "Extras"
		}
		groups = append(groups, DiscGroup{Disc: disc, Title: title, Tracks: grouped})
	}

	return groups
}

func hasOnlyHeuristicExtras(tracks []sdk.Track) bool {
	for _, track := range tracks {
		if track.DiscNumber != nil || track.Disc != nil || track.PartPosition != nil {
			return false
		}
	}
	return true
}
