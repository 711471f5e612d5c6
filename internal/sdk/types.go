package sdk

import "strings"

type RepeatMode string

const (
	RepeatModeOff RepeatMode = "off"
	RepeatModeAll RepeatMode = "all"
	RepeatModeOne RepeatMode = "one"
)

// Next advances off -> all -> one -> off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatModeOff:
		return RepeatModeAll
	case RepeatModeAll:
		return RepeatModeOne
	default:
		return RepeatModeOff
	}
}

func NormalizeRepeatMode(raw string) RepeatMode {
	switch RepeatMode(strings.ToLower(strings.TrimSpace(raw))) {
	case RepeatModeAll:
		return RepeatModeAll
	case RepeatModeOne:
		return RepeatModeOne
	default:
		return RepeatModeOff
	}
}

// Track is immutable reference data once the library is loaded. The disc
// fields are all optional because the catalog is inconsistent about which
// one it fills in.
type Track struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Artist        string   `json:"artist"`
	Album         string   `json:"album"`
	AlbumID       string   `json:"albumId"`
	Genre         string   `json:"genre,omitempty"`
	Year          int      `json:"year,omitempty"`
	Duration      float64  `json:"duration"`
	TrackPosition int      `json:"track_position,omitempty"`
	DiscNumber    *int     `json:"disc_number,omitempty"`
	Disc          *int     `json:"disc,omitempty"`
	Part          *string  `json:"part,omitempty"`
	PartPosition  *int     `json:"part_position,omitempty"`
	CDNURL        string   `json:"cdn_url"`
	CoverURL      string   `json:"cover_url,omitempty"`
}

// Playable reports whether the track carries a usable media reference.
func (t Track) Playable() bool {
	return strings.TrimSpace(t.CDNURL) != ""
}

type Album struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Genre      string `json:"genre,omitempty"`
	Year       int    `json:"year,omitempty"`
	CoverURL   string `json:"cover_url,omitempty"`
	TrackCount int    `json:"track_count,omitempty"`
}

type TrackerModule struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Format string `json:"format,omitempty"`
	CDNURL string `json:"cdn_url"`
}

type Manifest struct {
	Version     string `json:"version"`
	GeneratedAt string `json:"generated_at"`
	AlbumCount  int    `json:"album_count"`
	TrackCount  int    `json:"track_count"`
}
