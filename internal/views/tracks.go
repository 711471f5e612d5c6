package views

import (
	"github.com/sirupsen/logrus"

	"kaseti/internal/sdk"
	"kaseti/internal/store"
)

type TrackRow struct {
	Track     sdk.Track `json:"track"`
	Index     int       `json:"index"`
	IsCurrent bool      `json:"isCurrent"`
	IsPlaying bool      `json:"isPlaying"`
	Duration  string    `json:"duration"`
}

type TrackListModel struct {
	Rows       []TrackRow `json:"rows"`
	SortBy     string     `json:"sortBy"`
	Order      SortOrder  `json:"order"`
	Query      string     `json:"query"`
	Empty      bool       `json:"empty"`
	TotalCount int        `json:"totalCount"`
}

// TrackController renders the flat track list.
type TrackController struct {
	store   *store.Store
	emitter Emitter
	logger  *logrus.Logger
	order   SortOrder
	stop    func()
}

func NewTrackController(st *store.Store, emitter Emitter, logger *logrus.Logger) *TrackController {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &TrackController{store: st, emitter: emitter, logger: logger, order: SortAsc}
}

func (c *TrackController) Start() {
	if c.stop != nil {
		return
	}
	c.stop = c.store.Subscribe(func(state store.State) {
		if state.CurrentView != ViewTracks {
			return
		}
		c.emitter(EventTrackList, c.render(state))
	})

	c.emitter(EventTrackList, c.render(c.store.Get()))
}

func (c *TrackController) Stop() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}

// SetOrder flips ascending/descending and re-renders.
func (c *TrackController) SetOrder(order SortOrder) {
	if order != SortDesc {
		order = SortAsc
	}
	c.order = order
	c.emitter(EventTrackList, c.render(c.store.Get()))
}

func (c *TrackController) Model() TrackListModel {
	return c.render(c.store.Get())
}

func (c *TrackController) render(state store.State) TrackListModel {
	filtered := FilterTracks(state.Tracks, state.SearchQuery, state.FilterGenre)
	sorted := SortTracks(filtered, state.SortBy, c.order)

	currentID := ""
	if state.CurrentTrack != nil {
		currentID = state.CurrentTrack.ID
	}

	rows := make([]TrackRow, 0, len(sorted))
	for i, track := range sorted {
		rows = append(rows, TrackRow{
			Track:     track,
			Index:     i,
			IsCurrent: currentID != "" && track.ID == currentID,
			IsPlaying: state.IsPlaying && currentID != "" && track.ID == currentID,
			Duration:  FormatDuration(track.Duration),
		})
	}

	return TrackListModel{
		Rows:       rows,
		SortBy:     state.SortBy,
		Order:      c.order,
		Query:      state.SearchQuery,
		Empty:      len(rows) == 0,
		TotalCount: len(state.Tracks),
	}
}
