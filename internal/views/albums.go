package views

import (
	"github.com/sirupsen/logrus"

	"kaseti/internal/sdk"
	"kaseti/internal/store"
)

type AlbumCard struct {
	Album     sdk.Album `json:"album"`
	IsPlaying bool      `json:"isPlaying"`
}

type AlbumGridModel struct {
	Cards      []AlbumCard `json:"cards"`
	SortBy     string      `json:"sortBy"`
	Query      string      `json:"query"`
	Empty      bool        `json:"empty"`
	TotalCount int         `json:"totalCount"`
}

type AlbumDetailModel struct {
	Album      sdk.Album   `json:"album"`
	Discs      []DiscGroup `json:"discs"`
	TrackCount int         `json:"trackCount"`
}

// AlbumController renders the album grid from store state. It holds no
// display state of its own; every notification re-derives the full model.
type AlbumController struct {
	store   *store.Store
	emitter Emitter
	logger  *logrus.Logger
	stop    func()
}

func NewAlbumController(st *store.Store, emitter Emitter, logger *logrus.Logger) *AlbumController {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &AlbumController{store: st, emitter: emitter, logger: logger}
}

// Start registers the controller's single store subscription.
func (c *AlbumController) Start() {
	if c.stop != nil {
		return
	}
	c.stop = c.store.Subscribe(func(state store.State) {
		if state.CurrentView != ViewAlbums {
			return
		}
		c.emitter(EventAlbumGrid, c.render(state))
	})

	c.emitter(EventAlbumGrid, c.render(c.store.Get()))
}

// Stop drops the subscription; safe to call twice.
func (c *AlbumController) Stop() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}

func (c *AlbumController) Model() AlbumGridModel {
	return c.render(c.store.Get())
}

func (c *AlbumController) render(state store.State) AlbumGridModel {
	filtered := FilterAlbums(state.Albums, state.SearchQuery, state.FilterGenre)
	sorted := SortAlbums(filtered, state.SortBy, SortDesc)

	playingAlbum := ""
	if state.IsPlaying && state.CurrentTrack != nil {
		playingAlbum = state.CurrentTrack.AlbumID
	}

	cards := make([]AlbumCard, 0, len(sorted))
	for _, album := range sorted {
		cards = append(cards, AlbumCard{
			Album:     album,
			IsPlaying: playingAlbum != "" && album.ID == playingAlbum,
		})
	}

	return AlbumGridModel{
		Cards:      cards,
		SortBy:     state.SortBy,
		Query:      state.SearchQuery,
		Empty:      len(cards) == 0,
		TotalCount: len(state.Albums),
	}
}

// Detail renders one album's grouped track list.
func (c *AlbumController) Detail(albumID string) (AlbumDetailModel, bool) {
	state := c.store.Get()

	var album *sdk.Album
	for i := range state.Albums {
		if state.Albums[i].ID == albumID {
			album = &state.Albums[i]
			break
		}
	}
	if album == nil {
		return AlbumDetailModel{}, false
	}

	albumTracks := make([]sdk.Track, 0)
	for _, track := range state.Tracks {
		if track.AlbumID == albumID {
			albumTracks = append(albumTracks, track)
		}
	}

	discs := GroupTracksByDisc(albumTracks)
	return AlbumDetailModel{
		Album:      *album,
		Discs:      discs,
		TrackCount: len(albumTracks),
	}, true
}
