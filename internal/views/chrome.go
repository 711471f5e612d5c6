package views

import (
	"fmt"

	"kaseti/internal/sdk"
	"kaseti/internal/store"
)

// ChromeModel is everything the playback bar needs for one paint.
type ChromeModel struct {
	TrackName   string         `json:"trackName"`
	TrackArtist string         `json:"trackArtist"`
	TrackAlbum  string         `json:"trackAlbum"`
	CoverURL    string         `json:"coverUrl"`
	IsPlaying   bool           `json:"isPlaying"`
	Buffering   bool           `json:"buffering"`
	Position    string         `json:"position"`
	Duration    string         `json:"duration"`
	Progress    float64        `json:"progress"`
	Volume      float64        `json:"volume"`
	IsMuted     bool           `json:"isMuted"`
	Shuffle     bool           `json:"shuffle"`
	Repeat      sdk.RepeatMode `json:"repeat"`
	QueueLength int            `json:"queueLength"`
	QueueIndex  int            `json:"queueIndex"`
	ShowQueue   bool           `json:"showQueue"`
	HasTrack    bool           `json:"hasTrack"`
}

// ChromeController renders the persistent playback bar.
type ChromeController struct {
	store   *store.Store
	emitter Emitter
	stop    func()
}

func NewChromeController(st *store.Store, emitter Emitter) *ChromeController {
	return &ChromeController{store: st, emitter: emitter}
}

func (c *ChromeController) Start() {
	if c.stop != nil {
		return
	}
	c.stop = c.store.Subscribe(func(state store.State) {
		c.emitter(EventChrome, RenderChrome(state))
	})

	c.emitter(EventChrome, RenderChrome(c.store.Get()))
}

func (c *ChromeController) Stop() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}

func (c *ChromeController) Model() ChromeModel {
	return RenderChrome(c.store.Get())
}

func RenderChrome(state store.State) ChromeModel {
	model := ChromeModel{
		IsPlaying:   state.IsPlaying,
		Buffering:   state.Buffering,
		Position:    FormatDuration(state.CurrentTime),
		Duration:    FormatDuration(state.Duration),
		Volume:      state.Volume,
		IsMuted:     state.IsMuted,
		Shuffle:     state.Shuffle,
		Repeat:      state.Repeat,
		QueueLength: len(state.Queue),
		QueueIndex:  state.QueueIndex,
		ShowQueue:   state.ShowQueue,
	}

	if state.Duration > 0 {
		model.Progress = state.CurrentTime / state.Duration
		if model.Progress > 1 {
			model.Progress = 1
		}
	}

	if state.CurrentTrack != nil {
		model.HasTrack = true
		model.TrackName = state.CurrentTrack.Name
		model.TrackArtist = state.CurrentTrack.Artist
		model.TrackAlbum = state.CurrentTrack.Album
		model.CoverURL = state.CurrentTrack.CoverURL
	}

	return model
}

// FormatDuration renders seconds as M:SS, or H:MM:SS past an hour.
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
