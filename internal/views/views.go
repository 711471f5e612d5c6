package views

// Emitter delivers a freshly rendered view model to the frontend.
type Emitter func(eventName string, payload any)

// View model event names.
const (
	EventAlbumGrid   = "views:albums"
	EventTrackList   = "views:tracks"
	EventChrome      = "views:chrome"
	EventAlbumDetail = "views:album-detail"
)

// View names as stored in state.CurrentView.
const (
	ViewAlbums   = "albums"
	ViewTracks   = "tracks"
	ViewTrackers = "trackers"
)
