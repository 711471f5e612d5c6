package sdk

// Event names emitted by a playback client.
const (
	EventTrackChange  = "trackchange"
	EventPlay         = "play"
	EventPause        = "pause"
	EventTimeUpdate   = "timeupdate"
	EventVolumeChange = "volumechange"
	EventQueueChange  = "queuechange"
	EventShuffle      = "shufflechange"
	EventRepeat       = "repeatchange"
	EventError        = "error"
	EventLoaded       = "loaded"
)

type TrackChange struct {
	Current  *Track `json:"current"`
	Previous *Track `json:"previous"`
}

type TimeUpdate struct {
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

type QueueChange struct {
	Tracks   []Track `json:"tracks"`
	Position int     `json:"position"`
}

// PlaybackSnapshot is the client's authoritative view of its own state.
type PlaybackSnapshot struct {
	Queue    []Track    `json:"queue"`
	Position int        `json:"position"`
	Current  *Track     `json:"current"`
	Playing  bool       `json:"playing"`
	Volume   float64    `json:"volume"`
	Shuffle  bool       `json:"shuffle"`
	Repeat   RepeatMode `json:"repeat"`
	Time     float64    `json:"time"`
	Duration float64    `json:"duration"`
}

// HandlerFunc receives the payload for the event it was registered on:
// TrackChange, TimeUpdate, QueueChange, *Track, float64, bool, RepeatMode
// or error depending on the event name.
type HandlerFunc func(payload any)

// Client is the playback engine surface the orchestrator drives. Events
// are delivered to registered handlers in registration order; the returned
// off func removes exactly the handler it was issued for and is safe to
// call more than once.
type Client interface {
	Play(track *Track) error
	PlayAt(index int) error
	Pause() error
	Next() error
	Previous() error
	Seek(seconds float64) error
	SetQueue(tracks []Track, startIndex int) error
	AddToQueue(track Track, position *int) error
	SetVolume(volume float64) error
	SetShuffle(enabled bool) error
	ToggleShuffle() error
	SetRepeat(mode RepeatMode) error
	CycleRepeat() error
	State() PlaybackSnapshot
	On(event string, fn HandlerFunc) (off func())
	Close() error
}
