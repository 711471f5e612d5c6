package store

import (
	"sync"

	"github.com/sirupsen/logrus"

	"kaseti/internal/sdk"
)

// State is the single authoritative snapshot of playback, library, view
// and UI state. Get returns a copy; callers must not assume it stays live.
type State struct {
	CurrentTrack *sdk.Track     `json:"currentTrack"`
	IsPlaying    bool           `json:"isPlaying"`
	IsPaused     bool           `json:"isPaused"`
	Buffering    bool           `json:"buffering"`
	IsSeeking    bool           `json:"isSeeking"`
	CurrentTime  float64        `json:"currentTime"`
	Duration     float64        `json:"duration"`
	Volume       float64        `json:"volume"`
	IsMuted      bool           `json:"isMuted"`
	Shuffle      bool           `json:"shuffle"`
	Repeat       sdk.RepeatMode `json:"repeat"`
	Queue        []sdk.Track    `json:"queue"`
	QueueIndex   int            `json:"queueIndex"`

	Albums         []sdk.Album         `json:"albums"`
	Tracks         []sdk.Track         `json:"tracks"`
	TrackerModules []sdk.TrackerModule `json:"trackerModules"`
	Manifest       *sdk.Manifest       `json:"manifest"`
	IsLoading      bool                `json:"isLoading"`
	Error          string              `json:"error"`

	CurrentView string `json:"currentView"`
	SortBy      string `json:"sortBy"`
	FilterGenre string `json:"filterGenre"`
	SearchQuery string `json:"searchQuery"`

	ShowQueue      bool `json:"showQueue"`
	ShowNowPlaying bool `json:"showNowPlaying"`
	ShowLyrics     bool `json:"showLyrics"`
}

// Patch is a partial State; nil fields are left untouched by Set.
type Patch struct {
	CurrentTrack      **sdk.Track
	IsPlaying         *bool
	IsPaused          *bool
	Buffering         *bool
	IsSeeking         *bool
	CurrentTime       *float64
	Duration          *float64
	Volume            *float64
	IsMuted           *bool
	Shuffle           *bool
	Repeat            *sdk.RepeatMode
	Queue             *[]sdk.Track
	QueueIndex        *int
	Albums            *[]sdk.Album
	Tracks            *[]sdk.Track
	TrackerModules    *[]sdk.TrackerModule
	Manifest          **sdk.Manifest
	IsLoading         *bool
	Error             *string
	CurrentView       *string
	SortBy            *string
	FilterGenre       *string
	SearchQuery       *string
	ShowQueue         *bool
	ShowNowPlaying    *bool
	ShowLyrics        *bool
}

type Listener func(State)

type registration struct {
	id int
	fn Listener
}

type Store struct {
	mu               sync.Mutex
	state            State
	listeners        []registration
	nextID           int
	volumeBeforeMute float64
	prefs            *PrefRepository
	logger           *logrus.Logger
}

const (
	DefaultVolume = 0.8
	DefaultView   = "albums"
	DefaultSortBy = "release"
)

func defaultState() State {
	return State{
		Volume:      DefaultVolume,
		Repeat:      sdk.RepeatModeOff,
		QueueIndex:  -1,
		CurrentView: DefaultView,
		SortBy:      DefaultSortBy,
	}
}

// NewStore builds a store seeded with defaults overlaid by whatever
// preferences survived in the repository. A nil repository disables
// persistence; corrupt or missing rows fall back to defaults.
func NewStore(prefs *PrefRepository, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Store{
		state:  defaultState(),
		prefs:  prefs,
		logger: logger,
	}

	if prefs != nil {
		restored, err := prefs.Load()
		if err != nil {
			logger.WithError(err).Warn("restore preferences failed, using defaults")
		} else if restored != nil {
			restored.applyTo(&s.state)
		}
	}

	return s
}

// Get returns a copy of the current snapshot.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Set shallow-merges the patch into the snapshot, persists the preference
// subset, and synchronously notifies every listener with the merged
// snapshot before returning. A panicking listener is recovered and logged
// so the remaining listeners still run.
func (s *Store) Set(patch Patch) {
	s.mu.Lock()
	patch.applyTo(&s.state)
	snapshot := s.snapshotLocked()
	targets := make([]registration, len(s.listeners))
	copy(targets, s.listeners)
	s.mu.Unlock()

	s.persist(snapshot)
	s.notify(targets, snapshot)
}

// Subscribe registers a listener and returns an idempotent unsubscribe
// closure. The same function may be subscribed more than once; each
// subscription notifies independently.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, registration{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, reg := range s.listeners {
			if reg.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Reset restores the default snapshot, notifies listeners, and clears
// persisted preferences.
func (s *Store) Reset() {
	s.mu.Lock()
	s.state = defaultState()
	snapshot := s.snapshotLocked()
	targets := make([]registration, len(s.listeners))
	copy(targets, s.listeners)
	s.mu.Unlock()

	if s.prefs != nil {
		if err := s.prefs.Clear(); err != nil {
			s.logger.WithError(err).Warn("clear persisted preferences failed")
		}
	}

	s.notify(targets, snapshot)
}

func (s *Store) snapshotLocked() State {
	snapshot := s.state
	snapshot.Queue = append([]sdk.Track(nil), s.state.Queue...)
	snapshot.Albums = append([]sdk.Album(nil), s.state.Albums...)
	snapshot.Tracks = append([]sdk.Track(nil), s.state.Tracks...)
	snapshot.TrackerModules = append([]sdk.TrackerModule(nil), s.state.TrackerModules...)
	return snapshot
}

func (s *Store) persist(snapshot State) {
	if s.prefs == nil {
		return
	}

	err := s.prefs.Save(Preferences{
		Volume:      snapshot.Volume,
		IsMuted:     snapshot.IsMuted,
		Shuffle:     snapshot.Shuffle,
		Repeat:      snapshot.Repeat,
		CurrentView: snapshot.CurrentView,
		SortBy:      snapshot.SortBy,
	})
	if err != nil {
		s.logger.WithError(err).Warn("persist preferences failed")
	}
}

func (s *Store) notify(targets []registration, snapshot State) {
	for _, reg := range targets {
		s.invoke(reg, snapshot)
	}
}

func (s *Store) invoke(reg registration, snapshot State) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).Error("state listener panicked")
		}
	}()
	reg.fn(snapshot)
}

func (p Patch) applyTo(state *State) {
	if p.CurrentTrack != nil {
		state.CurrentTrack = *p.CurrentTrack
	}
	if p.IsPlaying != nil {
		state.IsPlaying = *p.IsPlaying
	}
	if p.IsPaused != nil {
		state.IsPaused = *p.IsPaused
	}
	if p.Buffering != nil {
		state.Buffering = *p.Buffering
	}
	if p.IsSeeking != nil {
		state.IsSeeking = *p.IsSeeking
	}
	if p.CurrentTime != nil {
		state.CurrentTime = *p.CurrentTime
	}
	if p.Duration != nil {
		state.Duration = *p.Duration
	}
	if p.Volume != nil {
		state.Volume = *p.Volume
	}
	if p.IsMuted != nil {
		state.IsMuted = *p.IsMuted
	}
	if p.Shuffle != nil {
		state.Shuffle = *p.Shuffle
	}
	if p.Repeat != nil {
		state.Repeat = *p.Repeat
	}
	if p.Queue != nil {
		state.Queue = append([]sdk.Track(nil), (*p.Queue)...)
	}
	if p.QueueIndex != nil {
		state.QueueIndex = *p.QueueIndex
	}
	if p.Albums != nil {
		state.Albums = append([]sdk.Album(nil), (*p.Albums)...)
	}
	if p.Tracks != nil {
		state.Tracks = append([]sdk.Track(nil), (*p.Tracks)...)
	}
	if p.TrackerModules != nil {
		state.TrackerModules = append([]sdk.TrackerModule(nil), (*p.TrackerModules)...)
	}
	if p.Manifest != nil {
		state.Manifest = *p.Manifest
	}
	if p.IsLoading != nil {
		state.IsLoading = *p.IsLoading
	}
	if p.Error != nil {
		state.Error = *p.Error
	}
	if p.CurrentView != nil {
		state.CurrentView = *p.CurrentView
	}
	if p.SortBy != nil {
		state.SortBy = *p.SortBy
	}
	if p.FilterGenre != nil {
		state.FilterGenre = *p.FilterGenre
	}
	if p.SearchQuery != nil {
		state.SearchQuery = *p.SearchQuery
	}
	if p.ShowQueue != nil {
		state.ShowQueue = *p.ShowQueue
	}
	if p.ShowNowPlaying != nil {
		state.ShowNowPlaying = *p.ShowNowPlaying
	}
	if p.ShowLyrics != nil {
		state.ShowLyrics = *p.ShowLyrics
	}
}
