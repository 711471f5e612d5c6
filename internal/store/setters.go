package store

import "kaseti/internal/sdk"

// Convenience setters. Each is a pure wrapper over Set; the only extra
// behavior is the clamping and re-indexing documented on the method.

func (s *Store) SetCurrentTrack(track *sdk.Track) {
	s.Set(Patch{CurrentTrack: &track})
}

func (s *Store) SetPlaying(playing bool) {
	paused := !playing
	s.Set(Patch{IsPlaying: &playing, IsPaused: &paused})
}

// SetVolume clamps to [0,1] and snaps IsMuted true iff the stored volume
// is exactly zero.
func (s *Store) SetVolume(volume float64) {
	clamped := clampVolume(volume)
	muted := clamped == 0
	s.Set(Patch{Volume: &clamped, IsMuted: &muted})
}

// ToggleMute remembers the pre-mute volume and restores it on unmute,
// falling back to the default when the remembered value is zero.
func (s *Store) ToggleMute() {
	s.mu.Lock()
	muted := s.state.IsMuted
	if !muted {
		s.volumeBeforeMute = s.state.Volume
	}
	restore := s.volumeBeforeMute
	s.mu.Unlock()

	if muted {
		if restore == 0 {
			restore = DefaultVolume
		}
		s.SetVolume(restore)
		return
	}
	s.SetVolume(0)
}

func (s *Store) SetShuffle(enabled bool) {
	s.Set(Patch{Shuffle: &enabled})
}

func (s *Store) SetRepeat(mode sdk.RepeatMode) {
	normalized := sdk.NormalizeRepeatMode(string(mode))
	s.Set(Patch{Repeat: &normalized})
}

// CycleRepeat advances off -> all -> one -> off.
func (s *Store) CycleRepeat() {
	next := s.Get().Repeat.Next()
	s.Set(Patch{Repeat: &next})
}

func (s *Store) SetQueue(tracks []sdk.Track, index int) {
	if len(tracks) == 0 {
		index = -1
	} else if index < 0 {
		index = 0
	} else if index >= len(tracks) {
		index = len(tracks) - 1
	}
	s.Set(Patch{Queue: &tracks, QueueIndex: &index})
}

func (s *Store) AddToQueue(track sdk.Track) {
	current := s.Get()
	queue := append(current.Queue, track)
	index := current.QueueIndex
	if index < 0 {
		index = 0
	}
	s.Set(Patch{Queue: &queue, QueueIndex: &index})
}

// RemoveFromQueue drops the track at index and re-indexes QueueIndex when
// the removed slot was at or before it.
func (s *Store) RemoveFromQueue(index int) {
	current := s.Get()
	if index < 0 || index >= len(current.Queue) {
		return
	}

	queue := append(append([]sdk.Track(nil), current.Queue[:index]...), current.Queue[index+1:]...)
	next := current.QueueIndex
	if index <= next {
		next--
	}
	if len(queue) == 0 {
		next = -1
	} else if next < 0 {
		next = 0
	}
	s.Set(Patch{Queue: &queue, QueueIndex: &next})
}

func (s *Store) SetLibraryData(albums []sdk.Album, tracks []sdk.Track, trackers []sdk.TrackerModule, manifest *sdk.Manifest) {
	s.Set(Patch{
		Albums:         &albums,
		Tracks:         &tracks,
		TrackerModules: &trackers,
		Manifest:       &manifest,
	})
}

func (s *Store) SetLoading(loading bool) {
	s.Set(Patch{IsLoading: &loading})
}

func (s *Store) SetError(message string) {
	s.Set(Patch{Error: &message})
}

func (s *Store) SetView(view string) {
	s.Set(Patch{CurrentView: &view})
}

func (s *Store) SetSortBy(sortBy string) {
	s.Set(Patch{SortBy: &sortBy})
}

func (s *Store) SetGenreFilter(genre string) {
	s.Set(Patch{FilterGenre: &genre})
}

func (s *Store) SetSearchQuery(query string) {
	s.Set(Patch{SearchQuery: &query})
}

func (s *Store) ToggleQueuePanel() {
	show := !s.Get().ShowQueue
	s.Set(Patch{ShowQueue: &show})
}

func (s *Store) ToggleNowPlaying() {
	show := !s.Get().ShowNowPlaying
	s.Set(Patch{ShowNowPlaying: &show})
}

func (s *Store) ToggleLyrics() {
	show := !s.Get().ShowLyrics
	s.Set(Patch{ShowLyrics: &show})
}

func clampVolume(volume float64) float64 {
	if volume < 0 {
		return 0
	}
	if volume > 1 {
		return 1
	}
	return volume
}
