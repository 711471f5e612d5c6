package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"kaseti/internal/sdk"
)

const (
	defaultVolume          = 1.0
	restartThresholdSecond = 3.0
)

var ErrNoTrackLoaded = errors.New("no track loaded")

var _ sdk.Client = (*Service)(nil)

type emission struct {
	event   string
	payload any
}

type handlerEntry struct {
	id int
	fn sdk.HandlerFunc
}

// Service is the local playback engine behind the sdk.Client contract.
// Queue math, repeat and shuffle live here; the audio itself is delegated
// to a playbackBackend.
type Service struct {
	logger  *logrus.Logger
	backend playbackBackend

	mu           sync.Mutex
	queue        []sdk.Track
	index        int
	playing      bool
	volume       float64
	shuffle      bool
	shuffleOrder []int
	repeat       sdk.RepeatMode
	position     float64
	duration     float64
	rng          *rand.Rand

	handlersMu    sync.RWMutex
	handlers      map[string][]handlerEntry
	nextHandlerID int

	tickStop chan struct{}
	tickDone chan struct{}
}

func New(logger *logrus.Logger) (*Service, error) {
	backend, err := newPlaybackBackend()
	if err != nil {
		return nil, fmt.Errorf("create playback backend: %w", err)
	}

	return newService(backend, logger), nil
}

func newService(backend playbackBackend, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Service{
		logger:   logger,
		backend:  backend,
		index:    -1,
		volume:   defaultVolume,
		repeat:   sdk.RepeatModeOff,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		handlers: make(map[string][]handlerEntry),
		tickStop: make(chan struct{}),
		tickDone: make(chan struct{}),
	}

	backend.SetOnEOF(s.handleEOF)
	go s.tick()

	return s
}

func (s *Service) On(event string, fn sdk.HandlerFunc) func() {
	s.handlersMu.Lock()
	s.nextHandlerID++
	id := s.nextHandlerID
	s.handlers[event] = append(s.handlers[event], handlerEntry{id: id, fn: fn})
	s.handlersMu.Unlock()

	return func() {
		s.handlersMu.Lock()
		defer s.handlersMu.Unlock()
		entries := s.handlers[event]
		for i, entry := range entries {
			if entry.id == id {
				s.handlers[event] = append(entries[:i], entries[i+1:]...)
				return
			}
		}
	}
}

func (s *Service) State() sdk.PlaybackSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sdk.PlaybackSnapshot{
		Queue:    append([]sdk.Track(nil), s.queue...),
		Position: s.index,
		Current:  s.currentLocked(),
		Playing:  s.playing,
		Volume:   s.volume,
		Shuffle:  s.shuffle,
		Repeat:   s.repeat,
		Time:     s.position,
		Duration: s.duration,
	}
}

// Play with a nil track resumes the loaded one position-preserving. With a
// track it jumps to that track in the queue, inserting it after the
// current slot when it is not queued yet.
func (s *Service) Play(track *sdk.Track) error {
	if track == nil {
		return s.resume()
	}

	s.mu.Lock()
	target := -1
	for i, queued := range s.queue {
		if queued.ID == track.ID {
			target = i
			break
		}
	}
	if target == -1 {
		target = s.index + 1
		if target > len(s.queue) {
			target = len(s.queue)
		}
		s.queue = append(s.queue[:target], append([]sdk.Track{*track}, s.queue[target:]...)...)
		s.reshuffleLocked()
	}
	s.mu.Unlock()

	return s.PlayAt(target)
}

func (s *Service) resume() error {
	s.mu.Lock()
	if s.currentLocked() == nil {
		s.mu.Unlock()
		return ErrNoTrackLoaded
	}
	if err := s.backend.Play(); err != nil {
		s.mu.Unlock()
		s.emit(sdk.EventError, err)
		return err
	}
	s.playing = true
	current := s.currentLocked()
	s.mu.Unlock()

	s.emit(sdk.EventPlay, current)
	return nil
}

func (s *Service) PlayAt(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.queue) {
		s.mu.Unlock()
		return fmt.Errorf("queue index %d out of range", index)
	}

	emissions, err := s.startTrackLocked(index)
	s.mu.Unlock()

	s.emitAll(emissions)
	return err
}

func (s *Service) Pause() error {
	s.mu.Lock()
	if err := s.backend.Pause(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.playing = false
	s.mu.Unlock()

	s.emit(sdk.EventPause, nil)
	return nil
}

func (s *Service) Next() error {
	s.mu.Lock()
	target, ok := s.nextIndexLocked()
	if !ok {
		emissions := s.stopLocked()
		s.mu.Unlock()
		s.emitAll(emissions)
		return nil
	}

	emissions, err := s.startTrackLocked(target)
	s.mu.Unlock()

	s.emitAll(emissions)
	return err
}

// Previous restarts the current track when more than a few seconds in,
// otherwise steps back (wrapping under repeat-all).
func (s *Service) Previous() error {
	s.mu.Lock()
	if s.currentLocked() == nil {
		s.mu.Unlock()
		return ErrNoTrackLoaded
	}

	if s.position > restartThresholdSecond || s.index == 0 && s.repeat != sdk.RepeatModeAll {
		emissions, err := s.restartCurrentLocked()
		s.mu.Unlock()
		s.emitAll(emissions)
		return err
	}

	target := s.index - 1
	if target < 0 {
		target = len(s.queue) - 1
	}

	emissions, err := s.startTrackLocked(target)
	s.mu.Unlock()

	s.emitAll(emissions)
	return err
}

func (s *Service) Seek(seconds float64) error {
	s.mu.Lock()
	if s.currentLocked() == nil {
		s.mu.Unlock()
		return ErrNoTrackLoaded
	}

	if seconds < 0 {
		seconds = 0
	}
	if s.duration > 0 && seconds > s.duration {
		seconds = s.duration
	}

	if err := s.backend.Seek(seconds); err != nil {
		s.mu.Unlock()
		return err
	}
	s.position = seconds
	update := sdk.TimeUpdate{Position: s.position, Duration: s.duration}
	s.mu.Unlock()

	s.emit(sdk.EventTimeUpdate, update)
	return nil
}

func (s *Service) SetQueue(tracks []sdk.Track, startIndex int) error {
	s.mu.Lock()
	s.queue = append([]sdk.Track(nil), tracks...)

	var loadErr error
	if len(s.queue) == 0 {
		s.index = -1
		s.playing = false
		s.position = 0
		s.duration = 0
		loadErr = s.backend.Stop()
	} else {
		if startIndex < 0 {
			startIndex = 0
		}
		if startIndex >= len(s.queue) {
			startIndex = len(s.queue) - 1
		}
		s.index = startIndex
		s.playing = false
		s.position = 0
		track := s.queue[s.index]
		s.duration = track.Duration
		loadErr = s.backend.Load(track.CDNURL)
	}
	s.reshuffleLocked()
	change := sdk.QueueChange{Tracks: append([]sdk.Track(nil), s.queue...), Position: s.index}
	s.mu.Unlock()

	s.emit(sdk.EventQueueChange, change)
	if loadErr != nil {
		s.emit(sdk.EventError, loadErr)
		return loadErr
	}

	return nil
}

func (s *Service) AddToQueue(track sdk.Track, position *int) error {
	s.mu.Lock()
	at := len(s.queue)
	if position != nil {
		at = *position
		if at < 0 {
			at = 0
		}
		if at > len(s.queue) {
			at = len(s.queue)
		}
	}

	s.queue = append(s.queue[:at], append([]sdk.Track{track}, s.queue[at:]...)...)
	if at <= s.index {
		s.index++
	}
	if s.index < 0 {
		s.index = 0
	}
	s.reshuffleLocked()
	change := sdk.QueueChange{Tracks: append([]sdk.Track(nil), s.queue...), Position: s.index}
	s.mu.Unlock()

	s.emit(sdk.EventQueueChange, change)
	return nil
}

func (s *Service) SetVolume(volume float64) error {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}

	s.mu.Lock()
	if err := s.backend.SetVolume(volume * 100); err != nil {
		s.mu.Unlock()
		return err
	}
	s.volume = volume
	s.mu.Unlock()

	s.emit(sdk.EventVolumeChange, volume)
	return nil
}

func (s *Service) SetShuffle(enabled bool) error {
	s.mu.Lock()
	if s.shuffle == enabled {
		s.mu.Unlock()
		return nil
	}
	s.shuffle = enabled
	s.reshuffleLocked()
	s.mu.Unlock()

	s.emit(sdk.EventShuffle, enabled)
	return nil
}

func (s *Service) ToggleShuffle() error {
	return s.SetShuffle(!s.State().Shuffle)
}

func (s *Service) SetRepeat(mode sdk.RepeatMode) error {
	normalized := sdk.NormalizeRepeatMode(string(mode))

	s.mu.Lock()
	if s.repeat == normalized {
		s.mu.Unlock()
		return nil
	}
	s.repeat = normalized
	s.mu.Unlock()

	s.emit(sdk.EventRepeat, normalized)
	return nil
}

func (s *Service) CycleRepeat() error {
	return s.SetRepeat(s.State().Repeat.Next())
}

func (s *Service) Close() error {
	close(s.tickStop)
	<-s.tickDone
	return s.backend.Close()
}

func (s *Service) currentLocked() *sdk.Track {
	if s.index < 0 || s.index >= len(s.queue) {
		return nil
	}
	track := s.queue[s.index]
	return &track
}

// startTrackLocked loads and starts the track at index; the caller emits
// the returned events after releasing the lock.
func (s *Service) startTrackLocked(index int) ([]emission, error) {
	previous := s.currentLocked()
	track := s.queue[index]

	if err := s.backend.Load(track.CDNURL); err != nil {
		return []emission{{sdk.EventError, err}}, err
	}
	if err := s.backend.Play(); err != nil {
		return []emission{{sdk.EventError, err}}, err
	}

	s.index = index
	s.playing = true
	s.position = 0
	s.duration = track.Duration
	current := s.currentLocked()

	return []emission{
		{sdk.EventTrackChange, sdk.TrackChange{Current: current, Previous: previous}},
		{sdk.EventLoaded, current},
		{sdk.EventPlay, current},
	}, nil
}

func (s *Service) restartCurrentLocked() ([]emission, error) {
	if err := s.backend.Seek(0); err != nil {
		return nil, err
	}
	if err := s.backend.Play(); err != nil {
		return nil, err
	}
	s.position = 0
	s.playing = true

	return []emission{
		{sdk.EventTimeUpdate, sdk.TimeUpdate{Position: 0, Duration: s.duration}},
		{sdk.EventPlay, s.currentLocked()},
	}, nil
}

func (s *Service) stopLocked() []emission {
	s.playing = false
	s.position = 0
	if err := s.backend.Pause(); err != nil {
		s.logger.WithError(err).Warn("pause backend at queue end")
	}

	return []emission{{sdk.EventPause, nil}}
}

// nextIndexLocked resolves where Next lands; ok=false means the queue is
// exhausted and playback should stop.
func (s *Service) nextIndexLocked() (int, bool) {
	if len(s.queue) == 0 {
		return 0, false
	}

	if s.shuffle {
		pos := 0
		for i, queued := range s.shuffleOrder {
			if queued == s.index {
				pos = i
				break
			}
		}
		if pos+1 < len(s.shuffleOrder) {
			return s.shuffleOrder[pos+1], true
		}
		if s.repeat == sdk.RepeatModeAll {
			s.reshuffleLocked()
			return s.shuffleOrder[0], true
		}
		return 0, false
	}

	if s.index+1 < len(s.queue) {
		return s.index + 1, true
	}
	if s.repeat == sdk.RepeatModeAll {
		return 0, true
	}

	return 0, false
}

// reshuffleLocked regenerates the shuffle traversal, keeping the current
// track first so enabling shuffle never skips it.
func (s *Service) reshuffleLocked() {
	if !s.shuffle || len(s.queue) == 0 {
		s.shuffleOrder = nil
		return
	}

	s.shuffleOrder = s.rng.Perm(len(s.queue))
	if s.index < 0 {
		return
	}
	for i, queued := range s.shuffleOrder {
		if queued == s.index {
			s.shuffleOrder[0], s.shuffleOrder[i] = s.shuffleOrder[i], s.shuffleOrder[0]
			return
		}
	}
}

func (s *Service) handleEOF() {
	s.mu.Lock()
	var emissions []emission
	var err error

	switch {
	case s.repeat == sdk.RepeatModeOne && s.currentLocked() != nil:
		emissions, err = s.restartCurrentLocked()
	default:
		if target, ok := s.nextIndexLocked(); ok {
			emissions, err = s.startTrackLocked(target)
		} else {
			emissions = s.stopLocked()
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.WithError(err).Warn("advance after track end")
	}
	s.emitAll(emissions)
}

func (s *Service) tick() {
	defer close(s.tickDone)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.tickStop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if !s.playing {
				s.mu.Unlock()
				continue
			}
			if position, ok, err := s.backend.Position(); err == nil && ok {
				s.position = position
			} else {
				s.position++
			}
			if duration, ok, err := s.backend.Duration(); err == nil && ok {
				s.duration = duration
			}
			update := sdk.TimeUpdate{Position: s.position, Duration: s.duration}
			s.mu.Unlock()

			s.emit(sdk.EventTimeUpdate, update)
		}
	}
}

func (s *Service) emit(event string, payload any) {
	s.handlersMu.RLock()
	entries := append([]handlerEntry(nil), s.handlers[event]...)
	s.handlersMu.RUnlock()

	for _, entry := range entries {
		entry.fn(payload)
	}
}

func (s *Service) emitAll(emissions []emission) {
	for _, e := range emissions {
		s.emit(e.event, e.payload)
	}
}
