package player

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"kaseti/internal/notify"
	"kaseti/internal/sdk"
	"kaseti/internal/store"
)

const volumeStep = 0.1

// Engine errors matching these substrings are transient noise (gapless
// transitions, media-session chatter) and must never reach the user or
// the store.
var nonFatalErrorPatterns = []string{
	"aborted by the user agent",
	"gapless",
	"audio error: undefined",
	"invalid uri",
	"load of media resource",
	"invalid position",
	"mediasession",
}

var (
	ErrNotPlayable   = errors.New("track has no playable media reference")
	ErrEmptyQueue    = errors.New("no playable tracks in queue")
	ErrIndexOutRange = errors.New("queue index out of range")
)

// Controller is the sole caller of the playback client and the single
// point translating its events into store updates.
type Controller struct {
	client sdk.Client
	store  *store.Store
	toasts *notify.Center
	logger *logrus.Logger

	mu               sync.Mutex
	initialized      bool
	offs             []func()
	volumeBeforeMute float64
}

func NewController(client sdk.Client, st *store.Store, toasts *notify.Center, logger *logrus.Logger) *Controller {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Controller{
		client: client,
		store:  st,
		toasts: toasts,
		logger: logger,
	}
}

// Init registers every event handler and performs the two-way preference
// sync: persisted repeat/shuffle/volume are pushed into the client, then
// the client's resulting state is pulled back. The store queue is
// overwritten only when the client reports a non-empty queue, so a
// restored queue does not flash empty. Init is idempotent.
func (c *Controller) Init() {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		c.logger.Debug("player controller already initialized")
		return
	}
	c.initialized = true
	c.mu.Unlock()

	c.bindHandlers()

	prefs := c.store.Get()
	if err := c.client.SetRepeat(prefs.Repeat); err != nil {
		c.logger.WithError(err).Warn("push repeat preference")
	}
	if err := c.client.SetShuffle(prefs.Shuffle); err != nil {
		c.logger.WithError(err).Warn("push shuffle preference")
	}
	if err := c.client.SetVolume(prefs.Volume); err != nil {
		c.logger.WithError(err).Warn("push volume preference")
	}

	snap := c.client.State()
	muted := snap.Volume == 0
	patch := store.Patch{
		Volume:  &snap.Volume,
		IsMuted: &muted,
		Shuffle: &snap.Shuffle,
		Repeat:  &snap.Repeat,
	}
	if len(snap.Queue) > 0 {
		patch.Queue = &snap.Queue
		patch.QueueIndex = &snap.Position
		patch.CurrentTrack = &snap.Current
	}
	c.store.Set(patch)
}

// Close removes every registered handler.
func (c *Controller) Close() {
	c.mu.Lock()
	offs := c.offs
	c.offs = nil
	c.initialized = false
	c.mu.Unlock()

	for _, off := range offs {
		off()
	}
}

func (c *Controller) bindHandlers() {
	offs := []func(){
		c.client.On(sdk.EventTrackChange, c.onTrackChange),
		c.client.On(sdk.EventPlay, c.onPlay),
		c.client.On(sdk.EventPause, c.onPause),
		c.client.On(sdk.EventTimeUpdate, c.onTimeUpdate),
		c.client.On(sdk.EventVolumeChange, c.onVolumeChange),
		c.client.On(sdk.EventShuffle, c.onShuffleChange),
		c.client.On(sdk.EventRepeat, c.onRepeatChange),
		c.client.On(sdk.EventQueueChange, c.onQueueChange),
		c.client.On(sdk.EventError, c.onError),
		c.client.On(sdk.EventLoaded, c.onLoaded),
	}

	c.mu.Lock()
	c.offs = append(c.offs, offs...)
	c.mu.Unlock()
}

func (c *Controller) onTrackChange(payload any) {
	change, ok := payload.(sdk.TrackChange)
	if !ok || change.Current == nil {
		return
	}

	index := c.client.State().Position
	playing := true
	paused := false
	c.store.Set(store.Patch{
		CurrentTrack: &change.Current,
		IsPlaying:    &playing,
		IsPaused:     &paused,
		QueueIndex:   &index,
	})
}

func (c *Controller) onPlay(payload any) {
	track, _ := payload.(*sdk.Track)

	state := c.store.Get()
	playing := true
	paused := false
	patch := store.Patch{IsPlaying: &playing, IsPaused: &paused}
	if track != nil && (state.CurrentTrack == nil || state.CurrentTrack.ID != track.ID) {
		patch.CurrentTrack = &track
	}
	c.store.Set(patch)
}

func (c *Controller) onPause(any) {
	c.store.SetPlaying(false)
}

// onTimeUpdate stores the reported position verbatim. A position that
// snaps back near zero while the stored time was past a second is logged
// as a suspicious upstream glitch but still trusted.
func (c *Controller) onTimeUpdate(payload any) {
	update, ok := payload.(sdk.TimeUpdate)
	if !ok {
		return
	}

	state := c.store.Get()
	if update.Position < 0.5 && state.CurrentTime > 1 {
		c.logger.WithFields(logrus.Fields{
			"reported": update.Position,
			"stored":   state.CurrentTime,
		}).Warn("suspicious backward time jump")
	}

	patch := store.Patch{
		CurrentTime: &update.Position,
		Duration:    &update.Duration,
	}
	if state.IsSeeking && abs(update.Position-state.CurrentTime) < 1 {
		seeking := false
		patch.IsSeeking = &seeking
	}
	c.store.Set(patch)
}

func (c *Controller) onVolumeChange(payload any) {
	volume, ok := payload.(float64)
	if !ok {
		return
	}

	muted := volume == 0
	c.store.Set(store.Patch{Volume: &volume, IsMuted: &muted})
}

func (c *Controller) onShuffleChange(payload any) {
	if enabled, ok := payload.(bool); ok {
		c.store.SetShuffle(enabled)
	}
}

func (c *Controller) onRepeatChange(payload any) {
	if mode, ok := payload.(sdk.RepeatMode); ok {
		c.store.SetRepeat(mode)
	}
}

// onQueueChange writes the store only when the queue materially changed:
// same length, same position, same track at that position means no-op.
func (c *Controller) onQueueChange(payload any) {
	change, ok := payload.(sdk.QueueChange)
	if !ok {
		return
	}

	state := c.store.Get()
	if len(change.Tracks) == len(state.Queue) && change.Position == state.QueueIndex {
		if change.Position < 0 || trackIDAt(change.Tracks, change.Position) == trackIDAt(state.Queue, state.QueueIndex) {
			return
		}
	}

	c.store.Set(store.Patch{Queue: &change.Tracks, QueueIndex: &change.Position})
}

func (c *Controller) onError(payload any) {
	err, ok := payload.(error)
	if !ok || err == nil {
		return
	}

	message := err.Error()
	if isNonFatalError(message) {
		c.logger.WithField("cause", message).Warn("transient playback error")
		return
	}

	c.logger.WithError(err).Error("playback error")
	c.toasts.Error("Playback error: " + message)

	playing := false
	paused := true
	c.store.Set(store.Patch{Error: &message, IsPlaying: &playing, IsPaused: &paused})
}

func (c *Controller) onLoaded(any) {
	buffering := false
	c.store.Set(store.Patch{Buffering: &buffering})
}

// Play starts an explicit track. Buffering is flagged optimistically and
// cleared again if the client rejects the call.
func (c *Controller) Play(track sdk.Track) error {
	if !track.Playable() {
		return c.fail("play", ErrNotPlayable)
	}

	buffering := true
	c.store.Set(store.Patch{Buffering: &buffering})

	if err := c.client.Play(&track); err != nil {
		buffering = false
		c.store.Set(store.Patch{Buffering: &buffering})
		return c.fail("play", err)
	}

	return nil
}

func (c *Controller) Pause() error {
	if err := c.client.Pause(); err != nil {
		return c.fail("pause", err)
	}
	return nil
}

// TogglePlay resumes position-preserving when a track is loaded; with
// nothing loaded it is a no-op.
func (c *Controller) TogglePlay() error {
	state := c.store.Get()
	if state.IsPlaying {
		return c.Pause()
	}
	if state.CurrentTrack == nil {
		return nil
	}

	if err := c.client.Play(nil); err != nil {
		return c.fail("resume", err)
	}
	return nil
}

func (c *Controller) Next() error {
	if err := c.client.Next(); err != nil {
		return c.fail("next", err)
	}
	return nil
}

func (c *Controller) Previous() error {
	if err := c.client.Previous(); err != nil {
		return c.fail("previous", err)
	}
	return nil
}

// Seek clamps into [0, duration] and marks IsSeeking; the flag is cleared
// by the timeupdate handler once the client's report converges, not here.
func (c *Controller) Seek(position float64) error {
	state := c.store.Get()
	if position < 0 {
		position = 0
	}
	if state.Duration > 0 && position > state.Duration {
		position = state.Duration
	}

	seeking := true
	c.store.Set(store.Patch{IsSeeking: &seeking})

	if err := c.client.Seek(position); err != nil {
		seeking = false
		c.store.Set(store.Patch{IsSeeking: &seeking})
		return c.fail("seek", err)
	}

	return nil
}

func (c *Controller) SeekRelative(delta float64) error {
	return c.Seek(c.store.Get().CurrentTime + delta)
}

// SetQueue filters unplayable tracks, hands the rest to the client, and
// verifies the client kept a non-empty queue. With autoPlay it starts the
// track at the client's resulting position, which may differ from
// startIndex when the client shuffles.
func (c *Controller) SetQueue(tracks []sdk.Track, startIndex int, autoPlay bool) error {
	playable := make([]sdk.Track, 0, len(tracks))
	for _, track := range tracks {
		if !track.Playable() {
			c.logger.WithFields(logrus.Fields{
				"track": track.Name,
				"id":    track.ID,
			}).Warn("dropping track without media reference")
			continue
		}
		playable = append(playable, track)
	}

	if len(playable) == 0 {
		return c.fail("set queue", ErrEmptyQueue)
	}

	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex >= len(playable) {
		startIndex = len(playable) - 1
	}

	if err := c.client.SetQueue(playable, startIndex); err != nil {
		return c.fail("set queue", err)
	}

	snap := c.client.State()
	if len(snap.Queue) == 0 {
		return c.fail("set queue", errors.New("client dropped the entire queue"))
	}

	if autoPlay {
		if err := c.client.PlayAt(snap.Position); err != nil {
			return c.fail("set queue", err)
		}
	}

	return nil
}

func (c *Controller) PlayAlbum(tracks []sdk.Track) error {
	return c.SetQueue(tracks, 0, true)
}

// JumpTo plays the queued track at index. Under repeat-all the queue is
// rotated so the chosen track becomes the new effective start instead of
// leaving already-played tracks ahead of it in the cycle.
func (c *Controller) JumpTo(index int) error {
	snap := c.client.State()
	if index < 0 || index >= len(snap.Queue) {
		return c.fail("jump", fmt.Errorf("%w: %d", ErrIndexOutRange, index))
	}

	if snap.Repeat == sdk.RepeatModeAll && index > 0 {
		rotated := append(append([]sdk.Track(nil), snap.Queue[index:]...), snap.Queue[:index]...)
		if err := c.client.SetQueue(rotated, 0); err != nil {
			return c.fail("jump", err)
		}
		if err := c.client.PlayAt(0); err != nil {
			return c.fail("jump", err)
		}
		return nil
	}

	if err := c.client.PlayAt(index); err != nil {
		return c.fail("jump", err)
	}
	return nil
}

func (c *Controller) AddToQueue(track sdk.Track) error {
	if !track.Playable() {
		return c.fail("queue track", ErrNotPlayable)
	}

	if err := c.client.AddToQueue(track, nil); err != nil {
		return c.fail("queue track", err)
	}
	return nil
}

// PlayNext inserts the track right after the current queue position.
func (c *Controller) PlayNext(track sdk.Track) error {
	if !track.Playable() {
		return c.fail("play next", ErrNotPlayable)
	}

	position := c.client.State().Position + 1
	if err := c.client.AddToQueue(track, &position); err != nil {
		return c.fail("play next", err)
	}
	return nil
}

func (c *Controller) SetVolume(volume float64) error {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}

	if err := c.client.SetVolume(volume); err != nil {
		return c.fail("set volume", err)
	}
	return nil
}

func (c *Controller) VolumeUp() error {
	return c.SetVolume(c.store.Get().Volume + volumeStep)
}

func (c *Controller) VolumeDown() error {
	return c.SetVolume(c.store.Get().Volume - volumeStep)
}

// ToggleMute remembers the pre-mute volume and restores it on unmute,
// falling back to the default when the remembered value is zero.
func (c *Controller) ToggleMute() error {
	state := c.store.Get()

	if state.IsMuted {
		c.mu.Lock()
		restore := c.volumeBeforeMute
		c.mu.Unlock()
		if restore == 0 {
			restore = store.DefaultVolume
		}
		return c.SetVolume(restore)
	}

	c.mu.Lock()
	c.volumeBeforeMute = state.Volume
	c.mu.Unlock()
	return c.SetVolume(0)
}

// Shuffle and repeat changes flow back into the store through the change
// events, so command and event paths cannot disagree.
func (c *Controller) SetShuffle(enabled bool) error {
	if err := c.client.SetShuffle(enabled); err != nil {
		return c.fail("set shuffle", err)
	}
	return nil
}

func (c *Controller) ToggleShuffle() error {
	if err := c.client.ToggleShuffle(); err != nil {
		return c.fail("toggle shuffle", err)
	}
	return nil
}

func (c *Controller) SetRepeat(mode sdk.RepeatMode) error {
	if err := c.client.SetRepeat(mode); err != nil {
		return c.fail("set repeat", err)
	}
	return nil
}

func (c *Controller) CycleRepeat() error {
	if err := c.client.CycleRepeat(); err != nil {
		return c.fail("cycle repeat", err)
	}
	return nil
}

// fail logs, toasts, records the error in the store, and hands it back so
// callers can still branch on it.
func (c *Controller) fail(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	c.logger.WithError(err).Errorf("player command %s failed", op)
	if c.toasts != nil {
		c.toasts.Error(wrapped.Error())
	}
	c.store.SetError(wrapped.Error())
	return wrapped
}

func isNonFatalError(message string) bool {
	lowered := strings.ToLower(message)
	for _, pattern := range nonFatalErrorPatterns {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}

func trackIDAt(tracks []sdk.Track, index int) string {
	if index < 0 || index >= len(tracks) {
		return ""
	}
	return tracks[index].ID
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
