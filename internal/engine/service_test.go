package engine

import (
	"testing"

	"kaseti/internal/sdk"
)

// recordingBackend captures backend calls so tests can assert on what the
// queue logic asked the audio layer to do.
type recordingBackend struct {
	loads   []string
	seeks   []float64
	volumes []float64
	playing bool
	stopped bool
	onEOF   func()
}

func (b *recordingBackend) Load(url string) error {
	b.loads = append(b.loads, url)
	b.playing = false
	return nil
}

func (b *recordingBackend) Play() error  { b.playing = true; return nil }
func (b *recordingBackend) Pause() error { b.playing = false; return nil }
func (b *recordingBackend) Stop() error  { b.stopped = true; b.playing = false; return nil }

func (b *recordingBackend) Seek(seconds float64) error {
	b.seeks = append(b.seeks, seconds)
	return nil
}

func (b *recordingBackend) SetVolume(percent float64) error {
	b.volumes = append(b.volumes, percent)
	return nil
}

func (b *recordingBackend) Position() (float64, bool, error) { return 0, false, nil }
func (b *recordingBackend) Duration() (float64, bool, error) { return 0, false, nil }
func (b *recordingBackend) SetOnEOF(callback func())         { b.onEOF = callback }
func (b *recordingBackend) Close() error                     { return nil }

func newEngineForTest(t *testing.T) (*Service, *recordingBackend) {
	t.Helper()

	backend := &recordingBackend{}
	service := newService(backend, nil)
	t.Cleanup(func() { service.Close() })
	return service, backend
}

func queueOf(ids ...string) []sdk.Track {
	tracks := make([]sdk.Track, 0, len(ids))
	for _, id := range ids {
		tracks = append(tracks, sdk.Track{
			ID:       id,
			Name:     "Track " + id,
			Duration: 180,
			CDNURL:   "https://cdn/" + id + ".mp3",
		})
	}
	return tracks
}

func TestNextStopsAtQueueEndWithRepeatOff(t *testing.T) {
	t.Parallel()

	service, _ := newEngineForTest(t)

	if err := service.SetQueue(queueOf("a", "b"), 1); err != nil {
		t.Fatalf("set queue: %v", err)
	}
	if err := service.PlayAt(1); err != nil {
		t.Fatalf("play: %v", err)
	}

	paused := false
	service.On(sdk.EventPause, func(any) { paused = true })

	if err := service.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}

	snap := service.State()
	if snap.Playing {
		t.Fatalf("expected playback stopped at queue end")
	}
	if snap.Position != 1 {
		t.Fatalf("expected index to stay on last track, got %d", snap.Position)
	}
	if !paused {
		t.Fatalf("expected pause event at queue end")
	}
}

func TestNextWrapsWithRepeatAll(t *testing.T) {
	t.Parallel()

	service, _ := newEngineForTest(t)

	if err := service.SetQueue(queueOf("a", "b"), 1); err != nil {
		t.Fatalf("set queue: %v", err)
	}
	if err := service.SetRepeat(sdk.RepeatModeAll); err != nil {
		t.Fatalf("set repeat: %v", err)
	}
	if err := service.PlayAt(1); err != nil {
		t.Fatalf("play: %v", err)
	}

	if err := service.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}

	snap := service.State()
	if snap.Position != 0 || !snap.Playing {
		t.Fatalf("expected wrap to first track, got index=%d playing=%v", snap.Position, snap.Playing)
	}
}

func TestPreviousRestartsWhenPastThreshold(t *testing.T) {
	t.Parallel()

	service, backend := newEngineForTest(t)

	if err := service.SetQueue(queueOf("a", "b"), 1); err != nil {
		t.Fatalf("set queue: %v", err)
	}
	if err := service.PlayAt(1); err != nil {
		t.Fatalf("play: %v", err)
	}
	if err := service.Seek(30); err != nil {
		t.Fatalf("seek: %v", err)
	}

	loadsBefore := len(backend.loads)
	if err := service.Previous(); err != nil {
		t.Fatalf("previous: %v", err)
	}

	snap := service.State()
	if snap.Position != 1 {
		t.Fatalf("expected restart to keep index 1, got %d", snap.Position)
	}
	if snap.Time != 0 {
		t.Fatalf("expected position reset to 0, got %v", snap.Time)
	}
	if len(backend.loads) != loadsBefore {
		t.Fatalf("expected restart without reload")
	}
}

func TestPreviousStepsBackEarlyInTrack(t *testing.T) {
	t.Parallel()

	service, _ := newEngineForTest(t)

	if err := service.SetQueue(queueOf("a", "b"), 1); err != nil {
		t.Fatalf("set queue: %v", err)
	}
	if err := service.PlayAt(1); err != nil {
		t.Fatalf("play: %v", err)
	}

	if err := service.Previous(); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if got := service.State().Position; got != 0 {
		t.Fatalf("expected step back to first track, got index %d", got)
	}
}

func TestPreviousWrapsToLastUnderRepeatAll(t *testing.T) {
	t.Parallel()

	service, _ := newEngineForTest(t)

	if err := service.SetQueue(queueOf("a", "b", "c"), 0); err != nil {
		t.Fatalf("set queue: %v", err)
	}
	if err := service.SetRepeat(sdk.RepeatModeAll); err != nil {
		t.Fatalf("set repeat: %v", err)
	}
	if err := service.PlayAt(0); err != nil {
		t.Fatalf("play: %v", err)
	}

	if err := service.Previous(); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if got := service.State().Position; got != 2 {
		t.Fatalf("expected wrap to last track, got index %d", got)
	}
}

func TestTrackEndRestartsUnderRepeatOne(t *testing.T) {
	t.Parallel()

	service, backend := newEngineForTest(t)

	if err := service.SetQueue(queueOf("a", "b"), 0); err != nil {
		t.Fatalf("set queue: %v", err)
	}
	if err := service.SetRepeat(sdk.RepeatModeOne); err != nil {
		t.Fatalf("set repeat: %v", err)
	}
	if err := service.PlayAt(0); err != nil {
		t.Fatalf("play: %v", err)
	}

	backend.onEOF()

	snap := service.State()
	if snap.Position != 0 || !snap.Playing {
		t.Fatalf("expected same track restarted, got index=%d playing=%v", snap.Position, snap.Playing)
	}
	if len(backend.seeks) == 0 || backend.seeks[len(backend.seeks)-1] != 0 {
		t.Fatalf("expected seek to 0 on repeat-one restart, got %v", backend.seeks)
	}
}

func TestTrackEndAdvancesToNextTrack(t *testing.T) {
	t.Parallel()

	service, _ := newEngineForTest(t)

	if err := service.SetQueue(queueOf("a", "b"), 0); err != nil {
		t.Fatalf("set queue: %v", err)
	}
	if err := service.PlayAt(0); err != nil {
		t.Fatalf("play: %v", err)
	}

	var changed sdk.TrackChange
	service.On(sdk.EventTrackChange, func(payload any) {
		changed = payload.(sdk.TrackChange)
	})

	service.handleEOF()

	snap := service.State()
	if snap.Position != 1 || !snap.Playing {
		t.Fatalf("expected advance to next track, got index=%d playing=%v", snap.Position, snap.Playing)
	}
	if changed.Current == nil || changed.Current.ID != "b" {
		t.Fatalf("expected trackchange to b, got %+v", changed.Current)
	}
	if changed.Previous == nil || changed.Previous.ID != "a" {
		t.Fatalf("expected previous track a, got %+v", changed.Previous)
	}
}

func TestAddToQueueBeforeCurrentBumpsIndex(t *testing.T) {
	t.Parallel()

	service, _ := newEngineForTest(t)

	if err := service.SetQueue(queueOf("a", "b"), 1); err != nil {
		t.Fatalf("set queue: %v", err)
	}
	if err := service.PlayAt(1); err != nil {
		t.Fatalf("play: %v", err)
	}

	position := 0
	if err := service.AddToQueue(queueOf("x")[0], &position); err != nil {
		t.Fatalf("add to queue: %v", err)
	}

	snap := service.State()
	if len(snap.Queue) != 3 || snap.Queue[0].ID != "x" {
		t.Fatalf("expected x inserted at head, got %+v", snap.Queue)
	}
	if snap.Position != 2 || snap.Current == nil || snap.Current.ID != "b" {
		t.Fatalf("expected current track preserved, got index=%d current=%+v", snap.Position, snap.Current)
	}
}

func TestPlayUnqueuedTrackInsertsAfterCurrent(t *testing.T) {
	t.Parallel()

	service, _ := newEngineForTest(t)

	if err := service.SetQueue(queueOf("a", "b"), 0); err != nil {
		t.Fatalf("set queue: %v", err)
	}
	if err := service.PlayAt(0); err != nil {
		t.Fatalf("play: %v", err)
	}

	extra := queueOf("x")[0]
	if err := service.Play(&extra); err != nil {
		t.Fatalf("play unqueued: %v", err)
	}

	snap := service.State()
	if len(snap.Queue) != 3 || snap.Queue[1].ID != "x" {
		t.Fatalf("expected x inserted after current, got %+v", snap.Queue)
	}
	if snap.Current == nil || snap.Current.ID != "x" {
		t.Fatalf("expected x playing, got %+v", snap.Current)
	}
}

func TestResumeWithoutTrackFails(t *testing.T) {
	t.Parallel()

	service, _ := newEngineForTest(t)

	if err := service.Play(nil); err != ErrNoTrackLoaded {
		t.Fatalf("expected ErrNoTrackLoaded, got %v", err)
	}
}

func TestShuffleOrderKeepsCurrentTrackFirst(t *testing.T) {
	t.Parallel()

	service, _ := newEngineForTest(t)

	if err := service.SetQueue(queueOf("a", "b", "c", "d", "e"), 2); err != nil {
		t.Fatalf("set queue: %v", err)
	}
	if err := service.PlayAt(2); err != nil {
		t.Fatalf("play: %v", err)
	}
	if err := service.SetShuffle(true); err != nil {
		t.Fatalf("set shuffle: %v", err)
	}

	service.mu.Lock()
	order := append([]int(nil), service.shuffleOrder...)
	service.mu.Unlock()

	if len(order) != 5 || order[0] != 2 {
		t.Fatalf("expected current index first in shuffle order, got %v", order)
	}

	seen := map[int]bool{}
	for _, index := range order {
		seen[index] = true
	}
	if len(seen) != 5 {
		t.Fatalf("expected a permutation of all indexes, got %v", order)
	}
}

func TestSetVolumeScalesToBackendPercent(t *testing.T) {
	t.Parallel()

	service, backend := newEngineForTest(t)

	if err := service.SetVolume(0.5); err != nil {
		t.Fatalf("set volume: %v", err)
	}
	if err := service.SetVolume(1.8); err != nil {
		t.Fatalf("set volume over range: %v", err)
	}

	if len(backend.volumes) != 2 || backend.volumes[0] != 50 || backend.volumes[1] != 100 {
		t.Fatalf("expected percent values [50 100], got %v", backend.volumes)
	}
	if got := service.State().Volume; got != 1 {
		t.Fatalf("expected clamped volume 1, got %v", got)
	}
}

func TestSetQueueEmptyStopsPlayback(t *testing.T) {
	t.Parallel()

	service, backend := newEngineForTest(t)

	if err := service.SetQueue(queueOf("a"), 0); err != nil {
		t.Fatalf("set queue: %v", err)
	}
	if err := service.PlayAt(0); err != nil {
		t.Fatalf("play: %v", err)
	}

	if err := service.SetQueue(nil, 0); err != nil {
		t.Fatalf("clear queue: %v", err)
	}

	snap := service.State()
	if snap.Playing || snap.Position != -1 || len(snap.Queue) != 0 {
		t.Fatalf("expected cleared queue, got %+v", snap)
	}
	if !backend.stopped {
		t.Fatalf("expected backend stopped")
	}
}
