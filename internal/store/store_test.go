package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"kaseti/internal/db"
	"kaseti/internal/sdk"
)

func TestSetMergesPatchFields(t *testing.T) {
	t.Parallel()

	s := NewStore(nil, nil)

	playing := true
	position := 42.5
	s.Set(Patch{IsPlaying: &playing, CurrentTime: &position})

	state := s.Get()
	if !state.IsPlaying {
		t.Fatalf("expected playing after patch")
	}
	if state.CurrentTime != 42.5 {
		t.Fatalf("expected current time 42.5, got %v", state.CurrentTime)
	}
	if state.Volume != DefaultVolume {
		t.Fatalf("expected untouched volume %v, got %v", DefaultVolume, state.Volume)
	}

	// Later writes to the same field win.
	stopped := false
	s.Set(Patch{IsPlaying: &stopped})
	if s.Get().IsPlaying {
		t.Fatalf("expected later patch to overwrite playing")
	}
}

func TestSubscribeNotifiesWithMergedSnapshot(t *testing.T) {
	t.Parallel()

	s := NewStore(nil, nil)

	var seen []State
	unsubscribe := s.Subscribe(func(state State) {
		seen = append(seen, state)
	})

	s.SetVolume(0.5)
	if len(seen) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(seen))
	}
	if seen[0].Volume != 0.5 {
		t.Fatalf("expected notified snapshot to carry merged volume, got %v", seen[0].Volume)
	}

	unsubscribe()
	s.SetVolume(0.7)
	if len(seen) != 1 {
		t.Fatalf("expected no notifications after unsubscribe, got %d", len(seen))
	}

	// Unsubscribing again is a no-op.
	unsubscribe()
	s.SetVolume(0.9)
	if len(seen) != 1 {
		t.Fatalf("expected repeated unsubscribe to stay silent, got %d notifications", len(seen))
	}
}

func TestSubscribeSameFunctionTwice(t *testing.T) {
	t.Parallel()

	s := NewStore(nil, nil)

	calls := 0
	fn := func(State) { calls++ }
	offFirst := s.Subscribe(fn)
	offSecond := s.Subscribe(fn)

	s.SetShuffle(true)
	if calls != 2 {
		t.Fatalf("expected both subscriptions to fire, got %d calls", calls)
	}

	offFirst()
	s.SetShuffle(false)
	if calls != 3 {
		t.Fatalf("expected remaining subscription to fire once more, got %d calls", calls)
	}
	offSecond()
}

func TestPanickingListenerDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	s := NewStore(nil, nil)

	s.Subscribe(func(State) { panic("listener bug") })
	called := false
	s.Subscribe(func(State) { called = true })

	s.SetVolume(0.3)
	if !called {
		t.Fatalf("expected second listener to run after first panicked")
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	t.Parallel()

	s := NewStore(nil, nil)
	s.SetVolume(0.2)
	s.SetView("tracks")
	s.SetQueue([]sdk.Track{{ID: "t1", CDNURL: "https://cdn/a.mp3"}}, 0)

	notified := false
	s.Subscribe(func(State) { notified = true })

	s.Reset()

	state := s.Get()
	if state.Volume != DefaultVolume || state.CurrentView != DefaultView {
		t.Fatalf("expected defaults after reset, got volume=%v view=%q", state.Volume, state.CurrentView)
	}
	if len(state.Queue) != 0 || state.QueueIndex != -1 {
		t.Fatalf("expected empty queue after reset, got %d entries at index %d", len(state.Queue), state.QueueIndex)
	}
	if !notified {
		t.Fatalf("expected reset to notify listeners")
	}
}

func TestPreferencesSurviveRestart(t *testing.T) {
	t.Parallel()

	database := newStoreDatabaseForTest(t)
	defer database.Close()

	s := NewStore(NewPrefRepository(database), nil)
	s.SetVolume(0.35)
	s.SetRepeat(sdk.RepeatModeAll)
	s.SetView("tracks")
	s.SetSortBy("artist")

	reloaded := NewStore(NewPrefRepository(database), nil)
	state := reloaded.Get()
	if state.Volume != 0.35 {
		t.Fatalf("expected restored volume 0.35, got %v", state.Volume)
	}
	if state.Repeat != sdk.RepeatModeAll {
		t.Fatalf("expected restored repeat %q, got %q", sdk.RepeatModeAll, state.Repeat)
	}
	if state.CurrentView != "tracks" || state.SortBy != "artist" {
		t.Fatalf("expected restored view prefs, got view=%q sortBy=%q", state.CurrentView, state.SortBy)
	}
}

func TestCorruptPreferencesFallBackToDefaults(t *testing.T) {
	t.Parallel()

	database := newStoreDatabaseForTest(t)
	defer database.Close()

	if _, err := database.Exec(
		"INSERT INTO preferences (key, value) VALUES (?, ?)",
		preferencesKey,
		"{not json",
	); err != nil {
		t.Fatalf("seed corrupt preferences: %v", err)
	}

	s := NewStore(NewPrefRepository(database), nil)
	state := s.Get()
	if state.Volume != DefaultVolume || state.CurrentView != DefaultView || state.SortBy != DefaultSortBy {
		t.Fatalf("expected defaults for corrupt preferences, got %+v", state)
	}
}

func TestSnapshotQueueIsACopy(t *testing.T) {
	t.Parallel()

	s := NewStore(nil, nil)
	s.SetQueue([]sdk.Track{{ID: "t1"}, {ID: "t2"}}, 0)

	snapshot := s.Get()
	snapshot.Queue[0].ID = "mutated"

	if s.Get().Queue[0].ID != "t1" {
		t.Fatalf("expected store queue to be isolated from snapshot mutation")
	}
}

func newStoreDatabaseForTest(t *testing.T) *sql.DB {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "kaseti.db")
	database, err := db.Bootstrap(databasePath)
	if err != nil {
		t.Fatalf("bootstrap test database: %v", err)
	}

	return database
}
