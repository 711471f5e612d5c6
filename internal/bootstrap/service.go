package bootstrap

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"kaseti/internal/player"
	"kaseti/internal/sdk"
	"kaseti/internal/store"
)

// TokenProvider is the authentication side of initialization.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Catalog is the read-only library API consumed during initialization.
type Catalog interface {
	Manifest(ctx context.Context) (*sdk.Manifest, error)
	Albums(ctx context.Context) ([]sdk.Album, error)
	Tracks(ctx context.Context) ([]sdk.Track, error)
	Trackers(ctx context.Context) ([]sdk.TrackerModule, error)
}

type attempt struct {
	done chan struct{}
	err  error
}

// Service boots the player exactly once: authenticate, wire the
// controller, load the library. Concurrent Initialize calls share one
// in-flight attempt; a failed attempt clears the guard so the next call
// retries.
type Service struct {
	tokens     TokenProvider
	catalog    Catalog
	controller *player.Controller
	store      *store.Store
	logger     *logrus.Logger

	mu          sync.Mutex
	inflight    *attempt
	initialized bool
}

type StartupSnapshot struct {
	State        store.State `json:"state"`
	AlbumCount   int         `json:"albumCount"`
	TrackCount   int         `json:"trackCount"`
	TrackerCount int         `json:"trackerCount"`
	Initialized  bool        `json:"initialized"`
}

func NewService(tokens TokenProvider, catalog Catalog, controller *player.Controller, st *store.Store, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Service{
		tokens:     tokens,
		catalog:    catalog,
		controller: controller,
		store:      st,
		logger:     logger,
	}
}

func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	if s.inflight != nil {
		joined := s.inflight
		s.mu.Unlock()
		<-joined.done
		return joined.err
	}

	current := &attempt{done: make(chan struct{})}
	s.inflight = current
	s.mu.Unlock()

	current.err = s.run(ctx)

	s.mu.Lock()
	if current.err == nil {
		s.initialized = true
	}
	s.inflight = nil
	s.mu.Unlock()

	close(current.done)
	return current.err
}

func (s *Service) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *Service) Snapshot() StartupSnapshot {
	state := s.store.Get()
	return StartupSnapshot{
		State:        state,
		AlbumCount:   len(state.Albums),
		TrackCount:   len(state.Tracks),
		TrackerCount: len(state.TrackerModules),
		Initialized:  s.Initialized(),
	}
}

func (s *Service) run(ctx context.Context) error {
	s.logger.Info("initializing music client")

	if _, err := s.tokens.Token(ctx); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	s.controller.Init()

	if err := s.LoadLibraryData(ctx); err != nil {
		return err
	}

	s.logger.Info("music client ready")
	return nil
}

// LoadLibraryData fetches albums, tracks, tracker modules and the
// manifest concurrently and commits them to the store as one atomic
// write. Any single failure fails the whole load.
func (s *Service) LoadLibraryData(ctx context.Context) error {
	s.store.SetLoading(true)
	defer s.store.SetLoading(false)

	var (
		wg       sync.WaitGroup
		albums   []sdk.Album
		tracks   []sdk.Track
		trackers []sdk.TrackerModule
		manifest *sdk.Manifest

		errMu    sync.Mutex
		firstErr error
	)

	record := func(err error) {
		errMu.Lock()
		defer errMu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		var err error
		if albums, err = s.catalog.Albums(ctx); err != nil {
			record(fmt.Errorf("load albums: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if tracks, err = s.catalog.Tracks(ctx); err != nil {
			record(fmt.Errorf("load tracks: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if trackers, err = s.catalog.Trackers(ctx); err != nil {
			record(fmt.Errorf("load tracker modules: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if manifest, err = s.catalog.Manifest(ctx); err != nil {
			record(fmt.Errorf("load manifest: %w", err))
		}
	}()
	wg.Wait()

	if firstErr != nil {
		s.store.SetError(firstErr.Error())
		return firstErr
	}

	s.store.SetLibraryData(albums, tracks, trackers, manifest)
	s.store.SetError("")
	s.logger.WithFields(logrus.Fields{
		"albums":   len(albums),
		"tracks":   len(tracks),
		"trackers": len(trackers),
	}).Info("library loaded")

	return nil
}
