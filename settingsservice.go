package main

import (
	"kaseti/internal/store"
)

type SettingsService struct {
	store *store.Store
}

func NewSettingsService(st *store.Store) *SettingsService {
	return &SettingsService{store: st}
}

func (s *SettingsService) SetView(view string) store.State {
	s.store.SetView(view)
	return s.store.Get()
}

func (s *SettingsService) SetSortBy(sortBy string) store.State {
	s.store.SetSortBy(sortBy)
	return s.store.Get()
}

func (s *SettingsService) SetGenreFilter(genre string) store.State {
	s.store.SetGenreFilter(genre)
	return s.store.Get()
}

func (s *SettingsService) ToggleQueuePanel() store.State {
	s.store.ToggleQueuePanel()
	return s.store.Get()
}

func (s *SettingsService) ToggleNowPlaying() store.State {
	s.store.ToggleNowPlaying()
	return s.store.Get()
}

func (s *SettingsService) ToggleLyrics() store.State {
	s.store.ToggleLyrics()
	return s.store.Get()
}

// Reset restores defaults and clears persisted preferences.
func (s *SettingsService) Reset() store.State {
	s.store.Reset()
	return s.store.Get()
}
