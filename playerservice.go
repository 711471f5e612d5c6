package main

import (
	"kaseti/internal/player"
	"kaseti/internal/sdk"
	"kaseti/internal/store"
)

type PlayerService struct {
	controller *player.Controller
	store      *store.Store
}

func NewPlayerService(controller *player.Controller, st *store.Store) *PlayerService {
	return &PlayerService{controller: controller, store: st}
}

func (s *PlayerService) GetState() store.State {
	return s.store.Get()
}

func (s *PlayerService) Play(track sdk.Track) (store.State, error) {
	err := s.controller.Play(track)
	return s.store.Get(), err
}

func (s *PlayerService) Pause() (store.State, error) {
	err := s.controller.Pause()
	return s.store.Get(), err
}

func (s *PlayerService) TogglePlay() (store.State, error) {
	err := s.controller.TogglePlay()
	return s.store.Get(), err
}

func (s *PlayerService) Next() (store.State, error) {
	err := s.controller.Next()
	return s.store.Get(), err
}

func (s *PlayerService) Previous() (store.State, error) {
	err := s.controller.Previous()
	return s.store.Get(), err
}

func (s *PlayerService) Seek(position float64) (store.State, error) {
	err := s.controller.Seek(position)
	return s.store.Get(), err
}

func (s *PlayerService) SeekRelative(delta float64) (store.State, error) {
	err := s.controller.SeekRelative(delta)
	return s.store.Get(), err
}

func (s *PlayerService) SetQueue(tracks []sdk.Track, startIndex int, autoPlay bool) (store.State, error) {
	err := s.controller.SetQueue(tracks, startIndex, autoPlay)
	return s.store.Get(), err
}

func (s *PlayerService) PlayAlbum(tracks []sdk.Track) (store.State, error) {
	err := s.controller.PlayAlbum(tracks)
	return s.store.Get(), err
}

func (s *PlayerService) JumpTo(index int) (store.State, error) {
	err := s.controller.JumpTo(index)
	return s.store.Get(), err
}

func (s *PlayerService) AddToQueue(track sdk.Track) (store.State, error) {
	err := s.controller.AddToQueue(track)
	return s.store.Get(), err
}

func (s *PlayerService) PlayNext(track sdk.Track) (store.State, error) {
	err := s.controller.PlayNext(track)
	return s.store.Get(), err
}

func (s *PlayerService) SetVolume(volume float64) (store.State, error) {
	err := s.controller.SetVolume(volume)
	return s.store.Get(), err
}

func (s *PlayerService) VolumeUp() (store.State, error) {
	err := s.controller.VolumeUp()
	return s.store.Get(), err
}

func (s *PlayerService) VolumeDown() (store.State, error) {
	err := s.controller.VolumeDown()
	return s.store.Get(), err
}

func (s *PlayerService) ToggleMute() (store.State, error) {
	err := s.controller.ToggleMute()
	return s.store.Get(), err
}

func (s *PlayerService) SetShuffle(enabled bool) (store.State, error) {
	err := s.controller.SetShuffle(enabled)
	return s.store.Get(), err
}

func (s *PlayerService) ToggleShuffle() (store.State, error) {
	err := s.controller.ToggleShuffle()
	return s.store.Get(), err
}

func (s *PlayerService) SetRepeat(mode string) (store.State, error) {
	err := s.controller.SetRepeat(sdk.NormalizeRepeatMode(mode))
	return s.store.Get(), err
}

func (s *PlayerService) CycleRepeat() (store.State, error) {
	err := s.controller.CycleRepeat()
	return s.store.Get(), err
}
