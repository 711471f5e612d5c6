package main

import (
	"kaseti/internal/views"
)

type LibraryService struct {
	albums *views.AlbumController
	tracks *views.TrackController
	search *views.SearchController
}

func NewLibraryService(albums *views.AlbumController, tracks *views.TrackController, search *views.SearchController) *LibraryService {
	return &LibraryService{albums: albums, tracks: tracks, search: search}
}

func (s *LibraryService) AlbumGrid() views.AlbumGridModel {
	return s.albums.Model()
}

func (s *LibraryService) AlbumDetail(albumID string) (views.AlbumDetailModel, bool) {
	return s.albums.Detail(albumID)
}

func (s *LibraryService) TrackList() views.TrackListModel {
	return s.tracks.Model()
}

func (s *LibraryService) SetTrackOrder(order string) views.TrackListModel {
	s.tracks.SetOrder(views.SortOrder(order))
	return s.tracks.Model()
}

// Search schedules a debounced query; SearchNow commits immediately.
func (s *LibraryService) Search(query string) {
	s.search.SetQuery(query)
}

func (s *LibraryService) SearchNow(query string) {
	s.search.Commit(query)
}

func (s *LibraryService) ClearSearch() {
	s.search.Clear()
}
