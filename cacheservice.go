package main

import (
	"context"
	"time"

	"kaseti/internal/cache"
	"kaseti/internal/sdk"
)

const downloadTimeout = 10 * time.Minute

type CacheService struct {
	tracks *cache.Tracks
	covers *cache.Covers
}

func NewCacheService(tracks *cache.Tracks, covers *cache.Covers) *CacheService {
	return &CacheService{tracks: tracks, covers: covers}
}

func (s *CacheService) DownloadTrack(track sdk.Track) (cache.CachedTrack, error) {
	ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
	defer cancel()

	return s.tracks.Download(ctx, track)
}

func (s *CacheService) ListCachedTracks() ([]cache.CachedTrack, error) {
	return s.tracks.List()
}

func (s *CacheService) EvictTrack(trackID string) error {
	return s.tracks.Evict(trackID)
}

// CoverPath resolves a local thumbnail for a cover URL, downloading it on
// first use.
func (s *CacheService) CoverPath(coverURL string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	return s.covers.Get(ctx, coverURL)
}
