package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"go.senan.xyz/taglib"

	"kaseti/internal/sdk"
)

// Tracks keeps local copies of streamed audio so playback survives
// without the CDN. The sqlite index is authoritative; a directory watcher
// prunes index rows when files disappear underneath us.
type Tracks struct {
	db         *sql.DB
	dir        string
	httpClient *http.Client
	logger     *logrus.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

type CachedTrack struct {
	TrackID   string `json:"trackId"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
	CachedAt  string `json:"cachedAt"`
}

func NewTracks(database *sql.DB, dir string, logger *logrus.Logger) *Tracks {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Tracks{
		db:         database,
		dir:        dir,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     logger,
	}
}

// Start begins watching the cache directory. Safe to call once.
func (t *Tracks) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create cache watcher: %w", err)
	}
	if err := watcher.Add(t.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch cache dir: %w", err)
	}

	t.watcher = watcher
	t.done = make(chan struct{})
	go t.watch(watcher, t.done)

	return nil
}

func (t *Tracks) Stop() {
	t.mu.Lock()
	watcher := t.watcher
	done := t.done
	t.watcher = nil
	t.mu.Unlock()

	if watcher != nil {
		watcher.Close()
		<-done
	}
}

func (t *Tracks) watch(watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if err := t.dropByPath(event.Name); err != nil {
				t.logger.WithError(err).Warn("prune cache index entry")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			t.logger.WithError(err).Warn("cache watcher error")
		}
	}
}

// Download fetches the track's audio into the cache dir and records it in
// the index. Already-cached tracks whose file still exists are a no-op.
func (t *Tracks) Download(ctx context.Context, track sdk.Track) (CachedTrack, error) {
	if !track.Playable() {
		return CachedTrack{}, errors.New("track has no playable media reference")
	}

	if cached, ok, err := t.Lookup(track.ID); err != nil {
		return CachedTrack{}, err
	} else if ok {
		return cached, nil
	}

	destination := filepath.Join(t.dir, cacheFilename(track))
	size, err := t.fetch(ctx, track.CDNURL, destination)
	if err != nil {
		return CachedTrack{}, err
	}

	t.verifyTags(destination, track)

	entry := CachedTrack{
		TrackID:   track.ID,
		Title:     track.Name,
		Artist:    track.Artist,
		Path:      destination,
		SizeBytes: size,
		CachedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := t.upsert(entry); err != nil {
		return CachedTrack{}, err
	}

	return entry, nil
}

// Lookup returns the cached entry for a track when both the index row and
// the file on disk are present; a missing file drops the stale row.
func (t *Tracks) Lookup(trackID string) (CachedTrack, bool, error) {
	var entry CachedTrack
	err := t.db.QueryRow(
		"SELECT track_id, title, artist, path, size_bytes, cached_at FROM cached_tracks WHERE track_id = ?",
		trackID,
	).Scan(&entry.TrackID, &entry.Title, &entry.Artist, &entry.Path, &entry.SizeBytes, &entry.CachedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CachedTrack{}, false, nil
		}
		return CachedTrack{}, false, fmt.Errorf("look up cached track: %w", err)
	}

	if _, err := os.Stat(entry.Path); err != nil {
		if err := t.dropByPath(entry.Path); err != nil {
			t.logger.WithError(err).Warn("drop stale cache row")
		}
		return CachedTrack{}, false, nil
	}

	return entry, true, nil
}

func (t *Tracks) List() ([]CachedTrack, error) {
	rows, err := t.db.Query("SELECT track_id, title, artist, path, size_bytes, cached_at FROM cached_tracks ORDER BY cached_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list cached tracks: %w", err)
	}
	defer rows.Close()

	var entries []CachedTrack
	for rows.Next() {
		var entry CachedTrack
		if err := rows.Scan(&entry.TrackID, &entry.Title, &entry.Artist, &entry.Path, &entry.SizeBytes, &entry.CachedAt); err != nil {
			return nil, fmt.Errorf("scan cached track: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Evict removes a cached track's file and index row.
func (t *Tracks) Evict(trackID string) error {
	entry, ok, err := t.Lookup(trackID)
	if err != nil {
		return err
	}
	if ok {
		if err := os.Remove(entry.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove cached file: %w", err)
		}
	}

	if _, err := t.db.Exec("DELETE FROM cached_tracks WHERE track_id = ?", trackID); err != nil {
		return fmt.Errorf("delete cache row: %w", err)
	}

	return nil
}

func (t *Tracks) fetch(ctx context.Context, sourceURL, destination string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build download request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download track: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("download track: unexpected status %s", resp.Status)
	}

	tmp := destination + ".part"
	file, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create cache file: %w", err)
	}

	size, err := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("write cache file: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("close cache file: %w", closeErr)
	}

	if err := os.Rename(tmp, destination); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("finalize cache file: %w", err)
	}

	return size, nil
}

// verifyTags cross-checks the downloaded file's tags against the catalog
// metadata. A mismatch is only logged; the catalog stays authoritative.
func (t *Tracks) verifyTags(path string, track sdk.Track) {
	tags, err := taglib.ReadTags(path)
	if err != nil {
		t.logger.WithError(err).WithField("path", path).Debug("read tags of cached file")
		return
	}

	if titles := tags[taglib.Title]; len(titles) > 0 && !strings.EqualFold(titles[0], track.Name) {
		t.logger.WithFields(logrus.Fields{
			"expected": track.Name,
			"tagged":   titles[0],
		}).Warn("cached file title does not match catalog")
	}
}

func (t *Tracks) upsert(entry CachedTrack) error {
	_, err := t.db.Exec(
		`INSERT INTO cached_tracks (track_id, title, artist, path, size_bytes, cached_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(track_id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			path = excluded.path,
			size_bytes = excluded.size_bytes,
			cached_at = excluded.cached_at`,
		entry.TrackID, entry.Title, entry.Artist, entry.Path, entry.SizeBytes, entry.CachedAt,
	)
	if err != nil {
		return fmt.Errorf("record cached track: %w", err)
	}

	return nil
}

func (t *Tracks) dropByPath(path string) error {
	_, err := t.db.Exec("DELETE FROM cached_tracks WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("delete cache row by path: %w", err)
	}

	return nil
}

func cacheFilename(track sdk.Track) string {
	ext := filepath.Ext(track.CDNURL)
	if ext == "" || len(ext) > 8 {
		ext = ".mp3"
	}
	if i := strings.IndexAny(ext, "?#"); i > 0 {
		ext = ext[:i]
	}

	return sanitizeID(track.ID) + ext
}

func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
