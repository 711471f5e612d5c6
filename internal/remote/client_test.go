package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kaseti/internal/sdk"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Token(ctx context.Context) (string, error) {
	return s.token, s.err
}

func TestCatalogRequestsCarryBearerToken(t *testing.T) {
	t.Parallel()

	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]sdk.Album{{ID: "alb1", Name: "Discovery"}})
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, staticTokens{token: "session-token"}, time.Second)
	albums, err := client.Albums(context.Background())
	if err != nil {
		t.Fatalf("albums: %v", err)
	}

	if authorization != "Bearer session-token" {
		t.Fatalf("expected bearer header, got %q", authorization)
	}
	if len(albums) != 1 || albums[0].ID != "alb1" {
		t.Fatalf("expected decoded album, got %+v", albums)
	}
}

func TestAlbumTracksEscapesAlbumID(t *testing.T) {
	t.Parallel()

	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode([]sdk.Track{{ID: "t1"}})
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, staticTokens{token: "token"}, time.Second)
	tracks, err := client.AlbumTracks(context.Background(), "weird/album id")
	if err != nil {
		t.Fatalf("album tracks: %v", err)
	}

	if requestedPath != "/albums/weird%2Falbum%20id/tracks" {
		t.Fatalf("expected escaped album path, got %q", requestedPath)
	}
	if len(tracks) != 1 {
		t.Fatalf("expected one track, got %d", len(tracks))
	}
}

func TestErrorStatusFailsTheFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, staticTokens{token: "token"}, time.Second)
	if _, err := client.Tracks(context.Background()); err == nil {
		t.Fatalf("expected error for 403 response")
	}
}

func TestTokenFailureShortCircuitsRequest(t *testing.T) {
	t.Parallel()

	requested := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, staticTokens{err: errors.New("auth down")}, time.Second)
	if _, err := client.Manifest(context.Background()); err == nil {
		t.Fatalf("expected token error to surface")
	}
	if requested {
		t.Fatalf("expected no request without a token")
	}
}

func TestManifestDecodes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sdk.Manifest{Version: "3", AlbumCount: 12, TrackCount: 140})
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, staticTokens{token: "token"}, time.Second)
	manifest, err := client.Manifest(context.Background())
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if manifest.Version != "3" || manifest.TrackCount != 140 {
		t.Fatalf("expected decoded manifest, got %+v", manifest)
	}
}
