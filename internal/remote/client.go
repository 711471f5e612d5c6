package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kaseti/internal/sdk"
)

// TokenProvider supplies a valid session token for each request.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Client fetches the read-only catalog from the music API.
type Client struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
}

func NewClient(baseURL string, tokens TokenProvider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Manifest(ctx context.Context) (*sdk.Manifest, error) {
	var manifest sdk.Manifest
	if err := c.getJSON(ctx, "/manifest", &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func (c *Client) Albums(ctx context.Context) ([]sdk.Album, error) {
	var albums []sdk.Album
	if err := c.getJSON(ctx, "/albums", &albums); err != nil {
		return nil, err
	}
	return albums, nil
}

func (c *Client) Tracks(ctx context.Context) ([]sdk.Track, error) {
	var tracks []sdk.Track
	if err := c.getJSON(ctx, "/tracks", &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

func (c *Client) AlbumTracks(ctx context.Context, albumID string) ([]sdk.Track, error) {
	var tracks []sdk.Track
	path := "/albums/" + url.PathEscape(albumID) + "/tracks"
	if err := c.getJSON(ctx, path, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

func (c *Client) Trackers(ctx context.Context) ([]sdk.TrackerModule, error) {
	var trackers []sdk.TrackerModule
	if err := c.getJSON(ctx, "/trackers", &trackers); err != nil {
		return nil, err
	}
	return trackers, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("acquire session token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("fetch %s: unexpected status %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}
