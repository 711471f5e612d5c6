package auth

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Tokens are reused only while comfortably inside their validity window,
// so a token cannot expire between being handed out and being consumed.
const expiryMargin = 5 * time.Minute

type Credentials struct {
	ClientID     string
	ClientSecret string
}

type tokenResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	Error     string `json:"error"`
}

// TokenSource hands out session tokens, caching them in memory and in the
// state database so restarts reuse a still-valid token. Concurrent callers
// are serialized; only one fetch happens per expiry.
type TokenSource struct {
	endpoint    string
	credentials Credentials
	httpClient  *http.Client
	db          *sql.DB
	logger      *logrus.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	restored  bool
}

func NewTokenSource(endpoint string, credentials Credentials, database *sql.DB, logger *logrus.Logger) *TokenSource {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &TokenSource{
		endpoint:    endpoint,
		credentials: credentials,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		db:          database,
		logger:      logger,
	}
}

// Token returns a session token with more than the safety margin of
// validity remaining, fetching a fresh one when needed.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.restored {
		ts.restoreLocked()
		ts.restored = true
	}

	if ts.token != "" && time.Until(ts.expiresAt) > expiryMargin {
		return ts.token, nil
	}

	token, expiresAt, err := ts.fetch(ctx)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expiresAt = expiresAt
	ts.persistLocked()

	return token, nil
}

// Invalidate drops the cached token so the next call fetches a fresh one.
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.token = ""
	ts.expiresAt = time.Time{}
	if ts.db != nil {
		if _, err := ts.db.Exec("DELETE FROM session_tokens WHERE id = 1"); err != nil {
			ts.logger.WithError(err).Warn("drop cached session token")
		}
	}
}

func (ts *TokenSource) fetch(ctx context.Context) (string, time.Time, error) {
	body, err := json.Marshal(map[string]string{
		"clientId":     ts.credentials.ClientID,
		"clientSecret": ts.credentials.ClientSecret,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("encode auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("read auth response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", time.Time{}, fmt.Errorf("auth endpoint returned %s", resp.Status)
	}

	var decoded tokenResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", time.Time{}, fmt.Errorf("decode auth response: %w", err)
	}
	if !decoded.Success || decoded.Token == "" {
		if decoded.Error != "" {
			return "", time.Time{}, fmt.Errorf("auth rejected: %s", decoded.Error)
		}
		return "", time.Time{}, errors.New("auth rejected")
	}

	return decoded.Token, time.UnixMilli(decoded.ExpiresAt), nil
}

func (ts *TokenSource) restoreLocked() {
	if ts.db == nil {
		return
	}

	var token, expiresAt string
	err := ts.db.QueryRow("SELECT token, expires_at FROM session_tokens WHERE id = 1").Scan(&token, &expiresAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			ts.logger.WithError(err).Warn("restore cached session token")
		}
		return
	}

	parsed, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return
	}

	ts.token = token
	ts.expiresAt = parsed
}

func (ts *TokenSource) persistLocked() {
	if ts.db == nil {
		return
	}

	_, err := ts.db.Exec(
		`INSERT INTO session_tokens (id, token, expires_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET token = excluded.token, expires_at = excluded.expires_at`,
		ts.token,
		ts.expiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		ts.logger.WithError(err).Warn("persist session token")
	}
}
