package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"kaseti/internal/db"
)

func TestTokenIsCachedWhileValid(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int64
	server := newAuthServerForTest(t, &fetches, time.Now().Add(time.Hour))
	source := NewTokenSource(server.URL, Credentials{ClientID: "id", ClientSecret: "secret"}, nil, nil)

	first, err := source.Token(context.Background())
	if err != nil {
		t.Fatalf("first token: %v", err)
	}
	second, err := source.Token(context.Background())
	if err != nil {
		t.Fatalf("second token: %v", err)
	}

	if first != second {
		t.Fatalf("expected cached token, got %q then %q", first, second)
	}
	if got := fetches.Load(); got != 1 {
		t.Fatalf("expected single fetch, got %d", got)
	}
}

func TestTokenNearExpiryIsRefetched(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int64
	// Valid, but inside the safety margin.
	server := newAuthServerForTest(t, &fetches, time.Now().Add(2*time.Minute))
	source := NewTokenSource(server.URL, Credentials{ClientID: "id", ClientSecret: "secret"}, nil, nil)

	if _, err := source.Token(context.Background()); err != nil {
		t.Fatalf("first token: %v", err)
	}
	if _, err := source.Token(context.Background()); err != nil {
		t.Fatalf("second token: %v", err)
	}

	if got := fetches.Load(); got != 2 {
		t.Fatalf("expected refetch inside expiry margin, got %d fetches", got)
	}
}

func TestTokenSurvivesRestartThroughDatabase(t *testing.T) {
	t.Parallel()

	database := newAuthDatabaseForTest(t)
	defer database.Close()

	var fetches atomic.Int64
	server := newAuthServerForTest(t, &fetches, time.Now().Add(time.Hour))

	source := NewTokenSource(server.URL, Credentials{ClientID: "id", ClientSecret: "secret"}, database, nil)
	first, err := source.Token(context.Background())
	if err != nil {
		t.Fatalf("first token: %v", err)
	}

	reloaded := NewTokenSource(server.URL, Credentials{ClientID: "id", ClientSecret: "secret"}, database, nil)
	second, err := reloaded.Token(context.Background())
	if err != nil {
		t.Fatalf("restored token: %v", err)
	}

	if first != second {
		t.Fatalf("expected restored token %q, got %q", first, second)
	}
	if got := fetches.Load(); got != 1 {
		t.Fatalf("expected restored token to skip the fetch, got %d fetches", got)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	t.Parallel()

	database := newAuthDatabaseForTest(t)
	defer database.Close()

	var fetches atomic.Int64
	server := newAuthServerForTest(t, &fetches, time.Now().Add(time.Hour))
	source := NewTokenSource(server.URL, Credentials{ClientID: "id", ClientSecret: "secret"}, database, nil)

	if _, err := source.Token(context.Background()); err != nil {
		t.Fatalf("first token: %v", err)
	}
	source.Invalidate()
	if _, err := source.Token(context.Background()); err != nil {
		t.Fatalf("token after invalidate: %v", err)
	}

	if got := fetches.Load(); got != 2 {
		t.Fatalf("expected invalidate to force a fetch, got %d", got)
	}
}

func TestConcurrentCallersShareOneFetch(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int64
	server := newAuthServerForTest(t, &fetches, time.Now().Add(time.Hour))
	source := NewTokenSource(server.URL, Credentials{ClientID: "id", ClientSecret: "secret"}, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := source.Token(context.Background()); err != nil {
				t.Errorf("token: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := fetches.Load(); got != 1 {
		t.Fatalf("expected one fetch across concurrent callers, got %d", got)
	}
}

func TestRejectedCredentialsSurfaceServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tokenResponse{Success: false, Error: "unknown client"})
	}))
	t.Cleanup(server.Close)

	source := NewTokenSource(server.URL, Credentials{ClientID: "bad", ClientSecret: "bad"}, nil, nil)
	if _, err := source.Token(context.Background()); err == nil {
		t.Fatalf("expected rejection error")
	}
}

func TestNonSuccessStatusIsAnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	source := NewTokenSource(server.URL, Credentials{ClientID: "id", ClientSecret: "secret"}, nil, nil)
	if _, err := source.Token(context.Background()); err == nil {
		t.Fatalf("expected error for 503 response")
	}
}

func newAuthServerForTest(t *testing.T, fetches *atomic.Int64, expiresAt time.Time) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ClientID     string `json:"clientId"`
			ClientSecret string `json:"clientSecret"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if body.ClientID == "" || body.ClientSecret == "" {
			http.Error(w, "missing credentials", http.StatusUnauthorized)
			return
		}

		count := fetches.Add(1)
		json.NewEncoder(w).Encode(tokenResponse{
			Success:   true,
			Token:     fmt.Sprintf("token-%d", count),
			ExpiresAt: expiresAt.UnixMilli(),
		})
	}))
	t.Cleanup(server.Close)

	return server
}

func newAuthDatabaseForTest(t *testing.T) *sql.DB {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "kaseti.db")
	database, err := db.Bootstrap(databasePath)
	if err != nil {
		t.Fatalf("bootstrap test database: %v", err)
	}

	return database
}
