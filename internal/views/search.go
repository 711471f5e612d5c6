package views

import (
	"net/url"
	"sync"
	"time"

	"kaseti/internal/store"
)

// DefaultSearchDebounce matches how long the UI waits after the last
// keystroke before committing a query.
const DefaultSearchDebounce = 300 * time.Millisecond

const searchQueryParam = "q"

// SearchController debounces query input before publishing it to the
// store, and keeps the query representable in a shareable URL.
type SearchController struct {
	store    *store.Store
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewSearchController(st *store.Store, debounce time.Duration) *SearchController {
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}

	return &SearchController{store: st, debounce: debounce}
}

// SetQuery schedules the query to be committed after the debounce delay;
// each call cancels the previous pending commit.
func (c *SearchController) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.store.SetSearchQuery(query)
	})
}

// Commit applies the query immediately, cancelling any pending debounce.
func (c *SearchController) Commit(query string) {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	c.store.SetSearchQuery(query)
}

// Clear empties the query, restoring the unfiltered view.
func (c *SearchController) Clear() {
	c.Commit("")
}

// QueryFromURL extracts the shared query parameter from a page URL.
func QueryFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Query().Get(searchQueryParam)
}

// URLWithQuery returns rawURL with the query parameter set, or removed
// when the query is empty.
func URLWithQuery(rawURL, query string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	values := parsed.Query()
	if query == "" {
		values.Del(searchQueryParam)
	} else {
		values.Set(searchQueryParam, query)
	}
	parsed.RawQuery = values.Encode()

	return parsed.String()
}
