package views

import "sync"

// ScrollController remembers per-view scroll offsets so switching views
// and back lands where the user left off. Offsets are transient UI state
// and deliberately not persisted.
type ScrollController struct {
	mu      sync.Mutex
	offsets map[string]int
}

func NewScrollController() *ScrollController {
	return &ScrollController{offsets: make(map[string]int)}
}

func (c *ScrollController) Save(view string, offset int) {
	if offset < 0 {
		offset = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.offsets[view] = offset
}

func (c *ScrollController) Restore(view string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offsets[view]
}

func (c *ScrollController) Forget(view string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.offsets, view)
}
