package views

import (
	"kaseti/internal/player"
	"kaseti/internal/store"
)

// Keyboard shortcut actions.
const (
	ActionTogglePlay    = "toggle-play"
	ActionNext          = "next"
	ActionPrevious      = "previous"
	ActionToggleMute    = "toggle-mute"
	ActionToggleShuffle = "toggle-shuffle"
	ActionCycleRepeat   = "cycle-repeat"
	ActionFocusSearch   = "focus-search"
)

var shortcutActions = map[string]string{
	" ": ActionTogglePlay,
	"n": ActionNext,
	"p": ActionPrevious,
	"m": ActionToggleMute,
	"s": ActionToggleShuffle,
	"r": ActionCycleRepeat,
	"/": ActionFocusSearch,
}

// ShortcutHandler maps raw key presses to player commands. Keys are
// ignored while the search box is focused, except Escape which drops
// focus back to the page.
type ShortcutHandler struct {
	controller *player.Controller
	store      *store.Store

	searchFocused bool
}

func NewShortcutHandler(controller *player.Controller, st *store.Store) *ShortcutHandler {
	return &ShortcutHandler{controller: controller, store: st}
}

func (h *ShortcutHandler) SetSearchFocused(focused bool) {
	h.searchFocused = focused
}

// Handle runs the action bound to key and reports whether it consumed
// the press.
func (h *ShortcutHandler) Handle(key string) bool {
	if h.searchFocused {
		if key == "Escape" {
			h.searchFocused = false
			return true
		}
		return false
	}

	action, ok := shortcutActions[key]
	if !ok {
		return false
	}

	switch action {
	case ActionTogglePlay:
		h.controller.TogglePlay()
	case ActionNext:
		h.controller.Next()
	case ActionPrevious:
		h.controller.Previous()
	case ActionToggleMute:
		h.controller.ToggleMute()
	case ActionToggleShuffle:
		h.controller.ToggleShuffle()
	case ActionCycleRepeat:
		h.controller.CycleRepeat()
	case ActionFocusSearch:
		h.searchFocused = true
	}

	return true
}
