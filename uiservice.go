package main

import (
	"kaseti/internal/views"
)

type UIService struct {
	shortcuts *views.ShortcutHandler
	scroll    *views.ScrollController
}

func NewUIService(shortcuts *views.ShortcutHandler, scroll *views.ScrollController) *UIService {
	return &UIService{shortcuts: shortcuts, scroll: scroll}
}

// HandleKey reports whether the key press was consumed as a shortcut.
func (s *UIService) HandleKey(key string) bool {
	return s.shortcuts.Handle(key)
}

func (s *UIService) SetSearchFocused(focused bool) {
	s.shortcuts.SetSearchFocused(focused)
}

func (s *UIService) SaveScroll(view string, offset int) {
	s.scroll.Save(view, offset)
}

func (s *UIService) RestoreScroll(view string) int {
	return s.scroll.Restore(view)
}
