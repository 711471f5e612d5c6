//go:build !libmpv

package engine

import "sync"

// nullBackend is a silent clock-driven stand-in used when the build does
// not link libmpv. It keeps the whole coordination layer functional for
// development and tests.
type nullBackend struct {
	mu       sync.Mutex
	loaded   bool
	playing  bool
	position float64
	onEOF    func()
}

func newPlaybackBackend() (playbackBackend, error) {
	return &nullBackend{}, nil
}

func (b *nullBackend) Load(url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loaded = true
	b.playing = false
	b.position = 0
	return nil
}

func (b *nullBackend) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playing = true
	return nil
}

func (b *nullBackend) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playing = false
	return nil
}

func (b *nullBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loaded = false
	b.playing = false
	b.position = 0
	return nil
}

func (b *nullBackend) Seek(seconds float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	b.position = seconds
	return nil
}

func (b *nullBackend) SetVolume(percent float64) error {
	return nil
}

func (b *nullBackend) Position() (float64, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return 0, false, nil
	}
	return b.position, true, nil
}

func (b *nullBackend) Duration() (float64, bool, error) {
	return 0, false, nil
}

func (b *nullBackend) SetOnEOF(callback func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onEOF = callback
}

func (b *nullBackend) Close() error {
	return nil
}
