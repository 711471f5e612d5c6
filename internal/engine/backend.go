package engine

// playbackBackend is the audio layer underneath the engine. Volume is a
// percentage (0-100); positions are seconds. Position/Duration report
// ok=false while no media is loaded.
type playbackBackend interface {
	Load(url string) error
	Play() error
	Pause() error
	Stop() error
	Seek(seconds float64) error
	SetVolume(percent float64) error
	Position() (float64, bool, error)
	Duration() (float64, bool, error)
	SetOnEOF(callback func())
	Close() error
}
