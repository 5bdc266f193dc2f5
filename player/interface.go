package player

import (
	"errors"
	"time"
)

var ErrNotInitialized = errors.New("player not initialized")

// Player is the single audio resource of the application. Only the
// playback controller drives it; views read state through the controller.
type Player interface {
	// Load points the resource at a new source, abandoning any previous one.
	// The new source is left paused.
	Load(url string) error

	// Play starts or resumes the loaded source
	Play() error

	// Pause pauses the loaded source
	Pause() error

	// Position returns the elapsed time into the loaded source
	Position() (time.Duration, error)

	// Seek moves to an absolute position; the backend clamps the target
	Seek(pos time.Duration) error

	// Duration returns the length of the loaded source once known
	Duration() (time.Duration, error)

	// Subscribe registers l for asynchronous notifications and returns a
	// function that detaches it. The returned function is idempotent.
	Subscribe(l Listener) (unsubscribe func())

	// Close releases the underlying resource
	Close() error
}

// EventKind identifies an asynchronous notification from the resource
type EventKind int

const (
	EventPosition EventKind = iota // position advanced
	EventDuration                  // duration became known
	EventEnded                     // playback reached the end of the source
)

func (k EventKind) String() string {
	switch k {
	case EventPosition:
		return "position"
	case EventDuration:
		return "duration"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind  EventKind
	Value time.Duration
}

type Listener func(Event)
