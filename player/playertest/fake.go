// Package playertest provides an in-memory player.Player for tests.
package playertest

import (
	"sync"
	"time"

	"github.com/yhkl-dev/PreviewCLI/player"
)

// Fake records every call and only emits events when told to. Set the
// error fields to make the matching call fail.
type Fake struct {
	mu        sync.Mutex
	listeners player.Listeners

	Source   string
	Loads    []string
	Playing  bool
	Pos      time.Duration
	Seeks    []time.Duration
	Closed   bool
	LoadErr  error
	PlayErr  error
	PauseErr error
}

var _ player.Player = (*Fake)(nil)

func New() *Fake {
	return &Fake{}
}

func (f *Fake) Load(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LoadErr != nil {
		return f.LoadErr
	}
	f.Source = url
	f.Loads = append(f.Loads, url)
	f.Playing = false
	f.Pos = 0
	return nil
}

func (f *Fake) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PlayErr != nil {
		return f.PlayErr
	}
	f.Playing = true
	return nil
}

func (f *Fake) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PauseErr != nil {
		return f.PauseErr
	}
	f.Playing = false
	return nil
}

func (f *Fake) Position() (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Pos, nil
}

func (f *Fake) Seek(pos time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Seeks = append(f.Seeks, pos)
	f.Pos = pos
	return nil
}

func (f *Fake) Duration() (time.Duration, error) {
	return 30 * time.Second, nil
}

func (f *Fake) Subscribe(l player.Listener) func() {
	return f.listeners.Subscribe(l)
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Emit delivers ev to the current subscribers on the calling goroutine
func (f *Fake) Emit(ev player.Event) {
	f.listeners.Emit(ev)
}

// Subscribers returns the number of attached listeners
func (f *Fake) Subscribers() int {
	return f.listeners.Len()
}

// IsPlaying reports the primitive's own play state
func (f *Fake) IsPlaying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Playing
}

// LoadCount returns how many sources were loaded so far
func (f *Fake) LoadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Loads)
}
