// Package playback owns the single audio resource and the position in the
// current track list. Views drive it with transport actions and follow it
// through change notifications.
package playback

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yhkl-dev/PreviewCLI/domain"
	"github.com/yhkl-dev/PreviewCLI/logging"
	"github.com/yhkl-dev/PreviewCLI/metrics"
	"github.com/yhkl-dev/PreviewCLI/player"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNoTrack         = errors.New("no track loaded")
)

// EndPolicy decides what happens when a preview plays to its end
type EndPolicy int

const (
	// EndAdvance moves to the next track and stops after the last one
	EndAdvance EndPolicy = iota
	// EndStop stops on the finished track
	EndStop
)

// ParseEndPolicy maps a config value to an EndPolicy
func ParseEndPolicy(s string) (EndPolicy, error) {
	switch s {
	case "", "advance":
		return EndAdvance, nil
	case "stop":
		return EndStop, nil
	default:
		return EndAdvance, fmt.Errorf("unknown end-of-track policy %q", s)
	}
}

type Option func(*Controller)

func WithEndPolicy(p EndPolicy) Option {
	return func(c *Controller) { c.endPolicy = p }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Controller) { c.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// Controller is the playback state machine: Empty, Stopped and Playing.
// All methods are safe for concurrent use; resource events arrive on the
// backend's goroutine.
type Controller struct {
	mu       sync.Mutex
	player   player.Player
	tracks   []domain.Track
	index    int
	playing  bool
	position time.Duration
	duration time.Duration

	// binding identifies the current source; events from older bindings
	// are dropped
	binding     uint64
	unsubscribe func()

	endPolicy   EndPolicy
	log         logrus.FieldLogger
	metrics     *metrics.Metrics
	subscribers subscribers
}

func NewController(p player.Player, opts ...Option) *Controller {
	c := &Controller{
		player:   p,
		index:    -1,
		duration: domain.DefaultPreviewDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrDiscard(c.log).WithField("component", "playback")
	return c
}

// Subscribe registers fn for state-change notifications. Notifications are
// delivered outside the controller lock, so fn may call back into it.
func (c *Controller) Subscribe(fn func(Change)) (unsubscribe func()) {
	return c.subscribers.add(fn)
}

// State returns a snapshot of the current playback state
func (c *Controller) State() domain.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() domain.PlaybackState {
	s := domain.PlaybackState{
		Status:   domain.StatusEmpty,
		Index:    -1,
		Position: c.position,
		Duration: c.duration,
		Length:   len(c.tracks),
	}
	if len(c.tracks) == 0 {
		return s
	}
	track := c.tracks[c.index]
	s.Index = c.index
	s.Track = &track
	s.Status = domain.StatusStopped
	if c.playing {
		s.Status = domain.StatusPlaying
	}
	return s
}

// Tracks returns a copy of the current track list
func (c *Controller) Tracks() []domain.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Track(nil), c.tracks...)
}

// LoadList installs a new track list, resets the index to 0 and tries to
// play the first track. An empty list moves the controller to Empty.
func (c *Controller) LoadList(tracks []domain.Track) {
	c.mu.Lock()
	c.tracks = append([]domain.Track(nil), tracks...)
	kinds := []ChangeKind{ListChanged}
	if len(c.tracks) == 0 {
		c.detachLocked()
		if c.playing {
			if err := c.player.Pause(); err != nil {
				c.log.WithError(err).Warn("pause on empty list failed")
			}
		}
		c.index = -1
		c.playing = false
		c.position = 0
		c.duration = domain.DefaultPreviewDuration
		kinds = append(kinds, TrackChanged, StatusChanged)
	} else {
		c.index = 0
		kinds = append(kinds, c.bindLocked()...)
	}
	state := c.stateLocked()
	c.mu.Unlock()

	c.log.WithField("tracks", len(tracks)).Info("track list loaded")
	c.subscribers.notify(kinds, state)
}

// SelectIndex moves to track i and tries to play it
func (c *Controller) SelectIndex(i int) error {
	c.mu.Lock()
	if i < 0 || i >= len(c.tracks) {
		c.mu.Unlock()
		return ErrIndexOutOfRange
	}
	c.index = i
	kinds := c.bindLocked()
	state := c.stateLocked()
	c.mu.Unlock()

	c.metrics.Transport("select")
	c.subscribers.notify(kinds, state)
	return nil
}

// Next moves to the following track. It is a no-op on the last track.
func (c *Controller) Next() bool {
	return c.step(1, "next")
}

// Previous moves to the preceding track. It is a no-op on the first track.
func (c *Controller) Previous() bool {
	return c.step(-1, "previous")
}

func (c *Controller) step(delta int, action string) bool {
	c.mu.Lock()
	target := c.index + delta
	if len(c.tracks) == 0 || target < 0 || target >= len(c.tracks) {
		c.mu.Unlock()
		return false
	}
	c.index = target
	kinds := c.bindLocked()
	state := c.stateLocked()
	c.mu.Unlock()

	c.metrics.Transport(action)
	c.subscribers.notify(kinds, state)
	return true
}

// TogglePlayPause flips between Playing and Stopped
func (c *Controller) TogglePlayPause() error {
	c.mu.Lock()
	if len(c.tracks) == 0 {
		c.mu.Unlock()
		return ErrNoTrack
	}

	var err error
	if c.playing {
		err = c.player.Pause()
	} else {
		err = c.player.Play()
	}
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.playing = !c.playing
	state := c.stateLocked()
	c.mu.Unlock()

	c.metrics.Transport("toggle")
	c.subscribers.notify([]ChangeKind{StatusChanged}, state)
	return nil
}

// Pause stops playback if it is running
func (c *Controller) Pause() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	if err := c.player.Pause(); err != nil {
		c.mu.Unlock()
		c.log.WithError(err).Warn("pause failed")
		return
	}
	c.playing = false
	state := c.stateLocked()
	c.mu.Unlock()

	c.subscribers.notify([]ChangeKind{StatusChanged}, state)
}

// Seek moves the current track to pos. Negative targets start from 0;
// the audio resource clamps targets past the end.
func (c *Controller) Seek(pos time.Duration) error {
	c.mu.Lock()
	if len(c.tracks) == 0 {
		c.mu.Unlock()
		return ErrNoTrack
	}
	if pos < 0 {
		pos = 0
	}
	if err := c.player.Seek(pos); err != nil {
		c.mu.Unlock()
		return err
	}
	c.position = min(pos, c.duration)
	state := c.stateLocked()
	c.mu.Unlock()

	c.metrics.Transport("seek")
	c.subscribers.notify([]ChangeKind{PositionChanged}, state)
	return nil
}

// SeekBy moves relative to the current position
func (c *Controller) SeekBy(delta time.Duration) error {
	c.mu.Lock()
	target := c.position + delta
	c.mu.Unlock()
	return c.Seek(target)
}

// Close detaches from the audio resource and pauses it
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detachLocked()
	if c.playing {
		if err := c.player.Pause(); err != nil {
			c.log.WithError(err).Warn("pause on close failed")
		}
		c.playing = false
	}
}

func (c *Controller) detachLocked() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.binding++
}

// bindLocked points the resource at the current track, attaches a fresh
// listener and attempts autoplay. A blocked autoplay leaves the track
// selected but stopped.
func (c *Controller) bindLocked() []ChangeKind {
	c.detachLocked()
	id := c.binding
	track := c.tracks[c.index]

	c.playing = false
	c.position = 0
	c.duration = domain.DefaultPreviewDuration
	kinds := []ChangeKind{TrackChanged, StatusChanged, PositionChanged, DurationChanged}

	log := c.log.WithFields(logrus.Fields{"index": c.index, "track": track.ID})
	if err := c.player.Load(track.PreviewURL); err != nil {
		log.WithError(err).Warn("load preview failed")
		return kinds
	}
	c.unsubscribe = c.player.Subscribe(func(ev player.Event) {
		c.handleEvent(id, ev)
	})
	c.metrics.PreviewStarted()

	if err := c.player.Play(); err != nil {
		log.WithError(err).Debug("autoplay blocked")
		return kinds
	}
	c.playing = true
	log.Debug("preview playing")
	return kinds
}

func (c *Controller) handleEvent(id uint64, ev player.Event) {
	c.mu.Lock()
	if id != c.binding || len(c.tracks) == 0 {
		c.mu.Unlock()
		return
	}

	var kinds []ChangeKind
	switch ev.Kind {
	case player.EventPosition:
		if ev.Value < 0 || ev.Value == c.position {
			c.mu.Unlock()
			return
		}
		c.position = ev.Value
		kinds = []ChangeKind{PositionChanged}
	case player.EventDuration:
		if ev.Value <= 0 || ev.Value == c.duration {
			c.mu.Unlock()
			return
		}
		c.duration = ev.Value
		kinds = []ChangeKind{DurationChanged}
	case player.EventEnded:
		kinds = c.endOfTrackLocked()
	}
	state := c.stateLocked()
	c.mu.Unlock()

	c.subscribers.notify(kinds, state)
}

func (c *Controller) endOfTrackLocked() []ChangeKind {
	if c.endPolicy == EndAdvance && c.index < len(c.tracks)-1 {
		c.index++
		c.log.WithField("index", c.index).Debug("advancing after end of track")
		return c.bindLocked()
	}
	c.playing = false
	c.position = c.duration
	return []ChangeKind{StatusChanged, PositionChanged}
}
