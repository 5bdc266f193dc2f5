package player

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wildeyedskies/go-mpv/mpv"
	"github.com/yhkl-dev/PreviewCLI/mpvplayer"
)

// MPVPlayer implements the Player interface using MPV media player
type MPVPlayer struct {
	instance  *mpvplayer.Mpvplayer
	listeners Listeners
	log       logrus.FieldLogger
	done      chan struct{}
	stopped   chan struct{} // closed when the mpv event loop has returned
}

var _ Player = (*MPVPlayer)(nil)

// NewMPVPlayer creates a new MPVPlayer instance and starts its event loop.
// The loop stops when ctx is cancelled or the player is closed.
func NewMPVPlayer(ctx context.Context, log logrus.FieldLogger) (*MPVPlayer, error) {
	mpvInstance, err := mpvplayer.CreateMPVInstance()
	if err != nil {
		return nil, fmt.Errorf("failed to create MPV instance: %w", err)
	}

	stopped := make(chan struct{})
	p := &MPVPlayer{
		instance: &mpvplayer.Mpvplayer{
			Mpv:          mpvInstance,
			EventChannel: createEventListener(ctx, mpvInstance, stopped),
		},
		log:     log.WithField("component", "mpv"),
		done:    make(chan struct{}),
		stopped: stopped,
	}
	go p.dispatch(ctx)

	return p, nil
}

func (p *MPVPlayer) ready() error {
	if p.instance == nil || p.instance.Mpv == nil {
		return ErrNotInitialized
	}
	return nil
}

func (p *MPVPlayer) Load(url string) error {
	if err := p.ready(); err != nil {
		return err
	}
	if err := p.instance.Load(url); err != nil {
		return fmt.Errorf("load %s: %w", url, err)
	}
	return nil
}

func (p *MPVPlayer) Play() error {
	if err := p.ready(); err != nil {
		return err
	}
	return p.instance.SetPaused(false)
}

func (p *MPVPlayer) Pause() error {
	if err := p.ready(); err != nil {
		return err
	}
	return p.instance.SetPaused(true)
}

func (p *MPVPlayer) Position() (time.Duration, error) {
	if err := p.ready(); err != nil {
		return 0, err
	}
	pos, err := p.instance.GetProgress()
	if err != nil {
		return 0, err
	}
	return seconds(pos), nil
}

func (p *MPVPlayer) Seek(pos time.Duration) error {
	if err := p.ready(); err != nil {
		return err
	}
	return p.instance.SeekAbsolute(pos.Seconds())
}

func (p *MPVPlayer) Duration() (time.Duration, error) {
	if err := p.ready(); err != nil {
		return 0, err
	}
	d, err := p.instance.GetDuration()
	if err != nil {
		return 0, err
	}
	return seconds(d), nil
}

func (p *MPVPlayer) Subscribe(l Listener) func() {
	return p.listeners.Subscribe(l)
}

// Close performs cleanup operations
func (p *MPVPlayer) Close() error {
	if err := p.ready(); err != nil {
		return nil
	}
	select {
	case <-p.done:
		return nil
	default:
		close(p.done)
	}
	p.instance.Command([]string{"quit"})

	// WaitEvent must not run against a destroyed handle
	select {
	case <-p.stopped:
	case <-time.After(2 * time.Second):
		p.log.Warn("mpv event loop did not stop in time")
	}
	p.instance.TerminateDestroy()
	return nil
}

// dispatch turns raw mpv events into player events for subscribers
func (p *MPVPlayer) dispatch(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.log.WithField("panic", r).Error("mpv event dispatch stopped")
		}
	}()

	for {
		select {
		case e, ok := <-p.instance.EventChannel:
			if !ok {
				return
			}
			if ev, ok := p.translate(e); ok {
				p.listeners.Emit(ev)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (p *MPVPlayer) translate(e *mpv.Event) (Event, bool) {
	switch e.Event_Id {
	case mpv.EVENT_PROPERTY_CHANGE:
		switch e.Reply_Userdata {
		case mpvplayer.ObserveTimePos:
			pos, err := p.instance.GetProgress()
			if err != nil || pos < 0 {
				return Event{}, false
			}
			return Event{Kind: EventPosition, Value: seconds(pos)}, true
		case mpvplayer.ObserveDuration:
			d, err := p.instance.GetDuration()
			if err != nil || d <= 0 {
				return Event{}, false
			}
			return Event{Kind: EventDuration, Value: seconds(d)}, true
		}
	case mpv.EVENT_START_FILE:
		p.instance.MarkStarted()
	case mpv.EVENT_END_FILE:
		ef, ok := e.Data.(mpv.EventEndFile)
		if !ok || !p.instance.EndedCurrent(ef.Reason) {
			return Event{}, false
		}
		return Event{Kind: EventEnded}, true
	}
	return Event{}, false
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// createEventListener creates an event listener for MPV events
func createEventListener(ctx context.Context, m *mpv.Mpv, stopped chan struct{}) chan *mpv.Event {
	c := make(chan *mpv.Event)
	go func() {
		defer close(stopped)
		defer close(c)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				e := m.WaitEvent(1)
				if e == nil || e.Event_Id == mpv.EVENT_NONE {
					time.Sleep(10 * time.Millisecond)
					continue
				}
				if e.Event_Id == mpv.EVENT_SHUTDOWN {
					return
				}
				select {
				case c <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return c
}
