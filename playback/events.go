package playback

import (
	"github.com/yhkl-dev/PreviewCLI/domain"
	"github.com/yhkl-dev/PreviewCLI/player"
)

// ChangeKind names a state change a view may want to react to
type ChangeKind int

const (
	ListChanged ChangeKind = iota
	TrackChanged
	StatusChanged
	PositionChanged
	DurationChanged
)

func (k ChangeKind) String() string {
	switch k {
	case ListChanged:
		return "list"
	case TrackChanged:
		return "track"
	case StatusChanged:
		return "status"
	case PositionChanged:
		return "position"
	case DurationChanged:
		return "duration"
	default:
		return "unknown"
	}
}

// Change carries the state right after the change was applied
type Change struct {
	Kind  ChangeKind
	State domain.PlaybackState
}

// subscribers delivers changes outside the controller lock
type subscribers struct {
	player.Fanout[Change]
}

func (s *subscribers) add(fn func(Change)) func() {
	return s.Subscribe(fn)
}

func (s *subscribers) notify(kinds []ChangeKind, state domain.PlaybackState) {
	for _, kind := range kinds {
		s.Emit(Change{Kind: kind, State: state})
	}
}
