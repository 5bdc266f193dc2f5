package domain

import "time"

// DefaultPreviewDuration is the nominal catalog preview length, used until
// the audio resource reports the real duration.
const DefaultPreviewDuration = 30 * time.Second

// Track represents one playable catalog entry with a short audio preview
type Track struct {
	ID          string
	Title       string
	Artist      string
	Collection  string
	Genre       string
	ArtworkURL  string
	PreviewURL  string
	TrackLength time.Duration // full length of the original track, informational
}

// Status is the transport state of the playback controller
type Status int

const (
	StatusEmpty Status = iota
	StatusStopped
	StatusPlaying
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// PlaybackState is a point-in-time snapshot of the playback controller.
// Track is nil and Index is -1 when no track list is loaded.
type PlaybackState struct {
	Status   Status
	Index    int
	Track    *Track
	Position time.Duration
	Duration time.Duration
	Length   int
}

// IsPlaying reports whether the transport is in the playing state
func (s PlaybackState) IsPlaying() bool {
	return s.Status == StatusPlaying
}

// HasPrevious reports whether Previous would move the index
func (s PlaybackState) HasPrevious() bool {
	return s.Track != nil && s.Index > 0
}

// HasNext reports whether Next would move the index
func (s PlaybackState) HasNext() bool {
	return s.Track != nil && s.Index < s.Length-1
}

// Progress returns the played fraction in [0, 1]
func (s PlaybackState) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := float64(s.Position) / float64(s.Duration)
	if p > 1 {
		return 1
	} else if p < 0 {
		return 0
	}
	return p
}
