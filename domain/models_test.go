package domain

import (
	"testing"
	"time"
)

func TestPlaybackStateNavigationFlags(t *testing.T) {
	track := &Track{ID: "1"}

	empty := PlaybackState{Status: StatusEmpty, Index: -1}
	if empty.HasNext() || empty.HasPrevious() {
		t.Errorf("Empty state should not allow navigation")
	}

	first := PlaybackState{Status: StatusStopped, Index: 0, Track: track, Length: 3}
	if first.HasPrevious() {
		t.Errorf("First track should not have a previous track")
	}
	if !first.HasNext() {
		t.Errorf("First of three tracks should have a next track")
	}

	last := PlaybackState{Status: StatusPlaying, Index: 2, Track: track, Length: 3}
	if last.HasNext() {
		t.Errorf("Last track should not have a next track")
	}
	if !last.HasPrevious() {
		t.Errorf("Last of three tracks should have a previous track")
	}
}

func TestPlaybackStateProgress(t *testing.T) {
	tests := []struct {
		position time.Duration
		duration time.Duration
		want     float64
	}{
		{0, DefaultPreviewDuration, 0},
		{15 * time.Second, 30 * time.Second, 0.5},
		{45 * time.Second, 30 * time.Second, 1},
		{5 * time.Second, 0, 0},
	}

	for _, tt := range tests {
		s := PlaybackState{Position: tt.position, Duration: tt.duration}
		if got := s.Progress(); got != tt.want {
			t.Errorf("Progress(%v/%v) = %v, want %v", tt.position, tt.duration, got, tt.want)
		}
	}
}

func TestStatusString(t *testing.T) {
	if StatusPlaying.String() != "playing" || StatusEmpty.String() != "empty" {
		t.Errorf("Unexpected status names: %s, %s", StatusPlaying, StatusEmpty)
	}
}
