package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/yhkl-dev/PreviewCLI/domain"
)

func TestFormatClock(t *testing.T) {
	cases := map[time.Duration]string{
		0:                                     "0:00",
		7 * time.Second:                       "0:07",
		30 * time.Second:                      "0:30",
		90*time.Second + 900*time.Millisecond: "1:30",
		10*time.Minute + 5*time.Second:        "10:05",
		-3 * time.Second:                      "0:00",
	}
	for in, want := range cases {
		if got := FormatClock(in); got != want {
			t.Errorf("FormatClock(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestCreateProgressBar(t *testing.T) {
	bar := CreateProgressBar(0.5, 10)
	if strings.Count(bar, "▓") != 5 || strings.Count(bar, "░") != 5 {
		t.Errorf("Expected half-filled bar, got %q", bar)
	}
	if strings.Count(CreateProgressBar(2, 10), "▓") != 10 {
		t.Errorf("Progress above 1 should fill the bar")
	}
	if strings.Count(CreateProgressBar(-1, 10), "░") != 10 {
		t.Errorf("Negative progress should leave the bar empty")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Yellow", 10); got != "Yellow" {
		t.Errorf("Short strings must be unchanged, got %q", got)
	}
	if got := Truncate("Viva la Vida or Death and All His Friends", 10); got != "Viva la V…" {
		t.Errorf("Unexpected truncation %q", got)
	}
	// wide runes take two cells each
	if got := Truncate("東京事変東京事変", 6); got != "東京…" {
		t.Errorf("Unexpected wide truncation %q", got)
	}
	if Truncate("anything", 0) != "" {
		t.Errorf("Zero width should yield empty string")
	}
}

func TestFormatTransport(t *testing.T) {
	track := domain.Track{Title: "Yellow", Artist: "Coldplay", Collection: "Parachutes [Remaster]"}
	s := domain.PlaybackState{
		Status:   domain.StatusPlaying,
		Index:    1,
		Track:    &track,
		Position: 15 * time.Second,
		Duration: 30 * time.Second,
		Length:   3,
	}

	out := FormatTransport(s, 10, 40)
	for _, want := range []string{"Yellow", "Coldplay", "0:15", "0:30", "2 of 3", "▶"} {
		if !strings.Contains(out, want) {
			t.Errorf("Transport text missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "Parachutes [Remaster[]") {
		t.Errorf("Catalog text must be escaped for tview:\n%s", out)
	}

	if FormatTransport(domain.PlaybackState{Status: domain.StatusEmpty, Index: -1}, 10, 40) != "" {
		t.Errorf("Empty state should render nothing")
	}
}
