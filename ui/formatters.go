package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"
	"github.com/yhkl-dev/PreviewCLI/domain"
)

// FormatClock renders d as m:ss; negative durations render as 0:00
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// CreateProgressBar creates a visual progress bar
func CreateProgressBar(progress float64, width int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(width))

	var b strings.Builder
	b.WriteString("[lightgreen]")
	b.WriteString(strings.Repeat("▓", filled))
	b.WriteString("[darkgray]")
	b.WriteString(strings.Repeat("░", width-filled))
	return b.String()
}

// Truncate shortens s to maxWidth terminal cells, ending with "…"
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// FormatTransport renders the now-playing block of the transport bar
func FormatTransport(s domain.PlaybackState, barWidth, textWidth int) string {
	if s.Track == nil {
		return ""
	}

	glyph := "[yellow]⏸"
	if s.IsPlaying() {
		glyph = "[lightgreen]▶"
	}

	collection := ""
	if s.Track.Collection != "" {
		collection = fmt.Sprintf("\n[darkgray]%s", tview.Escape(Truncate(s.Track.Collection, textWidth)))
	}

	return fmt.Sprintf(`[white::b]%s[-:-:-]
[gray]%s%s

%s %s
[white]%s [darkgray]/ [white]%s   [darkgray]%d of %d`,
		tview.Escape(Truncate(s.Track.Title, textWidth)),
		tview.Escape(Truncate(s.Track.Artist, textWidth)),
		collection,
		glyph,
		CreateProgressBar(s.Progress(), barWidth),
		FormatClock(s.Position),
		FormatClock(s.Duration),
		s.Index+1,
		s.Length)
}
