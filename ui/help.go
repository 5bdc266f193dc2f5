package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const helpText = `[yellow::b]Keyboard Shortcuts[-:-:-]

[lightgreen]Playback Controls:[-]
  [white]Space[-]       Play/Pause current preview
  [white]Enter[-]       Play selected track
  [white]n / →[-]       Next track
  [white]p / ←[-]       Previous track
  [white][ / ][-]       Seek back/forward
  [white]0 - 9[-]       Jump to 0% - 90%

[lightgreen]Navigation:[-]
  [white]↑ / ↓[-]       Move in the result list
  [white]gg / G[-]      First / last result
  [white]/[-]           Focus the search field
  [white]?[-]           Show this help panel

[lightgreen]General:[-]
  [white]ESC[-]         Leave search field / close help / exit
  [white]Ctrl+C[-]      Exit program

[yellow]Press ESC or ? to close this help panel[-]
`

// HelpView represents the keyboard shortcuts help interface
type HelpView struct {
	container *tview.Flex
	textView  *tview.TextView
	isActive  bool
}

// NewHelpView creates a new help view
func NewHelpView() *HelpView {
	hv := &HelpView{}

	hv.textView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true).
		SetText(helpText)

	hv.container = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(hv.textView, 0, 1, true)

	hv.container.SetBorder(true).
		SetTitle(" Help (ESC to close) ").
		SetBorderColor(tcell.ColorYellow)

	return hv
}

// Modal wraps the help panel in a centered layout
func (hv *HelpView) Modal() tview.Primitive {
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexColumn).
			AddItem(nil, 0, 1, false).
			AddItem(hv.container, 60, 0, true).
			AddItem(nil, 0, 1, false), 24, 0, true).
		AddItem(nil, 0, 1, false)
}

func (hv *HelpView) SetActive(active bool) {
	hv.isActive = active
}

// IsActive returns whether the help view is active
func (hv *HelpView) IsActive() bool {
	return hv.isActive
}
