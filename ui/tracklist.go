package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/yhkl-dev/PreviewCLI/domain"
)

// TrackList renders the search results and the current track
type TrackList struct {
	table    *tview.Table
	tracks   []domain.Track
	current  int
	maxWidth int
	loading  bool
}

// NewTrackList creates the result table. onSelect receives the index of the
// row chosen with Enter.
func NewTrackList(maxWidth int, onSelect func(index int)) *TrackList {
	tl := &TrackList{current: -1, maxWidth: maxWidth}

	tl.table = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	tl.table.SetBorder(true).
		SetTitle(" Results ").
		SetBorderColor(tcell.ColorDarkGreen)
	tl.table.SetSelectedStyle(tcell.StyleDefault.
		Background(tcell.ColorDarkGreen).
		Foreground(tcell.ColorWhite))

	tl.table.SetSelectedFunc(func(row, column int) {
		if row > 0 && row-1 < len(tl.tracks) && onSelect != nil {
			onSelect(row - 1)
		}
	})

	tl.render()
	return tl
}

// SetTracks replaces the rows and moves the cursor to the top
func (tl *TrackList) SetTracks(tracks []domain.Track) {
	tl.tracks = tracks
	tl.current = -1
	tl.render()
	tl.table.Select(1, 0)
	tl.table.ScrollToBeginning()
}

// SetLoading switches the empty-state text to the loading message
func (tl *TrackList) SetLoading(loading bool) {
	if tl.loading == loading {
		return
	}
	tl.loading = loading
	if len(tl.tracks) == 0 {
		tl.render()
	}
}

// SetCurrent highlights the track at index; -1 clears the highlight
func (tl *TrackList) SetCurrent(index int) {
	if index == tl.current {
		return
	}
	prev := tl.current
	tl.current = index
	tl.styleRow(prev)
	tl.styleRow(index)
}

// SetMaxColumnWidth changes the width limit of text columns
func (tl *TrackList) SetMaxColumnWidth(w int) {
	if w == tl.maxWidth {
		return
	}
	tl.maxWidth = w
	tl.render()
}

// SelectRow moves the cursor to track index without playing it
func (tl *TrackList) SelectRow(index int) {
	if index < 0 || index >= len(tl.tracks) {
		return
	}
	tl.table.Select(index+1, 0)
}

// SelectFirst moves the cursor to the first track
func (tl *TrackList) SelectFirst() {
	tl.SelectRow(0)
}

// SelectLast moves the cursor to the last track
func (tl *TrackList) SelectLast() {
	tl.SelectRow(len(tl.tracks) - 1)
}

// SelectedIndex returns the track index under the cursor, or -1
func (tl *TrackList) SelectedIndex() int {
	row, _ := tl.table.GetSelection()
	if row < 1 || row > len(tl.tracks) {
		return -1
	}
	return row - 1
}

func (tl *TrackList) Primitive() tview.Primitive {
	return tl.table
}

func (tl *TrackList) render() {
	tl.table.Clear()
	tl.setupHeaders()

	if len(tl.tracks) == 0 {
		msg := "[darkgray]No tracks. Press / to search."
		if tl.loading {
			msg = "[yellow]Searching..."
		}
		tl.table.SetCell(1, 1, tview.NewTableCell(msg).SetSelectable(false))
		tl.table.SetTitle(" Results ")
		return
	}

	for i, track := range tl.tracks {
		row := i + 1
		tl.table.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf("%d", row)).SetAlign(tview.AlignRight))
		tl.table.SetCell(row, 1, tview.NewTableCell(tview.Escape(Truncate(track.Title, tl.maxWidth))).SetExpansion(1))
		tl.table.SetCell(row, 2, tview.NewTableCell(tview.Escape(Truncate(track.Artist, tl.maxWidth))))
		tl.table.SetCell(row, 3, tview.NewTableCell(tview.Escape(Truncate(track.Collection, tl.maxWidth))))
		tl.styleRow(i)
	}
	tl.table.SetTitle(fmt.Sprintf(" Results (%d) ", len(tl.tracks)))
}

func (tl *TrackList) setupHeaders() {
	headerStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Attributes(tcell.AttrBold)
	for col, title := range []string{"#", "Title", "Artist", "Collection"} {
		tl.table.SetCell(0, col, tview.NewTableCell(title).
			SetStyle(headerStyle).
			SetSelectable(false))
	}
}

func (tl *TrackList) styleRow(index int) {
	if index < 0 || index >= len(tl.tracks) {
		return
	}
	row := index + 1
	numberColor, textColor, detailColor := tcell.ColorLightGreen, tcell.ColorWhite, tcell.ColorGray
	marker := ""
	if index == tl.current {
		numberColor, textColor, detailColor = tcell.ColorYellow, tcell.ColorYellow, tcell.ColorYellow
		marker = "▶ "
	}
	if cell := tl.table.GetCell(row, 0); cell != nil {
		cell.SetText(fmt.Sprintf("%s%d", marker, row)).SetTextColor(numberColor)
	}
	if cell := tl.table.GetCell(row, 1); cell != nil {
		cell.SetTextColor(textColor)
	}
	for col := 2; col <= 3; col++ {
		if cell := tl.table.GetCell(row, col); cell != nil {
			cell.SetTextColor(detailColor)
		}
	}
}
