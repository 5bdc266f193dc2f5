package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/yhkl-dev/PreviewCLI/playback"
	"github.com/yhkl-dev/PreviewCLI/session"
)

const transportHeight = 12

// createHomepage sets up the UI layout
func (a *App) createHomepage() {
	a.queryInput = NewQueryInput(a.submitSearch, func() {
		a.tviewApp.SetFocus(a.trackList.Primitive())
	})
	a.trackList = NewTrackList(a.ui.MaxColumnWidth, a.selectTrack)
	a.helpView = NewHelpView()

	a.transportInfo = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false).
		SetWrap(false)

	a.artworkView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false).
		SetWrap(false)

	a.transport = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.artworkView, a.ui.ArtworkWidth+1, 0, false).
		AddItem(a.transportInfo, 0, 1, false)
	a.transport.SetBorder(true).
		SetTitle(" Now Playing ").
		SetBorderColor(tcell.ColorDarkGreen)

	a.statusLine = tview.NewTextView().
		SetDynamicColors(true).
		SetText("[gray]Type a query and press ENTER. ? for help, ESC to exit")

	a.rootFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.queryInput.Primitive(), 1, 0, false).
		AddItem(a.trackList.Primitive(), 0, 1, true).
		AddItem(a.transport, 0, 0, false).
		AddItem(a.statusLine, 1, 0, false)

	a.setupKeyBindings()
	a.setupInputHandlers()

	a.tviewApp.SetRoot(a.rootFlex, true)
	a.tviewApp.SetFocus(a.queryInput.Primitive())
}

func (a *App) setupKeyBindings() {
	a.keys = NewKeyBindingManager()
	bind := func(name string, handler func(), keys []tcell.Key, runes ...rune) {
		a.keys.RegisterKeyBinding(KeyAction{name: name, handler: handler}, keys, runes)
	}

	bind("toggle", a.togglePlayback, nil, ' ')
	bind("next", func() { a.controller.Next() }, []tcell.Key{tcell.KeyRight}, 'n')
	bind("previous", func() { a.controller.Previous() }, []tcell.Key{tcell.KeyLeft}, 'p')
	bind("seekBack", func() { a.seekBy(-a.ui.GetSeekStep()) }, nil, '[')
	bind("seekForward", func() { a.seekBy(a.ui.GetSeekStep()) }, nil, ']')
	bind("search", a.focusSearch, nil, '/')
	bind("help", a.showHelp, nil, '?')
	bind("goLast", a.trackList.SelectLast, nil, 'G')
	a.keys.RegisterSequence("gg", KeyAction{name: "goFirst", handler: a.trackList.SelectFirst})

	for d := '0'; d <= '9'; d++ {
		fraction := float64(d-'0') / 10
		bind("seekPercent", func() { a.seekFraction(fraction) }, nil, d)
	}
}

// setupInputHandlers sets up keyboard input handlers
func (a *App) setupInputHandlers() {
	a.tviewApp.SetInputCapture(a.handleKey)
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		a.quit()
		return nil
	}

	// Handle modal views first
	if a.helpView.IsActive() {
		if event.Key() == tcell.KeyEscape || event.Rune() == '?' {
			a.closeHelp()
			return nil
		}
		return event
	}

	// The search field owns printable keys and Escape while focused
	if a.tviewApp.GetFocus() == a.queryInput.Primitive() {
		return event
	}

	if event.Key() == tcell.KeyEscape {
		a.quit()
		return nil
	}
	if a.keys.HandleKey(event) {
		return nil
	}
	return event
}

func (a *App) selectTrack(index int) {
	if err := a.controller.SelectIndex(index); err != nil {
		a.log.WithError(err).WithField("index", index).Debug("select failed")
	}
}

func (a *App) togglePlayback() {
	if err := a.controller.TogglePlayPause(); err != nil && !errors.Is(err, playback.ErrNoTrack) {
		a.log.WithError(err).Warn("toggle playback failed")
		a.setStatus("[red]Playback failed: " + tview.Escape(err.Error()))
	}
}

func (a *App) seekBy(delta time.Duration) {
	if err := a.controller.SeekBy(delta); err != nil && !errors.Is(err, playback.ErrNoTrack) {
		a.log.WithError(err).Debug("seek failed")
	}
}

func (a *App) seekFraction(fraction float64) {
	d := a.controller.State().Duration
	if err := a.controller.Seek(time.Duration(fraction * float64(d))); err != nil && !errors.Is(err, playback.ErrNoTrack) {
		a.log.WithError(err).Debug("seek failed")
	}
}

func (a *App) focusSearch() {
	a.tviewApp.SetFocus(a.queryInput.Primitive())
}

// render brings every view in line with the controller; UI goroutine only
func (a *App) render() {
	state := a.controller.State()

	if a.listDirty.Swap(false) {
		a.trackList.SetTracks(a.controller.Tracks())
	}
	a.trackList.SetCurrent(state.Index)

	a.setTransportVisible(state.Track != nil)
	if state.Track == nil {
		a.transportInfo.SetText("")
		a.artworkURL = ""
		return
	}

	a.transportInfo.SetText(FormatTransport(state, a.ui.ProgressBarWidth, a.ui.MaxColumnWidth))
	if state.Track.ArtworkURL != a.artworkURL {
		a.artworkURL = state.Track.ArtworkURL
		if a.artwork != nil {
			a.artworkView.SetText(a.artwork.Placeholder())
		}
		a.loadArtwork(a.artworkURL)
	}
}

func (a *App) setTransportVisible(visible bool) {
	if visible == a.transportVisible {
		return
	}
	a.transportVisible = visible
	height := 0
	if visible {
		height = max(transportHeight, a.ui.ArtworkHeight+2)
	}
	a.rootFlex.ResizeItem(a.transport, height, 0)
}

func (a *App) showNotice(n session.Notice) {
	color := "[gray]"
	if n.Level == session.LevelError {
		color = "[red]"
	}
	text := color + n.Title
	if n.Detail != "" {
		text += "[darkgray]: " + tview.Escape(n.Detail)
	}
	a.noticeShown = true
	a.setStatus(text)
}

func resultSummary(n int) string {
	if n == 1 {
		return "[gray]1 result. ? for help"
	}
	return fmt.Sprintf("[gray]%d results. ? for help", n)
}

func (a *App) setStatus(text string) {
	a.statusLine.SetText(text)
}

// showHelp displays the help modal view
func (a *App) showHelp() {
	a.helpView.SetActive(true)
	a.tviewApp.SetRoot(a.helpView.Modal(), true)
}

func (a *App) closeHelp() {
	a.helpView.SetActive(false)
	a.tviewApp.SetRoot(a.rootFlex, true)
	a.tviewApp.SetFocus(a.trackList.Primitive())
}
