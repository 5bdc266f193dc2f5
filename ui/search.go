package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	searchLabel  = "[yellow]Search: "
	loadingLabel = "[yellow]Searching... "
)

// QueryInput is the search field above the results
type QueryInput struct {
	field   *tview.InputField
	loading bool
}

// NewQueryInput creates the search field. onSubmit receives trimmed,
// non-empty queries; onLeave is called when focus should go back to the
// results.
func NewQueryInput(onSubmit func(query string), onLeave func()) *QueryInput {
	qi := &QueryInput{}

	qi.field = tview.NewInputField().
		SetLabel(searchLabel).
		SetFieldWidth(0).
		SetPlaceholder("Artist, song or album. ENTER to search, ESC to go back").
		SetFieldBackgroundColor(tcell.ColorBlack)
	qi.field.SetBorder(false)

	qi.field.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			if qi.loading {
				return
			}
			query := strings.TrimSpace(qi.field.GetText())
			if query == "" {
				return
			}
			onSubmit(query)
		case tcell.KeyEscape, tcell.KeyTab:
			onLeave()
		}
	})

	qi.field.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyDown {
			onLeave()
			return nil
		}
		return event
	})

	return qi
}

// SetLoading disables the field while a search runs
func (qi *QueryInput) SetLoading(loading bool) {
	qi.loading = loading
	qi.field.SetDisabled(loading)
	if loading {
		qi.field.SetLabel(loadingLabel)
	} else {
		qi.field.SetLabel(searchLabel)
	}
}

func (qi *QueryInput) Loading() bool {
	return qi.loading
}

func (qi *QueryInput) Text() string {
	return qi.field.GetText()
}

func (qi *QueryInput) Primitive() tview.Primitive {
	return qi.field
}
