package ui

import (
	"context"
	"errors"
	"time"

	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/yhkl-dev/PreviewCLI/config"
	"github.com/yhkl-dev/PreviewCLI/coverart"
	"github.com/yhkl-dev/PreviewCLI/logging"
	"github.com/yhkl-dev/PreviewCLI/playback"
	"github.com/yhkl-dev/PreviewCLI/session"
	"go.uber.org/atomic"
)

// minimum spacing between two redraws triggered by playback changes
const redrawInterval = 100 * time.Millisecond

// Searcher runs catalog searches for the query input
type Searcher interface {
	Search(ctx context.Context, query string) error
	Loading() bool
}

// Deps are the collaborators of the UI
type Deps struct {
	Searcher   Searcher
	Controller *playback.Controller
	Artwork    *coverart.Converter
	UI         config.UIConfig
	Log        logrus.FieldLogger
}

// App represents the TUI application
type App struct {
	tviewApp   *tview.Application
	ctx        context.Context
	cancel     context.CancelFunc
	searcher   Searcher
	controller *playback.Controller
	artwork    *coverart.Converter
	ui         config.UIConfig
	log        logrus.FieldLogger

	// queue runs f on the UI goroutine
	queue func(f func())

	wg          conc.WaitGroup
	dirty       chan struct{}
	listDirty   atomic.Bool
	unsubscribe func()

	rootFlex         *tview.Flex
	queryInput       *QueryInput
	trackList        *TrackList
	transport        *tview.Flex
	transportInfo    *tview.TextView
	artworkView      *tview.TextView
	statusLine       *tview.TextView
	helpView         *HelpView
	keys             *KeyBindingManager
	transportVisible bool
	artworkURL       string
	// set when a notice replaced the status line during the current search
	noticeShown bool
}

// NewApp creates a new TUI application with dependency injection
func NewApp(ctx context.Context, deps Deps) *App {
	ctx, cancel := context.WithCancel(ctx)
	a := &App{
		tviewApp:   tview.NewApplication(),
		ctx:        ctx,
		cancel:     cancel,
		searcher:   deps.Searcher,
		controller: deps.Controller,
		artwork:    deps.Artwork,
		ui:         deps.UI,
		log:        logging.OrDiscard(deps.Log).WithField("component", "ui"),
		dirty:      make(chan struct{}, 1),
	}
	a.queue = func(f func()) {
		if a.ctx.Err() != nil {
			return
		}
		a.tviewApp.QueueUpdateDraw(f)
	}
	a.createHomepage()
	return a
}

// Run starts the application and blocks until it exits
func (a *App) Run() error {
	a.unsubscribe = a.controller.Subscribe(a.onChange)
	a.wg.Go(a.redrawLoop)

	a.log.Info("starting previewcli")
	err := a.tviewApp.Run()
	a.shutdown()
	return err
}

// Stop stops the application
func (a *App) Stop() {
	a.tviewApp.Stop()
}

func (a *App) shutdown() {
	a.cancel()
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if r := a.wg.WaitAndRecover(); r != nil {
		a.log.WithField("panic", r.Value).Error("background task panicked")
	}
}

// Notify shows a session notice on the status line
func (a *App) Notify(n session.Notice) {
	a.queue(func() { a.showNotice(n) })
}

// SetLoading reflects the search loading flag in the input and the list
func (a *App) SetLoading(loading bool) {
	a.queue(func() {
		a.queryInput.SetLoading(loading)
		a.trackList.SetLoading(loading)
		if loading {
			a.noticeShown = false
			a.setStatus("[yellow]Searching...")
			return
		}
		if !a.noticeShown {
			a.setStatus(resultSummary(a.controller.State().Length))
		}
	})
}

// ApplyUIConfig updates display settings after a config reload
func (a *App) ApplyUIConfig(cfg config.UIConfig) {
	a.queue(func() {
		a.ui = cfg
		a.trackList.SetMaxColumnWidth(cfg.MaxColumnWidth)
		a.render()
	})
}

// onChange runs on whichever goroutine changed the controller; it only
// marks the view dirty.
func (a *App) onChange(ch playback.Change) {
	if ch.Kind == playback.ListChanged {
		a.listDirty.Store(true)
	}
	select {
	case a.dirty <- struct{}{}:
	default:
	}
}

// redrawLoop coalesces change notifications into at most one redraw per
// redrawInterval
func (a *App) redrawLoop() {
	for {
		select {
		case <-a.dirty:
			a.queue(a.render)
			select {
			case <-time.After(redrawInterval):
			case <-a.ctx.Done():
				return
			}
		case <-a.ctx.Done():
			return
		}
	}
}

// submitSearch runs query in the background; the session decides whether
// its result is still wanted
func (a *App) submitSearch(query string) {
	a.tviewApp.SetFocus(a.trackList.Primitive())
	a.wg.Go(func() {
		err := a.searcher.Search(a.ctx, query)
		if err != nil && !errors.Is(err, session.ErrStale) && !errors.Is(err, context.Canceled) {
			a.log.WithError(err).Debug("search returned error")
		}
	})
}

// loadArtwork converts the artwork at url unless the track changed meanwhile
func (a *App) loadArtwork(url string) {
	if a.artwork == nil {
		return
	}
	a.wg.Go(func() {
		art, err := a.artwork.ConvertFromURL(a.ctx, url)
		if err != nil {
			a.log.WithError(err).WithField("url", url).Debug("artwork unavailable")
		}
		a.queue(func() {
			if a.artworkURL == url {
				a.artworkView.SetText(art)
			}
		})
	})
}

func (a *App) quit() {
	a.controller.Close()
	a.tviewApp.Stop()
}
