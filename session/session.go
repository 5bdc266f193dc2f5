// Package session coordinates catalog searches with the playback
// controller. Only the most recent request may replace the track list.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yhkl-dev/PreviewCLI/domain"
	"github.com/yhkl-dev/PreviewCLI/library"
	"github.com/yhkl-dev/PreviewCLI/logging"
	"github.com/yhkl-dev/PreviewCLI/metrics"
	"go.uber.org/atomic"
)

// ErrStale is returned by a search superseded by a newer one
var ErrStale = errors.New("search superseded by a newer request")

const (
	DefaultTimeout = 15 * time.Second

	TitleNoResults    = "No results found"
	TitleSearchFailed = "Search failed"
)

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notice is a transient message for the status line
type Notice struct {
	Level  Level
	Title  string
	Detail string
}

// TrackLoader receives the result list of the latest search
type TrackLoader interface {
	LoadList(tracks []domain.Track)
}

type Option func(*Session)

func WithLimit(n int) Option {
	return func(s *Session) { s.limit = n }
}

func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithNotifier sets the callback receiving user-facing notices
func WithNotifier(fn func(Notice)) Option {
	return func(s *Session) { s.notify = fn }
}

// WithLoadingFunc sets the callback invoked when the loading flag flips
func WithLoadingFunc(fn func(bool)) Option {
	return func(s *Session) { s.onLoading = fn }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) { s.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

type Session struct {
	lib    library.Library
	loader TrackLoader

	limit   int
	timeout time.Duration

	generation atomic.Uint64
	loading    atomic.Bool
	applyMu    sync.Mutex

	notify    func(Notice)
	onLoading func(bool)
	log       logrus.FieldLogger
	metrics   *metrics.Metrics
}

func New(lib library.Library, loader TrackLoader, opts ...Option) *Session {
	s := &Session{
		lib:     lib,
		loader:  loader,
		limit:   library.DefaultLimit,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.OrDiscard(s.log).WithField("component", "session")
	return s
}

// Loading reports whether the latest search is still in flight
func (s *Session) Loading() bool {
	return s.loading.Load()
}

// Search runs query against the catalog and, if no newer search was issued
// meanwhile, installs the result in the loader. Failures keep the previous
// list and raise a single notice.
func (s *Session) Search(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return library.ErrEmptyQuery
	}

	gen := s.generation.Inc()
	s.setLoading(true)

	log := s.log.WithFields(logrus.Fields{
		"request": uuid.NewString(),
		"query":   query,
	})
	log.Debug("search started")

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	tracks, err := s.lib.SearchTracks(ctx, query, s.limit)
	elapsed := time.Since(start)

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	if gen != s.generation.Load() {
		log.WithField("elapsed", elapsed).Debug("discarding stale search response")
		s.metrics.ObserveSearch(metrics.OutcomeStale, elapsed)
		return ErrStale
	}
	defer s.setLoading(false)

	if err != nil {
		log.WithError(err).Warn("search failed")
		s.metrics.ObserveSearch(metrics.OutcomeError, elapsed)
		s.emit(Notice{Level: LevelError, Title: TitleSearchFailed, Detail: err.Error()})
		return err
	}

	s.loader.LoadList(tracks)
	if len(tracks) == 0 {
		log.Info("search returned no playable tracks")
		s.metrics.ObserveSearch(metrics.OutcomeEmpty, elapsed)
		s.emit(Notice{Level: LevelInfo, Title: TitleNoResults, Detail: query})
		return nil
	}

	log.WithFields(logrus.Fields{"tracks": len(tracks), "elapsed": elapsed}).Info("search complete")
	s.metrics.ObserveSearch(metrics.OutcomeOK, elapsed)
	return nil
}

func (s *Session) setLoading(v bool) {
	if s.loading.Swap(v) != v && s.onLoading != nil {
		s.onLoading(v)
	}
}

func (s *Session) emit(n Notice) {
	if s.notify != nil {
		s.notify(n)
	}
}
