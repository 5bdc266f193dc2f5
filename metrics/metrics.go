// Package metrics exposes prometheus collectors for searches and playback.
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const namespace = "previewcli"

// Search outcomes
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
	OutcomeStale = "stale"
)

type Metrics struct {
	Registry         *prometheus.Registry
	SearchRequests   *prometheus.CounterVec
	SearchDuration   prometheus.Histogram
	PreviewsStarted  prometheus.Counter
	TransportActions *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SearchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Catalog searches by outcome.",
		}, []string{"outcome"}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Latency of catalog searches.",
			Buckets:   prometheus.DefBuckets,
		}),
		PreviewsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "previews_started_total",
			Help:      "Preview sources bound to the audio resource.",
		}),
		TransportActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_actions_total",
			Help:      "User transport actions that changed playback.",
		}, []string{"action"}),
	}
	m.Registry.MustRegister(
		m.SearchRequests,
		m.SearchDuration,
		m.PreviewsStarted,
		m.TransportActions,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) ObserveSearch(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SearchRequests.WithLabelValues(outcome).Inc()
	m.SearchDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) PreviewStarted() {
	if m == nil {
		return
	}
	m.PreviewsStarted.Inc()
}

func (m *Metrics) Transport(action string) {
	if m == nil {
		return
	}
	m.TransportActions.WithLabelValues(action).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, m *Metrics, log logrus.FieldLogger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("metrics listener started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
