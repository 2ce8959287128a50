// Package metrics exports history ledger statistics to Prometheus.
//
// # Description
//
// Collector implements history.Recorder. Install it with
// engine.WithRecorder and serve the registry it was registered on with
// Handler or Serve. Metrics include:
//   - Action counters (committed, undone, redone, elided)
//   - Event and byte counters for committed actions
//   - Trim counters (actions and bytes dropped)
//   - A gauge of the current history footprint
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/edithistory/internal/engine/history"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// DefaultNamespace prefixes every metric when no namespace is given.
const DefaultNamespace = "edithist"

// Subsystem for history metrics
const historySubsystem = "history"

// Collector records ledger statistics as Prometheus metrics.
type Collector struct {
	// ActionsTotal counts history transitions.
	// Labels: kind (committed, undone, redone, elided)
	ActionsTotal *prometheus.CounterVec

	// EventsTotal counts events written by committed actions.
	EventsTotal prometheus.Counter

	// ActionBytes observes the log bytes of each committed action.
	ActionBytes prometheus.Histogram

	// TrimmedTotal counts what trimming dropped.
	// Labels: unit (actions, bytes)
	TrimmedTotal *prometheus.CounterVec

	// Footprint reports the current history footprint in bytes.
	Footprint prometheus.Gauge
}

var _ history.Recorder = (*Collector)(nil)

// New creates a Collector and registers its metrics on reg.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	c := &Collector{
		ActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: historySubsystem,
				Name:      "actions_total",
				Help:      "History transitions by kind",
			},
			[]string{"kind"},
		),
		EventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: historySubsystem,
			Name:      "events_total",
			Help:      "Events written by committed actions",
		}),
		ActionBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: historySubsystem,
			Name:      "action_bytes",
			Help:      "Log bytes per committed action",
			Buckets:   prometheus.ExponentialBuckets(4, 4, 8),
		}),
		TrimmedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: historySubsystem,
				Name:      "trimmed_total",
				Help:      "Actions and bytes dropped by trimming",
			},
			[]string{"unit"},
		),
		Footprint: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: historySubsystem,
			Name:      "bytes",
			Help:      "Estimated history footprint in bytes",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.ActionsTotal, c.EventsTotal, c.ActionBytes, c.TrimmedTotal, c.Footprint,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ActionCommitted implements history.Recorder.
func (c *Collector) ActionCommitted(events, bytes int) {
	c.ActionsTotal.WithLabelValues("committed").Inc()
	c.EventsTotal.Add(float64(events))
	c.ActionBytes.Observe(float64(bytes))
}

// ActionUndone implements history.Recorder.
func (c *Collector) ActionUndone() {
	c.ActionsTotal.WithLabelValues("undone").Inc()
}

// ActionRedone implements history.Recorder.
func (c *Collector) ActionRedone() {
	c.ActionsTotal.WithLabelValues("redone").Inc()
}

// ActionsElided implements history.Recorder.
func (c *Collector) ActionsElided(count int) {
	c.ActionsTotal.WithLabelValues("elided").Add(float64(count))
}

// HistoryTrimmed implements history.Recorder.
func (c *Collector) HistoryTrimmed(actions, bytes int) {
	c.TrimmedTotal.WithLabelValues("actions").Add(float64(actions))
	c.TrimmedTotal.WithLabelValues("bytes").Add(float64(bytes))
}

// HistoryBytes implements history.Recorder.
func (c *Collector) HistoryBytes(bytes int) {
	c.Footprint.Set(float64(bytes))
}

// =============================================================================
// Endpoint
// =============================================================================

// Handler returns an HTTP handler exposing the metrics of g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes g on addr under /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
