// Package metrics exposes Prometheus instrumentation for sessions, page
// counts and batch rows.
package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "badgecount"

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "browser_sessions_active",
		Help:      "Number of open headless browser sessions.",
	})
	sessionLaunchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "browser_launch_failures_total",
		Help:      "Browser sessions that could not be started.",
	})
	pageCounts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "page_counts_total",
		Help:      "Pages counted, by outcome (ok or degraded).",
	}, []string{"outcome"})
	pageCountDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "page_count_duration_seconds",
		Help:      "Time spent navigating, waiting and counting one page.",
		Buckets:   []float64{0.5, 1, 2, 4, 8, 15, 30},
	})
	batchRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_rows_total",
		Help:      "Batch rows processed, by status.",
	}, []string{"status"})
)

// active mirrors sessionsActive so the health endpoint can read it
// without going through the registry.
var active atomic.Int64

// SessionOpened records a successful browser launch.
func SessionOpened() {
	active.Add(1)
	sessionsActive.Inc()
}

// SessionClosed records a browser teardown.
func SessionClosed() {
	active.Add(-1)
	sessionsActive.Dec()
}

// SessionLaunchFailed records a browser that never came up.
func SessionLaunchFailed() { sessionLaunchFailures.Inc() }

// ActiveSessions returns the current gauge value for the health endpoint.
func ActiveSessions() int {
	return int(active.Load())
}

// PageCounted records one page count outcome and its duration.
func PageCounted(degraded bool, elapsed time.Duration) {
	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	pageCounts.WithLabelValues(outcome).Inc()
	pageCountDuration.Observe(elapsed.Seconds())
}

// BatchRow records the final status of one batch row.
func BatchRow(status string) {
	batchRows.WithLabelValues(status).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
