package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Filter panel Prometheus metrics.
var (
	PanelEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facetdex",
			Name:      "panel_events_total",
			Help:      "Control events handled by filter panels",
		},
		[]string{"kind"}, // select / le / ge / clear / reset
	)

	PanelSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facetdex",
			Name:      "panel_submissions_total",
			Help:      "Filter submissions by outcome",
		},
		[]string{"outcome"}, // applied / failed / stale
	)

	PanelSearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "facetdex",
			Name:      "panel_search_duration_seconds",
			Help:      "Catalog search round-trip duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	BenchActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facetdex",
			Name:      "bench_actions_total",
			Help:      "Add-to-bench actions by status",
		},
		[]string{"status"}, // added / failed
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "facetdex",
			Name:      "sessions_active",
			Help:      "Filter panel sessions currently held in memory",
		},
	)

	SchemaCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facetdex",
			Name:      "schema_cache_total",
			Help:      "Facet schema cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registerPanelOnce sync.Once

// RegisterPanelMetrics registers the filter panel metrics. Safe to call more than once.
func RegisterPanelMetrics() {
	registerPanelOnce.Do(func() {
		prometheus.MustRegister(
			PanelEventsTotal,
			PanelSubmissionsTotal,
			PanelSearchDuration,
			BenchActionsTotal,
			SessionsActive,
			SchemaCacheTotal,
		)
	})
}
