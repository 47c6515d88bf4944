package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// catalog service.
type Metrics struct {
	ImportsTotal    *prometheus.CounterVec // label: outcome={success,fetch_error,store_error}
	RowsInserted    prometheus.Counter
	RowsUpdated     prometheus.Counter
	ImportDuration  prometheus.Histogram
	FetchDuration   prometheus.Histogram
	StoreConfigured prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ImportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turbine_catalog",
			Name:      "imports_total",
			Help:      "Sheet import requests by outcome.",
		}, []string{"outcome"}),
		RowsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turbine_catalog",
			Name:      "rows_inserted_total",
			Help:      "Turbine records inserted by imports.",
		}),
		RowsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turbine_catalog",
			Name:      "rows_updated_total",
			Help:      "Turbine records updated by imports.",
		}),
		ImportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "turbine_catalog",
			Name:      "import_duration_seconds",
			Help:      "Duration of a complete fetch-parse-reconcile import.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "turbine_catalog",
			Name:      "sheet_fetch_duration_seconds",
			Help:      "Duration of the CSV export fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		StoreConfigured: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "turbine_catalog",
			Name:      "store_configured",
			Help:      "1 when a catalog store is configured, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.ImportsTotal,
		m.RowsInserted,
		m.RowsUpdated,
		m.ImportDuration,
		m.FetchDuration,
		m.StoreConfigured,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ImportsTotal:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "turbine_catalog", Name: "imports_total"}, []string{"outcome"}),
		RowsInserted:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "turbine_catalog", Name: "rows_inserted_total"}),
		RowsUpdated:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "turbine_catalog", Name: "rows_updated_total"}),
		ImportDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "turbine_catalog", Name: "import_duration_seconds"}),
		FetchDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "turbine_catalog", Name: "sheet_fetch_duration_seconds"}),
		StoreConfigured: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "turbine_catalog", Name: "store_configured"}),
	}
}
