// Package metrics defines the Prometheus instruments for the refresh
// pipeline.  Everything is registered through promauto on the default
// registry and served by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RefreshMetrics groups the instruments touched by the refresh
// coordinator.  Outcome label values: "success", "upstream_error",
// "storage_error", "rejected".
type RefreshMetrics struct {
	RefreshesTotal        *prometheus.CounterVec
	RefreshDuration       prometheus.Histogram
	UpstreamFetchDuration *prometheus.HistogramVec
	CountriesStored       prometheus.Gauge
}

// NewRefreshMetrics registers and returns the refresh instruments.  Call
// once at startup; promauto panics on duplicate registration.
func NewRefreshMetrics() *RefreshMetrics {
	return &RefreshMetrics{
		RefreshesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "country_refreshes_total",
			Help: "Refresh invocations by outcome",
		}, []string{"outcome"}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "country_refresh_duration_seconds",
			Help:    "End-to-end duration of successful refreshes",
			Buckets: prometheus.DefBuckets,
		}),
		UpstreamFetchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "upstream_fetch_duration_seconds",
			Help:    "Duration of upstream fetches by source",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		CountriesStored: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "countries_stored",
			Help: "Country rows written by the last successful refresh",
		}),
	}
}
