package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes dashboard metrics through Prometheus.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry        *prometheus.Registry
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	cacheTotal      *prometheus.CounterVec
	qualityTotal    *prometheus.CounterVec
	formatErrors    *prometheus.CounterVec
}

// New creates a recorder backed by its own registry
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		upstreamTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lighthorse_upstream_requests_total",
				Help: "Upstream analytics API requests by path and outcome",
			},
			[]string{"path", "outcome"},
		),
		upstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lighthorse_upstream_duration_seconds",
				Help:    "Upstream request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		cacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lighthorse_cache_lookups_total",
				Help: "Response cache lookups by layer and result",
			},
			[]string{"layer", "result"},
		),
		qualityTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lighthorse_data_quality_warnings_total",
				Help: "Data-quality anomalies seen while analyzing rank changes",
			},
			[]string{"view", "kind"},
		),
		formatErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lighthorse_format_errors_total",
				Help: "Upstream payloads rejected for violating the data contract",
			},
			[]string{"view"},
		),
	}
}

// RecordUpstream records one upstream request
func (r *Recorder) RecordUpstream(path, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.upstreamTotal.WithLabelValues(path, outcome).Inc()
	r.upstreamLatency.WithLabelValues(path).Observe(d.Seconds())
}

// RecordCache records a cache lookup
func (r *Recorder) RecordCache(layer string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheTotal.WithLabelValues(layer, result).Inc()
}

// RecordQualityWarning records a non-fatal data anomaly
func (r *Recorder) RecordQualityWarning(view, kind string) {
	if r == nil {
		return
	}
	r.qualityTotal.WithLabelValues(view, kind).Inc()
}

// RecordFormatError records a rejected payload
func (r *Recorder) RecordFormatError(view string) {
	if r == nil {
		return
	}
	r.formatErrors.WithLabelValues(view).Inc()
}

// Handler serves the registry in Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
