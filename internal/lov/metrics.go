package lov

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics records reference-data API calls.
type APIMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	cache    *prometheus.CounterVec
}

// NewAPIMetrics registers the collectors against registerer. A nil
// registerer yields unregistered collectors, which tests rely on.
func NewAPIMetrics(registerer prometheus.Registerer) *APIMetrics {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_lov_api_requests_total",
		Help: "Reference-data API calls partitioned by operation and outcome.",
	}, []string{"op", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fleet_lov_api_request_duration_seconds",
		Help:    "Duration of reference-data API calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_lov_cache_lookups_total",
		Help: "List cache lookups partitioned by result.",
	}, []string{"result"})
	if registerer != nil {
		registerer.MustRegister(calls, duration, cache)
	}
	return &APIMetrics{calls: calls, duration: duration, cache: cache}
}

func (m *APIMetrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.calls.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *APIMetrics) cacheResult(result string) {
	if m == nil {
		return
	}
	m.cache.WithLabelValues(result).Inc()
}
