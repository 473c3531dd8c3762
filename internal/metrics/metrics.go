// Package metrics exposes Prometheus collectors for the camradar service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchesTotal               *prometheus.CounterVec
	coalescedFlightsTotal      *prometheus.CounterVec
	cacheHitsTotal             *prometheus.CounterVec
	cachedCameras              *prometheus.GaugeVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "camradar_fetches_total",
				Help: "Total relay fetches, labeled by lookup kind and outcome.",
			},
			[]string{"kind", "outcome"},
		)

		coalescedFlightsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "camradar_coalesced_flights_total",
				Help: "Lookups that shared an already in-flight fetch, labeled by kind.",
			},
			[]string{"kind"},
		)

		cacheHitsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "camradar_cache_hits_total",
				Help: "Lookups answered from the cache, labeled by tier.",
			},
			[]string{"tier"},
		)

		cachedCameras = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "camradar_cached_cameras",
				Help: "Cameras currently held in each cache tier.",
			},
			[]string{"tier"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one relay fetch attempt and its outcome.
func ObserveFetch(kind, outcome string) {
	if fetchesTotal == nil {
		return
	}
	fetchesTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveCoalesced records a lookup that piggybacked on an in-flight fetch.
func ObserveCoalesced(kind string) {
	if coalescedFlightsTotal == nil {
		return
	}
	coalescedFlightsTotal.WithLabelValues(kind).Inc()
}

// ObserveCacheHit records a lookup answered without network access.
func ObserveCacheHit(tier string) {
	if cacheHitsTotal == nil {
		return
	}
	cacheHitsTotal.WithLabelValues(tier).Inc()
}

// SetCachedCameras updates the per-tier cache size gauges.
func SetCachedCameras(summaries, details int) {
	if cachedCameras == nil {
		return
	}
	cachedCameras.WithLabelValues("summary").Set(float64(summaries))
	cachedCameras.WithLabelValues("detail").Set(float64(details))
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
