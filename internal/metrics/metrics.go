// Package metrics exposes Prometheus collectors for the collector service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ridbRequestsTotal          *prometheus.CounterVec
	ridbRequestDurationSeconds *prometheus.HistogramVec
	ridbRetriesTotal           *prometheus.CounterVec
	ridbRateLimitDelaySeconds  prometheus.Histogram
	campsitesProcessedTotal    prometheus.Counter
	facilitiesProcessedTotal   prometheus.Counter
	batchFlushesTotal          *prometheus.CounterVec
	batchFlushSize             prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		ridbRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ridb_requests_total",
				Help: "Total number of RIDB API requests, labeled by resource and status.",
			},
			[]string{"resource", "status"},
		)

		ridbRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ridb_request_duration_seconds",
				Help:    "Histogram of RIDB request latencies, labeled by resource.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"resource"},
		)

		ridbRetriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ridb_retries_total",
				Help: "Total number of RIDB request retries, labeled by reason.",
			},
			[]string{"reason"},
		)

		ridbRateLimitDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ridb_rate_limit_delay_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		)

		campsitesProcessedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "collector_campsites_processed_total",
				Help: "Total number of campsites enriched and handed to the persister.",
			},
		)

		facilitiesProcessedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "collector_facilities_processed_total",
				Help: "Total number of facilities fully processed.",
			},
		)

		batchFlushesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collector_batch_flushes_total",
				Help: "Total number of batch flushes, labeled by result.",
			},
			[]string{"result"},
		)

		batchFlushSize = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "collector_batch_flush_size",
				Help:    "Histogram of records written per batch flush.",
				Buckets: []float64{1, 5, 10, 25, 50, 100},
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest increments the RIDB request metrics.
func ObserveRequest(resource, status string, duration time.Duration) {
	if ridbRequestsTotal == nil {
		return
	}
	ridbRequestsTotal.WithLabelValues(resource, status).Inc()
	ridbRequestDurationSeconds.WithLabelValues(resource).Observe(duration.Seconds())
}

// ObserveRetry increments the retry counter for the given reason.
func ObserveRetry(reason string) {
	if ridbRetriesTotal == nil {
		return
	}
	ridbRetriesTotal.WithLabelValues(reason).Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(duration time.Duration) {
	if ridbRateLimitDelaySeconds == nil {
		return
	}
	ridbRateLimitDelaySeconds.Observe(duration.Seconds())
}

// ObserveCampsite increments the processed campsite counter.
func ObserveCampsite() {
	if campsitesProcessedTotal == nil {
		return
	}
	campsitesProcessedTotal.Inc()
}

// ObserveFacility increments the processed facility counter.
func ObserveFacility() {
	if facilitiesProcessedTotal == nil {
		return
	}
	facilitiesProcessedTotal.Inc()
}

// ObserveFlush records the outcome and size of a batch flush.
func ObserveFlush(result string, size int) {
	if batchFlushesTotal == nil {
		return
	}
	batchFlushesTotal.WithLabelValues(result).Inc()
	if size > 0 {
		batchFlushSize.Observe(float64(size))
	}
}
