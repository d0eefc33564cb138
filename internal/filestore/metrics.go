package filestore

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filestore_requests_total",
			Help: "Total number of file-storage requests",
		},
		[]string{"operation", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filestore_request_duration_seconds",
			Help:    "File-storage request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)

	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filestore_signed_url_cache_hits_total",
			Help: "Signed URLs served from the cache",
		},
	)
)

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func observe(op string, start time.Time, err error) {
	o := outcome(err)
	requestsTotal.WithLabelValues(op, o).Inc()
	requestDuration.WithLabelValues(op, o).Observe(time.Since(start).Seconds())
}
