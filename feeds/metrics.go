package feeds

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ladtc_feed_requests_total",
		Help: "The total number of upcoming event feed builds, by type filter",
	}, []string{"type"})

	feedItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ladtc_feed_items",
		Help:    "Number of merged items before pagination",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512 items
	})

	sourceReadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ladtc_feed_source_read_duration_seconds",
		Help:    "Duration of reads from each feed source",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // Start at 1ms, double each bucket
	}, []string{"source"})

	sourceReadErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ladtc_feed_source_read_errors_total",
		Help: "The total number of failed reads from each feed source",
	}, []string{"source"})
)
