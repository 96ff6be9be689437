package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	archiveFlushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "archive",
		Name:      "flush_total",
		Help:      "Count of archive batch flushes.",
	}, []string{"status"})

	archiveFlushDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "archive",
		Name:      "flush_duration_seconds",
		Help:      "Duration of archive batch flushes.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	archiveFlushSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "archive",
		Name:      "flush_size",
		Help:      "Number of blocks per archive flush.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	archiveDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "archive",
		Name:      "dropped_total",
		Help:      "Count of blocks not queued for archiving.",
	})
)

// Archive tracks metrics for the block archiver.
type Archive struct{}

// NewArchive constructs an Archive collector.
func NewArchive() *Archive {
	return &Archive{}
}

// ObserveFlush records a batch flush.
func (Archive) ObserveFlush(size int, err error, started time.Time) {
	s := status(err)
	archiveFlushTotal.WithLabelValues(s).Inc()
	archiveFlushDuration.WithLabelValues(s).Observe(time.Since(started).Seconds())
	archiveFlushSize.Observe(float64(size))
}

// ObserveDropped counts blocks that could not be queued.
func (Archive) ObserveDropped(n int) {
	archiveDroppedTotal.Add(float64(n))
}
