package metrics

import (
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncerTicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "ticks_total",
		Help:      "Count of poll ticks by outcome.",
	}, []string{"network", "outcome"})

	syncerPassTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "passes_total",
		Help:      "Count of poll and refresh passes.",
	}, []string{"network", "kind", "status"})

	syncerPassDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "pass_duration_seconds",
		Help:      "Duration of poll and refresh passes.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
	}, []string{"network", "kind", "status"})

	syncerFetchedHeights = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "fetched_heights_total",
		Help:      "Count of heights fetched and classified.",
	}, []string{"network", "kind"})

	syncerDroppedHeights = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "dropped_heights_total",
		Help:      "Count of heights dropped after a failed fetch.",
	}, []string{"network", "kind"})

	syncerWindowSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "window_size",
		Help:      "Number of blocks held in the window.",
	}, []string{"network"})

	syncerWindowTop = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "window_top_height",
		Help:      "Highest block height held in the window.",
	}, []string{"network"})
)

// Syncer tracks metrics for the window synchronization engine.
type Syncer struct {
	network string
}

// NewSyncer constructs a Syncer with defaults.
func NewSyncer(network model.Network) *Syncer {
	return &Syncer{network: orUnknown(string(network))}
}

// ObserveTick counts a poll tick.
func (m Syncer) ObserveTick(outcome string) {
	syncerTicksTotal.WithLabelValues(m.network, orUnknown(outcome)).Inc()
}

// ObservePass records a poll or refresh pass outcome and duration.
func (m Syncer) ObservePass(kind string, err error, started time.Time) {
	s := status(err)
	syncerPassTotal.WithLabelValues(m.network, kind, s).Inc()
	syncerPassDuration.WithLabelValues(m.network, kind, s).Observe(time.Since(started).Seconds())
}

// ObserveHeights counts fetched and dropped heights of a pass.
func (m Syncer) ObserveHeights(kind string, fetched, dropped int) {
	syncerFetchedHeights.WithLabelValues(m.network, kind).Add(float64(fetched))
	syncerDroppedHeights.WithLabelValues(m.network, kind).Add(float64(dropped))
}

// ObserveWindow records the window shape after an update.
func (m Syncer) ObserveWindow(size int, top uint64) {
	syncerWindowSize.WithLabelValues(m.network).Set(float64(size))
	syncerWindowTop.WithLabelValues(m.network).Set(float64(top))
}
