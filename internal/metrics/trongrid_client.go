package metrics

import (
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	trongridRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "trongrid_client",
		Name:      "operations_total",
		Help:      "Count of TronGrid API operations.",
	}, []string{"operation", "network", "status"})
	trongridRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "trongrid_client",
		Name:      "operation_duration_seconds",
		Help:      "Duration of TronGrid API operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "network", "status"})
)

// TronGridClient tracks metrics for calls to the TronGrid API.
type TronGridClient struct {
	network string
}

// NewTronGridClient constructs a metrics collector for TronGrid calls.
func NewTronGridClient(network model.Network) *TronGridClient {
	return &TronGridClient{network: orUnknown(string(network))}
}

// Observe records a single call outcome and duration.
func (m TronGridClient) Observe(operation string, err error, started time.Time) {
	s := status(err)
	trongridRequestsTotal.WithLabelValues(operation, m.network, s).Inc()
	trongridRequestDuration.WithLabelValues(operation, m.network, s).Observe(time.Since(started).Seconds())
}
