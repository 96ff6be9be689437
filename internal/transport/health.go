package transport

import (
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/service/syncer"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthReporter mirrors the engine status on a gRPC health server.
type HealthReporter struct {
	server  *health.Server
	service string
}

// NewHealthReporter returns a reporter for service, NOT_SERVING until the
// first status is observed.
func NewHealthReporter(service string) *HealthReporter {
	r := &HealthReporter{server: health.NewServer(), service: service}
	r.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return r
}

// Server returns the health server to register on a gRPC server.
func (r *HealthReporter) Server() *health.Server {
	return r.server
}

// Observe updates the serving status from an engine status.
func (r *HealthReporter) Observe(status syncer.Status) {
	if status == syncer.StatusInitializing {
		r.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	r.set(healthpb.HealthCheckResponse_SERVING)
}

// Shutdown marks every service NOT_SERVING.
func (r *HealthReporter) Shutdown() {
	r.server.Shutdown()
}

func (r *HealthReporter) set(status healthpb.HealthCheckResponse_ServingStatus) {
	r.server.SetServingStatus("", status)
	if r.service != "" {
		r.server.SetServingStatus(r.service, status)
	}
}
