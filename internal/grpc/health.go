// internal/grpc/health.go
package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-check service name reported for the web front-end.
const ServiceName = "filmweb"

// Probe reports whether a dependency is usable.
type Probe func(ctx context.Context) error

// HealthServer publishes grpc.health.v1 status for the front-end.
type HealthServer struct {
	health *health.Server
	logger *slog.Logger
}

// NewHealthServer creates a health server. Everything starts NOT_SERVING.
func NewHealthServer(logger *slog.Logger) *HealthServer {
	h := &HealthServer{health: health.NewServer(), logger: logger}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register attaches the health service and reflection to s.
func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
	reflection.Register(s)
}

func (h *HealthServer) SetServing() {
	h.set(healthpb.HealthCheckResponse_SERVING)
}

func (h *HealthServer) SetNotServing() {
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
}

// Shutdown marks every service NOT_SERVING and ignores later updates.
func (h *HealthServer) Shutdown() {
	h.health.Shutdown()
	h.logger.Info("gRPC health switched to NOT_SERVING for shutdown")
}

func (h *HealthServer) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Watch runs probe every interval until ctx is done and flips the status
// accordingly. Status changes are logged, steady state is not.
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration, probe Probe) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			err := probe(checkCtx)
			cancel()

			switch {
			case err != nil && healthy:
				h.logger.WarnContext(ctx, "Health probe failed", slog.String("error", err.Error()))
				h.SetNotServing()
				healthy = false
			case err == nil && !healthy:
				h.logger.InfoContext(ctx, "Health probe recovered")
				h.SetServing()
				healthy = true
			}
		}
	}
}
