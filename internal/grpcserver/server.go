// Package grpcserver — служебный gRPC-листенер: health-сервис и reflection.
// Статус обслуживания обновляется по результатам health.Checker.
package grpcserver

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Leganyst/samara-beach/internal/health"
)

// ServiceName is the health service name reported next to the overall "" entry.
const ServiceName = "samara.booking"

type Server struct {
	grpc     *grpc.Server
	health   *grpchealth.Server
	checker  *health.Checker
	interval time.Duration
	logger   *slog.Logger
}

func New(checker *health.Checker, interval time.Duration, logger *slog.Logger) *Server {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	gs := grpc.NewServer()
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	// до первой проверки считаем сервис неготовым
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{grpc: gs, health: hs, checker: checker, interval: interval, logger: logger}
}

// Refresh runs the checker once and publishes the result.
func (s *Server) Refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	rep := s.checker.Check(ctx)
	if !rep.Ready {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.logger.Warn("dependency check failed", "errors", rep.Errors)
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve refreshes health status every interval and serves lis until Stop.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.Refresh(ctx)
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Refresh(ctx)
			}
		}
	}()

	s.logger.Info("gRPC server listening", "addr", lis.Addr().String(), "probes", s.checker.Names())
	return s.grpc.Serve(lis)
}

// Stop marks the service as not serving and drains in-flight RPCs.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
