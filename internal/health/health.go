// Package health provides liveness and readiness endpoints.
//
// Container orchestrators probe /healthz and /readyz over HTTP; gRPC-aware
// load balancers use the standard grpc.health.v1.Health service. Both report
// the same readiness flag.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server exposes health over HTTP and, optionally, gRPC.
type Server struct {
	port     int
	grpcPort int
	ready    atomic.Bool

	server     *http.Server
	grpcServer *grpc.Server
	grpcHealth *grpchealth.Server
}

// New creates a new health server. A grpcPort of 0 disables the gRPC listener.
func New(port, grpcPort int) *Server {
	s := &Server{
		port:       port,
		grpcPort:   grpcPort,
		grpcServer: grpc.NewServer(),
		grpcHealth: grpchealth.NewServer(),
	}
	healthpb.RegisterHealthServer(s.grpcServer, s.grpcHealth)
	s.grpcHealth.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// SetReady marks the gateway as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.grpcHealth.SetServingStatus("", status)
}

// Handler returns the HTTP probe handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.probe)
	mux.HandleFunc("GET /readyz", s.probe)
	return mux
}

func (s *Server) probe(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_ready"})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ServeGRPC serves the gRPC health service on lis until it is stopped.
func (s *Server) ServeGRPC(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// ListenAndServe starts the health check servers.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if s.grpcPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.grpcPort))
		if err != nil {
			return fmt.Errorf("grpc health listen: %w", err)
		}
		slog.Info("grpc health server listening", "port", s.grpcPort)
		go func() {
			if err := s.ServeGRPC(lis); err != nil {
				slog.Error("grpc health server failed", "error", err)
			}
		}()
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		s.grpcHealth.Shutdown()
		s.grpcServer.GracefulStop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
