// Package server hosts the fabricd gRPC control plane: the fabric RPC
// service (internal/rpc) bound to a live group.MatrixGroup, plus the
// standard gRPC health service so operators and orchestrators can probe
// daemon liveness the same way they would any other grpc-go service.
package server

import (
	"fmt"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"fabricmux/internal/group"
	"fabricmux/internal/logger"
	"fabricmux/internal/registry"
	"fabricmux/internal/rpc"
	"fabricmux/internal/telemetry/selecttrace"
)

// Server wraps a gRPC server hosting the fabric control plane and health
// check service.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	health     *health.Server
	lgr        logger.Logger
}

// New creates a gRPC server bound to lis, exposing g (and the sources
// resolvable through reg) over the fabric RPC service, plus grpc.health.
// grpcOpts are passed straight through to grpc.NewServer; srvOpts configure
// this wrapper itself (currently: logging).
func New(lis net.Listener, g *group.MatrixGroup, reg *registry.Registry, grpcOpts []grpc.ServerOption, srvOpts ...Option) *Server {
	base := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(selecttrace.ServerInterceptor()),
	}
	s := &Server{
		grpcServer: grpc.NewServer(append(base, grpcOpts...)...),
		listener:   lis,
		health:     health.NewServer(),
		lgr:        &logger.NopLogger{},
	}
	for _, opt := range srvOpts {
		opt(s)
	}

	rpc.RegisterFabricServer(s.grpcServer, NewFabricService(g, reg))
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return s
}

// Start runs the gRPC server and blocks until it stops.
func (s *Server) Start() error {
	s.lgr.Info("fabricd listening", logger.F("addr", s.listener.Addr().String()))
	if err := s.grpcServer.Serve(s.listener); err != nil {
		return fmt.Errorf("gRPC server stopped: %w", err)
	}
	return nil
}

// Stop immediately stops the server and closes all active connections,
// marking the service NOT_SERVING first so in-flight health checks observe
// the shutdown.
func (s *Server) Stop() {
	s.health.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	s.grpcServer.Stop()
}

// GracefulStop gracefully shuts down the server, waiting for in-flight RPCs
// to complete.
func (s *Server) GracefulStop() {
	s.health.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	s.grpcServer.GracefulStop()
}
