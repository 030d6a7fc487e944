// Package client is the fabricctl side of the control plane: a thin
// wrapper around a single grpc.ClientConn and an rpc.FabricClient, used by
// cmd/fabricctl to issue Select/Release/AvailableSources/GetOutput calls
// against a running fabricd.
package client

import (
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"fabricmux/internal/rpc"
	"fabricmux/internal/telemetry/selecttrace"
)

// Connect dials addr and wraps the connection in an rpc.FabricClient. The
// caller owns the returned *grpc.ClientConn and must Close it.
func Connect(addr string) (*rpc.FabricClient, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(selecttrace.ClientInterceptor()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return rpc.NewFabricClient(conn), conn, nil
}
