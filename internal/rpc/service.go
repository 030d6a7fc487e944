package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// FabricServer is implemented by anything that can service the fabric
// control plane: in practice the value server.NewFabricService returns,
// wrapping a *group.MatrixGroup.
type FabricServer interface {
	Select(ctx context.Context, req *SelectRequest) (*SelectReply, error)
	Release(ctx context.Context, req *ReleaseRequest) (*ReleaseReply, error)
	AvailableSources(ctx context.Context, req *AvailableSourcesRequest) (*AvailableSourcesReply, error)
	GetOutput(ctx context.Context, req *GetOutputRequest) (*GetOutputReply, error)
}

// SourceInfo is the wire representation of a domain.Source.
type SourceInfo struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// SelectRequest asks the daemon to route a source onto a matrix output.
type SelectRequest struct {
	Matrix       string `json:"matrix"`
	Output       int    `json:"output"`
	SourceUUID   string `json:"source_uuid"`
	NoCompanions bool   `json:"no_companions"`
}

// SelectReply acknowledges a successful select.
type SelectReply struct{}

// ReleaseRequest releases one claim previously taken on a matrix output.
type ReleaseRequest struct {
	Matrix string `json:"matrix"`
	Output int    `json:"output"`
}

// ReleaseReply acknowledges a successful release.
type ReleaseReply struct{}

// AvailableSourcesRequest asks which sources are currently reachable
// through a named matrix.
type AvailableSourcesRequest struct {
	Matrix string `json:"matrix"`
}

// AvailableSourcesReply carries the reachable sources.
type AvailableSourcesReply struct {
	Sources []SourceInfo `json:"sources"`
}

// GetOutputRequest asks for the current state of one matrix output.
type GetOutputRequest struct {
	Matrix string `json:"matrix"`
	Output int    `json:"output"`
}

// GetOutputReply describes the current state of a matrix output.
type GetOutputReply struct {
	Source SourceInfo `json:"source"`
	Locked bool       `json:"locked"`
}

func selectHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(SelectRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(FabricServer).Select(ctx, req)
}

func releaseHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(ReleaseRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(FabricServer).Release(ctx, req)
}

func availableSourcesHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(AvailableSourcesRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(FabricServer).AvailableSources(ctx, req)
}

func getOutputHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(GetOutputRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(FabricServer).GetOutput(ctx, req)
}

// ServiceName is the fully qualified gRPC service name fabricd registers
// and fabricctl dials.
const ServiceName = "fabricmux.rpc.Fabric"

// ServiceDesc is the hand-written equivalent of a protoc-generated
// _ServiceDesc: it wires each RPC method name to the handler that decodes a
// request with the registered JSON codec and dispatches to a FabricServer.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FabricServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Select", Handler: selectHandler},
		{MethodName: "Release", Handler: releaseHandler},
		{MethodName: "AvailableSources", Handler: availableSourcesHandler},
		{MethodName: "GetOutput", Handler: getOutputHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fabricmux/internal/rpc/service.go",
}

// RegisterFabricServer registers srv against s under ServiceDesc, the JSON
// equivalent of a generated RegisterFabricServer call.
func RegisterFabricServer(s grpc.ServiceRegistrar, srv FabricServer) {
	s.RegisterService(&ServiceDesc, srv)
}
