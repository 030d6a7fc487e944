package server

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fabricmux/internal/ctxutil"
	"fabricmux/internal/domain"
	"fabricmux/internal/group"
	"fabricmux/internal/registry"
	"fabricmux/internal/rpc"
	"fabricmux/internal/telemetry"
)

// fabricService implements rpc.FabricServer over a MatrixGroup and the
// source registry used to resolve a wire UUID back into a *domain.Source.
type fabricService struct {
	group *group.MatrixGroup
	reg   *registry.Registry
}

// NewFabricService binds a MatrixGroup and Registry to the fabric RPC
// surface.
func NewFabricService(g *group.MatrixGroup, reg *registry.Registry) rpc.FabricServer {
	return &fabricService{group: g, reg: reg}
}

func (s *fabricService) resolveSource(rawUUID string) (*domain.Source, error) {
	src, err := s.reg.Get(rawUUID)
	if err != nil {
		return nil, status.Error(codes.NotFound, "unknown source uuid")
	}
	return src, nil
}

// checkOutput validates that matrix is known and idx addresses one of its
// outputs, rejecting an out-of-range request before it ever reaches the
// routing core's unchecked slice index.
func (s *fabricService) checkOutput(matrix string, idx int) error {
	n, ok := s.group.NumOutputs(matrix)
	if !ok {
		return status.Error(codes.NotFound, "unknown matrix")
	}
	if idx < 0 || idx >= n {
		return status.Errorf(codes.InvalidArgument, "matrix %q has no output %d", matrix, idx)
	}
	return nil
}

func (s *fabricService) Select(ctx context.Context, req *rpc.SelectRequest) (*rpc.SelectReply, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	if req == nil || req.Matrix == "" || req.SourceUUID == "" {
		return nil, status.Error(codes.InvalidArgument, "missing matrix or source_uuid")
	}
	if err := s.checkOutput(req.Matrix, req.Output); err != nil {
		return nil, err
	}
	src, err := s.resolveSource(req.SourceUUID)
	if err != nil {
		return nil, err
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("fabric.matrix", req.Matrix), attribute.Int("fabric.output_idx", req.Output))
	span.SetAttributes(telemetry.SourceAttributes("fabric.source", src)...)

	if err := s.group.Select(req.Matrix, req.Output, src, req.NoCompanions); err != nil {
		return nil, toStatus(err)
	}
	return &rpc.SelectReply{}, nil
}

func (s *fabricService) Release(ctx context.Context, req *rpc.ReleaseRequest) (*rpc.ReleaseReply, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	if req == nil || req.Matrix == "" {
		return nil, status.Error(codes.InvalidArgument, "missing matrix")
	}
	if err := s.checkOutput(req.Matrix, req.Output); err != nil {
		return nil, err
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("fabric.matrix", req.Matrix),
		attribute.Int("fabric.output_idx", req.Output),
	)

	if _, err := s.group.Release(req.Matrix, req.Output); err != nil {
		return nil, toStatus(err)
	}
	return &rpc.ReleaseReply{}, nil
}

func (s *fabricService) AvailableSources(ctx context.Context, req *rpc.AvailableSourcesRequest) (*rpc.AvailableSourcesReply, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	if req == nil || req.Matrix == "" {
		return nil, status.Error(codes.InvalidArgument, "missing matrix")
	}
	if _, ok := s.group.NumOutputs(req.Matrix); !ok {
		return nil, status.Error(codes.NotFound, "unknown matrix")
	}
	sources := s.group.Available(req.Matrix)
	reply := &rpc.AvailableSourcesReply{Sources: make([]rpc.SourceInfo, 0, len(sources))}
	for _, src := range sources {
		reply.Sources = append(reply.Sources, rpc.SourceInfo{UUID: src.UUID.String(), Name: src.Name})
	}
	return reply, nil
}

func (s *fabricService) GetOutput(ctx context.Context, req *rpc.GetOutputRequest) (*rpc.GetOutputReply, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	if req == nil || req.Matrix == "" {
		return nil, status.Error(codes.InvalidArgument, "missing matrix")
	}
	if err := s.checkOutput(req.Matrix, req.Output); err != nil {
		return nil, err
	}
	out := s.group.GetOutput(req.Matrix, req.Output)
	reply := &rpc.GetOutputReply{Locked: out.Locked()}
	if src := out.Source(); src != nil {
		reply.Source = rpc.SourceInfo{UUID: src.UUID.String(), Name: src.Name}
	}
	return reply, nil
}

// toStatus maps the domain's typed routing errors onto gRPC status codes;
// anything else surfaces as Internal.
func toStatus(err error) error {
	var locked *domain.LockedOutputError
	var unlocked *domain.AlreadyUnlockedError
	var unroutable *domain.UnroutableOutputError
	switch {
	case errors.As(err, &locked):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &unlocked):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &unroutable):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
