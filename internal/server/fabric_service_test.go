package server

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fabricmux/internal/domain"
	"fabricmux/internal/driver"
	"fabricmux/internal/fabric"
	"fabricmux/internal/group"
	"fabricmux/internal/registry"
	"fabricmux/internal/rpc"
)

func newTestService(t *testing.T) (*fabricService, *domain.Source, *registry.Registry) {
	t.Helper()
	src := domain.NewSource("cam-1")
	reg := registry.New()
	reg.Register(src)

	m := fabric.New("m", driver.NewRecording(), []fabric.Input{src}, 1)
	mg := group.NewMatrixGroup(group.NewSourceGroup(nil), map[string]*fabric.Matrix{"m": m}, nil)

	return &fabricService{group: mg, reg: reg}, src, reg
}

func TestFabricService_SelectAndRelease(t *testing.T) {
	svc, src, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Select(ctx, &rpc.SelectRequest{Matrix: "m", Output: 0, SourceUUID: src.UUID.String()}); err != nil {
		t.Fatalf("Select: %v", err)
	}

	out, err := svc.GetOutput(ctx, &rpc.GetOutputRequest{Matrix: "m", Output: 0})
	if err != nil {
		t.Fatalf("GetOutput: %v", err)
	}
	// Select goes through Matrix.Select, which routes the output without
	// claiming it, so the output is unlocked and a Release on it has no
	// claim to drop.
	if out.Locked || out.Source.UUID != src.UUID.String() {
		t.Fatalf("GetOutput = %+v, want unlocked with source %s", out, src.UUID)
	}

	if _, err := svc.Release(ctx, &rpc.ReleaseRequest{Matrix: "m", Output: 0}); status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("Release of an unclaimed output: got %v, want FailedPrecondition", err)
	}

	out, err = svc.GetOutput(ctx, &rpc.GetOutputRequest{Matrix: "m", Output: 0})
	if err != nil {
		t.Fatalf("GetOutput after release: %v", err)
	}
	if out.Locked {
		t.Fatalf("expected output unlocked after Release, got %+v", out)
	}
}

func TestFabricService_SelectRejectsOutOfRangeOutput(t *testing.T) {
	svc, src, _ := newTestService(t)

	_, err := svc.Select(context.Background(), &rpc.SelectRequest{Matrix: "m", Output: 5, SourceUUID: src.UUID.String()})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("Select with out-of-range output: got %v, want InvalidArgument", err)
	}
}

func TestFabricService_SelectRejectsUnknownMatrix(t *testing.T) {
	svc, src, _ := newTestService(t)

	_, err := svc.Select(context.Background(), &rpc.SelectRequest{Matrix: "ghost", Output: 0, SourceUUID: src.UUID.String()})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("Select on unknown matrix: got %v, want NotFound", err)
	}
}

func TestFabricService_ReleaseRejectsUnknownMatrix(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Release(context.Background(), &rpc.ReleaseRequest{Matrix: "ghost", Output: 0})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("Release on unknown matrix: got %v, want NotFound", err)
	}
}

func TestFabricService_GetOutputRejectsOutOfRangeOutput(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetOutput(context.Background(), &rpc.GetOutputRequest{Matrix: "m", Output: 1})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("GetOutput with out-of-range output: got %v, want InvalidArgument", err)
	}
}

func TestFabricService_AvailableSourcesRejectsUnknownMatrix(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.AvailableSources(context.Background(), &rpc.AvailableSourcesRequest{Matrix: "ghost"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("AvailableSources on unknown matrix: got %v, want NotFound", err)
	}
}

func TestFabricService_AvailableSourcesListsReachableSources(t *testing.T) {
	svc, src, _ := newTestService(t)

	reply, err := svc.AvailableSources(context.Background(), &rpc.AvailableSourcesRequest{Matrix: "m"})
	if err != nil {
		t.Fatalf("AvailableSources: %v", err)
	}
	if len(reply.Sources) != 1 || reply.Sources[0].UUID != src.UUID.String() {
		t.Fatalf("AvailableSources = %+v, want [%s]", reply.Sources, src.UUID)
	}
}

func TestFabricService_SelectRejectsUnknownSource(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Select(context.Background(), &rpc.SelectRequest{Matrix: "m", Output: 0, SourceUUID: domain.NewSource("ghost").UUID.String()})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("Select with unregistered source: got %v, want NotFound", err)
	}
}
