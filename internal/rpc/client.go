package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
)

// FabricClient invokes the fabric control plane over an existing
// *grpc.ClientConn using the JSON codec, in place of a generated client
// stub.
type FabricClient struct {
	conn *grpc.ClientConn
}

// NewFabricClient wraps conn for fabric control-plane calls.
func NewFabricClient(conn *grpc.ClientConn) *FabricClient {
	return &FabricClient{conn: conn}
}

func fullMethod(name string) string {
	return fmt.Sprintf("/%s/%s", ServiceName, name)
}

func (c *FabricClient) Select(ctx context.Context, req *SelectRequest) (*SelectReply, error) {
	reply := new(SelectReply)
	if err := c.conn.Invoke(ctx, fullMethod("Select"), req, reply, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *FabricClient) Release(ctx context.Context, req *ReleaseRequest) (*ReleaseReply, error) {
	reply := new(ReleaseReply)
	if err := c.conn.Invoke(ctx, fullMethod("Release"), req, reply, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *FabricClient) AvailableSources(ctx context.Context, req *AvailableSourcesRequest) (*AvailableSourcesReply, error) {
	reply := new(AvailableSourcesReply)
	if err := c.conn.Invoke(ctx, fullMethod("AvailableSources"), req, reply, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *FabricClient) GetOutput(ctx context.Context, req *GetOutputRequest) (*GetOutputReply, error) {
	reply := new(GetOutputReply)
	if err := c.conn.Invoke(ctx, fullMethod("GetOutput"), req, reply, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, err
	}
	return reply, nil
}
