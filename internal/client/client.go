package client

import (
	"context"

	"fabricmux/internal/rpc"
)

// Client is a convenience wrapper over rpc.FabricClient exposing one method
// per control-plane operation with fabricctl-friendly parameter types.
type Client struct {
	rpc *rpc.FabricClient
}

// New wraps an already-dialed rpc.FabricClient.
func New(r *rpc.FabricClient) *Client {
	return &Client{rpc: r}
}

// Select routes sourceUUID onto output idx of matrixName.
func (c *Client) Select(ctx context.Context, matrixName string, idx int, sourceUUID string, noCompanions bool) error {
	_, err := c.rpc.Select(ctx, &rpc.SelectRequest{
		Matrix:       matrixName,
		Output:       idx,
		SourceUUID:   sourceUUID,
		NoCompanions: noCompanions,
	})
	return err
}

// Release drops one claim on output idx of matrixName.
func (c *Client) Release(ctx context.Context, matrixName string, idx int) error {
	_, err := c.rpc.Release(ctx, &rpc.ReleaseRequest{Matrix: matrixName, Output: idx})
	return err
}

// AvailableSources lists the sources currently reachable through
// matrixName.
func (c *Client) AvailableSources(ctx context.Context, matrixName string) ([]rpc.SourceInfo, error) {
	reply, err := c.rpc.AvailableSources(ctx, &rpc.AvailableSourcesRequest{Matrix: matrixName})
	if err != nil {
		return nil, err
	}
	return reply.Sources, nil
}

// GetOutput reports the current state of output idx of matrixName.
func (c *Client) GetOutput(ctx context.Context, matrixName string, idx int) (*rpc.GetOutputReply, error) {
	return c.rpc.GetOutput(ctx, &rpc.GetOutputRequest{Matrix: matrixName, Output: idx})
}
