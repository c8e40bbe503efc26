package grpc_control

import (
	"context"

	"google.golang.org/grpc"
)

// ControlClient calls dashboard.Control with the JSON codec.
type ControlClient struct {
	cc grpc.ClientConnInterface
}

func NewControlClient(cc grpc.ClientConnInterface) *ControlClient {
	return &ControlClient{cc: cc}
}

func (c *ControlClient) invoke(ctx context.Context, method string, in, out interface{}, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...)
}

func (c *ControlClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*StatusResponse, error) {
	out := new(StatusResponse)
	if err := c.invoke(ctx, "GetStatus", &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ControlClient) SetSelection(ctx context.Context, in *SetSelectionRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	if err := c.invoke(ctx, "SetSelection", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ControlClient) Refresh(ctx context.Context, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	if err := c.invoke(ctx, "Refresh", &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ControlClient) SetCredential(ctx context.Context, in *SetCredentialRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	if err := c.invoke(ctx, "SetCredential", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
