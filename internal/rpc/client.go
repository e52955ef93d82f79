package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// InventoryClient is the caller side of the service.
type InventoryClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryClient(cc grpc.ClientConnInterface) *InventoryClient {
	return &InventoryClient{cc: cc}
}

func invoke[Res any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Res, error) {
	out := new(Res)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func serverStream[Res any](ctx context.Context, cc grpc.ClientConnInterface, desc *grpc.StreamDesc, method string, in any, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Res], error) {
	stream, err := cc.NewStream(ctx, desc, method, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[emptypb.Empty, Res]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *InventoryClient) Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodRegister, in, opts...)
}

func (c *InventoryClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodLogin, in, opts...)
}

func (c *InventoryClient) RefreshToken(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodRefreshToken, in, opts...)
}

func (c *InventoryClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, MethodPing, in, opts...)
}

func (c *InventoryClient) GetProduct(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodGetProduct, in, opts...)
}

func (c *InventoryClient) InsertProduct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, MethodInsertProduct, in, opts...)
}

func (c *InventoryClient) UpdateProduct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodUpdateProduct, in, opts...)
}

func (c *InventoryClient) DeleteProduct(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodDeleteProduct, in, opts...)
}

func (c *InventoryClient) ExportSnapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, MethodExportSnapshot, in, opts...)
}

func (c *InventoryClient) WatchProducts(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.ListValue], error) {
	return serverStream[structpb.ListValue](ctx, c.cc, &ServiceDesc.Streams[0], MethodWatchProducts, in, opts...)
}

func (c *InventoryClient) WatchTotal(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[wrapperspb.DoubleValue], error) {
	return serverStream[wrapperspb.DoubleValue](ctx, c.cc, &ServiceDesc.Streams[1], MethodWatchTotal, in, opts...)
}
