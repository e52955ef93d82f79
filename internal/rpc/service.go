// Package rpc describes the inventory gRPC service. Messages are protobuf
// well-known types, so the service needs no generated code: this file plays
// the role of the *_grpc.pb.go stub for both sides.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "inventory.v1.Inventory"

const (
	MethodRegister       = "/" + ServiceName + "/Register"
	MethodLogin          = "/" + ServiceName + "/Login"
	MethodRefreshToken   = "/" + ServiceName + "/RefreshToken"
	MethodPing           = "/" + ServiceName + "/Ping"
	MethodGetProduct     = "/" + ServiceName + "/GetProduct"
	MethodInsertProduct  = "/" + ServiceName + "/InsertProduct"
	MethodUpdateProduct  = "/" + ServiceName + "/UpdateProduct"
	MethodDeleteProduct  = "/" + ServiceName + "/DeleteProduct"
	MethodExportSnapshot = "/" + ServiceName + "/ExportSnapshot"
	MethodWatchProducts  = "/" + ServiceName + "/WatchProducts"
	MethodWatchTotal     = "/" + ServiceName + "/WatchTotal"
)

// InventoryServer is implemented by the server-side handler.
type InventoryServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RefreshToken(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)

	GetProduct(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	InsertProduct(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	UpdateProduct(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	DeleteProduct(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	ExportSnapshot(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)

	WatchProducts(*emptypb.Empty, grpc.ServerStreamingServer[structpb.ListValue]) error
	WatchTotal(*emptypb.Empty, grpc.ServerStreamingServer[wrapperspb.DoubleValue]) error
}

func unaryHandler[Req, Res any](fullMethod string, call func(InventoryServer, context.Context, *Req) (*Res, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InventoryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(InventoryServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchProductsHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(InventoryServer).WatchProducts(in, &grpc.GenericServerStream[emptypb.Empty, structpb.ListValue]{ServerStream: stream})
}

func watchTotalHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(InventoryServer).WatchTotal(in, &grpc.GenericServerStream[emptypb.Empty, wrapperspb.DoubleValue]{ServerStream: stream})
}

// ServiceDesc is registered with grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(MethodRegister, InventoryServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(MethodLogin, InventoryServer.Login)},
		{MethodName: "RefreshToken", Handler: unaryHandler(MethodRefreshToken, InventoryServer.RefreshToken)},
		{MethodName: "Ping", Handler: unaryHandler(MethodPing, InventoryServer.Ping)},
		{MethodName: "GetProduct", Handler: unaryHandler(MethodGetProduct, InventoryServer.GetProduct)},
		{MethodName: "InsertProduct", Handler: unaryHandler(MethodInsertProduct, InventoryServer.InsertProduct)},
		{MethodName: "UpdateProduct", Handler: unaryHandler(MethodUpdateProduct, InventoryServer.UpdateProduct)},
		{MethodName: "DeleteProduct", Handler: unaryHandler(MethodDeleteProduct, InventoryServer.DeleteProduct)},
		{MethodName: "ExportSnapshot", Handler: unaryHandler(MethodExportSnapshot, InventoryServer.ExportSnapshot)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchProducts", Handler: watchProductsHandler, ServerStreams: true},
		{StreamName: "WatchTotal", Handler: watchTotalHandler, ServerStreams: true},
	},
	Metadata: "inventory/v1/inventory.proto",
}

// RegisterInventoryServer attaches srv to s.
func RegisterInventoryServer(s grpc.ServiceRegistrar, srv InventoryServer) {
	s.RegisterService(&ServiceDesc, srv)
}
