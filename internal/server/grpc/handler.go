package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/rpc"
	"github.com/dmitrijs2005/stockkeeper/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, password, err := rpc.CredentialsFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	sess, err := s.users.Register(ctx, email, password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "email", sess.User.Email)
	return sessionResponse(sess), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, password, err := rpc.CredentialsFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	sess, err := s.users.Login(ctx, email, password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return sessionResponse(sess), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	sess, err := s.users.RefreshToken(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return sessionResponse(sess), nil
}

func (s *GRPCServer) Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("OK"), nil
}

func (s *GRPCServer) GetProduct(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	p, err := s.products.Get(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return rpc.ProductToStruct(p), nil
}

func (s *GRPCServer) InsertProduct(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	p, err := rpc.ProductFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	id, err := s.products.Insert(ctx, p)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return wrapperspb.String(id), nil
}

func (s *GRPCServer) UpdateProduct(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	p, err := rpc.ProductFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) DeleteProduct(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.products.Delete(ctx, req.GetValue()); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) ExportSnapshot(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	userID, _ := userIDFromContext(ctx)

	url, err := s.products.ExportSnapshot(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return wrapperspb.String(url), nil
}

func (s *GRPCServer) WatchProducts(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.ListValue]) error {
	ctx := stream.Context()
	err := s.products.WatchProducts(ctx, func(list []models.Product) error {
		return stream.Send(rpc.ProductsToList(list))
	})
	return s.toStatus(ctx, err)
}

func (s *GRPCServer) WatchTotal(_ *emptypb.Empty, stream grpc.ServerStreamingServer[wrapperspb.DoubleValue]) error {
	ctx := stream.Context()
	err := s.products.WatchTotal(ctx, func(total float64) error {
		return stream.Send(wrapperspb.Double(total))
	})
	return s.toStatus(ctx, err)
}

func sessionResponse(sess *services.Session) *structpb.Struct {
	return rpc.SessionToStruct(rpc.Session{
		UserID:       sess.User.ID,
		Email:        sess.User.Email,
		AccessToken:  sess.Tokens.AccessToken,
		RefreshToken: sess.Tokens.RefreshToken,
	})
}

// toStatus maps service errors onto gRPC codes. Unexpected errors are
// logged and reported as a bare Internal so no detail leaks to clients.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	}

	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
