package grpc

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/rpc"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// publicMethods may be called without an access token. The health service
// lives outside inventory.v1 and is public as well.
var publicMethods = map[string]bool{
	rpc.MethodRegister:     true,
	rpc.MethodLogin:        true,
	rpc.MethodRefreshToken: true,
	rpc.MethodPing:         true,
}

func requiresToken(method string) bool {
	return strings.HasPrefix(method, "/"+rpc.ServiceName+"/") && !publicMethods[method]
}

func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// authenticate validates the access_token metadata and stores the user id
// in the returned context. An expired token is reported with the message
// the client looks for to trigger a refresh.
func (s *GRPCServer) authenticate(ctx context.Context) (context.Context, error) {
	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	return context.WithValue(ctx, userIDKey, userID), nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if !requiresToken(info.FullMethod) {
		return handler(ctx, req)
	}

	ctx, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type contextStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *contextStream) Context() context.Context { return w.ctx }

// streamLifetimeInterceptor ties every stream to base as well as to its
// client.
func streamLifetimeInterceptor(base context.Context) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, cancel := context.WithCancel(ss.Context())
		defer cancel()
		stop := context.AfterFunc(base, cancel)
		defer stop()

		return handler(srv, &contextStream{ServerStream: ss, ctx: ctx})
	}
}

func (s *GRPCServer) streamAccessTokenInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if !requiresToken(info.FullMethod) {
		return handler(srv, ss)
	}

	ctx, err := s.authenticate(ss.Context())
	if err != nil {
		return err
	}
	return handler(srv, &contextStream{ServerStream: ss, ctx: ctx})
}

// recoveryInterceptor turns a handler panic into codes.Internal.
func (s *GRPCServer) recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "panic recovered", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
			err = status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func (s *GRPCServer) streamRecoveryInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ss.Context(), "panic recovered", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
			err = status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(srv, ss)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	s.logger.Debug(ctx, "request",
		"method", info.FullMethod,
		"duration_ms", time.Since(start).Milliseconds(),
		"code", status.Code(err).String(),
	)
	return resp, err
}

func (s *GRPCServer) streamLoggingInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	s.logger.Debug(ss.Context(), "stream opened", "method", info.FullMethod)

	err := handler(srv, ss)

	s.logger.Debug(ss.Context(), "stream closed",
		"method", info.FullMethod,
		"duration_ms", time.Since(start).Milliseconds(),
		"code", status.Code(err).String(),
	)
	return err
}
