package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/live"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/optional"
	"github.com/dmitrijs2005/stockkeeper/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// inventoryAPI is the subset of rpc.InventoryClient used here.
type inventoryAPI interface {
	Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RefreshToken(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	GetProduct(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	InsertProduct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	UpdateProduct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	DeleteProduct(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ExportSnapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	WatchProducts(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.ListValue], error)
	WatchTotal(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[wrapperspb.DoubleValue], error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      inventoryAPI
	log         logging.Logger
	callTimeout time.Duration

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	user         *models.User
}

var _ Client = (*GRPCClient)(nil)

func NewGRPCClient(endpointURL string, callTimeout time.Duration, log logging.Logger) (*GRPCClient, error) {
	c := &GRPCClient{
		endpointURL: endpointURL,
		callTimeout: callTimeout,
		log:         log.With("module", "grpc_client"),
	}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithStreamInterceptor(s.streamAccessTokenInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewInventoryClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (access, refresh string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setSession(sess rpc.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = sess.AccessToken
	s.refreshToken = sess.RefreshToken
	u := sess.User()
	s.user = &u
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// refreshTokens rotates the token pair. It reports false when there is
// nothing to refresh with or the server refused.
func (s *GRPCClient) refreshTokens(ctx context.Context) bool {
	_, refresh := s.tokens()
	if refresh == "" {
		return false
	}

	resp, err := s.client.RefreshToken(ctx, wrapperspb.String(refresh))
	if err != nil {
		s.log.Warn(ctx, "token refresh failed", "error", err)
		return false
	}
	sess, err := rpc.SessionFromStruct(resp)
	if err != nil {
		s.log.Warn(ctx, "token refresh returned malformed session", "error", err)
		return false
	}

	s.setSession(sess)
	return true
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	access, _ := s.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)

	if err == nil || method == rpc.MethodRefreshToken || !isTokenExpired(err) {
		return err
	}
	if !s.refreshTokens(ctx) {
		return err
	}

	access, _ = s.tokens()
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	access, _ := s.tokens()
	return streamer(withAccessToken(ctx, access), desc, cc, method, opts...)
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.callTimeout)
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorValidation, st.Message())
	case codes.AlreadyExists:
		return common.ErrorAlreadyExists
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetValue() != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) authenticate(ctx context.Context, call func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error), email, password string) (models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := call(ctx, rpc.CredentialsToStruct(email, password))
	if err != nil {
		return models.User{}, s.mapError(err)
	}
	sess, err := rpc.SessionFromStruct(resp)
	if err != nil {
		return models.User{}, err
	}

	s.setSession(sess)
	return sess.User(), nil
}

func (s *GRPCClient) LoginUser(ctx context.Context, email, password string) (models.User, error) {
	return s.authenticate(ctx, s.client.Login, email, password)
}

// RegisterUser creates the account and signs it in.
func (s *GRPCClient) RegisterUser(ctx context.Context, email, password string) (models.User, error) {
	return s.authenticate(ctx, s.client.Register, email, password)
}

func (s *GRPCClient) CurrentUser() optional.Option[models.User] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return optional.FromPtr(s.user)
}

func (s *GRPCClient) IsUserLoggedIn() bool {
	return s.CurrentUser().IsPresent()
}

func (s *GRPCClient) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
}

func (s *GRPCClient) ProductByID(ctx context.Context, id string) (optional.Option[models.Product], error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetProduct(ctx, wrapperspb.String(id))
	if status.Code(err) == codes.NotFound {
		return optional.None[models.Product](), nil
	}
	if err != nil {
		return optional.None[models.Product](), s.mapError(err)
	}

	p, err := rpc.ProductFromStruct(resp)
	if err != nil {
		return optional.None[models.Product](), err
	}
	return optional.Some(p), nil
}

func (s *GRPCClient) InsertProduct(ctx context.Context, p models.Product) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.InsertProduct(ctx, rpc.ProductToStruct(p))
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) UpdateProduct(ctx context.Context, p models.Product) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.UpdateProduct(ctx, rpc.ProductToStruct(p))
	return s.mapError(err)
}

func (s *GRPCClient) DeleteProduct(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.DeleteProduct(ctx, wrapperspb.String(id))
	return s.mapError(err)
}

// ExportSnapshot asks the server to export the inventory and returns a
// download URL for the snapshot.
func (s *GRPCClient) ExportSnapshot(ctx context.Context) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ExportSnapshot(ctx, &emptypb.Empty{})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) AllProducts() live.Stream[[]models.Product] {
	return func(ctx context.Context, emit func([]models.Product)) error {
		return s.watch(ctx, func(ctx context.Context) error {
			stream, err := s.client.WatchProducts(ctx, &emptypb.Empty{})
			if err != nil {
				return err
			}
			for {
				l, err := stream.Recv()
				if err != nil {
					return err
				}
				products, err := rpc.ProductsFromList(l)
				if err != nil {
					return err
				}
				emit(products)
			}
		})
	}
}

func (s *GRPCClient) TotalInventoryValue() live.Stream[float64] {
	return func(ctx context.Context, emit func(float64)) error {
		return s.watch(ctx, func(ctx context.Context) error {
			stream, err := s.client.WatchTotal(ctx, &emptypb.Empty{})
			if err != nil {
				return err
			}
			for {
				v, err := stream.Recv()
				if err != nil {
					return err
				}
				emit(v.GetValue())
			}
		})
	}
}

// watch runs a server-streaming subscription, re-opening it once after a
// token refresh when the server reports the access token expired.
func (s *GRPCClient) watch(ctx context.Context, run func(ctx context.Context) error) error {
	err := run(ctx)
	if isTokenExpired(err) && s.refreshTokens(ctx) {
		err = run(ctx)
	}

	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, io.EOF):
		return nil
	default:
		return s.mapError(err)
	}
}
