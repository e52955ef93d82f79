// Package grpc serves the inventory.v1.Inventory service: authentication
// calls, product CRUD, snapshot export and the live product/total streams.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/rpc"
	"github.com/dmitrijs2005/stockkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/stockkeeper/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type UserService interface {
	Register(ctx context.Context, email, password string) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.Session, error)
}

type ProductService interface {
	Get(ctx context.Context, id string) (models.Product, error)
	Insert(ctx context.Context, p models.Product) (string, error)
	Update(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id string) error
	ExportSnapshot(ctx context.Context, userID string) (string, error)
	WatchProducts(ctx context.Context, send func([]models.Product) error) error
	WatchTotal(ctx context.Context, send func(float64) error) error
}

type GRPCServer struct {
	address   string
	users     UserService
	products  ProductService
	metrics   *metrics.Metrics
	logger    logging.Logger
	jwtSecret []byte

	// stopTimeout bounds GracefulStop before in-flight calls are cut off.
	stopTimeout time.Duration
}

var _ rpc.InventoryServer = (*GRPCServer)(nil)

// NewGRPCServer wires the handlers. m may be nil, which disables the
// instrumentation interceptors.
func NewGRPCServer(a string, l logging.Logger, us UserService, ps ProductService, secretKey string, m *metrics.Metrics) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		products:  ps,
		metrics:   m,
		jwtSecret: []byte(secretKey),

		stopTimeout: 5 * time.Second,
	}
}

// newServer builds the grpc.Server. Streams opened on it are cancelled once
// base is done, so watch loops return instead of holding GracefulStop.
func (s *GRPCServer) newServer(base context.Context) *grpc.Server {
	unary := []grpc.UnaryServerInterceptor{s.recoveryInterceptor, s.loggingInterceptor}
	stream := []grpc.StreamServerInterceptor{streamLifetimeInterceptor(base), s.streamRecoveryInterceptor, s.streamLoggingInterceptor}
	if s.metrics != nil {
		unary = append(unary, s.metrics.UnaryInterceptor)
		stream = append(stream, s.metrics.StreamInterceptor)
	}
	unary = append(unary, s.accessTokenInterceptor)
	stream = append(stream, s.streamAccessTokenInterceptor)

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	)

	rpc.RegisterInventoryServer(srv, s)
	grpc_health_v1.RegisterHealthServer(srv, health.NewServer())
	return srv
}

// Run serves until ctx is done, then stops gracefully. Open streams are
// cancelled along with ctx; calls still running after stopTimeout are cut
// off with Stop.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-time.After(s.stopTimeout):
			s.logger.Warn(ctx, "graceful stop timed out, closing remaining connections")
			srv.Stop()
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
