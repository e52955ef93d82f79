// Package server assembles the inventory server: the PostgreSQL account
// store, the configured product store, change fan-out, event publishing,
// snapshot export, the gRPC endpoint and the metrics side-port.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/config"
	"github.com/dmitrijs2005/stockkeeper/internal/server/events"
	"github.com/dmitrijs2005/stockkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/stockkeeper/internal/server/notify"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/products"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/stockkeeper/internal/server/services"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	gs "github.com/dmitrijs2005/stockkeeper/internal/server/grpc"
)

// tokenPurgeInterval is how often expired refresh tokens are deleted.
const tokenPurgeInterval = 10 * time.Minute

type App struct {
	config         *config.Config
	logger         logging.Logger
	userService    *services.UserService
	productService *services.ProductService
	metrics        *metrics.Metrics
	remoteChanges  *notify.RedisNotifier
	closers        []func() error
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger.With("module", "app"), metrics: metrics.New()}

	if err := app.init(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	db, err := repomanager.OpenPostgres(ctx, app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	app.closers = append(app.closers, db.Close)

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	productRepo, err := app.openProductStore(ctx, db, rm)
	if err != nil {
		return fmt.Errorf("product store init error: %w", err)
	}

	hub := notify.NewHub()
	var notifier notify.Notifier = hub
	if app.config.RedisAddr != "" {
		rc := redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
		app.closers = append(app.closers, rc.Close)
		if err := rc.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis init error: %w", err)
		}
		app.remoteChanges = notify.NewRedisNotifier(rc, app.config.RedisChannel, hub, app.logger)
		notifier = app.remoteChanges
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(app.config.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(app.config.KafkaBrokers, app.config.KafkaTopic)
	}
	app.closers = append(app.closers, publisher.Close)

	exporter, err := services.NewS3Exporter(ctx, app.config)
	if err != nil {
		return fmt.Errorf("s3 init error: %w", err)
	}

	app.userService = services.NewUserService(db, rm, app.config)
	app.productService = services.NewProductService(productRepo, notifier, hub, publisher, exporter, app.logger)

	app.logger.Info(ctx, "App initialized",
		"product_store", app.config.ProductStore,
		"redis", app.config.RedisAddr != "",
		"kafka", len(app.config.KafkaBrokers) > 0,
	)
	return nil
}

func (app *App) openProductStore(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager) (products.Repository, error) {
	switch app.config.ProductStore {
	case config.StorePostgres:
		return rm.Products(db), nil
	case config.StoreMemory:
		return products.NewMemoryRepository(), nil
	case config.StoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(app.config.MongoURI))
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() error {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(dctx)
		})
		if err := client.Ping(ctx, nil); err != nil {
			return nil, err
		}
		return products.NewMongoRepository(client.Database(app.config.MongoDatabase).Collection(products.CollectionName)), nil
	default:
		return nil, fmt.Errorf("unknown product store %q", app.config.ProductStore)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.productService, app.config.SecretKey, app.metrics)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := metrics.NewHTTPServer(app.config.EndpointAddrHTTP, app.metrics.Router(), app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// listenRemoteChanges keeps the Redis subscription alive, resubscribing
// after a dropped connection.
func (app *App) listenRemoteChanges(ctx context.Context) {
	for ctx.Err() == nil {
		if err := app.remoteChanges.Listen(ctx); err != nil && ctx.Err() == nil {
			app.logger.Warn(ctx, "redis subscription ended", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

func (app *App) purgeExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Warn(ctx, "purging expired refresh tokens failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Debug(ctx, "expired refresh tokens purged", "count", n)
			}
		}
	}
}

// Run serves until SIGINT/SIGTERM/SIGQUIT, ctx cancellation or a server
// failure, then releases every backend.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	run := func(f func(ctx context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f(ctx)
		}()
	}

	run(func(ctx context.Context) { app.startGRPCServer(ctx, cancelFunc) })
	run(func(ctx context.Context) { app.startHTTPServer(ctx, cancelFunc) })
	run(app.purgeExpiredTokens)
	if app.remoteChanges != nil {
		run(app.listenRemoteChanges)
	}

	wg.Wait()

	app.close(context.WithoutCancel(ctx))
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(ctx, "close failed", "error", err)
		}
	}
	app.closers = nil
}
