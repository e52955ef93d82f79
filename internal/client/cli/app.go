package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/client/client"
	"github.com/dmitrijs2005/stockkeeper/internal/client/config"
	"github.com/dmitrijs2005/stockkeeper/internal/client/controllers"
	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/products"
	"github.com/dmitrijs2005/stockkeeper/internal/client/session"
	"github.com/dmitrijs2005/stockkeeper/internal/filex"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// sessionStore is the persisted "stay signed in" flag.
type sessionStore interface {
	IsLoggedIn(ctx context.Context) (bool, error)
	SetLoggedIn(ctx context.Context, v bool) error
	ClearSession(ctx context.Context) error
}

type App struct {
	config  *config.Config
	log     logging.Logger
	baseLog logging.Logger
	parent  context.Context
	gateway client.Client
	session sessionStore

	store    products.Repository
	auth     auth.Repository
	login    *controllers.Login
	home     *controllers.Home
	products *controllers.Products
	detail   *controllers.Detail

	reader *bufio.Reader
	out    io.Writer

	mu       sync.Mutex
	mode     Mode
	userName string

	totalPrimed    bool
	productsPrimed bool

	closers []func() error
}

// NewApp opens the session database and the server connection and builds
// the controllers. Close releases all of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if err := filex.EnsureParentDir(c.SessionDBPath); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.SessionDBPath)
	if err != nil {
		log.Error(ctx, "error initializing session database", "path", c.SessionDBPath, "error", err)
		return nil, err
	}

	gw, err := client.NewGRPCClient(c.ServerEndpointAddr, c.CallTimeout, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", c.ServerEndpointAddr, err)
	}

	sess := session.NewManager(metadata.NewSQLiteRepository(db))

	a := newApp(ctx, c, log, gw, sess, bufio.NewReader(os.Stdin), os.Stdout)
	a.closers = append(a.closers, db.Close)
	return a, nil
}

func newApp(ctx context.Context, c *config.Config, log logging.Logger, gw client.Client, sess sessionStore, r *bufio.Reader, w io.Writer) *App {
	store := products.NewRemoteRepository(gw, log)
	authRepo := auth.NewGatewayRepository(gw)

	return &App{
		config:   c,
		log:      log.With("module", "cli"),
		baseLog:  log,
		parent:   ctx,
		gateway:  gw,
		session:  sess,
		store:    store,
		auth:     authRepo,
		login:    controllers.NewLogin(authRepo),
		home:     controllers.NewHome(ctx, store, authRepo, log),
		products: controllers.NewProducts(ctx, store, log),
		detail:   controllers.NewDetail(ctx, store, log),
		reader:   r,
		out:      w,
		closers:  []func() error{gw.Close},
	}
}

// Close stops the controllers and releases the connection and database.
func (a *App) Close() {
	a.home.Close()
	a.products.Close()
	a.detail.Close()
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn(context.Background(), "close failed", "error", err)
		}
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// resetProducts swaps in a fresh shared controller. Closing the old one ends
// streams opened under the previous session; the new one opens its own on
// first use.
func (a *App) resetProducts() {
	a.products.Close()
	a.products = controllers.NewProducts(a.parent, a.store, a.baseLog)
	a.totalPrimed, a.productsPrimed = false, false
}

func (a *App) isLoggedIn() bool {
	return a.login.IsUserLoggedIn()
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "switched mode", "mode", mode)
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setUserName(name string) {
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.mode != "" {
		s = s + string(a.mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// StartOnlineStatusWatcher pings the server every interval and flips the
// mode between online and offline. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.gateway.Ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
