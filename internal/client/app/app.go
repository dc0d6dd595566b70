package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aussiebroadwan/banksync/internal/client/cache"
	"github.com/aussiebroadwan/banksync/internal/client/service"
	"github.com/aussiebroadwan/banksync/internal/client/store"
	"github.com/aussiebroadwan/banksync/internal/client/store/drivers/memory"
	"github.com/aussiebroadwan/banksync/internal/client/store/drivers/redis"
	"github.com/aussiebroadwan/banksync/internal/client/store/drivers/sqlite"
	"github.com/aussiebroadwan/banksync/pkg/eventbus"
	"github.com/aussiebroadwan/banksync/pkg/gqlx"
	"github.com/aussiebroadwan/banksync/pkg/session"
	"github.com/aussiebroadwan/banksync/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

var ErrUnknownStore = errors.New("app: unknown store driver")

// Application wires the session, the network client and the caches of one
// client process.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	bus    *eventbus.Bus
	client *gqlx.Client

	Session      *session.Machine
	Shares       *cache.ShareCache
	Transactions *cache.TransactionCache
	Stocks       *cache.StockCache
	Purchases    *cache.PurchaseCache
	Refresh      *service.RefreshService

	mu        sync.Mutex
	histories []*cache.StockHistoryCache
	started   bool
	unsubs    []func()
}

// New creates an Application. The persisted session hint is hydrated and,
// when cfg.Token is set, the credential assigned.
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "banksync",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}
	app.bus = eventbus.New(eventbus.WithLogger(app.logger))

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initSession(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initClient()
	app.initCaches()

	return app, nil
}

// initDatabase opens the configured store driver.
func (app *Application) initDatabase(ctx context.Context) error {
	switch app.cfg.Store {
	case StoreMemory:
		app.db = memory.NewStore()

	case StoreSQLite, "":
		db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.Ping(ctx); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to open database %s: %w", app.cfg.DatabaseFile, err)
		}
		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.db = db
		app.logger.Debug("database migrations applied successfully", "file", app.cfg.DatabaseFile)

	case StoreRedis:
		db, err := redis.Open(ctx, app.cfg.RedisAddr, app.cfg.RedisPrefix)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.db = db

	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, app.cfg.Store)
	}
	return nil
}

func (app *Application) initSession(ctx context.Context) error {
	app.Session = session.New(app.db,
		session.WithLogger(app.logger),
		session.WithBus(app.bus),
	)
	app.Session.Hydrate(ctx)

	if app.cfg.Token == "" {
		return nil
	}
	token := app.cfg.Token
	if err := app.Session.SetCredential(ctx, &token); err != nil {
		return fmt.Errorf("failed to assign credential: %w", err)
	}
	return nil
}

func (app *Application) initClient() {
	app.client = gqlx.NewClient(app.cfg.APIURL,
		gqlx.WithHTTPClient(&http.Client{
			Timeout:   app.cfg.HTTPTimeout,
			Transport: slogx.NewTransport(nil, app.logger),
		}),
		gqlx.WithRateLimit(app.cfg.RateLimit, app.cfg.RateBurst),
		gqlx.WithTokenSource(app.Session.Token),
		gqlx.WithLogger(app.logger),
	)

	// Cached responses belong to the previous member
	app.unsubs = append(app.unsubs, app.Session.Subscribe(func(st session.State) {
		if st == session.Anonymous {
			app.client.Reset()
		}
	}))
}

func (app *Application) initCaches() {
	opts := []cache.Option{
		cache.WithPageSize(app.cfg.PageSize),
		cache.WithLogger(app.logger),
	}

	app.Shares = cache.NewShareCache(app.client, app.bus, opts...)
	app.Transactions = cache.NewTransactionCache(app.client, app.bus, opts...)
	app.Stocks = cache.NewStockCache(app.client, app.bus, opts...)
	app.Purchases = cache.NewPurchaseCache(app.client, app.bus, opts...)

	app.Refresh = service.NewRefreshService(app.Session, app.client, app.logger, app.cfg.RefreshInterval)
}

// History returns a new price history cache for one stock. It is closed
// together with the application.
func (app *Application) History(stockID string) *cache.StockHistoryCache {
	h := cache.NewStockHistoryCache(app.client, app.bus, stockID, cache.WithLogger(app.logger))

	app.mu.Lock()
	app.histories = append(app.histories, h)
	app.mu.Unlock()
	return h
}

// Start launches the background credential refresh.
func (app *Application) Start() {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.started {
		return
	}
	app.started = true
	app.Refresh.Start()
}

func (app *Application) Logger() *slog.Logger { return app.logger }

func (app *Application) Config() Config { return app.cfg }

// Client exposes the network client, mostly for cache maintenance.
func (app *Application) Client() *gqlx.Client { return app.client }

// Close stops background work and releases the store.
func (app *Application) Close() error {
	app.mu.Lock()
	started := app.started
	app.started = false
	histories := app.histories
	app.histories = nil
	app.mu.Unlock()

	if started {
		app.Refresh.Stop()
	}
	for _, h := range histories {
		h.Close()
	}
	app.Shares.Close()
	app.Transactions.Close()
	app.Stocks.Close()
	app.Purchases.Close()
	for _, unsub := range app.unsubs {
		unsub()
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}
	return nil
}
