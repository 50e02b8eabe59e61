package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/opti-runner/app/eventbus"
	"github.com/Black-And-White-Club/opti-runner/app/modules/auth"
	"github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard"
	leaderboardcache "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/cache"
	"github.com/Black-And-White-Club/opti-runner/app/modules/profile"
	"github.com/Black-And-White-Club/opti-runner/app/observability"
	"github.com/Black-And-White-Club/opti-runner/app/observability/leaderboardmetrics"
	"github.com/Black-And-White-Club/opti-runner/config"
	"github.com/go-redis/redis/v8"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// App holds every long-lived component of the server.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      *eventbus.EventBus
	EventRouter   *eventbus.Router
	Redis         redis.UniversalClient
	Modules       *Modules
	Router        http.Handler

	server *http.Server
	wg     sync.WaitGroup
}

// Modules groups the feature modules.
type Modules struct {
	Auth        *auth.Module
	Profile     *profile.Module
	Leaderboard *leaderboard.Module
}

// New returns an uninitialised App for cfg.
func New(cfg *config.Config) *App {
	return &App{Config: cfg}
}

// Initialize connects storage and messaging, then builds modules and routes.
func (app *App) Initialize(ctx context.Context) error {
	cfg := app.Config
	obs := observability.New(cfg.Observability)
	app.Observability = obs
	logger := obs.Logger

	app.DB = NewDB(cfg.Postgres.DSN)
	if err := app.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.InfoContext(ctx, "Database connected")

	bus, err := eventbus.New(cfg.NATS.URL, logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	app.EventBus = bus

	app.EventRouter, err = eventbus.NewRouter(logger, bus, obs.Registry)
	if err != nil {
		return fmt.Errorf("failed to create event router: %w", err)
	}

	var cache leaderboardcache.Cache = leaderboardcache.NoopCache{}
	if cfg.Redis.Addr != "" {
		app.Redis = leaderboardcache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := app.Redis.Ping(ctx).Err(); err != nil {
			logger.WarnContext(ctx, "Redis unavailable, leaderboard cache disabled", slog.Any("error", err))
		} else {
			cache = leaderboardcache.NewRedisCache(app.Redis, cfg.Leaderboard.CacheTTL)
			logger.InfoContext(ctx, "Leaderboard cache enabled", slog.String("addr", cfg.Redis.Addr))
		}
	}

	opMetrics := observability.NewPrometheusOperationMetrics(obs.Registry, "opti_runner")

	authModule := auth.NewModule(ctx, cfg, obs)
	profileModule := profile.NewProfileModule(ctx, cfg, obs, opMetrics, bus, app.DB)
	leaderboardModule, err := leaderboard.NewLeaderboardModule(ctx, cfg, obs, leaderboard.Deps{
		DB:        app.DB,
		Bus:       bus,
		Profiles:  profileModule.Repository,
		Cache:     cache,
		Metrics:   leaderboardmetrics.NewPrometheus(obs.Registry, opMetrics),
		OpMetrics: opMetrics,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize leaderboard module: %w", err)
	}
	leaderboardModule.RegisterSubscribers(app.EventRouter)

	app.Modules = &Modules{
		Auth:        authModule,
		Profile:     profileModule,
		Leaderboard: leaderboardModule,
	}

	app.Router = NewRouter(obs, authModule, profileModule, leaderboardModule)
	app.server = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.InfoContext(ctx, "Application initialized")
	return nil
}

// NewDB opens a bun handle over pgdriver.
func NewDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Run serves HTTP, consumes events and runs background jobs until ctx is
// cancelled or the HTTP server fails.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.wg.Add(1)
	go app.Modules.Leaderboard.Run(ctx, &app.wg)

	routerErr := make(chan error, 1)
	go func() {
		if err := app.EventRouter.Run(ctx); err != nil {
			routerErr <- err
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", slog.String("address", app.server.Addr))
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown requested")
		return nil
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	case err := <-routerErr:
		return fmt.Errorf("event router failed: %w", err)
	}
}

// Close shuts everything down in reverse dependency order.
func (app *App) Close() error {
	var errs []error
	logger := slog.Default()
	if app.Observability != nil {
		logger = app.Observability.Logger
	}

	if app.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := app.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		cancel()
	}

	if app.Modules != nil {
		if err := app.Modules.Leaderboard.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := app.Modules.Profile.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := app.Modules.Auth.Close(); err != nil {
			errs = append(errs, err)
		}
		app.wg.Wait()
	}

	if app.EventRouter != nil {
		if err := app.EventRouter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event router: %w", err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	logger.Info("Application shut down")
	return errors.Join(errs...)
}
