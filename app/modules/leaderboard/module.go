package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/Black-And-White-Club/opti-runner/app/eventbus"
	leaderboardservice "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/application"
	leaderboardcache "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/cache"
	leaderboardhandlers "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/handlers"
	leaderboardjobs "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/jobs"
	leaderboarddb "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/repositories"
	leaderboardsubscribers "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/subscribers"
	"github.com/Black-And-White-Club/opti-runner/app/observability"
	"github.com/Black-And-White-Club/opti-runner/app/observability/leaderboardmetrics"
	"github.com/Black-And-White-Club/opti-runner/app/shared"
	"github.com/Black-And-White-Club/opti-runner/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the leaderboard module.
type Module struct {
	LeaderboardService leaderboardservice.Service
	Repository         leaderboarddb.Repository
	handlers           *leaderboardhandlers.LeaderboardHandlers
	subscribers        *leaderboardsubscribers.LeaderboardSubscribers
	jobs               *leaderboardjobs.Service
	cancelFunc         context.CancelFunc
	observability      *observability.Observability
}

// Deps are the collaborators the leaderboard module borrows from the app.
type Deps struct {
	DB       *bun.DB
	Bus      *eventbus.EventBus
	Profiles leaderboardservice.ProfileStore
	Cache    leaderboardcache.Cache
	Metrics  leaderboardmetrics.LeaderboardMetrics
	// OpMetrics instruments the job service.
	OpMetrics observability.OperationMetrics
}

// NewLeaderboardModule creates a new instance of the Leaderboard module.
func NewLeaderboardModule(ctx context.Context, cfg *config.Config, obs *observability.Observability, deps Deps) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "leaderboard.NewLeaderboardModule called")

	clock := shared.RealClock{}
	var publisher message.Publisher
	if deps.Bus != nil {
		publisher = deps.Bus
	}

	repo := leaderboarddb.NewRepository(deps.DB)
	service := leaderboardservice.NewLeaderboardService(
		repo,
		deps.Profiles,
		deps.Cache,
		publisher,
		logger,
		deps.Metrics,
		obs.Tracer,
		deps.DB,
		leaderboardservice.Options{
			Thresholds:   cfg.Anticheat.Thresholds(),
			DefaultLimit: cfg.Leaderboard.DefaultLimit,
			MaxLimit:     cfg.Leaderboard.MaxLimit,
			DefaultName:  cfg.Profile.DefaultName,
			Clock:        clock,
		},
	)

	module := &Module{
		LeaderboardService: service,
		Repository:         repo,
		handlers:           leaderboardhandlers.NewLeaderboardHandlers(service, clock, logger),
		subscribers:        leaderboardsubscribers.NewLeaderboardSubscribers(service, logger),
		observability:      obs,
	}

	if cfg.Jobs.Enabled {
		jobs, err := leaderboardjobs.NewService(ctx, cfg.Postgres.DSN, service, leaderboardjobs.Config{
			Size:  cfg.Jobs.WeeklyCloseSize,
			Clock: clock,
		}, logger, deps.OpMetrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create leaderboard job service: %w", err)
		}
		module.jobs = jobs
	}

	return module, nil
}

// RegisterRoutes mounts /api/leaderboard on r.
func (m *Module) RegisterRoutes(r chi.Router, requirePlayer, rateLimit func(http.Handler) http.Handler) {
	r.Route("/api/leaderboard", func(r chi.Router) {
		r.Use(rateLimit)
		m.handlers.Routes(r, requirePlayer)
	})
}

// RegisterSubscribers binds the module's event consumers.
func (m *Module) RegisterSubscribers(r *eventbus.Router) {
	m.subscribers.Register(r)
}

// Run starts the background jobs and blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting leaderboard module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.jobs != nil {
		if err := m.jobs.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Leaderboard jobs failed to start", slog.Any("error", err))
		}
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Leaderboard module goroutine stopped")
}

// Close stops the leaderboard module and cleans up resources.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping leaderboard module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	var err error
	if m.jobs != nil {
		err = m.jobs.Stop(context.Background())
	}

	logger.Info("Leaderboard module stopped")
	return err
}
