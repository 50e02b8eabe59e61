package leaderboardjobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	"github.com/Black-And-White-Club/opti-runner/app/observability"
	"github.com/Black-And-White-Club/opti-runner/app/shared"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

const metricsService = "river"

// Config tunes the weekly close job.
type Config struct {
	// Size is how many standings the closed-week event carries.
	Size  int
	Delay time.Duration
	Clock shared.Clock
}

// Service runs the leaderboard's River client.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics observability.OperationMetrics
}

// NewService connects a pgx pool for River and registers the weekly close
// worker and its periodic schedule.
func NewService(ctx context.Context, dsn string, closer WeekCloser, cfg Config, logger *slog.Logger, metrics observability.OperationMetrics) (*Service, error) {
	if metrics == nil {
		metrics = observability.NoOpOperationMetrics{}
	}
	ctxLogger := logger.With(slog.String("component", "river_queue"))

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", metricsService)

	// River requires pgx, not database/sql
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), NewRiverConfig(closer, cfg, ctxLogger))
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", metricsService)
	metrics.RecordOperationDuration(ctx, "initialize_service", metricsService, time.Since(start))
	ctxLogger.InfoContext(ctx, "Leaderboard job service initialized")

	return &Service{client: client, pool: pool, logger: ctxLogger, metrics: metrics}, nil
}

// NewRiverConfig builds the client config: one queue, the close worker and
// the weekly periodic job.
func NewRiverConfig(closer WeekCloser, cfg Config, logger *slog.Logger) *river.Config {
	if cfg.Size <= 0 {
		cfg.Size = 10
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultCloseDelay
	}
	if cfg.Clock == nil {
		cfg.Clock = shared.RealClock{}
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewWeeklyCloseWorker(closer, cfg.Size, logger))

	return &river.Config{
		Logger: logger,
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: 2},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(WeeklySchedule{Delay: cfg.Delay}, closePreviousWeek(cfg.Clock), nil),
		},
	}
}

// closePreviousWeek builds the periodic job's args at fire time.
func closePreviousWeek(clock shared.Clock) river.PeriodicJobConstructor {
	return func() (river.JobArgs, *river.InsertOpts) {
		return WeeklyCloseArgs{WeekStart: leaderboarddomain.PreviousWeek(clock.NowUTC())}, nil
	}
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "start_service", metricsService)
	if err := s.client.Start(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "start_service", metricsService)
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", metricsService)
	s.logger.InfoContext(ctx, "Leaderboard job service started")
	return nil
}

// CloseWeekNow enqueues a close for the week containing weekStart. A week that
// was already closed is reported as a duplicate, not an error.
func (s *Service) CloseWeekNow(ctx context.Context, weekStart time.Time) (duplicate bool, err error) {
	s.metrics.RecordOperationAttempt(ctx, "enqueue_weekly_close", metricsService)
	res, err := s.client.Insert(ctx, WeeklyCloseArgs{WeekStart: leaderboarddomain.WeekOf(weekStart)}, nil)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "enqueue_weekly_close", metricsService)
		return false, fmt.Errorf("failed to enqueue weekly close: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "enqueue_weekly_close", metricsService)
	return res.UniqueSkippedAsDuplicate, nil
}

// Stop stops the River client and closes its pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()

	s.metrics.RecordOperationAttempt(ctx, "stop_service", metricsService)
	if err := s.client.Stop(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "stop_service", metricsService)
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "stop_service", metricsService)
	s.logger.InfoContext(ctx, "Leaderboard job service stopped")
	return nil
}
