package leaderboardservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	leaderboardcache "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/cache"
	leaderboarddb "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/opti-runner/app/observability/leaderboardmetrics"
	"github.com/Black-And-White-Club/opti-runner/app/shared"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "LeaderboardService"

// Options tunes validation and read limits.
type Options struct {
	Thresholds   leaderboarddomain.Thresholds
	DefaultLimit int
	MaxLimit     int
	DefaultName  string
	Clock        shared.Clock
}

// LeaderboardService implements the Service interface.
type LeaderboardService struct {
	repo      leaderboarddb.Repository
	profiles  ProfileStore
	cache     leaderboardcache.Cache
	publisher message.Publisher
	validator *leaderboarddomain.Validator
	logger    *slog.Logger
	metrics   leaderboardmetrics.LeaderboardMetrics
	tracer    trace.Tracer
	db        *bun.DB
	opts      Options
}

// NewLeaderboardService creates a new LeaderboardService. A nil db runs every
// step directly against the repositories without a transaction.
func NewLeaderboardService(
	repo leaderboarddb.Repository,
	profiles ProfileStore,
	cache leaderboardcache.Cache,
	publisher message.Publisher,
	logger *slog.Logger,
	metrics leaderboardmetrics.LeaderboardMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts Options,
) *LeaderboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = leaderboardmetrics.NewNoop()
	}
	if cache == nil {
		cache = leaderboardcache.NoopCache{}
	}
	if opts.Thresholds == (leaderboarddomain.Thresholds{}) {
		opts.Thresholds = leaderboarddomain.DefaultThresholds()
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = max(100, opts.DefaultLimit)
	}
	if opts.DefaultName == "" {
		opts.DefaultName = "Player"
	}
	if opts.Clock == nil {
		opts.Clock = shared.RealClock{}
	}

	return &LeaderboardService{
		repo:      repo,
		profiles:  profiles,
		cache:     cache,
		publisher: publisher,
		validator: leaderboarddomain.NewValidator(opts.Thresholds),
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		opts:      opts,
	}
}

var _ Service = (*LeaderboardService)(nil)

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *LeaderboardService,
	ctx context.Context,
	operationName string,
	identifier string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.WarnContext(ctx, "Operation failed",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("error", wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[T any](
	s *LeaderboardService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (T, error),
) (T, error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result T
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}
