package profileservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/opti-runner/app/eventbus"
	profiledomain "github.com/Black-And-White-Club/opti-runner/app/modules/profile/domain"
	profileevents "github.com/Black-And-White-Club/opti-runner/app/modules/profile/events"
	profiledb "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/repositories"
	"github.com/Black-And-White-Club/opti-runner/app/observability"
	"github.com/Black-And-White-Club/opti-runner/app/shared"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ProfileService"

// Options tunes profile rules.
type Options struct {
	MaxNameChanges int
	DefaultName    string
	Clock          shared.Clock
}

// ProfileService implements the Service interface.
type ProfileService struct {
	repo      profiledb.Repository
	publisher message.Publisher
	logger    *slog.Logger
	metrics   observability.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
	opts      Options
}

// NewProfileService creates a new ProfileService.
func NewProfileService(
	repo profiledb.Repository,
	publisher message.Publisher,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts Options,
) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoOpOperationMetrics{}
	}
	if opts.MaxNameChanges <= 0 {
		opts.MaxNameChanges = 2
	}
	if opts.DefaultName == "" {
		opts.DefaultName = "Player"
	}
	if opts.Clock == nil {
		opts.Clock = shared.RealClock{}
	}
	return &ProfileService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		opts:      opts,
	}
}

var _ Service = (*ProfileService)(nil)

// GetProfile returns the player's profile, creating it on first view.
func (s *ProfileService) GetProfile(ctx context.Context, playerID, fallbackName string) (*profiledb.Profile, error) {
	return withTelemetry(s, ctx, "GetProfile", playerID, func(ctx context.Context) (*profiledb.Profile, error) {
		name := s.opts.DefaultName
		if normalized, err := profiledomain.NormalizeDisplayName(fallbackName); err == nil {
			name = normalized
		}
		return s.repo.GetOrCreate(ctx, nil, playerID, name)
	})
}

// ChangeDisplayName renames the player within their change budget.
func (s *ProfileService) ChangeDisplayName(ctx context.Context, playerID, newName string) (*profiledb.Profile, error) {
	name, err := profiledomain.NormalizeDisplayName(newName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDisplayName, err)
	}

	var oldName string
	profile, err := withTelemetry(s, ctx, "ChangeDisplayName", playerID, func(ctx context.Context) (*profiledb.Profile, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*profiledb.Profile, error) {
			current, err := s.repo.GetOrCreate(ctx, db, playerID, s.opts.DefaultName)
			if err != nil {
				return nil, err
			}
			oldName = current.DisplayName
			if current.DisplayName == name {
				return current, nil
			}
			return s.repo.ChangeDisplayName(ctx, db, playerID, name, s.opts.MaxNameChanges)
		})
	})
	if err != nil {
		return nil, err
	}

	if oldName != name {
		s.announceRename(ctx, playerID, oldName, name)
	}
	return profile, nil
}

// announceRename publishes the rename after commit. Leaderboard rows follow
// asynchronously; a lost event leaves stale names but never blocks the rename.
func (s *ProfileService) announceRename(ctx context.Context, playerID, oldName, newName string) {
	if s.publisher == nil {
		return
	}
	payload := profileevents.DisplayNameChangedPayloadV1{
		PlayerID:  playerID,
		OldName:   oldName,
		NewName:   newName,
		ChangedAt: s.opts.Clock.NowUTC(),
	}
	if err := eventbus.Publish(ctx, s.publisher, profileevents.DisplayNameChangedV1, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish display name change",
			slog.String("player_id", playerID),
			slog.Any("error", err),
		)
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *ProfileService,
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
	s *ProfileService,
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
