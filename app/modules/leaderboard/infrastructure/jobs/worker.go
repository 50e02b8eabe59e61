package leaderboardjobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	leaderboardevents "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/events"
	"github.com/riverqueue/river"
)

// WeekCloser is the part of the leaderboard service the worker drives.
type WeekCloser interface {
	CloseWeek(ctx context.Context, weekStart time.Time, n int) (*leaderboardevents.WeeklyClosedPayloadV1, error)
}

// WeeklyCloseWorker publishes the final standings of a finished week.
type WeeklyCloseWorker struct {
	river.WorkerDefaults[WeeklyCloseArgs]

	closer WeekCloser
	size   int
	logger *slog.Logger
}

// NewWeeklyCloseWorker creates a worker that publishes the top size entries.
func NewWeeklyCloseWorker(closer WeekCloser, size int, logger *slog.Logger) *WeeklyCloseWorker {
	return &WeeklyCloseWorker{closer: closer, size: size, logger: logger}
}

// Work closes job.Args.WeekStart. Errors are retried by River.
func (w *WeeklyCloseWorker) Work(ctx context.Context, job *river.Job[WeeklyCloseArgs]) error {
	payload, err := w.closer.CloseWeek(ctx, job.Args.WeekStart, w.size)
	if err != nil {
		w.logger.ErrorContext(ctx, "Weekly close failed",
			slog.Time("week_start", job.Args.WeekStart),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to close week %s: %w", job.Args.WeekStart.Format(time.DateOnly), err)
	}

	w.logger.InfoContext(ctx, "Weekly close job finished",
		slog.Time("week_start", payload.WeekStart),
		slog.Int("standings", len(payload.Standings)),
	)
	return nil
}

// Timeout bounds a single close attempt.
func (w *WeeklyCloseWorker) Timeout(*river.Job[WeeklyCloseArgs]) time.Duration {
	return time.Minute
}
