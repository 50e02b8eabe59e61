package leaderboardservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	leaderboardevents "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/events"
	"github.com/uptrace/bun"
)

// TopN returns the best entries of a scope, read through the snapshot cache.
func (s *LeaderboardService) TopN(ctx context.Context, scope leaderboarddomain.Scope, n int, weekStart time.Time) ([]leaderboarddomain.Entry, error) {
	return withTelemetry(s, ctx, "TopN", string(scope), func(ctx context.Context) ([]leaderboarddomain.Entry, error) {
		switch scope {
		case leaderboarddomain.ScopeGlobal:
			weekStart = time.Time{}
		case leaderboarddomain.ScopeWeekly:
			if weekStart.IsZero() {
				weekStart = s.opts.Clock.NowUTC()
			}
			weekStart = leaderboarddomain.WeekOf(weekStart)
		default:
			return nil, fmt.Errorf("%w: %q", leaderboarddomain.ErrUnknownScope, scope)
		}
		n = leaderboarddomain.ClampLimit(n, s.opts.DefaultLimit, s.opts.MaxLimit)

		cached, ok, err := s.cache.Get(ctx, scope, weekStart, n)
		if err != nil {
			s.logger.WarnContext(ctx, "Leaderboard cache read failed", slog.Any("error", err))
		} else if ok {
			s.metrics.RecordCacheLookup(ctx, true)
			return cached, nil
		}
		s.metrics.RecordCacheLookup(ctx, false)

		entries, err := s.repo.TopN(ctx, nil, scope, n, weekStart)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, scope, weekStart, n, entries); err != nil {
			s.logger.WarnContext(ctx, "Leaderboard cache write failed", slog.Any("error", err))
		}
		return entries, nil
	})
}

// RenameDisplayName rewrites the player's name on all of their rows.
func (s *LeaderboardService) RenameDisplayName(ctx context.Context, playerID, displayName string) (int64, error) {
	return withTelemetry(s, ctx, "RenameDisplayName", playerID, func(ctx context.Context) (int64, error) {
		displayName = strings.TrimSpace(displayName)
		if playerID == "" || displayName == "" {
			return 0, ErrMissingPlayer
		}

		rows, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (int64, error) {
			return s.repo.RenameDisplayName(ctx, db, playerID, displayName)
		})
		if err != nil {
			return 0, err
		}

		s.logger.InfoContext(ctx, "Display name propagated",
			slog.String("player_id", playerID),
			slog.Int64("rows", rows),
		)
		if rows > 0 {
			s.invalidate(ctx, leaderboarddomain.ScopeGlobal, leaderboarddomain.ScopeWeekly)
		}
		return rows, nil
	})
}

// CloseWeek reads the final top n of a finished week and publishes it.
func (s *LeaderboardService) CloseWeek(ctx context.Context, weekStart time.Time, n int) (*leaderboardevents.WeeklyClosedPayloadV1, error) {
	week := leaderboarddomain.WeekOf(weekStart)
	return withTelemetry(s, ctx, "CloseWeek", week.Format(time.DateOnly), func(ctx context.Context) (*leaderboardevents.WeeklyClosedPayloadV1, error) {
		n = leaderboarddomain.ClampLimit(n, s.opts.DefaultLimit, s.opts.MaxLimit)
		entries, err := s.repo.TopN(ctx, nil, leaderboarddomain.ScopeWeekly, n, week)
		if err != nil {
			return nil, err
		}

		payload := &leaderboardevents.WeeklyClosedPayloadV1{
			WeekStart: week,
			Standings: make([]leaderboardevents.StandingV1, len(entries)),
			ClosedAt:  s.opts.Clock.NowUTC(),
		}
		for i, e := range entries {
			payload.Standings[i] = leaderboardevents.StandingV1{
				Rank:        i + 1,
				PlayerID:    e.PlayerID,
				DisplayName: e.DisplayName,
				Score:       e.Score,
			}
		}

		s.publish(ctx, leaderboardevents.WeeklyClosedV1, payload)
		s.logger.InfoContext(ctx, "Weekly leaderboard closed",
			slog.Time("week_start", week),
			slog.Int("standings", len(entries)),
		)
		return payload, nil
	})
}
