package leaderboarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new leaderboard repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// The conditional DO UPDATE makes compare-and-replace one atomic statement:
// a concurrent writer either conflicts and re-evaluates the WHERE against the
// committed row, or wins outright. No returned row means the stored score was
// higher or equal. xmax = 0 only for a freshly inserted tuple.
const (
	upsertGlobalSQL = `
INSERT INTO leaderboard_global_scores AS cur
	(player_id, display_name, score, currency_earned, duration_ms, jump_count, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (player_id) DO UPDATE SET
	display_name = EXCLUDED.display_name,
	score = EXCLUDED.score,
	currency_earned = EXCLUDED.currency_earned,
	duration_ms = EXCLUDED.duration_ms,
	jump_count = EXCLUDED.jump_count,
	recorded_at = EXCLUDED.recorded_at
WHERE EXCLUDED.score > cur.score
RETURNING (xmax = 0) AS inserted`

	upsertWeeklySQL = `
INSERT INTO leaderboard_weekly_scores AS cur
	(player_id, week_start, display_name, score, currency_earned, duration_ms, jump_count, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (player_id, week_start) DO UPDATE SET
	display_name = EXCLUDED.display_name,
	score = EXCLUDED.score,
	currency_earned = EXCLUDED.currency_earned,
	duration_ms = EXCLUDED.duration_ms,
	jump_count = EXCLUDED.jump_count,
	recorded_at = EXCLUDED.recorded_at
WHERE EXCLUDED.score > cur.score
RETURNING (xmax = 0) AS inserted`
)

// UpsertIfBetter inserts or conditionally replaces a player's row.
func (r *Impl) UpsertIfBetter(ctx context.Context, db bun.IDB, scope leaderboarddomain.Scope, e leaderboarddomain.Entry) (leaderboarddomain.UpsertOutcome, error) {
	db = r.resolveDB(db)

	var (
		query string
		args  []any
	)
	switch scope {
	case leaderboarddomain.ScopeGlobal:
		query = upsertGlobalSQL
		args = []any{e.PlayerID, e.DisplayName, e.Score, e.CurrencyEarned, e.DurationMs, e.JumpCount, e.RecordedAt.UTC()}
	case leaderboarddomain.ScopeWeekly:
		if e.WeekStart.IsZero() {
			return "", fmt.Errorf("leaderboarddb.UpsertIfBetter: weekly entry without week start")
		}
		query = upsertWeeklySQL
		args = []any{e.PlayerID, e.WeekStart.UTC(), e.DisplayName, e.Score, e.CurrencyEarned, e.DurationMs, e.JumpCount, e.RecordedAt.UTC()}
	default:
		return "", fmt.Errorf("leaderboarddb.UpsertIfBetter: %w: %q", ErrInvalidScope, scope)
	}

	var inserted []bool
	if err := db.NewRaw(query, args...).Scan(ctx, &inserted); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("leaderboarddb.UpsertIfBetter: %w", err)
	}

	switch {
	case len(inserted) == 0:
		return leaderboarddomain.KeptExisting, nil
	case inserted[0]:
		return leaderboarddomain.Inserted, nil
	default:
		return leaderboarddomain.UpdatedToHigher, nil
	}
}

// RenameDisplayName updates the denormalized name on all of a player's rows.
func (r *Impl) RenameDisplayName(ctx context.Context, db bun.IDB, playerID, displayName string) (int64, error) {
	db = r.resolveDB(db)

	var total int64
	for _, model := range []any{(*GlobalScore)(nil), (*WeeklyScore)(nil)} {
		res, err := db.NewUpdate().
			Model(model).
			Set("display_name = ?", displayName).
			Where("player_id = ?", playerID).
			Exec(ctx)
		if err != nil {
			return total, fmt.Errorf("leaderboarddb.RenameDisplayName: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("leaderboarddb.RenameDisplayName: rows affected: %w", err)
		}
		total += n
	}
	return total, nil
}

// TopN returns the best n entries of a scope.
func (r *Impl) TopN(ctx context.Context, db bun.IDB, scope leaderboarddomain.Scope, n int, weekStart time.Time) ([]leaderboarddomain.Entry, error) {
	db = r.resolveDB(db)
	if n < 1 {
		return []leaderboarddomain.Entry{}, nil
	}

	switch scope {
	case leaderboarddomain.ScopeGlobal:
		var rows []GlobalScore
		err := db.NewSelect().
			Model(&rows).
			OrderExpr("gs.score DESC, gs.recorded_at ASC, gs.player_id ASC").
			Limit(n).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("leaderboarddb.TopN: %w", err)
		}
		out := make([]leaderboarddomain.Entry, 0, len(rows))
		for i := range rows {
			out = append(out, rows[i].toEntry())
		}
		return out, nil

	case leaderboarddomain.ScopeWeekly:
		var rows []WeeklyScore
		err := db.NewSelect().
			Model(&rows).
			Where("ws.week_start = ?", weekStart.UTC()).
			OrderExpr("ws.score DESC, ws.recorded_at ASC, ws.player_id ASC").
			Limit(n).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("leaderboarddb.TopN: %w", err)
		}
		out := make([]leaderboarddomain.Entry, 0, len(rows))
		for i := range rows {
			out = append(out, rows[i].toEntry())
		}
		return out, nil

	default:
		return nil, fmt.Errorf("leaderboarddb.TopN: %w: %q", ErrInvalidScope, scope)
	}
}

// GetEntry returns a single player's row.
func (r *Impl) GetEntry(ctx context.Context, db bun.IDB, scope leaderboarddomain.Scope, playerID string, weekStart time.Time) (*leaderboarddomain.Entry, error) {
	db = r.resolveDB(db)

	var (
		entry leaderboarddomain.Entry
		err   error
	)
	switch scope {
	case leaderboarddomain.ScopeGlobal:
		row := new(GlobalScore)
		err = db.NewSelect().Model(row).Where("gs.player_id = ?", playerID).Scan(ctx)
		entry = row.toEntry()
	case leaderboarddomain.ScopeWeekly:
		row := new(WeeklyScore)
		err = db.NewSelect().Model(row).
			Where("ws.player_id = ?", playerID).
			Where("ws.week_start = ?", weekStart.UTC()).
			Scan(ctx)
		entry = row.toEntry()
	default:
		return nil, fmt.Errorf("leaderboarddb.GetEntry: %w: %q", ErrInvalidScope, scope)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaderboarddb.GetEntry: %w", err)
	}
	return &entry, nil
}
