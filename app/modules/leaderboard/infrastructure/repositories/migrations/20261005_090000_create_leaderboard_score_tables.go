package leaderboardmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating leaderboard score tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS leaderboard_global_scores (
					player_id TEXT PRIMARY KEY,
					display_name VARCHAR(64) NOT NULL,
					score BIGINT NOT NULL CHECK (score >= 0),
					currency_earned BIGINT NOT NULL DEFAULT 0,
					duration_ms BIGINT NOT NULL DEFAULT 0,
					jump_count BIGINT NOT NULL DEFAULT 0,
					recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_leaderboard_global_scores_rank
					ON leaderboard_global_scores (score DESC, recorded_at ASC);
			`); err != nil {
				return fmt.Errorf("failed to create leaderboard_global_scores: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS leaderboard_weekly_scores (
					player_id TEXT NOT NULL,
					week_start TIMESTAMPTZ NOT NULL,
					display_name VARCHAR(64) NOT NULL,
					score BIGINT NOT NULL CHECK (score >= 0),
					currency_earned BIGINT NOT NULL DEFAULT 0,
					duration_ms BIGINT NOT NULL DEFAULT 0,
					jump_count BIGINT NOT NULL DEFAULT 0,
					recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (player_id, week_start)
				);
				CREATE INDEX IF NOT EXISTS idx_leaderboard_weekly_scores_rank
					ON leaderboard_weekly_scores (week_start, score DESC, recorded_at ASC);
			`); err != nil {
				return fmt.Errorf("failed to create leaderboard_weekly_scores: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping leaderboard score tables...")
		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS leaderboard_weekly_scores;
			DROP TABLE IF EXISTS leaderboard_global_scores;
		`)
		return err
	})
}
