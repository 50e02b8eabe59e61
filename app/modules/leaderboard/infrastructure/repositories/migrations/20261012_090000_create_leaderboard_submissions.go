package leaderboardmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating leaderboard_submissions table...")
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS leaderboard_submissions (
				player_id TEXT NOT NULL,
				submission_id UUID NOT NULL,
				result_hash CHAR(64) NOT NULL,
				score BIGINT NOT NULL,
				week_start TIMESTAMPTZ NOT NULL,
				global_outcome VARCHAR(32) NOT NULL,
				weekly_outcome VARCHAR(32) NOT NULL,
				applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (player_id, submission_id)
			);
			CREATE INDEX IF NOT EXISTS idx_leaderboard_submissions_applied_at
				ON leaderboard_submissions (applied_at);
		`)
		if err != nil {
			return fmt.Errorf("failed to create leaderboard_submissions: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping leaderboard_submissions table...")
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS leaderboard_submissions;`)
		return err
	})
}
