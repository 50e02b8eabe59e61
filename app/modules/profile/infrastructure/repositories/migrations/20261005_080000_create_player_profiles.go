package profilemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating player_profiles table...")
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS player_profiles (
				player_id TEXT PRIMARY KEY,
				display_name VARCHAR(64) NOT NULL DEFAULT 'Player',
				highest_score BIGINT NOT NULL DEFAULT 0 CHECK (highest_score >= 0),
				currency_balance BIGINT NOT NULL DEFAULT 0 CHECK (currency_balance >= 0),
				games_played BIGINT NOT NULL DEFAULT 0,
				name_changes INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`)
		if err != nil {
			return fmt.Errorf("failed to create player_profiles: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping player_profiles table...")
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS player_profiles;`)
		return err
	})
}
