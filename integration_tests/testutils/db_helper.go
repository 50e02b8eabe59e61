package testutils

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	leaderboardmigrations "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/repositories/migrations"
	profilemigrations "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/repositories/migrations"
)

// appTables are truncated between tests. Migration tables are left alone.
var appTables = []string{
	"player_profiles",
	"leaderboard_global_scores",
	"leaderboard_weekly_scores",
	"leaderboard_submissions",
}

// RunMigrations applies every module's bun migrations, then River's schema.
func RunMigrations(ctx context.Context, db *bun.DB, dsn string) error {
	// One init creates the shared bun_migrations tables.
	if err := migrate.NewMigrator(db, profilemigrations.Migrations).Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}

	if err := runModuleMigrations(ctx, db, profilemigrations.Migrations, "profile"); err != nil {
		return err
	}
	if err := runModuleMigrations(ctx, db, leaderboardmigrations.Migrations, "leaderboard"); err != nil {
		return err
	}
	return runRiverMigrations(ctx, dsn)
}

func runModuleMigrations(ctx context.Context, db *bun.DB, migrations *migrate.Migrations, name string) error {
	group, err := migrate.NewMigrator(db, migrations).Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run %s migrations: %w", name, err)
	}
	if group.IsZero() {
		log.Printf("No %s migrations to run", name)
	} else {
		log.Printf("Ran %s migrations group #%d", name, group.ID)
	}
	return nil
}

func runRiverMigrations(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}

// CleanupDatabase truncates the application tables and clears River jobs.
func CleanupDatabase(ctx context.Context, db *bun.DB) error {
	if err := TruncateTables(ctx, db, appTables...); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM river_job"); err != nil {
		return fmt.Errorf("failed to cleanup river jobs: %w", err)
	}
	return nil
}

// TruncateTables truncates the named tables.
func TruncateTables(ctx context.Context, db *bun.DB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = fmt.Sprintf(`"%s"`, table)
	}
	query := "TRUNCATE TABLE " + strings.Join(quoted, ", ") + " CASCADE"
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables %v: %w", tables, err)
	}
	return nil
}

// CountRows returns the number of rows in table matching where.
func CountRows(ctx context.Context, db bun.IDB, table, where string, args ...any) (int, error) {
	q := db.NewSelect().Table(table)
	if where != "" {
		q = q.Where(where, args...)
	}
	return q.Count(ctx)
}
