package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/Black-And-White-Club/opti-runner/config"
	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"

	leaderboardmigrations "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/repositories/migrations"
	profilemigrations "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/repositories/migrations"
)

func main() {
	cliApp := &cli.App{
		Name:  "bun",
		Usage: "opti-runner database tooling",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			newMultiModuleDBCommand(),
			newRiverCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		color.Red("error: %v", err)
		log.Fatal(err)
	}
}

// openDB loads the config named by --config and opens a bun handle on it.
func openDB(c *cli.Context) (*config.Config, *bun.DB, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	return cfg, bun.NewDB(pgdb, pgdialect.New()), nil
}

func newMigrators(db *bun.DB) map[string]*migrate.Migrator {
	return map[string]*migrate.Migrator{
		"profile":     migrate.NewMigrator(db, profilemigrations.Migrations),
		"leaderboard": migrate.NewMigrator(db, leaderboardmigrations.Migrations),
	}
}

// moduleNames returns the migrator keys in a stable order. Profiles migrate
// first because leaderboard rows reference players.
func moduleNames(migrators map[string]*migrate.Migrator) []string {
	names := make([]string, 0, len(migrators))
	for name := range migrators {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == "profile" {
			return true
		}
		if names[j] == "profile" {
			return false
		}
		return names[i] < names[j]
	})
	return names
}

// withMigrators opens the database and hands the module migrators to fn.
func withMigrators(fn func(c *cli.Context, migrators map[string]*migrate.Migrator) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		_, db, err := openDB(c)
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(c, newMigrators(db))
	}
}

func newMultiModuleDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: withMigrators(func(c *cli.Context, migrators map[string]*migrate.Migrator) error {
					for _, moduleName := range moduleNames(migrators) {
						color.Cyan("Initializing migrations for module: %s", moduleName)
						if err := migrators[moduleName].Init(c.Context); err != nil {
							return fmt.Errorf("init %s: %w", moduleName, err)
						}
					}
					return nil
				}),
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: withMigrators(func(c *cli.Context, migrators map[string]*migrate.Migrator) error {
					for _, moduleName := range moduleNames(migrators) {
						migrator := migrators[moduleName]
						if err := migrator.Lock(c.Context); err != nil {
							return fmt.Errorf("lock %s: %w", moduleName, err)
						}
						group, err := migrator.Migrate(c.Context)
						_ = migrator.Unlock(c.Context)
						if err != nil {
							return fmt.Errorf("migrate %s: %w", moduleName, err)
						}
						if group.IsZero() {
							color.Yellow("No new migrations to run for module: %s", moduleName)
						} else {
							color.Green("Migrated module: %s to %s", moduleName, group)
						}
					}
					return nil
				}),
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: withMigrators(func(c *cli.Context, migrators map[string]*migrate.Migrator) error {
					names := moduleNames(migrators)
					for i := len(names) - 1; i >= 0; i-- {
						moduleName := names[i]
						group, err := migrators[moduleName].Rollback(c.Context)
						if err != nil {
							return fmt.Errorf("rollback %s: %w", moduleName, err)
						}
						if group.IsZero() {
							color.Yellow("No groups to roll back for module: %s", moduleName)
						} else {
							color.Green("Rolled back module: %s to %s", moduleName, group)
						}
					}
					return nil
				}),
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: withMigrators(func(c *cli.Context, migrators map[string]*migrate.Migrator) error {
					moduleName := c.Args().First()
					migrator, ok := migrators[moduleName]
					if !ok {
						return fmt.Errorf("invalid module name: %s", moduleName)
					}

					name := strings.Join(c.Args().Tail(), "_")
					mf, err := migrator.CreateGoMigration(c.Context, name)
					if err != nil {
						return err
					}
					color.Green("Created migration for module %s: %s (%s)", moduleName, mf.Name, mf.Path)
					return nil
				}),
			},
			{
				Name:      "create_sql",
				Usage:     "create up and down SQL migrations",
				ArgsUsage: "<module> <name...>",
				Action: withMigrators(func(c *cli.Context, migrators map[string]*migrate.Migrator) error {
					moduleName := c.Args().First()
					migrator, ok := migrators[moduleName]
					if !ok {
						return fmt.Errorf("invalid module name: %s", moduleName)
					}

					name := strings.Join(c.Args().Tail(), "_")
					files, err := migrator.CreateSQLMigrations(c.Context, name)
					if err != nil {
						return err
					}
					for _, mf := range files {
						color.Green("Created migration for module %s: %s (%s)", moduleName, mf.Name, mf.Path)
					}
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: withMigrators(func(c *cli.Context, migrators map[string]*migrate.Migrator) error {
					for _, moduleName := range moduleNames(migrators) {
						ms, err := migrators[moduleName].MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						color.Cyan("Migrations for module: %s", moduleName)
						fmt.Printf("  %s\n", ms)
						color.Green("  Applied: %s", ms.Applied())
						color.Yellow("  Unapplied: %s", ms.Unapplied())
					}
					return nil
				}),
			},
		},
	}
}

// newRiverCommand manages the River job tables used by the weekly close job.
func newRiverCommand() *cli.Command {
	return &cli.Command{
		Name:  "river",
		Usage: "job queue schema",
		Subcommands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply River migrations",
				Action: func(c *cli.Context) error {
					return runRiver(c, rivermigrate.DirectionUp)
				},
			},
			{
				Name:  "rollback",
				Usage: "roll back the most recent River migration",
				Action: func(c *cli.Context) error {
					return runRiver(c, rivermigrate.DirectionDown)
				},
			},
		},
	}
}

func runRiver(c *cli.Context, direction rivermigrate.Direction) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return migrateRiver(c.Context, cfg.Postgres.DSN, direction)
}

func migrateRiver(ctx context.Context, dsn string, direction rivermigrate.Direction) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}

	opts := &rivermigrate.MigrateOpts{}
	if direction == rivermigrate.DirectionDown {
		opts.MaxSteps = 1
	}
	res, err := migrator.Migrate(ctx, direction, opts)
	if err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	if len(res.Versions) == 0 {
		color.Yellow("River schema already up to date")
		return nil
	}
	for _, v := range res.Versions {
		color.Green("River migration %s: version %d", direction, v.Version)
	}
	return nil
}
