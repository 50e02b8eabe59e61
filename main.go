package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/opti-runner/app"
	"github.com/Black-And-White-Club/opti-runner/app/modules/auth"
	"github.com/Black-And-White-Club/opti-runner/app/observability"
	"github.com/Black-And-White-Club/opti-runner/config"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "opti-runner",
		Usage: "score submission and leaderboard server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API, event consumers and background jobs",
				Action: serve,
			},
			{
				Name:  "token",
				Usage: "issue a player bearer token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "player", Usage: "player id", Required: true},
					&cli.StringFlag{Name: "name", Usage: "display name carried in the token"},
					&cli.DurationFlag{Name: "ttl", Usage: "token lifetime, defaults to jwt.default_ttl"},
				},
				Action: issueToken,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg)
	defer func() {
		if err := application.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	if err := application.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	return application.Run(ctx)
}

func issueToken(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	authModule := auth.NewModule(context.Background(), cfg, observability.NewNop())
	token, err := authModule.GetService().IssueToken(c.Context, c.String("player"), c.String("name"), c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
