package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Black-And-White-Club/inhouse-bot/app"
	"github.com/Black-And-White-Club/inhouse-bot/app/modules/rating"
	ratingservice "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/application"
	"github.com/Black-And-White-Club/inhouse-bot/app/observability"
	"github.com/Black-And-White-Club/inhouse-bot/config"
	"github.com/Black-And-White-Club/inhouse-bot/db/bundb"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

// env is what a one-shot command needs to talk to the database.
type env struct {
	cfg     *config.Config
	obs     *observability.Observability
	db      *bun.DB
	service ratingservice.Service
	out     io.Writer
}

func newCLI(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "inhouse",
		Usage:  "in-house 5v5 rating engine",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"INHOUSE_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			registerPlayerCommand(),
			getPlayerCommand(),
			createSeasonCommand(),
			activateSeasonCommand(),
			endSeasonCommand(),
			rankingsCommand(),
			scheduleSeasonEndCommand(),
			cancelSeasonEndCommand(),
			createMatchCommand(),
			getMatchCommand(),
			resolveMatchCommand(),
			predictCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "consume rating requests from NATS",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer cancel()

			application, err := app.NewApp(ctx, cfg, os.Stdout)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			return application.Run(ctx)
		},
	}
}

// withEnv loads configuration, connects to Postgres and runs fn.
func withEnv(fn func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.LoadConfig(c.String("config"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		obs, err := observability.Init(c.Context, cfg.Observability, os.Stderr)
		if err != nil {
			return err
		}
		defer func() { _ = obs.Shutdown(context.Background()) }()

		db, err := bundb.NewBunDB(c.Context, cfg.Postgres, obs.Logger)
		if err != nil {
			return err
		}
		defer db.Close()

		return fn(c, &env{
			cfg:     cfg,
			obs:     obs,
			db:      db,
			service: rating.NewRatingService(db, obs),
			out:     c.App.Writer,
		})
	}
}

// unwrap turns a failure result into an error.
func unwrap[S any](r results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if r.IsFailure() {
		return zero, *r.Failure
	}
	if r.Success == nil {
		return zero, fmt.Errorf("operation returned no result")
	}
	return *r.Success, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseIDs accepts repeated flags and comma separated lists.
func parseIDs(values []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, fmt.Errorf("invalid player id %q: %w", part, err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
