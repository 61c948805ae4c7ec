package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Black-And-White-Club/inhouse-bot/app/modules/rating"
	ratingservice "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	ratingqueue "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/queue"
	"github.com/Black-And-White-Club/inhouse-bot/config"
	"github.com/urfave/cli/v2"
)

const dateLayout = "2006-01-02"

type seasonView struct {
	ID              string                       `json:"id"`
	Name            string                       `json:"name"`
	IsActive        bool                         `json:"isActive"`
	KFactorTiers    ratingdomain.KFactorTiers    `json:"kFactorTiers"`
	PositionFactors ratingdomain.PositionFactors `json:"positionFactors"`
	StartDate       *time.Time                   `json:"startDate,omitempty"`
	EndDate         *time.Time                   `json:"endDate,omitempty"`
	EndedAt         *time.Time                   `json:"endedAt,omitempty"`
	Rankings        []ratingdomain.RankingEntry  `json:"rankings,omitempty"`
}

func newSeasonView(s ratingdomain.Season) seasonView {
	return seasonView{
		ID:              s.ID,
		Name:            s.Name,
		IsActive:        s.IsActive,
		KFactorTiers:    s.Config.KFactorTiers,
		PositionFactors: s.Config.PositionFactors,
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		EndedAt:         s.EndedAt,
		Rankings:        s.Rankings,
	}
}

// seasonRequest builds a CreateSeasonRequest from the configured defaults
// and the command's overrides.
func seasonRequest(cfg config.RatingConfig, c *cli.Context) (ratingservice.CreateSeasonRequest, error) {
	if v := c.Int("k-new"); v != 0 {
		cfg.KFactorNew = v
	}
	if v := c.Int("k-regular"); v != 0 {
		cfg.KFactorRegular = v
	}
	if v := c.Int("k-experienced"); v != 0 {
		cfg.KFactorExperienced = v
	}
	factors := make(map[string]float64, len(cfg.PositionFactors))
	for k, v := range cfg.PositionFactors {
		factors[k] = v
	}
	for _, pf := range c.StringSlice("position-factor") {
		name, value, ok := strings.Cut(pf, "=")
		if !ok {
			return ratingservice.CreateSeasonRequest{}, fmt.Errorf("position factor %q must look like Position=1.2", pf)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return ratingservice.CreateSeasonRequest{}, fmt.Errorf("position factor %q: %w", pf, err)
		}
		factors[strings.TrimSpace(name)] = f
	}
	cfg.PositionFactors = factors

	seasonCfg, err := rating.SeasonDefaults(cfg)
	if err != nil {
		return ratingservice.CreateSeasonRequest{}, err
	}

	req := ratingservice.CreateSeasonRequest{
		ID:     c.String("id"),
		Name:   c.String("name"),
		Config: seasonCfg,
	}
	if req.StartDate, err = parseDate(c.String("start")); err != nil {
		return ratingservice.CreateSeasonRequest{}, err
	}
	if req.EndDate, err = parseDate(c.String("end")); err != nil {
		return ratingservice.CreateSeasonRequest{}, err
	}
	return req, nil
}

func parseDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", v, err)
	}
	return &t, nil
}

func createSeasonCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-season",
		Usage: "create a season, optionally activating it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Required: true},
			&cli.StringFlag{Name: "name"},
			&cli.IntFlag{Name: "k-new", Usage: "K-factor after calibration for new players"},
			&cli.IntFlag{Name: "k-regular"},
			&cli.IntFlag{Name: "k-experienced"},
			&cli.StringSliceFlag{Name: "position-factor", Usage: "Position=factor, repeatable"},
			&cli.StringFlag{Name: "start", Usage: "start date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "end", Usage: "end date (YYYY-MM-DD)"},
			&cli.BoolFlag{Name: "activate"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			req, err := seasonRequest(e.cfg.Rating, c)
			if err != nil {
				return err
			}
			season, err := unwrap(e.service.CreateSeason(c.Context, req))
			if err != nil {
				return err
			}
			if c.Bool("activate") {
				if season, err = unwrap(e.service.ActivateSeason(c.Context, season.ID)); err != nil {
					return err
				}
			}
			return printJSON(e.out, newSeasonView(season))
		}),
	}
}

func activateSeasonCommand() *cli.Command {
	return &cli.Command{
		Name:  "activate-season",
		Usage: "make a season the active one",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Required: true},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			season, err := unwrap(e.service.ActivateSeason(c.Context, c.String("id")))
			if err != nil {
				return err
			}
			return printJSON(e.out, newSeasonView(season))
		}),
	}
}

func endSeasonCommand() *cli.Command {
	return &cli.Command{
		Name:  "end-season",
		Usage: "freeze a season's rankings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Required: true},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			season, err := unwrap(e.service.EndSeason(c.Context, c.String("id")))
			if err != nil {
				return err
			}
			return printJSON(e.out, newSeasonView(season))
		}),
	}
}

func rankingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "rankings",
		Usage: "show a season's rankings, live or frozen",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "season", Required: true},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			rankings, err := unwrap(e.service.GetSeasonRankings(c.Context, c.String("season")))
			if err != nil {
				return err
			}
			return printJSON(e.out, rankings)
		}),
	}
}

// withQueue opens an insert-only season-end queue.
func withQueue(ctx context.Context, e *env, fn func(ratingqueue.QueueService) error) error {
	queue, err := ratingqueue.NewService(ctx, e.db, e.obs.Logger, e.cfg.Postgres.DSN, e.obs.RatingMetrics, e.service)
	if err != nil {
		return err
	}
	defer func() { _ = queue.Stop(context.Background()) }()
	return fn(queue)
}

func scheduleSeasonEndCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule-season-end",
		Usage: `end a season later, e.g. --at "next sunday at 11pm"`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "season", Required: true},
			&cli.StringFlag{Name: "at", Required: true, Usage: "RFC 3339 time or natural language"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			seasonID := c.String("season")
			scheduledAt, err := ratingqueue.ParseScheduleTime(c.String("at"), time.Now())
			if err != nil {
				return err
			}
			// Unknown seasons fail here rather than inside the job.
			if _, err := unwrap(e.service.GetSeasonRankings(c.Context, seasonID)); err != nil {
				return err
			}
			return withQueue(c.Context, e, func(q ratingqueue.QueueService) error {
				jobID, err := q.ScheduleSeasonEnd(c.Context, seasonID, scheduledAt)
				if err != nil {
					return err
				}
				return printJSON(e.out, map[string]any{"jobId": jobID, "seasonId": seasonID, "scheduledAt": scheduledAt})
			})
		}),
	}
}

func cancelSeasonEndCommand() *cli.Command {
	return &cli.Command{
		Name:  "cancel-season-end",
		Usage: "cancel pending scheduled ends of a season",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "season", Required: true},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			seasonID := c.String("season")
			return withQueue(c.Context, e, func(q ratingqueue.QueueService) error {
				n, err := q.CancelSeasonEnd(c.Context, seasonID)
				if err != nil {
					return err
				}
				jobs, err := q.GetScheduledJobs(c.Context, seasonID)
				if err != nil {
					return err
				}
				return printJSON(e.out, map[string]any{"cancelled": n, "jobs": jobs})
			})
		}),
	}
}
