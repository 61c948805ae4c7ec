package main

import (
	"fmt"
	"os"

	ratingservice "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/application"
	"github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/application/parsers"
	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	ratingevents "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/events"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func createMatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-match",
		Usage: "balance ten players into a blue and a red team",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "season", Usage: "defaults to the active season"},
			&cli.StringSliceFlag{Name: "players", Required: true, Usage: "ten player ids, comma separated or repeated"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			ids, err := parseIDs(c.StringSlice("players"))
			if err != nil {
				return err
			}
			match, err := unwrap(e.service.CreateRandomMatch(c.Context, c.String("season"), ids))
			if err != nil {
				return err
			}
			return printJSON(e.out, ratingevents.NewMatchPayload(match))
		}),
	}
}

func getMatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "show a match",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Required: true},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			matchID, err := uuid.Parse(c.String("id"))
			if err != nil {
				return fmt.Errorf("invalid match id %q: %w", c.String("id"), err)
			}
			match, err := unwrap(e.service.GetMatch(c.Context, matchID))
			if err != nil {
				return err
			}
			return printJSON(e.out, ratingevents.NewMatchPayload(match))
		}),
	}
}

// resolveRequest builds a ResolveMatchRequest, reading per-player
// performance from the scoreboard file when one is given.
func resolveRequest(factory parsers.ParserFactory, matchID, winner string, duration int, scoreboard string) (ratingservice.ResolveMatchRequest, error) {
	id, err := uuid.Parse(matchID)
	if err != nil {
		return ratingservice.ResolveMatchRequest{}, fmt.Errorf("invalid match id %q: %w", matchID, err)
	}
	color, err := ratingdomain.ParseTeamColor(winner)
	if err != nil {
		return ratingservice.ResolveMatchRequest{}, err
	}
	req := ratingservice.ResolveMatchRequest{MatchID: id, Winner: color, Duration: duration}
	if scoreboard == "" {
		return req, nil
	}

	parser, err := factory.GetParser(scoreboard)
	if err != nil {
		return ratingservice.ResolveMatchRequest{}, err
	}
	data, err := os.ReadFile(scoreboard)
	if err != nil {
		return ratingservice.ResolveMatchRequest{}, fmt.Errorf("read scoreboard: %w", err)
	}
	if req.Performance, err = parser.Parse(data); err != nil {
		return ratingservice.ResolveMatchRequest{}, fmt.Errorf("parse scoreboard %s: %w", scoreboard, err)
	}
	return req, nil
}

func resolveMatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve-match",
		Usage: "record the winner of a pending match and update ratings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "match", Required: true},
			&cli.StringFlag{Name: "winner", Required: true, Usage: "blue or red"},
			&cli.IntFlag{Name: "duration", Usage: "match length in seconds"},
			&cli.PathFlag{Name: "scoreboard", Usage: "CSV or XLSX scoreboard"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			req, err := resolveRequest(parsers.NewFactory(), c.String("match"), c.String("winner"), c.Int("duration"), c.Path("scoreboard"))
			if err != nil {
				return err
			}
			match, err := unwrap(e.service.ResolveMatch(c.Context, req))
			if err != nil {
				return err
			}
			return printJSON(e.out, ratingevents.NewMatchPayload(match))
		}),
	}
}

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "forecast a fixed lineup without changing ratings",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "blue", Required: true},
			&cli.StringSliceFlag{Name: "red", Required: true},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			blue, err := parseIDs(c.StringSlice("blue"))
			if err != nil {
				return err
			}
			red, err := parseIDs(c.StringSlice("red"))
			if err != nil {
				return err
			}
			prediction, err := unwrap(e.service.PredictMatch(c.Context, blue, red))
			if err != nil {
				return err
			}
			return printJSON(e.out, prediction)
		}),
	}
}
