package main

import (
	"fmt"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

type playerView struct {
	ID            uuid.UUID                                           `json:"id"`
	Name          string                                              `json:"name"`
	Rating        int                                                 `json:"rating"`
	MatchesPlayed int                                                 `json:"matchesPlayed"`
	Wins          int                                                 `json:"wins"`
	Losses        int                                                 `json:"losses"`
	WinStreak     int                                                 `json:"winStreak"`
	LoseStreak    int                                                 `json:"loseStreak"`
	Positions     map[ratingdomain.Position]ratingdomain.PositionStat `json:"positions,omitempty"`
	Seasons       map[string]ratingdomain.SeasonStat                  `json:"seasons,omitempty"`
}

func newPlayerView(p ratingdomain.Player) playerView {
	return playerView{
		ID:            p.ID,
		Name:          p.Name,
		Rating:        p.Rating,
		MatchesPlayed: p.MatchesPlayed,
		Wins:          p.Wins,
		Losses:        p.Losses,
		WinStreak:     p.WinStreak,
		LoseStreak:    p.LoseStreak,
		Positions:     p.Positions,
		Seasons:       p.Seasons,
	}
}

func registerPlayerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register-player",
		Usage: "add a player at the default rating",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			player, err := unwrap(e.service.RegisterPlayer(c.Context, c.String("name")))
			if err != nil {
				return err
			}
			return printJSON(e.out, newPlayerView(player))
		}),
	}
}

func getPlayerCommand() *cli.Command {
	return &cli.Command{
		Name:  "player",
		Usage: "show a player's rating and statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Required: true},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			playerID, err := uuid.Parse(c.String("id"))
			if err != nil {
				return fmt.Errorf("invalid player id %q: %w", c.String("id"), err)
			}
			player, err := unwrap(e.service.GetPlayer(c.Context, playerID))
			if err != nil {
				return err
			}
			return printJSON(e.out, newPlayerView(player))
		}),
	}
}
