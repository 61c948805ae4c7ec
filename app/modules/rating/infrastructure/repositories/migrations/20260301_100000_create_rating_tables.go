package ratingmigrations

import (
	"context"
	"fmt"

	ratingdb "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating rating tables...")

		if _, err := db.NewCreateTable().Model((*ratingdb.Season)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*ratingdb.Player)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		_, err := db.NewCreateTable().
			Model((*ratingdb.PlayerPosition)(nil)).
			IfNotExists().
			ForeignKey(`("player_id") REFERENCES "rating_players" ("id") ON DELETE CASCADE`).
			Exec(ctx)
		if err != nil {
			return err
		}

		_, err = db.NewCreateTable().
			Model((*ratingdb.PlayerSeasonStat)(nil)).
			IfNotExists().
			ForeignKey(`("player_id") REFERENCES "rating_players" ("id") ON DELETE CASCADE`).
			ForeignKey(`("season_id") REFERENCES "rating_seasons" ("id") ON DELETE CASCADE`).
			Exec(ctx)
		if err != nil {
			return err
		}

		_, err = db.NewCreateTable().
			Model((*ratingdb.Match)(nil)).
			IfNotExists().
			ForeignKey(`("season_id") REFERENCES "rating_seasons" ("id")`).
			Exec(ctx)
		if err != nil {
			return err
		}

		_, err = db.NewCreateTable().
			Model((*ratingdb.MatchParticipant)(nil)).
			IfNotExists().
			ForeignKey(`("match_id") REFERENCES "rating_matches" ("id") ON DELETE CASCADE`).
			ForeignKey(`("player_id") REFERENCES "rating_players" ("id")`).
			Exec(ctx)
		if err != nil {
			return err
		}

		// At most one active season.
		_, err = db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS uq_rating_seasons_single_active ON rating_seasons (is_active) WHERE is_active").Exec(ctx)
		if err != nil {
			return err
		}
		_, err = db.NewRaw("CREATE INDEX IF NOT EXISTS idx_rating_matches_season_id ON rating_matches (season_id)").Exec(ctx)
		if err != nil {
			return err
		}
		_, err = db.NewRaw("CREATE INDEX IF NOT EXISTS idx_rating_match_participants_player_id ON rating_match_participants (player_id)").Exec(ctx)
		if err != nil {
			return err
		}
		_, err = db.NewRaw("CREATE INDEX IF NOT EXISTS idx_rating_players_rating ON rating_players (rating DESC)").Exec(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Rating tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping rating tables...")

		models := []any{
			(*ratingdb.MatchParticipant)(nil),
			(*ratingdb.Match)(nil),
			(*ratingdb.PlayerSeasonStat)(nil),
			(*ratingdb.PlayerPosition)(nil),
			(*ratingdb.Player)(nil),
			(*ratingdb.Season)(nil),
		}
		for _, m := range models {
			if _, err := db.NewDropTable().Model(m).IfExists().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Rating tables dropped successfully!")
		return nil
	})
}
