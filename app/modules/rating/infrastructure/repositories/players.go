package ratingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreatePlayer inserts a new player.
func (r *Impl) CreatePlayer(ctx context.Context, db bun.IDB, player *Player) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(player).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ratingdb.CreatePlayer: %w", ErrAlreadyExists)
		}
		return fmt.Errorf("ratingdb.CreatePlayer: %w", err)
	}
	return nil
}

// GetPlayer returns a player with position and season stats.
func (r *Impl) GetPlayer(ctx context.Context, db bun.IDB, id uuid.UUID) (*Player, error) {
	db = r.resolveDB(db)
	player := new(Player)
	err := db.NewSelect().
		Model(player).
		Relation("Positions").
		Relation("SeasonStats").
		Where("rp.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ratingdb.GetPlayer: %w", err)
	}
	return player, nil
}

// GetPlayers returns the players that exist among ids, ordered by id.
func (r *Impl) GetPlayers(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]*Player, error) {
	players, err := r.selectPlayers(ctx, r.resolveDB(db), ids, false)
	if err != nil {
		return nil, fmt.Errorf("ratingdb.GetPlayers: %w", err)
	}
	return players, nil
}

// LockPlayers locks the player rows in id order so concurrent resolutions
// touching overlapping players cannot deadlock.
func (r *Impl) LockPlayers(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]*Player, error) {
	players, err := r.selectPlayers(ctx, r.resolveDB(db), ids, true)
	if err != nil {
		return nil, fmt.Errorf("ratingdb.LockPlayers: %w", err)
	}
	return players, nil
}

func (r *Impl) selectPlayers(ctx context.Context, db bun.IDB, ids []uuid.UUID, forUpdate bool) ([]*Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var players []*Player
	q := db.NewSelect().
		Model(&players).
		Relation("Positions").
		Relation("SeasonStats").
		Where("rp.id IN (?)", bun.In(ids)).
		Order("rp.id")
	if forUpdate {
		q = q.For("UPDATE OF rp")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return players, nil
}

// SavePlayer updates the counters guarded by the optimistic version and then
// upserts position and season stats.
func (r *Impl) SavePlayer(ctx context.Context, db bun.IDB, player *Player) error {
	db = r.resolveDB(db)

	res, err := db.NewUpdate().
		Model((*Player)(nil)).
		Set("name = ?", player.Name).
		Set("rating = ?", player.Rating).
		Set("matches_played = ?", player.MatchesPlayed).
		Set("wins = ?", player.Wins).
		Set("losses = ?", player.Losses).
		Set("win_streak = ?", player.WinStreak).
		Set("lose_streak = ?", player.LoseStreak).
		Set("version = version + 1").
		Set("updated_at = current_timestamp").
		Where("id = ?", player.ID).
		Where("version = ?", player.Version).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ratingdb.SavePlayer: %w", err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("ratingdb.SavePlayer: player %s: %w", player.ID, ErrVersionConflict)
	}
	player.Version++

	if len(player.Positions) > 0 {
		_, err = db.NewInsert().
			Model(&player.Positions).
			On("CONFLICT (player_id, position) DO UPDATE").
			Set("matches = EXCLUDED.matches").
			Set("wins = EXCLUDED.wins").
			Set("average_rating_delta = EXCLUDED.average_rating_delta").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("ratingdb.SavePlayer: positions: %w", err)
		}
	}

	if len(player.SeasonStats) > 0 {
		_, err = db.NewInsert().
			Model(&player.SeasonStats).
			On("CONFLICT (player_id, season_id) DO UPDATE").
			Set("rating = EXCLUDED.rating").
			Set("matches = EXCLUDED.matches").
			Set("wins = EXCLUDED.wins").
			Set("rank = EXCLUDED.rank").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("ratingdb.SavePlayer: season stats: %w", err)
		}
	}

	return nil
}
