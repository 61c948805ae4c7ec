package ratingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateMatch inserts a match and its participants.
func (r *Impl) CreateMatch(ctx context.Context, db bun.IDB, match *Match) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(match).Exec(ctx); err != nil {
		return fmt.Errorf("ratingdb.CreateMatch: %w", err)
	}
	if len(match.Participants) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&match.Participants).Exec(ctx); err != nil {
		return fmt.Errorf("ratingdb.CreateMatch: participants: %w", err)
	}
	return nil
}

// GetMatch returns a match with its participants.
func (r *Impl) GetMatch(ctx context.Context, db bun.IDB, id uuid.UUID) (*Match, error) {
	match, err := r.selectMatch(ctx, r.resolveDB(db), id, false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ratingdb.GetMatch: %w", err)
	}
	return match, nil
}

// GetMatchForUpdate locks the match row for the rest of the transaction.
func (r *Impl) GetMatchForUpdate(ctx context.Context, db bun.IDB, id uuid.UUID) (*Match, error) {
	match, err := r.selectMatch(ctx, r.resolveDB(db), id, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ratingdb.GetMatchForUpdate: %w", err)
	}
	return match, nil
}

func (r *Impl) selectMatch(ctx context.Context, db bun.IDB, id uuid.UUID, forUpdate bool) (*Match, error) {
	match := new(Match)
	q := db.NewSelect().
		Model(match).
		Relation("Participants", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("rmp.team_color", "rmp.slot")
		}).
		Where("rm.id = ?", id)
	if forUpdate {
		q = q.For("UPDATE OF rm")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return match, nil
}

// SaveMatchResolution writes the resolution only while winner_color is still
// NULL, so of two racing resolutions exactly one commits.
func (r *Impl) SaveMatchResolution(ctx context.Context, db bun.IDB, match *Match) error {
	db = r.resolveDB(db)

	res, err := db.NewUpdate().
		Model(match).
		Column("winner_color", "duration", "resolved_at").
		WherePK().
		Where("winner_color IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ratingdb.SaveMatchResolution: %w", err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("ratingdb.SaveMatchResolution: match %s: %w", match.ID, ErrMatchAlreadyResolved)
	}

	for _, p := range match.Participants {
		res, err := db.NewUpdate().
			Model(p).
			Column(
				"rating_before", "rating_after", "rating_delta",
				"kills", "deaths", "assists", "cs", "gold", "damage", "vision_score",
				"k_factor", "position_factor", "performance_factor", "streak_factor",
				"left_early",
			).
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("ratingdb.SaveMatchResolution: participant %s: %w", p.PlayerID, err)
		}
		if rowsAffected(res) == 0 {
			return fmt.Errorf("ratingdb.SaveMatchResolution: participant %s: %w", p.PlayerID, ErrNoRowsAffected)
		}
	}
	return nil
}

// GetSeasonPlayerIDs lists distinct players across every match of the season.
func (r *Impl) GetSeasonPlayerIDs(ctx context.Context, db bun.IDB, seasonID string) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	var ids []uuid.UUID
	err := db.NewSelect().
		TableExpr("rating_match_participants AS rmp").
		ColumnExpr("DISTINCT rmp.player_id").
		Join("JOIN rating_matches AS rm ON rm.id = rmp.match_id").
		Where("rm.season_id = ?", seasonID).
		OrderExpr("rmp.player_id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("ratingdb.GetSeasonPlayerIDs: %w", err)
	}
	return ids, nil
}
