package ratingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// seasonActivationLockKey serializes season activation across instances.
const seasonActivationLockKey int64 = 0x7261_7469_6e67 // "rating"

// CreateSeason inserts a new, inactive season.
func (r *Impl) CreateSeason(ctx context.Context, db bun.IDB, season *Season) error {
	db = r.resolveDB(db)
	season.IsActive = false
	if _, err := db.NewInsert().Model(season).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ratingdb.CreateSeason: %w", ErrAlreadyExists)
		}
		return fmt.Errorf("ratingdb.CreateSeason: %w", err)
	}
	return nil
}

// GetSeason returns a season by id.
func (r *Impl) GetSeason(ctx context.Context, db bun.IDB, id string) (*Season, error) {
	season, err := r.selectSeason(ctx, r.resolveDB(db), id, false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ratingdb.GetSeason: %w", err)
	}
	return season, nil
}

// GetSeasonForUpdate locks the season row for the rest of the transaction.
func (r *Impl) GetSeasonForUpdate(ctx context.Context, db bun.IDB, id string) (*Season, error) {
	season, err := r.selectSeason(ctx, r.resolveDB(db), id, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ratingdb.GetSeasonForUpdate: %w", err)
	}
	return season, nil
}

func (r *Impl) selectSeason(ctx context.Context, db bun.IDB, id string, forUpdate bool) (*Season, error) {
	season := new(Season)
	q := db.NewSelect().Model(season).Where("id = ?", id)
	if forUpdate {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return season, nil
}

// GetActiveSeason returns the currently active season.
func (r *Impl) GetActiveSeason(ctx context.Context, db bun.IDB) (*Season, error) {
	db = r.resolveDB(db)
	season := new(Season)
	err := db.NewSelect().
		Model(season).
		Where("is_active = true").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveSeason
		}
		return nil, fmt.Errorf("ratingdb.GetActiveSeason: %w", err)
	}
	return season, nil
}

// SaveSeason writes activity, rankings and end timestamp.
func (r *Impl) SaveSeason(ctx context.Context, db bun.IDB, season *Season) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model(season).
		Column("name", "is_active", "rankings", "ended_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ratingdb.SaveSeason: %w", err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("ratingdb.SaveSeason: %w", ErrNoRowsAffected)
	}
	return nil
}

// ActivateSeason makes id the only active season. The advisory lock is held
// until the surrounding transaction ends; the partial unique index on
// is_active rejects anything that slips past it.
func (r *Impl) ActivateSeason(ctx context.Context, db bun.IDB, id string) error {
	db = r.resolveDB(db)

	if _, err := db.NewRaw("SELECT pg_advisory_xact_lock(?)", seasonActivationLockKey).Exec(ctx); err != nil {
		return fmt.Errorf("ratingdb.ActivateSeason: lock: %w", err)
	}

	_, err := db.NewUpdate().
		Model((*Season)(nil)).
		Set("is_active = false").
		Where("is_active = true").
		Where("id <> ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ratingdb.ActivateSeason: deactivate: %w", err)
	}

	res, err := db.NewUpdate().
		Model((*Season)(nil)).
		Set("is_active = true").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ratingdb.ActivateSeason: %w", err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("ratingdb.ActivateSeason: season %s: %w", id, ErrNotFound)
	}
	return nil
}
