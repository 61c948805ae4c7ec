package ratingdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for rating persistence.
// Every method takes a bun.IDB so it can join a caller's transaction; a nil
// db falls back to the repository's own connection.
//
// Error semantics:
//   - ErrNotFound: Record does not exist
//   - ErrNoActiveSeason: No season is active
//   - ErrAlreadyExists: Insert hit a unique constraint
//   - ErrVersionConflict: Player changed since it was read
//   - ErrMatchAlreadyResolved: Match already carries a winner
//   - Other errors: Infrastructure failures (DB connection, query errors)
type Repository interface {
	// CreatePlayer inserts a new player.
	CreatePlayer(ctx context.Context, db bun.IDB, player *Player) error

	// GetPlayer returns a player with position and season stats.
	GetPlayer(ctx context.Context, db bun.IDB, id uuid.UUID) (*Player, error)

	// GetPlayers returns the players that exist among ids, ordered by id.
	// Missing ids are silently skipped; callers compare lengths.
	GetPlayers(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]*Player, error)

	// LockPlayers is GetPlayers with the rows locked FOR UPDATE in id order.
	LockPlayers(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]*Player, error)

	// SavePlayer updates counters guarded by player.Version, then upserts the
	// player's position and season stats. On success player.Version is bumped.
	SavePlayer(ctx context.Context, db bun.IDB, player *Player) error

	// CreateMatch inserts a match and its participants.
	CreateMatch(ctx context.Context, db bun.IDB, match *Match) error

	// GetMatch returns a match with its participants.
	GetMatch(ctx context.Context, db bun.IDB, id uuid.UUID) (*Match, error)

	// GetMatchForUpdate is GetMatch with the match row locked.
	GetMatchForUpdate(ctx context.Context, db bun.IDB, id uuid.UUID) (*Match, error)

	// SaveMatchResolution writes winner, duration and participant results,
	// only if the match is still unresolved.
	SaveMatchResolution(ctx context.Context, db bun.IDB, match *Match) error

	// GetSeasonPlayerIDs lists distinct players that took part in any match of
	// the season, ordered by id.
	GetSeasonPlayerIDs(ctx context.Context, db bun.IDB, seasonID string) ([]uuid.UUID, error)

	// CreateSeason inserts a new, inactive season.
	CreateSeason(ctx context.Context, db bun.IDB, season *Season) error

	// GetSeason returns a season by id.
	GetSeason(ctx context.Context, db bun.IDB, id string) (*Season, error)

	// GetSeasonForUpdate is GetSeason with the row locked.
	GetSeasonForUpdate(ctx context.Context, db bun.IDB, id string) (*Season, error)

	// GetActiveSeason returns the active season or ErrNoActiveSeason.
	GetActiveSeason(ctx context.Context, db bun.IDB) (*Season, error)

	// SaveSeason writes activity, rankings and end timestamp.
	SaveSeason(ctx context.Context, db bun.IDB, season *Season) error

	// ActivateSeason deactivates every other season and activates id. It takes
	// a transaction-scoped advisory lock and must run inside a transaction.
	ActivateSeason(ctx context.Context, db bun.IDB, id string) error
}

// UnitOfWork runs fn inside a single database transaction. Returning an error
// from fn rolls the transaction back.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error
}
