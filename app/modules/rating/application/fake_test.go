package ratingservice

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	ratingmetrics "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/metrics"
	ratingdb "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

// ------------------------
// Fake Rating Repo
// ------------------------

// FakeRatingRepository is an in-memory ratingdb.Repository. Each method can
// be overridden through its Func field; otherwise it operates on the maps.
type FakeRatingRepository struct {
	trace []string

	players map[uuid.UUID]*ratingdb.Player
	matches map[uuid.UUID]*ratingdb.Match
	seasons map[string]*ratingdb.Season

	CreatePlayerFunc        func(ctx context.Context, db bun.IDB, player *ratingdb.Player) error
	GetPlayersFunc          func(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]*ratingdb.Player, error)
	SavePlayerFunc          func(ctx context.Context, db bun.IDB, player *ratingdb.Player) error
	CreateMatchFunc         func(ctx context.Context, db bun.IDB, match *ratingdb.Match) error
	SaveMatchResolutionFunc func(ctx context.Context, db bun.IDB, match *ratingdb.Match) error
	SaveSeasonFunc          func(ctx context.Context, db bun.IDB, season *ratingdb.Season) error
}

var _ ratingdb.Repository = (*FakeRatingRepository)(nil)

// NewFakeRatingRepository initializes an empty store.
func NewFakeRatingRepository() *FakeRatingRepository {
	return &FakeRatingRepository{
		trace:   []string{},
		players: map[uuid.UUID]*ratingdb.Player{},
		matches: map[uuid.UUID]*ratingdb.Match{},
		seasons: map[string]*ratingdb.Season{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeRatingRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRatingRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRatingRepository) CreatePlayer(ctx context.Context, db bun.IDB, player *ratingdb.Player) error {
	f.record("CreatePlayer")
	if f.CreatePlayerFunc != nil {
		return f.CreatePlayerFunc(ctx, db, player)
	}
	if _, ok := f.players[player.ID]; ok {
		return ratingdb.ErrAlreadyExists
	}
	f.players[player.ID] = clonePlayer(player)
	return nil
}

func (f *FakeRatingRepository) GetPlayer(_ context.Context, _ bun.IDB, id uuid.UUID) (*ratingdb.Player, error) {
	f.record("GetPlayer")
	p, ok := f.players[id]
	if !ok {
		return nil, ratingdb.ErrNotFound
	}
	return clonePlayer(p), nil
}

func (f *FakeRatingRepository) GetPlayers(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]*ratingdb.Player, error) {
	f.record("GetPlayers")
	if f.GetPlayersFunc != nil {
		return f.GetPlayersFunc(ctx, db, ids)
	}
	return f.selectPlayers(ids), nil
}

func (f *FakeRatingRepository) LockPlayers(_ context.Context, _ bun.IDB, ids []uuid.UUID) ([]*ratingdb.Player, error) {
	f.record("LockPlayers")
	return f.selectPlayers(ids), nil
}

func (f *FakeRatingRepository) selectPlayers(ids []uuid.UUID) []*ratingdb.Player {
	var out []*ratingdb.Player
	for _, id := range ids {
		if p, ok := f.players[id]; ok {
			out = append(out, clonePlayer(p))
		}
	}
	slices.SortFunc(out, func(a, b *ratingdb.Player) int { return cmp.Compare(a.ID.String(), b.ID.String()) })
	return out
}

func (f *FakeRatingRepository) SavePlayer(ctx context.Context, db bun.IDB, player *ratingdb.Player) error {
	f.record("SavePlayer")
	if f.SavePlayerFunc != nil {
		return f.SavePlayerFunc(ctx, db, player)
	}
	return f.savePlayer(player)
}

func (f *FakeRatingRepository) savePlayer(player *ratingdb.Player) error {
	stored, ok := f.players[player.ID]
	if !ok || stored.Version != player.Version {
		return fmt.Errorf("fake.SavePlayer: %w", ratingdb.ErrVersionConflict)
	}
	player.Version++
	f.players[player.ID] = clonePlayer(player)
	return nil
}

func (f *FakeRatingRepository) CreateMatch(ctx context.Context, db bun.IDB, match *ratingdb.Match) error {
	f.record("CreateMatch")
	if f.CreateMatchFunc != nil {
		return f.CreateMatchFunc(ctx, db, match)
	}
	f.matches[match.ID] = cloneMatch(match)
	return nil
}

func (f *FakeRatingRepository) GetMatch(_ context.Context, _ bun.IDB, id uuid.UUID) (*ratingdb.Match, error) {
	f.record("GetMatch")
	m, ok := f.matches[id]
	if !ok {
		return nil, ratingdb.ErrNotFound
	}
	return cloneMatch(m), nil
}

func (f *FakeRatingRepository) GetMatchForUpdate(_ context.Context, _ bun.IDB, id uuid.UUID) (*ratingdb.Match, error) {
	f.record("GetMatchForUpdate")
	m, ok := f.matches[id]
	if !ok {
		return nil, ratingdb.ErrNotFound
	}
	return cloneMatch(m), nil
}

func (f *FakeRatingRepository) SaveMatchResolution(ctx context.Context, db bun.IDB, match *ratingdb.Match) error {
	f.record("SaveMatchResolution")
	if f.SaveMatchResolutionFunc != nil {
		return f.SaveMatchResolutionFunc(ctx, db, match)
	}
	stored, ok := f.matches[match.ID]
	if !ok {
		return ratingdb.ErrNotFound
	}
	if stored.WinnerColor != "" {
		return fmt.Errorf("fake.SaveMatchResolution: %w", ratingdb.ErrMatchAlreadyResolved)
	}
	f.matches[match.ID] = cloneMatch(match)
	return nil
}

func (f *FakeRatingRepository) GetSeasonPlayerIDs(_ context.Context, _ bun.IDB, seasonID string) ([]uuid.UUID, error) {
	f.record("GetSeasonPlayerIDs")
	seen := map[uuid.UUID]struct{}{}
	for _, m := range f.matches {
		if m.SeasonID != seasonID {
			continue
		}
		for _, p := range m.Participants {
			seen[p.PlayerID] = struct{}{}
		}
	}
	ids := slices.Collect(maps.Keys(seen))
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return cmp.Compare(a.String(), b.String()) })
	return ids, nil
}

func (f *FakeRatingRepository) CreateSeason(_ context.Context, _ bun.IDB, season *ratingdb.Season) error {
	f.record("CreateSeason")
	if _, ok := f.seasons[season.ID]; ok {
		return ratingdb.ErrAlreadyExists
	}
	season.IsActive = false
	f.seasons[season.ID] = cloneSeason(season)
	return nil
}

func (f *FakeRatingRepository) GetSeason(_ context.Context, _ bun.IDB, id string) (*ratingdb.Season, error) {
	f.record("GetSeason")
	s, ok := f.seasons[id]
	if !ok {
		return nil, ratingdb.ErrNotFound
	}
	return cloneSeason(s), nil
}

func (f *FakeRatingRepository) GetSeasonForUpdate(_ context.Context, _ bun.IDB, id string) (*ratingdb.Season, error) {
	f.record("GetSeasonForUpdate")
	s, ok := f.seasons[id]
	if !ok {
		return nil, ratingdb.ErrNotFound
	}
	return cloneSeason(s), nil
}

func (f *FakeRatingRepository) GetActiveSeason(_ context.Context, _ bun.IDB) (*ratingdb.Season, error) {
	f.record("GetActiveSeason")
	for _, s := range f.seasons {
		if s.IsActive {
			return cloneSeason(s), nil
		}
	}
	return nil, ratingdb.ErrNoActiveSeason
}

func (f *FakeRatingRepository) SaveSeason(ctx context.Context, db bun.IDB, season *ratingdb.Season) error {
	f.record("SaveSeason")
	if f.SaveSeasonFunc != nil {
		return f.SaveSeasonFunc(ctx, db, season)
	}
	if _, ok := f.seasons[season.ID]; !ok {
		return ratingdb.ErrNoRowsAffected
	}
	f.seasons[season.ID] = cloneSeason(season)
	return nil
}

func (f *FakeRatingRepository) ActivateSeason(_ context.Context, _ bun.IDB, id string) error {
	f.record("ActivateSeason")
	if _, ok := f.seasons[id]; !ok {
		return ratingdb.ErrNotFound
	}
	for sid, s := range f.seasons {
		s.IsActive = sid == id
	}
	return nil
}

// snapshot deep-copies the store.
func (f *FakeRatingRepository) snapshot() (map[uuid.UUID]*ratingdb.Player, map[uuid.UUID]*ratingdb.Match, map[string]*ratingdb.Season) {
	players := make(map[uuid.UUID]*ratingdb.Player, len(f.players))
	for k, v := range f.players {
		players[k] = clonePlayer(v)
	}
	matches := make(map[uuid.UUID]*ratingdb.Match, len(f.matches))
	for k, v := range f.matches {
		matches[k] = cloneMatch(v)
	}
	seasons := make(map[string]*ratingdb.Season, len(f.seasons))
	for k, v := range f.seasons {
		seasons[k] = cloneSeason(v)
	}
	return players, matches, seasons
}

func clonePlayer(p *ratingdb.Player) *ratingdb.Player {
	c := *p
	c.Positions = make([]*ratingdb.PlayerPosition, 0, len(p.Positions))
	for _, pos := range p.Positions {
		cp := *pos
		c.Positions = append(c.Positions, &cp)
	}
	c.SeasonStats = make([]*ratingdb.PlayerSeasonStat, 0, len(p.SeasonStats))
	for _, st := range p.SeasonStats {
		cs := *st
		c.SeasonStats = append(c.SeasonStats, &cs)
	}
	return &c
}

func cloneMatch(m *ratingdb.Match) *ratingdb.Match {
	c := *m
	c.Participants = make([]*ratingdb.MatchParticipant, 0, len(m.Participants))
	for _, p := range m.Participants {
		cp := *p
		c.Participants = append(c.Participants, &cp)
	}
	return &c
}

func cloneSeason(s *ratingdb.Season) *ratingdb.Season {
	c := *s
	c.PositionFactors = maps.Clone(s.PositionFactors)
	c.Rankings = slices.Clone(s.Rankings)
	return &c
}

// ------------------------
// Fake Unit of Work
// ------------------------

// FakeUnitOfWork snapshots the fake repository before fn and restores it when
// fn returns an error.
type FakeUnitOfWork struct {
	repo      *FakeRatingRepository
	Commits   int
	Rollbacks int
}

var _ ratingdb.UnitOfWork = (*FakeUnitOfWork)(nil)

func (u *FakeUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	players, matches, seasons := u.repo.snapshot()
	if err := fn(ctx, nil); err != nil {
		u.repo.players, u.repo.matches, u.repo.seasons = players, matches, seasons
		u.Rollbacks++
		return err
	}
	u.Commits++
	return nil
}

// newTestService wires a service over a fresh in-memory store.
func newTestService() (*RatingService, *FakeRatingRepository, *FakeUnitOfWork) {
	repo := NewFakeRatingRepository()
	uow := &FakeUnitOfWork{repo: repo}
	svc := NewRatingService(
		repo,
		uow,
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		ratingmetrics.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
	)
	return svc, repo, uow
}
