package ratingdomain

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RankingEntry is one row of a frozen season ranking.
type RankingEntry struct {
	Rank       int       `json:"rank"`
	PlayerID   uuid.UUID `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Rating     int       `json:"rating"`
	Matches    int       `json:"matches"`
	Wins       int       `json:"wins"`
}

// Season groups matches and carries the rating configuration applied to them.
type Season struct {
	ID        string
	Name      string
	Config    SeasonConfig
	IsActive  bool
	StartDate *time.Time
	EndDate   *time.Time
	Rankings  []RankingEntry
	EndedAt   *time.Time
	CreatedAt time.Time
}

// NewSeason validates and builds an inactive season.
func NewSeason(id, name string, cfg SeasonConfig, createdAt time.Time) (Season, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Season{}, Validationf("season id is required")
	}
	if name == "" {
		name = id
	}
	if cfg.KFactorTiers == (KFactorTiers{}) {
		cfg.KFactorTiers = DefaultKFactorTiers()
	}
	if cfg.PositionFactors == nil {
		cfg.PositionFactors = DefaultPositionFactors()
	}
	if err := cfg.Validate(); err != nil {
		return Season{}, err
	}
	return Season{ID: id, Name: name, Config: cfg, CreatedAt: createdAt}, nil
}

// BuildRankings orders players by rating descending, player id ascending on
// ties, and assigns dense ranks from 1: equal ratings share a rank and the
// next lower rating takes the following rank.
func BuildRankings(players []Player) []RankingEntry {
	sorted := slices.Clone(players)
	slices.SortFunc(sorted, func(a, b Player) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	rankings := make([]RankingEntry, 0, len(sorted))
	rank := 0
	for i, p := range sorted {
		if i == 0 || p.Rating != sorted[i-1].Rating {
			rank++
		}
		rankings = append(rankings, RankingEntry{
			Rank:       rank,
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Rating:     p.Rating,
			Matches:    p.MatchesPlayed,
			Wins:       p.Wins,
		})
	}
	return rankings
}

// SeasonClosure is an ended season and its players carrying their season
// snapshot.
type SeasonClosure struct {
	Season  Season
	Players []Player
}

// CloseSeason freezes the rankings of an active season. Season stats use each
// player's lifetime totals.
func CloseSeason(season Season, players []Player, endedAt time.Time) (SeasonClosure, error) {
	if !season.IsActive {
		return SeasonClosure{}, StateConflictf("season %s is not active", season.ID)
	}

	rankings := BuildRankings(players)
	byID := make(map[uuid.UUID]Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	updated := make([]Player, 0, len(rankings))
	for _, r := range rankings {
		updated = append(updated, WithSeasonStat(byID[r.PlayerID], season.ID, SeasonStat{
			Rating:  r.Rating,
			Matches: r.Matches,
			Wins:    r.Wins,
			Rank:    r.Rank,
		}))
	}

	closed := season
	closed.Rankings = rankings
	closed.IsActive = false
	closed.EndedAt = &endedAt

	return SeasonClosure{Season: closed, Players: updated}, nil
}
