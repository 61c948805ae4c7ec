package ratingdomain

import (
	"maps"

	"github.com/google/uuid"
)

// PositionStat aggregates a player's results in one role.
type PositionStat struct {
	Matches            int     `json:"matches"`
	Wins               int     `json:"wins"`
	AverageRatingDelta float64 `json:"averageRatingDelta"`
}

// SeasonStat is the frozen per-season snapshot written when a season ends.
type SeasonStat struct {
	Rating  int `json:"rating"`
	Matches int `json:"matches"`
	Wins    int `json:"wins"`
	Rank    int `json:"rank"`
}

// Player is an immutable snapshot of a player's rating state. Functions in
// this package never mutate a Player in place; they return a new one.
type Player struct {
	ID            uuid.UUID
	Name          string
	Rating        int
	MatchesPlayed int
	Wins          int
	Losses        int
	WinStreak     int
	LoseStreak    int
	Positions     map[Position]PositionStat
	Seasons       map[string]SeasonStat
	Version       int64
}

// PlayerSnapshot is the identity and rating of a player captured at a point in
// time, e.g. when teams are drawn.
type PlayerSnapshot struct {
	ID     uuid.UUID
	Name   string
	Rating int
}

// NewPlayer returns a fresh player at the default rating.
func NewPlayer(id uuid.UUID, name string) Player {
	return Player{
		ID:        id,
		Name:      name,
		Rating:    DefaultRating,
		Positions: map[Position]PositionStat{},
		Seasons:   map[string]SeasonStat{},
	}
}

func (p Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{ID: p.ID, Name: p.Name, Rating: p.Rating}
}

// CheckInvariants validates the counters of p.
func (p Player) CheckInvariants() error {
	if p.Wins+p.Losses != p.MatchesPlayed {
		return Validationf("player %s: wins %d + losses %d != matches %d", p.ID, p.Wins, p.Losses, p.MatchesPlayed)
	}
	if p.WinStreak != 0 && p.LoseStreak != 0 {
		return Validationf("player %s: both win and lose streak set", p.ID)
	}
	return nil
}

// MatchOutcome is the result of one resolved match for one player.
type MatchOutcome struct {
	Won      bool
	Position Position
	Delta    int
}

// ApplyMatchOutcome returns p updated by the outcome of one match.
func ApplyMatchOutcome(p Player, o MatchOutcome) Player {
	next := p.clone()
	next.Rating += o.Delta
	next.MatchesPlayed++

	if o.Won {
		next.Wins++
		next.WinStreak++
		next.LoseStreak = 0
	} else {
		next.Losses++
		next.LoseStreak++
		next.WinStreak = 0
	}

	stat := next.Positions[o.Position]
	stat.Matches++
	if o.Won {
		stat.Wins++
	}
	// incremental mean over the role's matches
	stat.AverageRatingDelta = (stat.AverageRatingDelta*float64(stat.Matches-1) + float64(o.Delta)) / float64(stat.Matches)
	next.Positions[o.Position] = stat

	return next
}

// WithSeasonStat returns p with the snapshot for seasonID replaced.
func WithSeasonStat(p Player, seasonID string, stat SeasonStat) Player {
	next := p.clone()
	next.Seasons[seasonID] = stat
	return next
}

func (p Player) clone() Player {
	next := p
	next.Positions = make(map[Position]PositionStat, len(p.Positions))
	maps.Copy(next.Positions, p.Positions)
	next.Seasons = make(map[string]SeasonStat, len(p.Seasons))
	maps.Copy(next.Seasons, p.Seasons)
	return next
}
