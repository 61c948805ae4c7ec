package ratingdomain

import (
	"time"

	"github.com/google/uuid"
)

// PerformanceStats is a player's scoreboard line for one match.
type PerformanceStats struct {
	Kills       int `json:"kills"`
	Deaths      int `json:"deaths"`
	Assists     int `json:"assists"`
	CreepScore  int `json:"cs"`
	Gold        int `json:"gold"`
	Damage      int `json:"damage"`
	VisionScore int `json:"visionScore"`
}

func (s PerformanceStats) Validate() error {
	if s.Kills < 0 || s.Deaths < 0 || s.Assists < 0 || s.CreepScore < 0 || s.Gold < 0 || s.Damage < 0 || s.VisionScore < 0 {
		return Validationf("performance stats must not be negative: %+v", s)
	}
	return nil
}

// Multipliers records every factor that went into a participant's delta.
type Multipliers struct {
	K           int     `json:"k"`
	Position    float64 `json:"position"`
	Performance float64 `json:"performance"`
	Streak      float64 `json:"streak"`
}

// Participant is a player's entry in a match. Name and RatingBefore are
// captured when the match is created; the rest is filled on resolution.
type Participant struct {
	PlayerID     uuid.UUID
	PlayerName   string
	Position     Position
	RatingBefore int
	RatingAfter  int
	RatingDelta  int
	Stats        PerformanceStats
	Multipliers  Multipliers
	LeftEarly    bool
}

// Team is one side of a match.
type Team struct {
	Color           TeamColor
	Participants    []Participant
	AverageRating   float64
	ExpectedWinRate float64
}

// NewTeam assigns positions to players in team order and computes the
// average rating. ExpectedWinRate is set by PairTeams.
func NewTeam(color TeamColor, players []PlayerSnapshot) (Team, error) {
	if len(players) != TeamSize {
		return Team{}, Validationf("team %s needs %d players, got %d", color, TeamSize, len(players))
	}
	team := Team{Color: color, Participants: make([]Participant, 0, TeamSize)}
	total := 0
	for i, p := range players {
		team.Participants = append(team.Participants, Participant{
			PlayerID:     p.ID,
			PlayerName:   p.Name,
			Position:     Positions[i],
			RatingBefore: p.Rating,
			RatingAfter:  p.Rating,
		})
		total += p.Rating
	}
	team.AverageRating = float64(total) / float64(TeamSize)
	return team, nil
}

// PairTeams sets each team's expected win rate against the other.
func PairTeams(blue, red Team) (Team, Team) {
	blue.ExpectedWinRate = ExpectedWinRate(blue.AverageRating, red.AverageRating)
	red.ExpectedWinRate = ExpectedWinRate(red.AverageRating, blue.AverageRating)
	return blue, red
}

// Match is a 5v5 game. It is pending until WinnerColor is set, after which it
// never changes again.
type Match struct {
	ID          uuid.UUID
	SeasonID    string
	Blue        Team
	Red         Team
	WinnerColor TeamColor
	Duration    int
	IsRandom    bool
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}

// NewMatch builds a pending match from two paired teams.
func NewMatch(id uuid.UUID, seasonID string, blue, red Team, isRandom bool, createdAt time.Time) Match {
	return Match{
		ID:        id,
		SeasonID:  seasonID,
		Blue:      blue,
		Red:       red,
		IsRandom:  isRandom,
		CreatedAt: createdAt,
	}
}

func (m Match) IsResolved() bool {
	return m.WinnerColor != ""
}

// Team returns the side of the given color.
func (m Match) Team(c TeamColor) Team {
	if c == ColorRed {
		return m.Red
	}
	return m.Blue
}

// PlayerIDs lists blue participants followed by red.
func (m Match) PlayerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m.Blue.Participants)+len(m.Red.Participants))
	for _, p := range m.Blue.Participants {
		ids = append(ids, p.PlayerID)
	}
	for _, p := range m.Red.Participants {
		ids = append(ids, p.PlayerID)
	}
	return ids
}

// PerformanceRecord is caller-supplied performance for one participant.
type PerformanceRecord struct {
	PlayerID  uuid.UUID
	Stats     PerformanceStats
	LeftEarly bool
}
