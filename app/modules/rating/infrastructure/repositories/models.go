package ratingdb

import (
	"cmp"
	"slices"
	"time"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Player is the cumulative rating state of a player.
type Player struct {
	bun.BaseModel `bun:"table:rating_players,alias:rp"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	Name          string    `bun:"name,notnull"`
	Rating        int       `bun:"rating,notnull,default:1000"`
	MatchesPlayed int       `bun:"matches_played,notnull"`
	Wins          int       `bun:"wins,notnull"`
	Losses        int       `bun:"losses,notnull"`
	WinStreak     int       `bun:"win_streak,notnull"`
	LoseStreak    int       `bun:"lose_streak,notnull"`
	Version       int64     `bun:"version,notnull"` // bumped on every update
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	Positions   []*PlayerPosition   `bun:"rel:has-many,join:id=player_id"`
	SeasonStats []*PlayerSeasonStat `bun:"rel:has-many,join:id=player_id"`
}

// PlayerPosition aggregates a player's results in one role.
type PlayerPosition struct {
	bun.BaseModel `bun:"table:rating_player_positions,alias:rpp"`

	PlayerID           uuid.UUID `bun:"player_id,pk,type:uuid"`
	Position           string    `bun:"position,pk"`
	Matches            int       `bun:"matches,notnull"`
	Wins               int       `bun:"wins,notnull"`
	AverageRatingDelta float64   `bun:"average_rating_delta,notnull,type:double precision"`
}

// PlayerSeasonStat is the snapshot written for a player when a season ends.
type PlayerSeasonStat struct {
	bun.BaseModel `bun:"table:rating_player_seasons,alias:rps"`

	PlayerID uuid.UUID `bun:"player_id,pk,type:uuid"`
	SeasonID string    `bun:"season_id,pk"`
	Rating   int       `bun:"rating,notnull"`
	Matches  int       `bun:"matches,notnull"`
	Wins     int       `bun:"wins,notnull"`
	Rank     int       `bun:"rank,notnull"`
}

// Match is a 5v5 game. WinnerColor stays NULL until the match is resolved.
type Match struct {
	bun.BaseModel `bun:"table:rating_matches,alias:rm"`

	ID                  uuid.UUID  `bun:"id,pk,type:uuid"`
	SeasonID            string     `bun:"season_id,notnull"`
	WinnerColor         string     `bun:"winner_color,nullzero"`
	Duration            int        `bun:"duration,notnull"`
	IsRandom            bool       `bun:"is_random,notnull"`
	BlueAverageRating   float64    `bun:"blue_average_rating,notnull,type:double precision"`
	BlueExpectedWinRate float64    `bun:"blue_expected_win_rate,notnull,type:double precision"`
	RedAverageRating    float64    `bun:"red_average_rating,notnull,type:double precision"`
	RedExpectedWinRate  float64    `bun:"red_expected_win_rate,notnull,type:double precision"`
	CreatedAt           time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	ResolvedAt          *time.Time `bun:"resolved_at"`

	Participants []*MatchParticipant `bun:"rel:has-many,join:id=match_id"`
}

// MatchParticipant is a player's entry in a match. Name and the creation-time
// rating are snapshots, not references.
type MatchParticipant struct {
	bun.BaseModel `bun:"table:rating_match_participants,alias:rmp"`

	MatchID           uuid.UUID `bun:"match_id,pk,type:uuid"`
	PlayerID          uuid.UUID `bun:"player_id,pk,type:uuid"`
	TeamColor         string    `bun:"team_color,notnull"`
	Slot              int       `bun:"slot,notnull"`
	Position          string    `bun:"position,notnull"`
	PlayerName        string    `bun:"player_name,notnull"`
	RatingBefore      int       `bun:"rating_before,notnull"`
	RatingAfter       int       `bun:"rating_after,notnull"`
	RatingDelta       int       `bun:"rating_delta,notnull"`
	Kills             int       `bun:"kills,notnull"`
	Deaths            int       `bun:"deaths,notnull"`
	Assists           int       `bun:"assists,notnull"`
	CreepScore        int       `bun:"cs,notnull"`
	Gold              int       `bun:"gold,notnull"`
	Damage            int       `bun:"damage,notnull"`
	VisionScore       int       `bun:"vision_score,notnull"`
	KFactor           int       `bun:"k_factor,notnull"`
	PositionFactor    float64   `bun:"position_factor,notnull,type:double precision"`
	PerformanceFactor float64   `bun:"performance_factor,notnull,type:double precision"`
	StreakFactor      float64   `bun:"streak_factor,notnull,type:double precision"`
	LeftEarly         bool      `bun:"left_early,notnull"`
}

// Season carries the rating configuration and, once ended, frozen rankings.
type Season struct {
	bun.BaseModel `bun:"table:rating_seasons,alias:rs"`

	ID                 string                       `bun:"id,pk"` // e.g., "2026-spring"
	Name               string                       `bun:"name,notnull"`
	IsActive           bool                         `bun:"is_active,notnull,default:false"`
	KFactorNew         int                          `bun:"k_factor_new,notnull"`
	KFactorRegular     int                          `bun:"k_factor_regular,notnull"`
	KFactorExperienced int                          `bun:"k_factor_experienced,notnull"`
	PositionFactors    ratingdomain.PositionFactors `bun:"position_factors,type:jsonb,notnull"`
	Rankings           []ratingdomain.RankingEntry  `bun:"rankings,type:jsonb"`
	StartDate          *time.Time                   `bun:"start_date"`
	EndDate            *time.Time                   `bun:"end_date"`
	EndedAt            *time.Time                   `bun:"ended_at"`
	CreatedAt          time.Time                    `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func PlayerFromDomain(p ratingdomain.Player) *Player {
	model := &Player{
		ID:            p.ID,
		Name:          p.Name,
		Rating:        p.Rating,
		MatchesPlayed: p.MatchesPlayed,
		Wins:          p.Wins,
		Losses:        p.Losses,
		WinStreak:     p.WinStreak,
		LoseStreak:    p.LoseStreak,
		Version:       p.Version,
	}
	for pos, stat := range p.Positions {
		model.Positions = append(model.Positions, &PlayerPosition{
			PlayerID:           p.ID,
			Position:           string(pos),
			Matches:            stat.Matches,
			Wins:               stat.Wins,
			AverageRatingDelta: stat.AverageRatingDelta,
		})
	}
	slices.SortFunc(model.Positions, func(a, b *PlayerPosition) int { return cmp.Compare(a.Position, b.Position) })
	for seasonID, stat := range p.Seasons {
		model.SeasonStats = append(model.SeasonStats, &PlayerSeasonStat{
			PlayerID: p.ID,
			SeasonID: seasonID,
			Rating:   stat.Rating,
			Matches:  stat.Matches,
			Wins:     stat.Wins,
			Rank:     stat.Rank,
		})
	}
	slices.SortFunc(model.SeasonStats, func(a, b *PlayerSeasonStat) int { return cmp.Compare(a.SeasonID, b.SeasonID) })
	return model
}

func (p *Player) ToDomain() ratingdomain.Player {
	out := ratingdomain.Player{
		ID:            p.ID,
		Name:          p.Name,
		Rating:        p.Rating,
		MatchesPlayed: p.MatchesPlayed,
		Wins:          p.Wins,
		Losses:        p.Losses,
		WinStreak:     p.WinStreak,
		LoseStreak:    p.LoseStreak,
		Positions:     make(map[ratingdomain.Position]ratingdomain.PositionStat, len(p.Positions)),
		Seasons:       make(map[string]ratingdomain.SeasonStat, len(p.SeasonStats)),
		Version:       p.Version,
	}
	for _, pos := range p.Positions {
		out.Positions[ratingdomain.Position(pos.Position)] = ratingdomain.PositionStat{
			Matches:            pos.Matches,
			Wins:               pos.Wins,
			AverageRatingDelta: pos.AverageRatingDelta,
		}
	}
	for _, s := range p.SeasonStats {
		out.Seasons[s.SeasonID] = ratingdomain.SeasonStat{Rating: s.Rating, Matches: s.Matches, Wins: s.Wins, Rank: s.Rank}
	}
	return out
}

func MatchFromDomain(m ratingdomain.Match) *Match {
	model := &Match{
		ID:                  m.ID,
		SeasonID:            m.SeasonID,
		WinnerColor:         string(m.WinnerColor),
		Duration:            m.Duration,
		IsRandom:            m.IsRandom,
		BlueAverageRating:   m.Blue.AverageRating,
		BlueExpectedWinRate: m.Blue.ExpectedWinRate,
		RedAverageRating:    m.Red.AverageRating,
		RedExpectedWinRate:  m.Red.ExpectedWinRate,
		CreatedAt:           m.CreatedAt,
		ResolvedAt:          m.ResolvedAt,
	}
	for _, team := range []ratingdomain.Team{m.Blue, m.Red} {
		for slot, p := range team.Participants {
			model.Participants = append(model.Participants, &MatchParticipant{
				MatchID:           m.ID,
				PlayerID:          p.PlayerID,
				TeamColor:         string(team.Color),
				Slot:              slot,
				Position:          string(p.Position),
				PlayerName:        p.PlayerName,
				RatingBefore:      p.RatingBefore,
				RatingAfter:       p.RatingAfter,
				RatingDelta:       p.RatingDelta,
				Kills:             p.Stats.Kills,
				Deaths:            p.Stats.Deaths,
				Assists:           p.Stats.Assists,
				CreepScore:        p.Stats.CreepScore,
				Gold:              p.Stats.Gold,
				Damage:            p.Stats.Damage,
				VisionScore:       p.Stats.VisionScore,
				KFactor:           p.Multipliers.K,
				PositionFactor:    p.Multipliers.Position,
				PerformanceFactor: p.Multipliers.Performance,
				StreakFactor:      p.Multipliers.Streak,
				LeftEarly:         p.LeftEarly,
			})
		}
	}
	return model
}

func (m *Match) ToDomain() ratingdomain.Match {
	out := ratingdomain.Match{
		ID:          m.ID,
		SeasonID:    m.SeasonID,
		WinnerColor: ratingdomain.TeamColor(m.WinnerColor),
		Duration:    m.Duration,
		IsRandom:    m.IsRandom,
		CreatedAt:   m.CreatedAt,
		ResolvedAt:  m.ResolvedAt,
		Blue: ratingdomain.Team{
			Color:           ratingdomain.ColorBlue,
			AverageRating:   m.BlueAverageRating,
			ExpectedWinRate: m.BlueExpectedWinRate,
		},
		Red: ratingdomain.Team{
			Color:           ratingdomain.ColorRed,
			AverageRating:   m.RedAverageRating,
			ExpectedWinRate: m.RedExpectedWinRate,
		},
	}

	participants := slices.Clone(m.Participants)
	slices.SortFunc(participants, func(a, b *MatchParticipant) int { return cmp.Compare(a.Slot, b.Slot) })
	for _, p := range participants {
		entry := ratingdomain.Participant{
			PlayerID:     p.PlayerID,
			PlayerName:   p.PlayerName,
			Position:     ratingdomain.Position(p.Position),
			RatingBefore: p.RatingBefore,
			RatingAfter:  p.RatingAfter,
			RatingDelta:  p.RatingDelta,
			Stats: ratingdomain.PerformanceStats{
				Kills:       p.Kills,
				Deaths:      p.Deaths,
				Assists:     p.Assists,
				CreepScore:  p.CreepScore,
				Gold:        p.Gold,
				Damage:      p.Damage,
				VisionScore: p.VisionScore,
			},
			Multipliers: ratingdomain.Multipliers{
				K:           p.KFactor,
				Position:    p.PositionFactor,
				Performance: p.PerformanceFactor,
				Streak:      p.StreakFactor,
			},
			LeftEarly: p.LeftEarly,
		}
		if ratingdomain.TeamColor(p.TeamColor) == ratingdomain.ColorRed {
			out.Red.Participants = append(out.Red.Participants, entry)
		} else {
			out.Blue.Participants = append(out.Blue.Participants, entry)
		}
	}
	return out
}

func SeasonFromDomain(s ratingdomain.Season) *Season {
	return &Season{
		ID:                 s.ID,
		Name:               s.Name,
		IsActive:           s.IsActive,
		KFactorNew:         s.Config.KFactorTiers.New,
		KFactorRegular:     s.Config.KFactorTiers.Regular,
		KFactorExperienced: s.Config.KFactorTiers.Experienced,
		PositionFactors:    s.Config.PositionFactors,
		Rankings:           s.Rankings,
		StartDate:          s.StartDate,
		EndDate:            s.EndDate,
		EndedAt:            s.EndedAt,
		CreatedAt:          s.CreatedAt,
	}
}

func (s *Season) ToDomain() ratingdomain.Season {
	return ratingdomain.Season{
		ID:   s.ID,
		Name: s.Name,
		Config: ratingdomain.SeasonConfig{
			KFactorTiers: ratingdomain.KFactorTiers{
				New:         s.KFactorNew,
				Regular:     s.KFactorRegular,
				Experienced: s.KFactorExperienced,
			},
			PositionFactors: s.PositionFactors,
		},
		IsActive:  s.IsActive,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Rankings:  s.Rankings,
		EndedAt:   s.EndedAt,
		CreatedAt: s.CreatedAt,
	}
}
