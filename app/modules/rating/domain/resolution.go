package ratingdomain

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ResolveInput is everything needed to settle a pending match.
type ResolveInput struct {
	Match       Match
	Players     map[uuid.UUID]Player
	Winner      TeamColor
	Duration    int
	Performance []PerformanceRecord
	Config      SeasonConfig
	ResolvedAt  time.Time
}

// Resolution is a settled match and the updated players, ordered by id.
type Resolution struct {
	Match   Match
	Players []Player
}

// ResolveMatch computes the rating change of every participant and returns the
// resolved match along with the updated players. It does not persist anything.
//
// Every participant must have a player record; a missing one fails the whole
// resolution rather than skipping that participant.
func ResolveMatch(in ResolveInput) (Resolution, error) {
	m := in.Match
	if m.IsResolved() {
		return Resolution{}, StateConflictf("match %s already resolved with winner %s", m.ID, m.WinnerColor)
	}
	if !in.Winner.Valid() {
		return Resolution{}, Validationf("unknown winner color %q", in.Winner)
	}
	if in.Duration < 0 {
		return Resolution{}, Validationf("duration must not be negative, got %d", in.Duration)
	}

	records, err := indexPerformance(m, in.Performance)
	if err != nil {
		return Resolution{}, err
	}

	tiers := in.Config.KFactorTiers
	if tiers == (KFactorTiers{}) {
		tiers = DefaultKFactorTiers()
	}

	updated := make([]Player, 0, MatchSize)
	resolveTeam := func(team Team) (Team, error) {
		isWinner := team.Color == in.Winner
		actual := 0.0
		if isWinner {
			actual = 1.0
		}

		out := team
		out.Participants = slices.Clone(team.Participants)
		for i, entry := range out.Participants {
			player, ok := in.Players[entry.PlayerID]
			if !ok {
				return Team{}, NotFoundf("player %s of match %s not found", entry.PlayerID, m.ID)
			}
			if err := player.CheckInvariants(); err != nil {
				return Team{}, err
			}

			perf := 1.0
			if rec, ok := records[entry.PlayerID]; ok {
				entry.Stats = rec.Stats
				entry.LeftEarly = rec.LeftEarly
				perf = PerformanceFactor(rec.Stats.Kills, rec.Stats.Deaths, rec.Stats.Assists)
			}

			mult := Multipliers{
				K:           KFactor(player.MatchesPlayed, tiers),
				Position:    in.Config.PositionFactors.Factor(entry.Position),
				Performance: perf,
				Streak:      StreakFactor(isWinner, player.WinStreak, player.LoseStreak),
			}
			delta := RatingDelta(DeltaInput{
				K:                 mult.K,
				Expected:          team.ExpectedWinRate,
				Actual:            actual,
				PositionFactor:    mult.Position,
				PerformanceFactor: mult.Performance,
				StreakFactor:      mult.Streak,
				LeftEarlyAndLost:  entry.LeftEarly && !isWinner,
			})

			entry.RatingBefore = player.Rating
			entry.RatingDelta = delta
			entry.RatingAfter = player.Rating + delta
			entry.Multipliers = mult
			out.Participants[i] = entry

			updated = append(updated, ApplyMatchOutcome(player, MatchOutcome{
				Won:      isWinner,
				Position: entry.Position,
				Delta:    delta,
			}))
		}
		return out, nil
	}

	resolved := make(map[TeamColor]Team, 2)
	for _, color := range []TeamColor{in.Winner, in.Winner.Opponent()} {
		team, err := resolveTeam(m.Team(color))
		if err != nil {
			return Resolution{}, err
		}
		resolved[color] = team
	}

	resolvedAt := in.ResolvedAt
	m.Blue = resolved[ColorBlue]
	m.Red = resolved[ColorRed]
	m.WinnerColor = in.Winner
	m.Duration = in.Duration
	m.ResolvedAt = &resolvedAt

	slices.SortFunc(updated, func(a, b Player) int {
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	return Resolution{Match: m, Players: updated}, nil
}

func indexPerformance(m Match, records []PerformanceRecord) (map[uuid.UUID]PerformanceRecord, error) {
	inMatch := make(map[uuid.UUID]struct{}, MatchSize)
	for _, id := range m.PlayerIDs() {
		inMatch[id] = struct{}{}
	}

	out := make(map[uuid.UUID]PerformanceRecord, len(records))
	for _, rec := range records {
		if _, ok := inMatch[rec.PlayerID]; !ok {
			return nil, Validationf("player %s is not a participant of match %s", rec.PlayerID, m.ID)
		}
		if _, dup := out[rec.PlayerID]; dup {
			return nil, Validationf("duplicate performance record for player %s", rec.PlayerID)
		}
		if err := rec.Stats.Validate(); err != nil {
			return nil, err
		}
		out[rec.PlayerID] = rec
	}
	return out, nil
}
