package ratingservice

import (
	"context"
	"strings"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/repositories"
	"github.com/google/uuid"
)

// PredictMatch forecasts a lineup from current ratings without writing
// anything. Deltas use the reference K-factor with neutral multipliers.
func (s *RatingService) PredictMatch(ctx context.Context, blueIDs, redIDs []uuid.UUID) (PredictionResult, error) {
	return withTelemetry(s, ctx, "PredictMatch", "", func(ctx context.Context) (PredictionResult, error) {
		if len(blueIDs) != ratingdomain.TeamSize || len(redIDs) != ratingdomain.TeamSize {
			return failure[Prediction](ratingdomain.Validationf("each team needs exactly %d players, got %d and %d", ratingdomain.TeamSize, len(blueIDs), len(redIDs)))
		}
		all := append(append(make([]uuid.UUID, 0, ratingdomain.MatchSize), blueIDs...), redIDs...)
		if err := checkPlayerIDs(all); err != nil {
			return failure[Prediction](err)
		}

		models, err := s.repo.GetPlayers(ctx, nil, all)
		if err != nil {
			return PredictionResult{}, err
		}
		if missing := missingPlayers(all, models); len(missing) > 0 {
			return failure[Prediction](ratingdomain.Validationf("unknown players: %s", strings.Join(missing, ", ")))
		}

		byID := make(map[uuid.UUID]*ratingdb.Player, len(models))
		for _, m := range models {
			byID[m.ID] = m
		}
		lineup := func(ids []uuid.UUID) []ratingdomain.PlayerSnapshot {
			out := make([]ratingdomain.PlayerSnapshot, 0, len(ids))
			for _, id := range ids {
				out = append(out, byID[id].ToDomain().Snapshot())
			}
			return out
		}

		blue, err := ratingdomain.NewTeam(ratingdomain.ColorBlue, lineup(blueIDs))
		if err != nil {
			return domainFailure[Prediction](err)
		}
		red, err := ratingdomain.NewTeam(ratingdomain.ColorRed, lineup(redIDs))
		if err != nil {
			return domainFailure[Prediction](err)
		}
		blue, red = ratingdomain.PairTeams(blue, red)

		prediction := Prediction{
			BlueWinProbability: blue.ExpectedWinRate,
			RedWinProbability:  red.ExpectedWinRate,
			PredictedDeltas:    make([]PredictedDelta, 0, ratingdomain.MatchSize),
		}
		for _, team := range []ratingdomain.Team{blue, red} {
			for _, p := range team.Participants {
				prediction.PredictedDeltas = append(prediction.PredictedDeltas, PredictedDelta{
					PlayerID: p.PlayerID,
					Team:     team.Color,
					OnWin:    referenceDelta(team.ExpectedWinRate, 1),
					OnLoss:   referenceDelta(team.ExpectedWinRate, 0),
				})
			}
		}
		return success(prediction)
	})
}

func referenceDelta(expected, actual float64) int {
	return ratingdomain.RatingDelta(ratingdomain.DeltaInput{
		K:                 ratingdomain.ReferenceKFactor,
		Expected:          expected,
		Actual:            actual,
		PositionFactor:    1,
		PerformanceFactor: 1,
		StreakFactor:      1,
	})
}
