package ratingservice

import (
	"context"
	"errors"
	"strings"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/attr"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateRandomMatch draws balanced teams from exactly ten registered players
// and stores a pending match. An empty seasonID targets the active season.
func (s *RatingService) CreateRandomMatch(ctx context.Context, seasonID string, playerIDs []uuid.UUID) (MatchResult, error) {
	result, err := withTelemetry(s, ctx, "CreateRandomMatch", seasonID, func(ctx context.Context) (MatchResult, error) {
		if len(playerIDs) != ratingdomain.MatchSize {
			return failure[ratingdomain.Match](ratingdomain.Validationf("a match needs exactly %d players, got %d", ratingdomain.MatchSize, len(playerIDs)))
		}
		if err := checkPlayerIDs(playerIDs); err != nil {
			return failure[ratingdomain.Match](err)
		}

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (MatchResult, error) {
			season, err := s.matchSeason(ctx, db, seasonID)
			if err != nil {
				return domainFailure[ratingdomain.Match](err)
			}

			players, err := s.repo.GetPlayers(ctx, db, playerIDs)
			if err != nil {
				return MatchResult{}, err
			}
			if missing := missingPlayers(playerIDs, players); len(missing) > 0 {
				return failure[ratingdomain.Match](ratingdomain.Validationf("unknown players: %s", strings.Join(missing, ", ")))
			}

			snapshots := make([]ratingdomain.PlayerSnapshot, 0, len(players))
			for _, p := range players {
				snapshots = append(snapshots, p.ToDomain().Snapshot())
			}

			blue, red, err := s.balancer.Balance(snapshots)
			if err != nil {
				return domainFailure[ratingdomain.Match](err)
			}

			match := ratingdomain.NewMatch(uuid.New(), season.ID, blue, red, true, s.now())
			if err := s.repo.CreateMatch(ctx, db, ratingdb.MatchFromDomain(match)); err != nil {
				return MatchResult{}, err
			}

			s.logger.InfoContext(ctx, "Match created",
				attr.MatchID(match.ID),
				attr.SeasonID(season.ID),
				attr.Float64("blue_expected_win_rate", match.Blue.ExpectedWinRate),
				attr.ExtractCorrelationID(ctx),
			)
			return success(match)
		})
	})
	if err == nil && result.IsSuccess() {
		s.metrics.RecordMatchCreated(ctx, result.Success.SeasonID)
	}
	return result, err
}

// GetMatch returns a match by id.
func (s *RatingService) GetMatch(ctx context.Context, matchID uuid.UUID) (MatchResult, error) {
	return withTelemetry(s, ctx, "GetMatch", matchID.String(), func(ctx context.Context) (MatchResult, error) {
		model, err := s.repo.GetMatch(ctx, nil, matchID)
		if err != nil {
			if errors.Is(err, ratingdb.ErrNotFound) {
				return failure[ratingdomain.Match](ratingdomain.NotFoundf("match %s not found", matchID))
			}
			return MatchResult{}, err
		}
		return success(model.ToDomain())
	})
}

// matchSeason resolves the season a new match belongs to. Ended seasons do
// not accept matches.
func (s *RatingService) matchSeason(ctx context.Context, db bun.IDB, seasonID string) (ratingdomain.Season, error) {
	var (
		model *ratingdb.Season
		err   error
	)
	if seasonID == "" {
		model, err = s.repo.GetActiveSeason(ctx, db)
		if errors.Is(err, ratingdb.ErrNoActiveSeason) {
			return ratingdomain.Season{}, ratingdomain.NotFoundf("no active season")
		}
	} else {
		model, err = s.repo.GetSeason(ctx, db, seasonID)
		if errors.Is(err, ratingdb.ErrNotFound) {
			return ratingdomain.Season{}, ratingdomain.NotFoundf("season %s not found", seasonID)
		}
	}
	if err != nil {
		return ratingdomain.Season{}, err
	}

	season := model.ToDomain()
	if season.EndedAt != nil {
		return ratingdomain.Season{}, ratingdomain.StateConflictf("season %s has ended", season.ID)
	}
	return season, nil
}
