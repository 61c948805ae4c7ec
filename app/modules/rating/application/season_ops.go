package ratingservice

import (
	"context"
	"errors"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/attr"
	"github.com/uptrace/bun"
)

// CreateSeason stores a new, inactive season.
func (s *RatingService) CreateSeason(ctx context.Context, req CreateSeasonRequest) (SeasonResult, error) {
	return withTelemetry(s, ctx, "CreateSeason", req.ID, func(ctx context.Context) (SeasonResult, error) {
		season, err := ratingdomain.NewSeason(req.ID, req.Name, req.Config, s.now())
		if err != nil {
			return domainFailure[ratingdomain.Season](err)
		}
		if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
			return failure[ratingdomain.Season](ratingdomain.Validationf("season %s ends before it starts", season.ID))
		}
		season.StartDate = req.StartDate
		season.EndDate = req.EndDate

		if err := s.repo.CreateSeason(ctx, nil, ratingdb.SeasonFromDomain(season)); err != nil {
			if errors.Is(err, ratingdb.ErrAlreadyExists) {
				return failure[ratingdomain.Season](ratingdomain.StateConflictf("season %s already exists", season.ID))
			}
			return SeasonResult{}, err
		}
		return success(season)
	})
}

// ActivateSeason makes seasonID the only active season.
func (s *RatingService) ActivateSeason(ctx context.Context, seasonID string) (SeasonResult, error) {
	return withTelemetry(s, ctx, "ActivateSeason", seasonID, func(ctx context.Context) (SeasonResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (SeasonResult, error) {
			model, err := s.repo.GetSeasonForUpdate(ctx, db, seasonID)
			if err != nil {
				if errors.Is(err, ratingdb.ErrNotFound) {
					return failure[ratingdomain.Season](ratingdomain.NotFoundf("season %s not found", seasonID))
				}
				return SeasonResult{}, err
			}
			season := model.ToDomain()
			if season.EndedAt != nil {
				return failure[ratingdomain.Season](ratingdomain.StateConflictf("season %s has ended", seasonID))
			}

			if err := s.repo.ActivateSeason(ctx, db, seasonID); err != nil {
				if errors.Is(err, ratingdb.ErrNotFound) {
					return failure[ratingdomain.Season](ratingdomain.NotFoundf("season %s not found", seasonID))
				}
				return SeasonResult{}, err
			}
			season.IsActive = true
			return success(season)
		})
	})
}

// EndSeason freezes the rankings of an active season and writes each ranked
// player's season snapshot. Ending an inactive season is a state conflict and
// leaves the stored rankings untouched.
func (s *RatingService) EndSeason(ctx context.Context, seasonID string) (SeasonResult, error) {
	result, err := withTelemetry(s, ctx, "EndSeason", seasonID, func(ctx context.Context) (SeasonResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (SeasonResult, error) {
			model, err := s.repo.GetSeasonForUpdate(ctx, db, seasonID)
			if err != nil {
				if errors.Is(err, ratingdb.ErrNotFound) {
					return failure[ratingdomain.Season](ratingdomain.NotFoundf("season %s not found", seasonID))
				}
				return SeasonResult{}, err
			}
			season := model.ToDomain()
			if !season.IsActive {
				return failure[ratingdomain.Season](ratingdomain.StateConflictf("season %s is not active", seasonID))
			}

			ids, err := s.repo.GetSeasonPlayerIDs(ctx, db, seasonID)
			if err != nil {
				return SeasonResult{}, err
			}
			playerModels, err := s.repo.LockPlayers(ctx, db, ids)
			if err != nil {
				return SeasonResult{}, err
			}
			players := make([]ratingdomain.Player, 0, len(playerModels))
			for _, p := range playerModels {
				players = append(players, p.ToDomain())
			}

			closure, err := ratingdomain.CloseSeason(season, players, s.now())
			if err != nil {
				return domainFailure[ratingdomain.Season](err)
			}

			if err := s.repo.SaveSeason(ctx, db, ratingdb.SeasonFromDomain(closure.Season)); err != nil {
				return SeasonResult{}, err
			}
			for _, p := range closure.Players {
				if err := s.repo.SavePlayer(ctx, db, ratingdb.PlayerFromDomain(p)); err != nil {
					if errors.Is(err, ratingdb.ErrVersionConflict) {
						return failure[ratingdomain.Season](ratingdomain.StateConflictf("player %s changed while season %s was ending", p.ID, seasonID))
					}
					return SeasonResult{}, err
				}
			}

			s.logger.InfoContext(ctx, "Season ended",
				attr.SeasonID(seasonID),
				attr.Int("ranked_players", len(closure.Season.Rankings)),
				attr.ExtractCorrelationID(ctx),
			)
			return success(closure.Season)
		})
	})
	if err == nil && result.IsSuccess() {
		s.metrics.RecordSeasonEnded(ctx, len(result.Success.Rankings))
	}
	return result, err
}

// GetSeasonRankings returns the frozen rankings of an ended season, or the
// live standings of a season still in progress.
func (s *RatingService) GetSeasonRankings(ctx context.Context, seasonID string) (RankingsResult, error) {
	return withTelemetry(s, ctx, "GetSeasonRankings", seasonID, func(ctx context.Context) (RankingsResult, error) {
		model, err := s.repo.GetSeason(ctx, nil, seasonID)
		if err != nil {
			if errors.Is(err, ratingdb.ErrNotFound) {
				return failure[[]ratingdomain.RankingEntry](ratingdomain.NotFoundf("season %s not found", seasonID))
			}
			return RankingsResult{}, err
		}
		season := model.ToDomain()
		if season.EndedAt != nil {
			return success(season.Rankings)
		}

		ids, err := s.repo.GetSeasonPlayerIDs(ctx, nil, seasonID)
		if err != nil {
			return RankingsResult{}, err
		}
		playerModels, err := s.repo.GetPlayers(ctx, nil, ids)
		if err != nil {
			return RankingsResult{}, err
		}
		players := make([]ratingdomain.Player, 0, len(playerModels))
		for _, p := range playerModels {
			players = append(players, p.ToDomain())
		}
		return success(ratingdomain.BuildRankings(players))
	})
}
