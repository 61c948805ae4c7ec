package ratingservice

import (
	"context"
	"errors"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/attr"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ResolveMatch settles a pending match and applies every participant's rating
// change in one unit of work. The match row is locked first and written only
// while still unresolved, then players are locked in id order and saved under
// their version; any conflict rolls the whole resolution back.
func (s *RatingService) ResolveMatch(ctx context.Context, req ResolveMatchRequest) (MatchResult, error) {
	result, err := withTelemetry(s, ctx, "ResolveMatch", req.MatchID.String(), func(ctx context.Context) (MatchResult, error) {
		if req.MatchID == uuid.Nil {
			return failure[ratingdomain.Match](ratingdomain.Validationf("match id is required"))
		}
		if !req.Winner.Valid() {
			return failure[ratingdomain.Match](ratingdomain.Validationf("unknown winner color %q", req.Winner))
		}

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (MatchResult, error) {
			return s.resolveMatchTx(ctx, db, req)
		})
	})
	if err == nil && result.IsSuccess() {
		s.recordResolution(ctx, *result.Success)
	}
	return result, err
}

func (s *RatingService) resolveMatchTx(ctx context.Context, db bun.IDB, req ResolveMatchRequest) (MatchResult, error) {
	matchModel, err := s.repo.GetMatchForUpdate(ctx, db, req.MatchID)
	if err != nil {
		if errors.Is(err, ratingdb.ErrNotFound) {
			return failure[ratingdomain.Match](ratingdomain.NotFoundf("match %s not found", req.MatchID))
		}
		return MatchResult{}, err
	}
	match := matchModel.ToDomain()
	if match.IsResolved() {
		return failure[ratingdomain.Match](ratingdomain.StateConflictf("match %s already resolved", match.ID))
	}

	config := ratingdomain.DefaultSeasonConfig()
	seasonModel, err := s.repo.GetSeason(ctx, db, match.SeasonID)
	switch {
	case err == nil:
		config = seasonModel.ToDomain().Config
	case errors.Is(err, ratingdb.ErrNotFound):
		return failure[ratingdomain.Match](ratingdomain.NotFoundf("season %s of match %s not found", match.SeasonID, match.ID))
	default:
		return MatchResult{}, err
	}

	playerModels, err := s.repo.LockPlayers(ctx, db, match.PlayerIDs())
	if err != nil {
		return MatchResult{}, err
	}
	players := make(map[uuid.UUID]ratingdomain.Player, len(playerModels))
	for _, p := range playerModels {
		players[p.ID] = p.ToDomain()
	}

	resolution, err := ratingdomain.ResolveMatch(ratingdomain.ResolveInput{
		Match:       match,
		Players:     players,
		Winner:      req.Winner,
		Duration:    req.Duration,
		Performance: req.Performance,
		Config:      config,
		ResolvedAt:  s.now(),
	})
	if err != nil {
		return domainFailure[ratingdomain.Match](err)
	}

	if err := s.repo.SaveMatchResolution(ctx, db, ratingdb.MatchFromDomain(resolution.Match)); err != nil {
		if errors.Is(err, ratingdb.ErrMatchAlreadyResolved) {
			return failure[ratingdomain.Match](ratingdomain.StateConflictf("match %s already resolved", match.ID))
		}
		return MatchResult{}, err
	}

	for _, p := range resolution.Players {
		if err := s.repo.SavePlayer(ctx, db, ratingdb.PlayerFromDomain(p)); err != nil {
			if errors.Is(err, ratingdb.ErrVersionConflict) {
				return failure[ratingdomain.Match](ratingdomain.StateConflictf("player %s changed during resolution of match %s", p.ID, match.ID))
			}
			return MatchResult{}, err
		}
	}

	s.logger.InfoContext(ctx, "Match resolved",
		attr.MatchID(match.ID),
		attr.String("winner", string(req.Winner)),
		attr.Int("duration", req.Duration),
		attr.ExtractCorrelationID(ctx),
	)
	return success(resolution.Match)
}

func (s *RatingService) recordResolution(ctx context.Context, m ratingdomain.Match) {
	s.metrics.RecordMatchResolved(ctx, string(m.WinnerColor))
	for _, team := range []ratingdomain.Team{m.Blue, m.Red} {
		for _, p := range team.Participants {
			s.metrics.RecordRatingDelta(ctx, string(p.Position), p.RatingDelta)
		}
	}
}
