package ratingservice

import (
	"context"
	"errors"
	"strings"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/repositories"
	"github.com/google/uuid"
)

const maxPlayerNameLength = 64

// RegisterPlayer creates a player at the default rating.
func (s *RatingService) RegisterPlayer(ctx context.Context, name string) (PlayerResult, error) {
	name = strings.TrimSpace(name)
	return withTelemetry(s, ctx, "RegisterPlayer", name, func(ctx context.Context) (PlayerResult, error) {
		if name == "" {
			return failure[ratingdomain.Player](ratingdomain.Validationf("player name is required"))
		}
		if len(name) > maxPlayerNameLength {
			return failure[ratingdomain.Player](ratingdomain.Validationf("player name longer than %d characters", maxPlayerNameLength))
		}

		player := ratingdomain.NewPlayer(uuid.New(), name)
		if err := s.repo.CreatePlayer(ctx, nil, ratingdb.PlayerFromDomain(player)); err != nil {
			if errors.Is(err, ratingdb.ErrAlreadyExists) {
				return failure[ratingdomain.Player](ratingdomain.StateConflictf("player %s already exists", player.ID))
			}
			return PlayerResult{}, err
		}
		return success(player)
	})
}

// GetPlayer returns a player's current rating state.
func (s *RatingService) GetPlayer(ctx context.Context, playerID uuid.UUID) (PlayerResult, error) {
	return withTelemetry(s, ctx, "GetPlayer", playerID.String(), func(ctx context.Context) (PlayerResult, error) {
		model, err := s.repo.GetPlayer(ctx, nil, playerID)
		if err != nil {
			if errors.Is(err, ratingdb.ErrNotFound) {
				return failure[ratingdomain.Player](ratingdomain.NotFoundf("player %s not found", playerID))
			}
			return PlayerResult{}, err
		}
		return success(model.ToDomain())
	})
}

// checkPlayerIDs rejects duplicated ids.
func checkPlayerIDs(ids []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return ratingdomain.Validationf("player %s listed more than once", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// missingPlayers lists ids with no loaded player, preserving input order.
func missingPlayers(ids []uuid.UUID, loaded []*ratingdb.Player) []string {
	found := make(map[uuid.UUID]struct{}, len(loaded))
	for _, p := range loaded {
		found[p.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	return missing
}
