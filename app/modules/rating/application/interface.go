package ratingservice

import (
	"context"
	"time"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/results"
	"github.com/google/uuid"
)

// Result aliases. A Failure carries a *ratingdomain.Error describing an
// expected business outcome; the accompanying Go error is reserved for
// infrastructure failures.
type (
	PlayerResult     = results.OperationResult[ratingdomain.Player, error]
	MatchResult      = results.OperationResult[ratingdomain.Match, error]
	SeasonResult     = results.OperationResult[ratingdomain.Season, error]
	RankingsResult   = results.OperationResult[[]ratingdomain.RankingEntry, error]
	PredictionResult = results.OperationResult[Prediction, error]
)

// Service is the rating engine's application surface.
type Service interface {
	RegisterPlayer(ctx context.Context, name string) (PlayerResult, error)
	GetPlayer(ctx context.Context, playerID uuid.UUID) (PlayerResult, error)

	CreateSeason(ctx context.Context, req CreateSeasonRequest) (SeasonResult, error)
	ActivateSeason(ctx context.Context, seasonID string) (SeasonResult, error)
	EndSeason(ctx context.Context, seasonID string) (SeasonResult, error)
	GetSeasonRankings(ctx context.Context, seasonID string) (RankingsResult, error)

	CreateRandomMatch(ctx context.Context, seasonID string, playerIDs []uuid.UUID) (MatchResult, error)
	ResolveMatch(ctx context.Context, req ResolveMatchRequest) (MatchResult, error)
	GetMatch(ctx context.Context, matchID uuid.UUID) (MatchResult, error)
	PredictMatch(ctx context.Context, blueIDs, redIDs []uuid.UUID) (PredictionResult, error)
}

// CreateSeasonRequest describes a new season. Zero-valued config fields fall
// back to the defaults.
type CreateSeasonRequest struct {
	ID        string
	Name      string
	Config    ratingdomain.SeasonConfig
	StartDate *time.Time
	EndDate   *time.Time
}

// ResolveMatchRequest settles a pending match.
type ResolveMatchRequest struct {
	MatchID     uuid.UUID
	Winner      ratingdomain.TeamColor
	Duration    int
	Performance []ratingdomain.PerformanceRecord
}

// Prediction is the read-only forecast for a hypothetical lineup.
type Prediction struct {
	BlueWinProbability float64          `json:"blueWinProbability"`
	RedWinProbability  float64          `json:"redWinProbability"`
	PredictedDeltas    []PredictedDelta `json:"predictedDeltas"`
}

// PredictedDelta is what a player would gain or lose at the reference K-factor.
type PredictedDelta struct {
	PlayerID uuid.UUID              `json:"playerId"`
	Team     ratingdomain.TeamColor `json:"team"`
	OnWin    int                    `json:"onWin"`
	OnLoss   int                    `json:"onLoss"`
}
