package ratingevents

import (
	"errors"
	"time"

	ratingservice "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	"github.com/google/uuid"
)

// CreateMatchRequestedPayloadV1 asks for a balanced random match. An empty
// SeasonID targets the active season.
type CreateMatchRequestedPayloadV1 struct {
	SeasonID  string      `json:"seasonId,omitempty"`
	PlayerIDs []uuid.UUID `json:"playerIds"`
}

// ParticipantV1 is one player's line in a match.
type ParticipantV1 struct {
	PlayerID     uuid.UUID                     `json:"playerId"`
	PlayerName   string                        `json:"playerName"`
	Position     ratingdomain.Position         `json:"position"`
	RatingBefore int                           `json:"ratingBefore"`
	RatingAfter  int                           `json:"ratingAfter"`
	RatingDelta  int                           `json:"ratingDelta"`
	LeftEarly    bool                          `json:"leftEarly,omitempty"`
	Stats        ratingdomain.PerformanceStats `json:"stats"`
	Multipliers  ratingdomain.Multipliers      `json:"multipliers"`
}

type TeamV1 struct {
	Color           ratingdomain.TeamColor `json:"color"`
	AverageRating   float64                `json:"averageRating"`
	ExpectedWinRate float64                `json:"expectedWinRate"`
	Participants    []ParticipantV1        `json:"participants"`
}

// MatchPayloadV1 is a match as published on created and resolved events.
type MatchPayloadV1 struct {
	MatchID     uuid.UUID              `json:"matchId"`
	SeasonID    string                 `json:"seasonId"`
	Blue        TeamV1                 `json:"blue"`
	Red         TeamV1                 `json:"red"`
	WinnerColor ratingdomain.TeamColor `json:"winnerColor,omitempty"`
	Duration    int                    `json:"duration,omitempty"`
	IsRandom    bool                   `json:"isRandom"`
	CreatedAt   time.Time              `json:"createdAt"`
	ResolvedAt  *time.Time             `json:"resolvedAt,omitempty"`
}

// NewMatchPayload converts a domain match.
func NewMatchPayload(m ratingdomain.Match) MatchPayloadV1 {
	return MatchPayloadV1{
		MatchID:     m.ID,
		SeasonID:    m.SeasonID,
		Blue:        newTeam(m.Blue),
		Red:         newTeam(m.Red),
		WinnerColor: m.WinnerColor,
		Duration:    m.Duration,
		IsRandom:    m.IsRandom,
		CreatedAt:   m.CreatedAt,
		ResolvedAt:  m.ResolvedAt,
	}
}

func newTeam(t ratingdomain.Team) TeamV1 {
	out := TeamV1{
		Color:           t.Color,
		AverageRating:   t.AverageRating,
		ExpectedWinRate: t.ExpectedWinRate,
		Participants:    make([]ParticipantV1, 0, len(t.Participants)),
	}
	for _, p := range t.Participants {
		out.Participants = append(out.Participants, ParticipantV1{
			PlayerID:     p.PlayerID,
			PlayerName:   p.PlayerName,
			Position:     p.Position,
			RatingBefore: p.RatingBefore,
			RatingAfter:  p.RatingAfter,
			RatingDelta:  p.RatingDelta,
			LeftEarly:    p.LeftEarly,
			Stats:        p.Stats,
			Multipliers:  p.Multipliers,
		})
	}
	return out
}

// PerformanceV1 is the scoreboard line supplied for one participant.
type PerformanceV1 struct {
	PlayerID  uuid.UUID                     `json:"playerId"`
	Stats     ratingdomain.PerformanceStats `json:"stats"`
	LeftEarly bool                          `json:"leftEarly,omitempty"`
}

// ResolveMatchRequestedPayloadV1 settles a pending match.
type ResolveMatchRequestedPayloadV1 struct {
	MatchID     uuid.UUID       `json:"matchId"`
	WinnerColor string          `json:"winnerColor"`
	Duration    int             `json:"duration"`
	Performance []PerformanceV1 `json:"performance,omitempty"`
}

// Request converts the payload into a service request.
func (p ResolveMatchRequestedPayloadV1) Request() (ratingservice.ResolveMatchRequest, error) {
	winner, err := ratingdomain.ParseTeamColor(p.WinnerColor)
	if err != nil {
		return ratingservice.ResolveMatchRequest{}, err
	}
	records := make([]ratingdomain.PerformanceRecord, 0, len(p.Performance))
	for _, perf := range p.Performance {
		records = append(records, ratingdomain.PerformanceRecord{
			PlayerID:  perf.PlayerID,
			Stats:     perf.Stats,
			LeftEarly: perf.LeftEarly,
		})
	}
	return ratingservice.ResolveMatchRequest{
		MatchID:     p.MatchID,
		Winner:      winner,
		Duration:    p.Duration,
		Performance: records,
	}, nil
}

// PredictMatchRequestedPayloadV1 asks for a forecast of a fixed lineup.
type PredictMatchRequestedPayloadV1 struct {
	BlueIDs []uuid.UUID `json:"blueIds"`
	RedIDs  []uuid.UUID `json:"redIds"`
}

type MatchPredictedPayloadV1 struct {
	BlueIDs    []uuid.UUID              `json:"blueIds"`
	RedIDs     []uuid.UUID              `json:"redIds"`
	Prediction ratingservice.Prediction `json:"prediction"`
}

type EndSeasonRequestedPayloadV1 struct {
	SeasonID string `json:"seasonId"`
}

// SeasonEndedPayloadV1 carries the frozen rankings.
type SeasonEndedPayloadV1 struct {
	SeasonID string                      `json:"seasonId"`
	Name     string                      `json:"name"`
	EndedAt  *time.Time                  `json:"endedAt,omitempty"`
	Rankings []ratingdomain.RankingEntry `json:"rankings"`
}

type ActivateSeasonRequestedPayloadV1 struct {
	SeasonID string `json:"seasonId"`
}

type SeasonActivatedPayloadV1 struct {
	SeasonID string `json:"seasonId"`
	Name     string `json:"name"`
}

// OperationFailedPayloadV1 is published on every *.failed.v1 topic.
type OperationFailedPayloadV1 struct {
	Operation string                 `json:"operation"`
	SeasonID  string                 `json:"seasonId,omitempty"`
	MatchID   *uuid.UUID             `json:"matchId,omitempty"`
	Kind      ratingdomain.ErrorKind `json:"kind"`
	Reason    string                 `json:"reason"`
}

// NewOperationFailed classifies err by its domain kind. Errors without one
// are reported as transaction failures.
func NewOperationFailed(operation string, err error) OperationFailedPayloadV1 {
	kind := ratingdomain.KindTransactionFailed
	var derr *ratingdomain.Error
	if errors.As(err, &derr) && derr.Kind != "" {
		kind = derr.Kind
	}
	return OperationFailedPayloadV1{
		Operation: operation,
		Kind:      kind,
		Reason:    err.Error(),
	}
}
