package ratinghandlers

import (
	"context"

	ratingservice "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/application"
	"github.com/google/uuid"
)

// FakeService implements ratingservice.Service for handler testing.
type FakeService struct {
	trace []string

	RegisterPlayerFunc    func(ctx context.Context, name string) (ratingservice.PlayerResult, error)
	GetPlayerFunc         func(ctx context.Context, playerID uuid.UUID) (ratingservice.PlayerResult, error)
	CreateSeasonFunc      func(ctx context.Context, req ratingservice.CreateSeasonRequest) (ratingservice.SeasonResult, error)
	ActivateSeasonFunc    func(ctx context.Context, seasonID string) (ratingservice.SeasonResult, error)
	EndSeasonFunc         func(ctx context.Context, seasonID string) (ratingservice.SeasonResult, error)
	GetSeasonRankingsFunc func(ctx context.Context, seasonID string) (ratingservice.RankingsResult, error)
	CreateRandomMatchFunc func(ctx context.Context, seasonID string, playerIDs []uuid.UUID) (ratingservice.MatchResult, error)
	ResolveMatchFunc      func(ctx context.Context, req ratingservice.ResolveMatchRequest) (ratingservice.MatchResult, error)
	GetMatchFunc          func(ctx context.Context, matchID uuid.UUID) (ratingservice.MatchResult, error)
	PredictMatchFunc      func(ctx context.Context, blueIDs, redIDs []uuid.UUID) (ratingservice.PredictionResult, error)
}

var _ ratingservice.Service = (*FakeService)(nil)

func NewFakeService() *FakeService {
	return &FakeService{trace: []string{}}
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	return f.trace
}

func (f *FakeService) RegisterPlayer(ctx context.Context, name string) (ratingservice.PlayerResult, error) {
	f.record("RegisterPlayer")
	if f.RegisterPlayerFunc != nil {
		return f.RegisterPlayerFunc(ctx, name)
	}
	return ratingservice.PlayerResult{}, nil
}

func (f *FakeService) GetPlayer(ctx context.Context, playerID uuid.UUID) (ratingservice.PlayerResult, error) {
	f.record("GetPlayer")
	if f.GetPlayerFunc != nil {
		return f.GetPlayerFunc(ctx, playerID)
	}
	return ratingservice.PlayerResult{}, nil
}

func (f *FakeService) CreateSeason(ctx context.Context, req ratingservice.CreateSeasonRequest) (ratingservice.SeasonResult, error) {
	f.record("CreateSeason")
	if f.CreateSeasonFunc != nil {
		return f.CreateSeasonFunc(ctx, req)
	}
	return ratingservice.SeasonResult{}, nil
}

func (f *FakeService) ActivateSeason(ctx context.Context, seasonID string) (ratingservice.SeasonResult, error) {
	f.record("ActivateSeason")
	if f.ActivateSeasonFunc != nil {
		return f.ActivateSeasonFunc(ctx, seasonID)
	}
	return ratingservice.SeasonResult{}, nil
}

func (f *FakeService) EndSeason(ctx context.Context, seasonID string) (ratingservice.SeasonResult, error) {
	f.record("EndSeason")
	if f.EndSeasonFunc != nil {
		return f.EndSeasonFunc(ctx, seasonID)
	}
	return ratingservice.SeasonResult{}, nil
}

func (f *FakeService) GetSeasonRankings(ctx context.Context, seasonID string) (ratingservice.RankingsResult, error) {
	f.record("GetSeasonRankings")
	if f.GetSeasonRankingsFunc != nil {
		return f.GetSeasonRankingsFunc(ctx, seasonID)
	}
	return ratingservice.RankingsResult{}, nil
}

func (f *FakeService) CreateRandomMatch(ctx context.Context, seasonID string, playerIDs []uuid.UUID) (ratingservice.MatchResult, error) {
	f.record("CreateRandomMatch")
	if f.CreateRandomMatchFunc != nil {
		return f.CreateRandomMatchFunc(ctx, seasonID, playerIDs)
	}
	return ratingservice.MatchResult{}, nil
}

func (f *FakeService) ResolveMatch(ctx context.Context, req ratingservice.ResolveMatchRequest) (ratingservice.MatchResult, error) {
	f.record("ResolveMatch")
	if f.ResolveMatchFunc != nil {
		return f.ResolveMatchFunc(ctx, req)
	}
	return ratingservice.MatchResult{}, nil
}

func (f *FakeService) GetMatch(ctx context.Context, matchID uuid.UUID) (ratingservice.MatchResult, error) {
	f.record("GetMatch")
	if f.GetMatchFunc != nil {
		return f.GetMatchFunc(ctx, matchID)
	}
	return ratingservice.MatchResult{}, nil
}

func (f *FakeService) PredictMatch(ctx context.Context, blueIDs, redIDs []uuid.UUID) (ratingservice.PredictionResult, error) {
	f.record("PredictMatch")
	if f.PredictMatchFunc != nil {
		return f.PredictMatchFunc(ctx, blueIDs, redIDs)
	}
	return ratingservice.PredictionResult{}, nil
}
