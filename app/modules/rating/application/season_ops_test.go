package ratingservice

import (
	"context"
	"testing"
	"time"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	"github.com/google/go-cmp/cmp"
)

func TestRatingService_CreateSeason(t *testing.T) {
	start := fixedNow
	end := fixedNow.AddDate(0, 3, 0)

	tests := []struct {
		name   string
		setup  func(t *testing.T, f *FakeRatingRepository)
		req    CreateSeasonRequest
		verify func(t *testing.T, f *FakeRatingRepository, res SeasonResult)
	}{
		{
			name: "defaults applied",
			req:  CreateSeasonRequest{ID: "2026-spring", StartDate: &start, EndDate: &end},
			verify: func(t *testing.T, f *FakeRatingRepository, res SeasonResult) {
				if !res.IsSuccess() {
					t.Fatalf("expected success, got failure: %v", *res.Failure)
				}
				s := *res.Success
				if s.Name != "2026-spring" || s.IsActive {
					t.Errorf("unexpected season: %+v", s)
				}
				if s.Config.KFactorTiers != ratingdomain.DefaultKFactorTiers() {
					t.Errorf("tiers = %+v", s.Config.KFactorTiers)
				}
				stored, ok := f.seasons["2026-spring"]
				if !ok || stored.IsActive || stored.StartDate == nil || !stored.EndDate.Equal(end) {
					t.Errorf("stored season = %+v", stored)
				}
			},
		},
		{
			name: "custom tiers",
			req: CreateSeasonRequest{ID: "s", Name: "Custom", Config: ratingdomain.SeasonConfig{
				KFactorTiers: ratingdomain.KFactorTiers{New: 40, Regular: 30, Experienced: 20},
			}},
			verify: func(t *testing.T, f *FakeRatingRepository, res SeasonResult) {
				if !res.IsSuccess() || f.seasons["s"].KFactorRegular != 30 {
					t.Fatalf("custom tiers not stored: %+v", res)
				}
			},
		},
		{
			name: "missing id",
			req:  CreateSeasonRequest{ID: " "},
			verify: func(t *testing.T, f *FakeRatingRepository, res SeasonResult) {
				failureIs(t, res.Failure, ratingdomain.ErrValidation)
			},
		},
		{
			name: "ends before it starts",
			req:  CreateSeasonRequest{ID: "s", StartDate: &end, EndDate: &start},
			verify: func(t *testing.T, f *FakeRatingRepository, res SeasonResult) {
				failureIs(t, res.Failure, ratingdomain.ErrValidation)
			},
		},
		{
			name:  "duplicate id",
			setup: func(t *testing.T, f *FakeRatingRepository) { seedSeason(t, f, "s", false) },
			req:   CreateSeasonRequest{ID: "s"},
			verify: func(t *testing.T, f *FakeRatingRepository, res SeasonResult) {
				failureIs(t, res.Failure, ratingdomain.ErrStateConflict)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			svc.now = func() time.Time { return fixedNow }
			if tt.setup != nil {
				tt.setup(t, repo)
			}
			res, err := svc.CreateSeason(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.verify(t, repo, res)
		})
	}
}

func TestRatingService_ActivateSeason(t *testing.T) {
	svc, repo, _ := newTestService()
	seedSeason(t, repo, "s1", true)
	seedSeason(t, repo, "s2", false)

	res, err := svc.ActivateSeason(context.Background(), "s2")
	if err != nil || !res.IsSuccess() || !res.Success.IsActive {
		t.Fatalf("ActivateSeason() = %+v, %v", res, err)
	}
	if repo.seasons["s1"].IsActive || !repo.seasons["s2"].IsActive {
		t.Errorf("active flags s1=%v s2=%v", repo.seasons["s1"].IsActive, repo.seasons["s2"].IsActive)
	}

	res, err = svc.ActivateSeason(context.Background(), "missing")
	if err != nil {
		t.Fatal(err)
	}
	failureIs(t, res.Failure, ratingdomain.ErrNotFound)

	ended := fixedNow
	repo.seasons["s1"].EndedAt = &ended
	res, err = svc.ActivateSeason(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	failureIs(t, res.Failure, ratingdomain.ErrStateConflict)
	if !repo.seasons["s2"].IsActive {
		t.Error("rejected activation changed the active season")
	}
}

// playedSeason resolves one match in s1 where blue (ids 1-5, 1200) beats red
// (ids 6-10, 1000). Player 11 never plays.
func playedSeason(t *testing.T) (*RatingService, *FakeRatingRepository) {
	t.Helper()
	svc, repo, _ := newTestService()
	svc.now = func() time.Time { return fixedNow }
	matchID := setupResolvable(t, repo)
	seedPlayers(t, repo, idRange(11, 11), 1500, 50)

	res, err := svc.ResolveMatch(context.Background(), ResolveMatchRequest{MatchID: matchID, Winner: ratingdomain.ColorBlue, Duration: 1800})
	if err != nil || !res.IsSuccess() {
		t.Fatalf("ResolveMatch() = %+v, %v", res, err)
	}
	return svc, repo
}

func TestRatingService_EndSeason(t *testing.T) {
	svc, repo := playedSeason(t)

	res, err := svc.EndSeason(context.Background(), "s1")
	if err != nil || !res.IsSuccess() {
		t.Fatalf("EndSeason() = %+v, %v", res, err)
	}
	season := *res.Success
	if season.IsActive || season.EndedAt == nil {
		t.Errorf("season not closed: %+v", season)
	}
	if len(season.Rankings) != ratingdomain.MatchSize {
		t.Fatalf("rankings = %d entries, want %d", len(season.Rankings), ratingdomain.MatchSize)
	}
	// Each team moved by the same delta, so the winners share rank 1 and the
	// losers share rank 2.
	for i, r := range season.Rankings {
		wantRank := 1
		if i >= ratingdomain.TeamSize {
			wantRank = 2
		}
		if r.Rank != wantRank {
			t.Errorf("rank %d at position %d, want %d", r.Rank, i, wantRank)
		}
		if r.PlayerID == playerID(11) {
			t.Error("player without matches ranked")
		}
	}
	if top := season.Rankings[0]; top.PlayerID != playerID(1) || top.Rating != 1208 {
		t.Errorf("top entry = %+v", top)
	}
	if last := season.Rankings[9]; last.PlayerID != playerID(10) || last.Rating != 992 {
		t.Errorf("last entry = %+v", last)
	}

	stored := repo.players[playerID(1)]
	if len(stored.SeasonStats) != 1 || stored.SeasonStats[0].SeasonID != "s1" || stored.SeasonStats[0].Rank != 1 {
		t.Errorf("season snapshot not written: %+v", stored.SeasonStats)
	}
	if repo.seasons["s1"].IsActive {
		t.Error("stored season still active")
	}

	frozen := repo.seasons["s1"].Rankings
	again, err := svc.EndSeason(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	failureIs(t, again.Failure, ratingdomain.ErrStateConflict)
	if diff := cmp.Diff(frozen, repo.seasons["s1"].Rankings); diff != "" {
		t.Errorf("rankings changed on second end (-before +after):\n%s", diff)
	}
}

func TestRatingService_EndSeasonErrors(t *testing.T) {
	svc, repo, _ := newTestService()
	seedSeason(t, repo, "idle", false)

	res, err := svc.EndSeason(context.Background(), "idle")
	if err != nil {
		t.Fatal(err)
	}
	failureIs(t, res.Failure, ratingdomain.ErrStateConflict)

	res, err = svc.EndSeason(context.Background(), "missing")
	if err != nil {
		t.Fatal(err)
	}
	failureIs(t, res.Failure, ratingdomain.ErrNotFound)
}

func TestRatingService_GetSeasonRankings(t *testing.T) {
	svc, repo := playedSeason(t)

	live, err := svc.GetSeasonRankings(context.Background(), "s1")
	if err != nil || !live.IsSuccess() {
		t.Fatalf("live rankings = %+v, %v", live, err)
	}
	if len(*live.Success) != ratingdomain.MatchSize || (*live.Success)[0].Rating != 1208 {
		t.Errorf("unexpected live standings: %+v", *live.Success)
	}

	if _, err := svc.EndSeason(context.Background(), "s1"); err != nil {
		t.Fatal(err)
	}
	// Later rating changes must not leak into frozen rankings.
	repo.players[playerID(10)].Rating = 2000

	frozen, err := svc.GetSeasonRankings(context.Background(), "s1")
	if err != nil || !frozen.IsSuccess() {
		t.Fatalf("frozen rankings = %+v, %v", frozen, err)
	}
	if diff := cmp.Diff(*live.Success, *frozen.Success); diff != "" {
		t.Errorf("frozen rankings differ from final standings (-live +frozen):\n%s", diff)
	}

	missing, err := svc.GetSeasonRankings(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	failureIs(t, missing.Failure, ratingdomain.ErrNotFound)
}
