package ratingdomain

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func testID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

func snapshots(ratings ...int) []PlayerSnapshot {
	out := make([]PlayerSnapshot, 0, len(ratings))
	for i, r := range ratings {
		out = append(out, PlayerSnapshot{ID: testID(i + 1), Name: fmt.Sprintf("player-%d", i+1), Rating: r})
	}
	return out
}

func seeded(seed uint64) Shuffler {
	return rand.New(rand.NewPCG(seed, seed+1)).Shuffle
}

func teamIDs(team Team) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(team.Participants))
	for _, p := range team.Participants {
		ids = append(ids, p.PlayerID)
	}
	return ids
}

func TestBalanceSnakeDraft(t *testing.T) {
	players := snapshots(1000, 1100, 1200, 1300, 1400, 1500, 1600, 1700, 1800, 1900)

	blue, red, err := NewTeamBalancer(seeded(7)).Balance(players)
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}

	// sorted descending: 1900(10) 1800(9) 1700(8) 1600(7) 1500(6) 1400(5) 1300(4) 1200(3) 1100(2) 1000(1)
	wantBlue := []uuid.UUID{testID(10), testID(7), testID(6), testID(3), testID(2)}
	wantRed := []uuid.UUID{testID(9), testID(8), testID(5), testID(4), testID(1)}

	if diff := cmp.Diff(wantBlue, teamIDs(blue)); diff != "" {
		t.Errorf("blue team mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantRed, teamIDs(red)); diff != "" {
		t.Errorf("red team mismatch (-want +got):\n%s", diff)
	}

	if blue.AverageRating != 1460 || red.AverageRating != 1440 {
		t.Errorf("averages = %v / %v, want 1460 / 1440", blue.AverageRating, red.AverageRating)
	}
	if got := blue.ExpectedWinRate + red.ExpectedWinRate; got < 0.999999 || got > 1.000001 {
		t.Errorf("expected win rates sum to %v", got)
	}
	if blue.ExpectedWinRate <= 0.5 {
		t.Errorf("stronger blue team should be favoured, got %v", blue.ExpectedWinRate)
	}

	for i, p := range blue.Participants {
		if p.Position != Positions[i] {
			t.Errorf("blue[%d] position = %s, want %s", i, p.Position, Positions[i])
		}
		if p.RatingBefore == 0 || p.PlayerName == "" {
			t.Errorf("blue[%d] snapshot not captured: %+v", i, p)
		}
	}
}

func TestBalancePartitionsInput(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		players := snapshots(1000, 1000, 1000, 1200, 1200, 900, 1500, 1000, 800, 1000)

		blue, red, err := NewTeamBalancer(seeded(seed)).Balance(players)
		if err != nil {
			t.Fatalf("seed %d: Balance() error = %v", seed, err)
		}
		if len(blue.Participants) != TeamSize || len(red.Participants) != TeamSize {
			t.Fatalf("seed %d: team sizes %d / %d", seed, len(blue.Participants), len(red.Participants))
		}

		got := append(teamIDs(blue), teamIDs(red)...)
		want := make([]uuid.UUID, 0, len(players))
		for _, p := range players {
			want = append(want, p.ID)
		}
		byString := func(a, b uuid.UUID) int {
			if a.String() < b.String() {
				return -1
			}
			if a.String() > b.String() {
				return 1
			}
			return 0
		}
		slices.SortFunc(got, byString)
		slices.SortFunc(want, byString)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("seed %d: union mismatch (-want +got):\n%s", seed, diff)
		}
	}
}

func TestBalanceDoesNotMutateInput(t *testing.T) {
	players := snapshots(1000, 1100, 1200, 1300, 1400, 1500, 1600, 1700, 1800, 1900)
	before := slices.Clone(players)

	if _, _, err := NewTeamBalancer(seeded(3)).Balance(players); err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if diff := cmp.Diff(before, players); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestBalanceRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		players []PlayerSnapshot
	}{
		{"nine players", snapshots(1, 2, 3, 4, 5, 6, 7, 8, 9)},
		{"eleven players", snapshots(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)},
		{"duplicate player", func() []PlayerSnapshot {
			p := snapshots(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
			p[9].ID = p[0].ID
			return p
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewTeamBalancer(nil).Balance(tt.players)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
