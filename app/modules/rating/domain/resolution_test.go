package ratingdomain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

var flatTiers = KFactorTiers{New: 32, Regular: 32, Experienced: 32}

// pendingMatch builds a match of five 1200-rated blue players (ids 1-5)
// against five 1000-rated red players (ids 6-10).
func pendingMatch(t *testing.T) (Match, map[uuid.UUID]Player) {
	t.Helper()

	players := make(map[uuid.UUID]Player, MatchSize)
	var blueSnap, redSnap []PlayerSnapshot
	for i := 1; i <= MatchSize; i++ {
		p := NewPlayer(testID(i), "p")
		p.MatchesPlayed = 20
		p.Wins = 10
		p.Losses = 10
		if i <= TeamSize {
			p.Rating = 1200
			blueSnap = append(blueSnap, p.Snapshot())
		} else {
			redSnap = append(redSnap, p.Snapshot())
		}
		players[p.ID] = p
	}

	blue, err := NewTeam(ColorBlue, blueSnap)
	if err != nil {
		t.Fatal(err)
	}
	red, err := NewTeam(ColorRed, redSnap)
	if err != nil {
		t.Fatal(err)
	}
	blue, red = PairTeams(blue, red)
	return NewMatch(uuid.New(), "s1", blue, red, false, time.Now()), players
}

func TestResolveMatchAppliesDeltas(t *testing.T) {
	m, players := pendingMatch(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	res, err := ResolveMatch(ResolveInput{
		Match:    m,
		Players:  players,
		Winner:   ColorBlue,
		Duration: 1800,
		Performance: []PerformanceRecord{
			{PlayerID: testID(6), Stats: PerformanceStats{Kills: 3, Deaths: 1}, LeftEarly: true},
		},
		Config:     SeasonConfig{KFactorTiers: flatTiers},
		ResolvedAt: now,
	})
	if err != nil {
		t.Fatalf("ResolveMatch() error = %v", err)
	}

	if res.Match.WinnerColor != ColorBlue || res.Match.Duration != 1800 || res.Match.ResolvedAt == nil || !res.Match.ResolvedAt.Equal(now) {
		t.Fatalf("match not resolved: %+v", res.Match)
	}
	if m.IsResolved() {
		t.Fatal("input match was mutated")
	}

	for _, p := range res.Match.Blue.Participants {
		if p.RatingDelta != 8 || p.RatingAfter != 1208 || p.RatingBefore != 1200 {
			t.Errorf("blue %s: before %d after %d delta %d, want 1200/1208/8", p.PlayerID, p.RatingBefore, p.RatingAfter, p.RatingDelta)
		}
		if p.Multipliers.K != 32 || p.Multipliers.Performance != 1 || p.Multipliers.Streak != 1 || p.Multipliers.Position != 1 {
			t.Errorf("blue %s: unexpected multipliers %+v", p.PlayerID, p.Multipliers)
		}
	}

	for _, p := range res.Match.Red.Participants {
		want := -8
		if p.PlayerID == testID(6) {
			want = -12
			if !p.LeftEarly || p.Stats.Kills != 3 {
				t.Errorf("performance record not merged: %+v", p)
			}
		}
		if p.RatingDelta != want || p.RatingAfter != 1000+want {
			t.Errorf("red %s: delta %d after %d, want %d", p.PlayerID, p.RatingDelta, p.RatingAfter, want)
		}
	}

	if len(res.Players) != MatchSize {
		t.Fatalf("expected %d updated players, got %d", MatchSize, len(res.Players))
	}
	for i, p := range res.Players {
		if i > 0 && res.Players[i-1].ID.String() > p.ID.String() {
			t.Errorf("players not sorted by id")
		}
		if p.MatchesPlayed != 21 {
			t.Errorf("player %s matches = %d, want 21", p.ID, p.MatchesPlayed)
		}
		if err := p.CheckInvariants(); err != nil {
			t.Error(err)
		}
	}
}

func TestResolveMatchUsesLiveRating(t *testing.T) {
	m, players := pendingMatch(t)

	p := players[testID(1)]
	p.Rating = 1300
	players[p.ID] = p

	res, err := ResolveMatch(ResolveInput{Match: m, Players: players, Winner: ColorBlue, Config: SeasonConfig{KFactorTiers: flatTiers}, ResolvedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	entry := res.Match.Blue.Participants[0]
	if entry.RatingBefore != 1300 || entry.RatingAfter != 1308 {
		t.Errorf("expected live rating 1300 -> 1308 with frozen expectation, got %d -> %d", entry.RatingBefore, entry.RatingAfter)
	}
}

func TestResolveMatchErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ResolveInput)
		want   error
	}{
		{
			name: "already resolved",
			mutate: func(in *ResolveInput) {
				in.Match.WinnerColor = ColorRed
			},
			want: ErrStateConflict,
		},
		{
			name:   "bad winner",
			mutate: func(in *ResolveInput) { in.Winner = "green" },
			want:   ErrValidation,
		},
		{
			name:   "negative duration",
			mutate: func(in *ResolveInput) { in.Duration = -1 },
			want:   ErrValidation,
		},
		{
			name: "performance for outsider",
			mutate: func(in *ResolveInput) {
				in.Performance = []PerformanceRecord{{PlayerID: uuid.New()}}
			},
			want: ErrValidation,
		},
		{
			name: "duplicate performance",
			mutate: func(in *ResolveInput) {
				in.Performance = []PerformanceRecord{{PlayerID: testID(1)}, {PlayerID: testID(1)}}
			},
			want: ErrValidation,
		},
		{
			name: "missing player record",
			mutate: func(in *ResolveInput) {
				delete(in.Players, testID(7))
			},
			want: ErrNotFound,
		},
		{
			name: "inconsistent player counters",
			mutate: func(in *ResolveInput) {
				p := in.Players[testID(8)]
				p.Wins++
				in.Players[p.ID] = p
			},
			want: ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, players := pendingMatch(t)
			in := ResolveInput{Match: m, Players: players, Winner: ColorBlue, ResolvedAt: time.Now()}
			tt.mutate(&in)

			_, err := ResolveMatch(in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestResolveMatchRedWins(t *testing.T) {
	m, players := pendingMatch(t)

	res, err := ResolveMatch(ResolveInput{Match: m, Players: players, Winner: ColorRed, Config: SeasonConfig{KFactorTiers: flatTiers}, ResolvedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if res.Match.WinnerColor != ColorRed {
		t.Fatalf("winner = %s, want red", res.Match.WinnerColor)
	}
	if res.Match.Blue.Color != ColorBlue || res.Match.Red.Color != ColorRed {
		t.Fatalf("teams swapped: blue=%s red=%s", res.Match.Blue.Color, res.Match.Red.Color)
	}
	for _, e := range res.Match.Red.Participants {
		if e.RatingDelta <= 0 {
			t.Errorf("red player %s delta = %d, want gain", e.PlayerID, e.RatingDelta)
		}
	}
	for _, e := range res.Match.Blue.Participants {
		if e.RatingDelta >= 0 {
			t.Errorf("blue player %s delta = %d, want loss", e.PlayerID, e.RatingDelta)
		}
	}
	if len(res.Players) != MatchSize {
		t.Errorf("updated players = %d, want %d", len(res.Players), MatchSize)
	}
}
