package ratingdomain

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
)

// MatchSize is the number of players drawn into a match.
const MatchSize = 2 * TeamSize

// Shuffler permutes n elements through swap, like rand.Shuffle.
type Shuffler func(n int, swap func(i, j int))

// TeamBalancer splits ten players into two teams of similar strength.
type TeamBalancer struct {
	shuffle Shuffler
}

// NewTeamBalancer returns a balancer drawing randomness from shuffle. A nil
// shuffle uses the global math/rand/v2 source.
func NewTeamBalancer(shuffle Shuffler) *TeamBalancer {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	return &TeamBalancer{shuffle: shuffle}
}

// Balance shuffles the players, sorts them by rating descending and snakes
// them over blocks of four: 0 and 3 go blue, 1 and 2 go red. The shuffle
// breaks ties between equal ratings randomly.
func (b *TeamBalancer) Balance(players []PlayerSnapshot) (Team, Team, error) {
	if len(players) != MatchSize {
		return Team{}, Team{}, Validationf("a match needs exactly %d players, got %d", MatchSize, len(players))
	}
	seen := make(map[uuid.UUID]struct{}, len(players))
	for _, p := range players {
		if _, dup := seen[p.ID]; dup {
			return Team{}, Team{}, Validationf("player %s listed more than once", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	pool := slices.Clone(players)
	b.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	slices.SortStableFunc(pool, func(x, y PlayerSnapshot) int {
		return cmp.Compare(y.Rating, x.Rating)
	})

	teamA := make([]PlayerSnapshot, 0, TeamSize)
	teamB := make([]PlayerSnapshot, 0, TeamSize)
	for i, p := range pool {
		switch i % 4 {
		case 0, 3:
			teamA = append(teamA, p)
		default:
			teamB = append(teamB, p)
		}
	}

	blue, err := NewTeam(ColorBlue, teamA)
	if err != nil {
		return Team{}, Team{}, err
	}
	red, err := NewTeam(ColorRed, teamB)
	if err != nil {
		return Team{}, Team{}, err
	}
	blue, red = PairTeams(blue, red)
	return blue, red, nil
}
