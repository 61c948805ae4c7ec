package ratingdomain

import "math"

const (
	// DefaultRating is the rating of a freshly registered player.
	DefaultRating = 1000

	// CalibrationKFactor applies during a player's first CalibrationMatches.
	CalibrationKFactor   = 40
	CalibrationMatches   = 10
	RegularThreshold     = 30
	ExperiencedThreshold = 100

	// ReferenceKFactor is used for predictions, independent of experience.
	ReferenceKFactor = 32

	ratingScale         = 400.0
	performanceBaseline = 3.0
	minPerformance      = 0.5
	maxPerformance      = 1.5
	winStreakBonus      = 0.02
	loseStreakPenalty   = 0.01
	leftEarlyMultiplier = 1.5
)

// ExpectedWinRate is the logistic win probability of a side rated a against a
// side rated b.
func ExpectedWinRate(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/ratingScale))
}

// KFactor picks the K-factor for a player by experience.
func KFactor(matchesPlayed int, tiers KFactorTiers) int {
	switch {
	case matchesPlayed < CalibrationMatches:
		return CalibrationKFactor
	case matchesPlayed < RegularThreshold:
		return tiers.New
	case matchesPlayed < ExperiencedThreshold:
		return tiers.Regular
	default:
		return tiers.Experienced
	}
}

// PerformanceFactor scores a KDA line against a baseline of 3 and clamps it to
// [0.5, 1.5].
func PerformanceFactor(kills, deaths, assists int) float64 {
	kda := float64(kills+assists) / float64(max(1, deaths))
	return clamp(kda/performanceBaseline, minPerformance, maxPerformance)
}

// StreakFactor amplifies gains on a win streak and dampens losses on a losing
// streak. It is not bounded.
func StreakFactor(isWinner bool, winStreak, loseStreak int) float64 {
	if isWinner {
		return 1 + winStreakBonus*float64(winStreak)
	}
	return 1 - loseStreakPenalty*float64(loseStreak)
}

// DeltaInput carries every term of a single player's rating change.
type DeltaInput struct {
	K                 int
	Expected          float64
	Actual            float64
	PositionFactor    float64
	PerformanceFactor float64
	StreakFactor      float64
	LeftEarlyAndLost  bool
}

// RatingDelta returns the signed rating change for one player.
func RatingDelta(in DeltaInput) int {
	raw := float64(in.K) * (in.Actual - in.Expected) * in.PositionFactor * in.PerformanceFactor * in.StreakFactor
	delta := int(math.Round(raw))
	if in.LeftEarlyAndLost {
		delta = int(math.Round(float64(delta) * leftEarlyMultiplier))
	}
	return delta
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
