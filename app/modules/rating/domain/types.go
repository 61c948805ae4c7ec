package ratingdomain

import (
	"fmt"
	"strings"
)

// Position is a lane/role inside a 5-player team.
type Position string

const (
	PositionTop     Position = "Top"
	PositionJungle  Position = "Jungle"
	PositionMid     Position = "Mid"
	PositionADC     Position = "ADC"
	PositionSupport Position = "Support"
)

// TeamSize is the number of players on each side of a match.
const TeamSize = 5

// Positions lists the roles in team order. Balanced teams are assigned
// positions in this order.
var Positions = [TeamSize]Position{
	PositionTop,
	PositionJungle,
	PositionMid,
	PositionADC,
	PositionSupport,
}

func (p Position) Valid() bool {
	for _, known := range Positions {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePosition accepts a role name case-insensitively.
func ParsePosition(s string) (Position, error) {
	for _, known := range Positions {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", Validationf("unknown position %q", s)
}

// TeamColor identifies a side of a match.
type TeamColor string

const (
	ColorBlue TeamColor = "blue"
	ColorRed  TeamColor = "red"
)

func (c TeamColor) Valid() bool {
	return c == ColorBlue || c == ColorRed
}

func (c TeamColor) Opponent() TeamColor {
	if c == ColorBlue {
		return ColorRed
	}
	return ColorBlue
}

// ParseTeamColor accepts "blue" or "red" case-insensitively.
func ParseTeamColor(s string) (TeamColor, error) {
	c := TeamColor(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", Validationf("unknown team color %q", s)
	}
	return c, nil
}

// KFactorTiers are the per-season K-factors applied after calibration.
type KFactorTiers struct {
	New         int `json:"new" yaml:"new"`
	Regular     int `json:"regular" yaml:"regular"`
	Experienced int `json:"experienced" yaml:"experienced"`
}

// DefaultKFactorTiers are used when a season does not configure its own.
func DefaultKFactorTiers() KFactorTiers {
	return KFactorTiers{New: 32, Regular: 24, Experienced: 16}
}

func (t KFactorTiers) Validate() error {
	if t.New <= 0 || t.Regular <= 0 || t.Experienced <= 0 {
		return Validationf("k-factor tiers must be positive, got %+v", t)
	}
	return nil
}

// PositionFactors multiply the rating change of a player by role.
type PositionFactors map[Position]float64

// DefaultPositionFactors weighs every role equally.
func DefaultPositionFactors() PositionFactors {
	f := make(PositionFactors, len(Positions))
	for _, p := range Positions {
		f[p] = 1.0
	}
	return f
}

// Factor returns the multiplier for p, 1.0 when unset.
func (f PositionFactors) Factor(p Position) float64 {
	if v, ok := f[p]; ok {
		return v
	}
	return 1.0
}

func (f PositionFactors) Validate() error {
	for p, v := range f {
		if !p.Valid() {
			return Validationf("unknown position %q in position factors", p)
		}
		if v <= 0 {
			return Validationf("position factor for %s must be positive, got %v", p, v)
		}
	}
	return nil
}

// SeasonConfig is the rating configuration a season supplies to the calculator.
type SeasonConfig struct {
	KFactorTiers    KFactorTiers
	PositionFactors PositionFactors
}

// DefaultSeasonConfig returns tiers {32, 24, 16} and neutral position factors.
func DefaultSeasonConfig() SeasonConfig {
	return SeasonConfig{
		KFactorTiers:    DefaultKFactorTiers(),
		PositionFactors: DefaultPositionFactors(),
	}
}

func (c SeasonConfig) Validate() error {
	if err := c.KFactorTiers.Validate(); err != nil {
		return err
	}
	if err := c.PositionFactors.Validate(); err != nil {
		return fmt.Errorf("position factors: %w", err)
	}
	return nil
}
