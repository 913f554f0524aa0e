// Package progression models a player's persistent stats and the rules for
// XP-driven leveling, round rewards and rating.
package progression

import (
	"errors"
	"fmt"
)

// Curve selects how the XP threshold grows with level.
type Curve string

const (
	// CurveLinear needs XPPerLevel*level experience to leave level.
	CurveLinear Curve = "linear"
	// CurveFlat needs XPPerLevel experience at every level.
	CurveFlat Curve = "flat"
)

// RoundResult is a round outcome from the player's side.
type RoundResult int

const (
	RoundLoss RoundResult = iota
	RoundDraw
	RoundWin
)

func (r RoundResult) String() string {
	switch r {
	case RoundWin:
		return "win"
	case RoundDraw:
		return "draw"
	default:
		return "loss"
	}
}

// Reward is granted to the player after a round.
type Reward struct {
	XP       int
	Currency int
}

// Rules is the tunable progression balance.
type Rules struct {
	XPPerLevel int
	Curve      Curve
	LevelBonus int // currency per new level reached
	Win        Reward
	Draw       Reward
	Loss       Reward
	Defaults   Stats // Username is ignored
}

var ErrInvalidRules = errors.New("invalid progression rules")

// DefaultRules returns the stock balance.
func DefaultRules() Rules {
	return Rules{
		XPPerLevel: 100,
		Curve:      CurveLinear,
		LevelBonus: 50,
		Win:        Reward{XP: 10, Currency: 5},
		Draw:       Reward{XP: 2, Currency: 1},
		Loss:       Reward{},
		Defaults:   Stats{Level: 1, XP: 0, Currency: 1000, Rating: 1000},
	}
}

// Validate rejects rules that would stall or corrupt the level loop.
func (r Rules) Validate() error {
	var errs []error
	if r.XPPerLevel < 1 {
		errs = append(errs, fmt.Errorf("xp_per_level must be >= 1, got %d", r.XPPerLevel))
	}
	if r.Curve != CurveLinear && r.Curve != CurveFlat {
		errs = append(errs, fmt.Errorf("unknown xp curve %q", r.Curve))
	}
	if r.LevelBonus < 0 {
		errs = append(errs, fmt.Errorf("level_bonus must be >= 0, got %d", r.LevelBonus))
	}
	for name, rw := range map[string]Reward{"win": r.Win, "draw": r.Draw, "loss": r.Loss} {
		if rw.XP < 0 || rw.Currency < 0 {
			errs = append(errs, fmt.Errorf("%s reward must be non-negative", name))
		}
	}
	if r.Defaults.Level < 1 || r.Defaults.XP < 0 || r.Defaults.Currency < 0 {
		errs = append(errs, errors.New("defaults need level >= 1 and non-negative xp and currency"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidRules, errors.Join(errs...))
}

// Threshold returns the experience needed to leave level.
func (r Rules) Threshold(level int) int {
	if r.Curve == CurveFlat {
		return r.XPPerLevel
	}
	return r.XPPerLevel * level
}

// RewardFor maps a round result to its reward.
func (r Rules) RewardFor(res RoundResult) Reward {
	switch res {
	case RoundWin:
		return r.Win
	case RoundDraw:
		return r.Draw
	default:
		return r.Loss
	}
}
