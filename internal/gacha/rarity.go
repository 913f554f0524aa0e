package gacha

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xtding233/gacha-arena/internal/card"
)

// TotalWeight is the fixed sum of all tier weights; rarity rolls are uniform over 1..TotalWeight.
const TotalWeight = 100

var ErrRarityTable = errors.New("invalid rarity table")

// Tier is one rarity's draw weight and power band.
type Tier struct {
	Rarity   card.Rarity
	Weight   int
	MinPower int
	MaxPower int
}

// Table lists tiers in cumulative order, rarest first.
type Table []Tier

// DefaultTable is SSR 10% power 9-10, SR 30% power 6-8, R 60% power 3-5.
func DefaultTable() Table {
	return Table{
		{Rarity: card.SSR, Weight: 10, MinPower: 9, MaxPower: 10},
		{Rarity: card.SR, Weight: 30, MinPower: 6, MaxPower: 8},
		{Rarity: card.R, Weight: 60, MinPower: 3, MaxPower: 5},
	}
}

// Tier returns the entry for r.
func (t Table) Tier(r card.Rarity) (Tier, bool) {
	for _, tier := range t {
		if tier.Rarity == r {
			return tier, true
		}
	}
	return Tier{}, false
}

// Validate checks weights sum to TotalWeight and every band has min <= max.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no tiers", ErrRarityTable)
	}
	var errs []string
	seen := make(map[card.Rarity]bool, len(t))
	sum := 0
	for i, tier := range t {
		if !tier.Rarity.Valid() {
			errs = append(errs, fmt.Sprintf("tier[%d]: unknown rarity %q", i, tier.Rarity))
		}
		if seen[tier.Rarity] {
			errs = append(errs, fmt.Sprintf("tier[%d]: duplicate rarity %s", i, tier.Rarity))
		}
		seen[tier.Rarity] = true
		if tier.Weight < 0 {
			errs = append(errs, fmt.Sprintf("tier[%d]: weight must be >= 0", i))
		}
		if tier.MinPower < 0 {
			errs = append(errs, fmt.Sprintf("tier[%d]: min power must be >= 0", i))
		}
		if tier.MinPower > tier.MaxPower {
			errs = append(errs, fmt.Sprintf("tier[%d]: min power %d > max power %d", i, tier.MinPower, tier.MaxPower))
		}
		sum += tier.Weight
	}
	if sum != TotalWeight {
		errs = append(errs, fmt.Sprintf("weights sum to %d, want %d", sum, TotalWeight))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrRarityTable, strings.Join(errs, "; "))
	}
	return nil
}
