package gacha

import "github.com/xtding233/gacha-arena/internal/card"

// RollRarity rolls 1..TotalWeight and walks the cumulative ranges:
// roll <= w0 -> tier 0, roll <= w0+w1 -> tier 1, else the last tier.
func RollRarity(t Table, rng RandomSource) Tier {
	if rng == nil {
		rng = DefaultRNG()
	}
	roll := rng.IntN(TotalWeight) + 1
	acc := 0
	for _, tier := range t {
		acc += tier.Weight
		if roll <= acc {
			return tier
		}
	}
	return t[len(t)-1]
}

// RollAttribute picks an attribute uniformly.
func RollAttribute(rng RandomSource) card.Attribute {
	if rng == nil {
		rng = DefaultRNG()
	}
	attrs := card.Attributes()
	return attrs[rng.IntN(len(attrs))]
}

// RollPower is uniform over [MinPower, MaxPower] inclusive.
func RollPower(tier Tier, rng RandomSource) int {
	if rng == nil {
		rng = DefaultRNG()
	}
	span := tier.MaxPower - tier.MinPower + 1
	if span <= 1 {
		return tier.MinPower
	}
	return tier.MinPower + rng.IntN(span)
}
