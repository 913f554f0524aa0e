package gacha

import (
	"testing"

	"github.com/xtding233/gacha-arena/internal/card"
)

func TestRollRarityBounds(t *testing.T) {
	only := Table{
		{Rarity: card.SSR, Weight: 100, MinPower: 9, MaxPower: 10},
		{Rarity: card.SR, Weight: 0, MinPower: 6, MaxPower: 8},
		{Rarity: card.R, Weight: 0, MinPower: 3, MaxPower: 5},
	}
	rng := NewSeededRNG(1)
	for i := 0; i < 1000; i++ {
		if got := RollRarity(only, rng).Rarity; got != card.SSR {
			t.Fatalf("weight 100 should always hit SSR; got %s", got)
		}
	}
	never := Table{
		{Rarity: card.SSR, Weight: 0, MinPower: 9, MaxPower: 10},
		{Rarity: card.SR, Weight: 0, MinPower: 6, MaxPower: 8},
		{Rarity: card.R, Weight: 100, MinPower: 3, MaxPower: 5},
	}
	for i := 0; i < 1000; i++ {
		if got := RollRarity(never, rng).Rarity; got != card.R {
			t.Fatalf("weight 0 tiers must never hit; got %s", got)
		}
	}
}

// boundaryRNG returns fixed IntN results to pin the cumulative range edges.
type boundaryRNG struct{ next int }

func (b boundaryRNG) Float64() float64 { return 0 }
func (b boundaryRNG) IntN(int) int     { return b.next }

func TestRollRarityCumulativeEdges(t *testing.T) {
	table := DefaultTable()
	cases := []struct {
		roll int // 1-based roll; IntN returns roll-1
		want card.Rarity
	}{
		{roll: 1, want: card.SSR},
		{roll: 10, want: card.SSR},
		{roll: 11, want: card.SR},
		{roll: 40, want: card.SR},
		{roll: 41, want: card.R},
		{roll: 100, want: card.R},
	}
	for _, c := range cases {
		if got := RollRarity(table, boundaryRNG{next: c.roll - 1}).Rarity; got != c.want {
			t.Fatalf("roll=%d: got %s want %s", c.roll, got, c.want)
		}
	}
}

func TestRollPowerWithinBand(t *testing.T) {
	rng := NewSeededRNG(7)
	for _, tier := range DefaultTable() {
		seen := map[int]bool{}
		for i := 0; i < 2000; i++ {
			p := RollPower(tier, rng)
			if p < tier.MinPower || p > tier.MaxPower {
				t.Fatalf("%s: power %d outside [%d,%d]", tier.Rarity, p, tier.MinPower, tier.MaxPower)
			}
			seen[p] = true
		}
		// inclusive on both ends
		if !seen[tier.MinPower] || !seen[tier.MaxPower] {
			t.Fatalf("%s: band edges never rolled: %v", tier.Rarity, seen)
		}
	}
	if got := RollPower(Tier{MinPower: 4, MaxPower: 4}, rng); got != 4 {
		t.Fatalf("degenerate band should return min; got %d", got)
	}
}

func TestRarityStatApprox(t *testing.T) {
	const n = 100000
	rng := NewSeededRNG(42)
	table := DefaultTable()
	hits := map[card.Rarity]int{}
	for i := 0; i < n; i++ {
		hits[RollRarity(table, rng).Rarity]++
	}
	for _, tier := range table {
		freq := float64(hits[tier.Rarity]) / n
		want := float64(tier.Weight) / TotalWeight
		// should be around the configured weight
		if diff := freq - want; diff > 0.01 || diff < -0.01 {
			t.Fatalf("%s freq=%f not close to %f", tier.Rarity, freq, want)
		}
	}
}

func TestRollAttributeUniform(t *testing.T) {
	const n = 30000
	rng := NewSeededRNG(3)
	counts := map[card.Attribute]int{}
	for i := 0; i < n; i++ {
		counts[RollAttribute(rng)]++
	}
	for _, a := range card.Attributes() {
		freq := float64(counts[a]) / n
		if diff := freq - 1.0/3; diff > 0.015 || diff < -0.015 {
			t.Fatalf("%s freq=%f not close to 1/3", a, freq)
		}
	}
}

func TestDefaultTableInvariants(t *testing.T) {
	table := DefaultTable()
	if err := table.Validate(); err != nil {
		t.Fatal(err)
	}
	sum := 0
	for _, tier := range table {
		sum += tier.Weight
		if tier.MinPower > tier.MaxPower {
			t.Fatalf("%s: min > max", tier.Rarity)
		}
	}
	if sum != 100 {
		t.Fatalf("weights sum to %d", sum)
	}
	bad := Table{{Rarity: card.SSR, Weight: 50, MinPower: 5, MaxPower: 4}, {Rarity: card.SSR, Weight: 10}}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}
