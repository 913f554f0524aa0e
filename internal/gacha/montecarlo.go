package gacha

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/xtding233/gacha-arena/internal/card"
)

// TrialGoal selects what the simulation measures per trial.
type TrialGoal string

const (
	// Draws until the first card of the target rarity.
	GoalFirstHit TrialGoal = "first_hit"
	// Given a fixed budget N, count cards of the target rarity.
	GoalFixedBudget TrialGoal = "fixed_budget"
)

var ErrUnreachable = errors.New("target rarity has zero weight")

// SimParams describes one simulation run.
type SimParams struct {
	Target   card.Rarity // rarity counted as a hit
	NumDraws int         // draws per trial for GoalFixedBudget
}

// Stats summarizes simulation results.
type Stats struct {
	Mean   float64
	Var    float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// Distribution tallies what a batch of draws produced.
type Distribution struct {
	Draws      int
	ByRarity   map[card.Rarity]int
	ByAttr     map[card.Attribute]int
	MeanPower  float64
	PowerRange map[card.Rarity][2]int // observed [min, max] per rarity
}

// Frequency returns the observed share of r.
func (d Distribution) Frequency(r card.Rarity) float64 {
	if d.Draws == 0 {
		return 0
	}
	return float64(d.ByRarity[r]) / float64(d.Draws)
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// Sample draws n free cards and tallies the results.
func Sample(e *Engine, n int) Distribution {
	d := Distribution{
		ByRarity:   make(map[card.Rarity]int),
		ByAttr:     make(map[card.Attribute]int),
		PowerRange: make(map[card.Rarity][2]int),
	}
	var power int
	for i := 0; i < n; i++ {
		c := e.DrawOne()
		d.Draws++
		d.ByRarity[c.Rarity]++
		d.ByAttr[c.Attribute]++
		power += c.BasePower
		band, ok := d.PowerRange[c.Rarity]
		if !ok {
			band = [2]int{c.BasePower, c.BasePower}
		}
		band[0] = min(band[0], c.BasePower)
		band[1] = max(band[1], c.BasePower)
		d.PowerRange[c.Rarity] = band
	}
	if n > 0 {
		d.MeanPower = float64(power) / float64(n)
	}
	return d
}

// simulateOne returns the primary metric for one trial depending on the goal.
func simulateOne(e *Engine, p SimParams, goal TrialGoal) int {
	switch goal {
	case GoalFirstHit:
		draws := 0
		for {
			draws++
			if RollRarity(e.table, e.rng).Rarity == p.Target {
				return draws
			}
		}
	case GoalFixedBudget:
		count := 0
		for i := 0; i < p.NumDraws; i++ {
			if RollRarity(e.table, e.rng).Rarity == p.Target {
				count++
			}
		}
		return count
	}
	return 0
}

// RunMonteCarlo repeats trials and returns summary stats.
func RunMonteCarlo(e *Engine, p SimParams, goal TrialGoal, trials int) (Stats, error) {
	if trials <= 0 {
		return Stats{}, nil
	}
	tier, ok := e.table.Tier(p.Target)
	if !ok {
		return Stats{}, fmt.Errorf("target rarity %q not in table", p.Target)
	}
	if goal == GoalFirstHit && tier.Weight == 0 {
		return Stats{}, ErrUnreachable
	}
	if goal != GoalFirstHit && goal != GoalFixedBudget {
		return Stats{}, fmt.Errorf("unknown goal %q", goal)
	}
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		samples[i] = simulateOne(e, p, goal)
	}
	return calcStats(samples), nil
}
