// Command simulate samples the configured draw tables and reports observed
// frequencies and the cost of reaching a target rarity.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/xtding233/gacha-arena/internal/card"
	"github.com/xtding233/gacha-arena/internal/config"
	"github.com/xtding233/gacha-arena/internal/gacha"
)

func main() {
	var (
		dir     = flag.String("config", "", "config base directory (empty uses builtin balance)")
		profile = flag.String("profile", "", "config profile")
		draws   = flag.Int("draws", 100000, "cards to sample for the distribution")
		trials  = flag.Int("trials", 10000, "Monte Carlo trials")
		target  = flag.String("target", "SSR", "rarity counted as a hit")
		budget  = flag.Int("budget", 10, "draws per trial for the fixed-budget goal")
		seed    = flag.Uint64("seed", 0, "RNG seed (0 uses the crypto source)")
	)
	flag.Parse()
	log.SetFlags(0)

	_, params, err := config.NewLoader(*dir).Resolve(*profile, config.Overrides{})
	if err != nil {
		log.Fatalf("[simulate] %v", err)
	}
	rarity, err := card.ParseRarity(*target)
	if err != nil {
		log.Fatalf("[simulate] %v", err)
	}
	rng := gacha.DefaultRNG()
	if *seed != 0 {
		rng = gacha.NewSeededRNG(*seed)
	}
	engine, err := gacha.NewEngine(params.Catalog, params.Table, rng)
	if err != nil {
		log.Fatalf("[simulate] %v", err)
	}

	d := gacha.Sample(engine, *draws)
	fmt.Fprintf(os.Stdout, "balance %s, %d draws, mean power %.2f\n", params.Version, d.Draws, d.MeanPower)
	for _, r := range card.Rarities() {
		band := d.PowerRange[r]
		fmt.Fprintf(os.Stdout, "  %-3s %6.2f%%  power %d-%d\n", r, 100*d.Frequency(r), band[0], band[1])
	}
	for _, a := range card.Attributes() {
		share := 0.0
		if d.Draws > 0 {
			share = 100 * float64(d.ByAttr[a]) / float64(d.Draws)
		}
		fmt.Fprintf(os.Stdout, "  %-5s %6.2f%%\n", a, share)
	}

	first, err := gacha.RunMonteCarlo(engine, gacha.SimParams{Target: rarity}, gacha.GoalFirstHit, *trials)
	if err != nil {
		log.Fatalf("[simulate] %v", err)
	}
	fmt.Fprintf(os.Stdout, "draws until first %s: mean %.2f p50 %.0f p90 %.0f p99 %.0f (cost at p90: %.0f)\n",
		rarity, first.Mean, first.P50, first.P90, first.P99, first.P90*float64(params.CostPerCard))

	fixed, err := gacha.RunMonteCarlo(engine, gacha.SimParams{Target: rarity, NumDraws: *budget}, gacha.GoalFixedBudget, *trials)
	if err != nil {
		log.Fatalf("[simulate] %v", err)
	}
	fmt.Fprintf(os.Stdout, "%s per %d draws: mean %.2f stddev %.2f\n", rarity, *budget, fixed.Mean, fixed.StdDev)
}
