package config

import (
	"fmt"
	"strings"

	"github.com/xtding233/gacha-arena/internal/card"
	"github.com/xtding233/gacha-arena/internal/gacha"
	"github.com/xtding233/gacha-arena/internal/progression"
)

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// draw
	if cfg.Draw.CostPerCard != nil && *cfg.Draw.CostPerCard < 0 {
		errs = append(errs, "draw.cost_per_card must be >= 0")
	}
	if cfg.Draw.BatchSize != nil && (*cfg.Draw.BatchSize < 1 || *cfg.Draw.BatchSize > gacha.MaxDrawCount) {
		errs = append(errs, fmt.Sprintf("draw.batch_size must be in [1,%d]", gacha.MaxDrawCount))
	}

	// rarities
	seen := map[card.Rarity]bool{}
	sum := 0
	for i, r := range cfg.Rarities {
		name, err := card.ParseRarity(r.Name)
		if err != nil {
			errs = append(errs, fmt.Sprintf("rarities[%d].name %q is not one of SSR, SR, R", i, r.Name))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Sprintf("rarities[%d]: duplicate rarity %s", i, name))
		}
		seen[name] = true
		if r.Weight == nil || r.MinPower == nil || r.MaxPower == nil {
			errs = append(errs, fmt.Sprintf("rarities[%d] (%s): weight, min_power and max_power are required", i, name))
			continue
		}
		if *r.Weight < 0 {
			errs = append(errs, fmt.Sprintf("rarities[%d] (%s): weight must be >= 0", i, name))
		}
		if *r.MinPower < 0 {
			errs = append(errs, fmt.Sprintf("rarities[%d] (%s): min_power must be >= 0", i, name))
		}
		if *r.MinPower > *r.MaxPower {
			errs = append(errs, fmt.Sprintf("rarities[%d] (%s): min_power must be <= max_power", i, name))
		}
		sum += *r.Weight
	}
	if len(cfg.Rarities) > 0 && sum != gacha.TotalWeight {
		errs = append(errs, fmt.Sprintf("rarities weights must sum to %d, got %d", gacha.TotalWeight, sum))
	}

	// battle
	if cfg.Battle.AdvantageBonus != nil && *cfg.Battle.AdvantageBonus < 0 {
		errs = append(errs, "battle.advantage_bonus must be >= 0")
	}

	// progression
	if p := cfg.Progression; p != nil {
		if p.XPPerLevel != nil && *p.XPPerLevel < 1 {
			errs = append(errs, "progression.xp_per_level must be >= 1")
		}
		switch progression.Curve(p.Curve) {
		case "", progression.CurveLinear, progression.CurveFlat:
		default:
			errs = append(errs, "progression.xp_curve must be one of: linear, flat")
		}
		if p.LevelBonus != nil && *p.LevelBonus < 0 {
			errs = append(errs, "progression.level_bonus must be >= 0")
		}
		if p.Rewards != nil {
			for name, r := range map[string]*RewardConfig{"win": p.Rewards.Win, "draw": p.Rewards.Draw, "loss": p.Rewards.Loss} {
				if r == nil {
					continue
				}
				if (r.XP != nil && *r.XP < 0) || (r.Currency != nil && *r.Currency < 0) {
					errs = append(errs, fmt.Sprintf("progression.rewards.%s must be non-negative", name))
				}
			}
		}
		if d := p.Defaults; d != nil {
			if d.Level != nil && *d.Level < 1 {
				errs = append(errs, "progression.defaults.level must be >= 1")
			}
			if (d.XP != nil && *d.XP < 0) || (d.Currency != nil && *d.Currency < 0) {
				errs = append(errs, "progression.defaults xp and currency must be >= 0")
			}
		}
	}

	// opponent
	switch cfg.Opponent.Strategy {
	case "", "first", "strongest":
	default:
		errs = append(errs, "opponent.strategy must be one of: first, strongest")
	}

	// catalog
	if len(cfg.Catalog) == 0 {
		errs = append(errs, "catalog must contain at least one template")
	}
	for i, t := range cfg.Catalog {
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Sprintf("catalog[%d].name is required", i))
		}
		if _, err := card.ParseAttribute(t.Attribute); err != nil {
			errs = append(errs, fmt.Sprintf("catalog[%d].attribute %q is not one of FIRE, WATER, GRASS", i, t.Attribute))
		}
		if _, err := card.ParseRarity(t.Rarity); err != nil {
			errs = append(errs, fmt.Sprintf("catalog[%d].rarity %q is not one of SSR, SR, R", i, t.Rarity))
		}
		if _, err := card.ParseCategory(t.Category); err != nil {
			errs = append(errs, fmt.Sprintf("catalog[%d].category %q is unknown", i, t.Category))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
