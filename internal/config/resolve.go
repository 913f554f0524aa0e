// resolve.go
package config

import (
	"fmt"

	"github.com/xtding233/gacha-arena/internal/battle"
	"github.com/xtding233/gacha-arena/internal/card"
	"github.com/xtding233/gacha-arena/internal/gacha"
	"github.com/xtding233/gacha-arena/internal/progression"
)

// Overrides carries process-level overrides applied after every file layer.
type Overrides struct {
	CostPerCard    *int
	BatchSize      *int
	AdvantageBonus *int
	Strategy       *string
}

// Resolver merges builtin → default → profile → overrides into Params.
type Resolver interface {
	Resolve(profile string, o Overrides) (RawConfig, Params, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve loads, validates and normalizes one profile.
func (l *Loader) Resolve(profile string, o Overrides) (RawConfig, Params, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return RawConfig{}, Params{}, err
	}
	raw = applyOverrides(raw, o)
	if err := ValidateRaw(raw); err != nil {
		return RawConfig{}, Params{}, err
	}
	p, err := Normalize(raw)
	if err != nil {
		return RawConfig{}, Params{}, err
	}
	return raw, p, nil
}

func applyOverrides(raw RawConfig, o Overrides) RawConfig {
	if o.CostPerCard != nil {
		raw.Draw.CostPerCard = o.CostPerCard
	}
	if o.BatchSize != nil {
		raw.Draw.BatchSize = o.BatchSize
	}
	if o.AdvantageBonus != nil {
		raw.Battle.AdvantageBonus = o.AdvantageBonus
	}
	if o.Strategy != nil && *o.Strategy != "" {
		raw.Opponent.Strategy = *o.Strategy
	}
	return raw
}

// Normalize turns a validated RawConfig into Params. Unset fields take the
// builtin values.
func Normalize(raw RawConfig) (Params, error) {
	def := progression.DefaultRules()
	p := Params{
		Version:       raw.Version,
		CostPerCard:   intOr(raw.Draw.CostPerCard, DefaultCostPerCard),
		BatchSize:     intOr(raw.Draw.BatchSize, DefaultBatchSize),
		Battle:        battle.Rules{Bonus: intOr(raw.Battle.AdvantageBonus, battle.AdvantageBonus)},
		Progression:   def,
		Strategy:      raw.Opponent.Strategy,
		OpponentLabel: raw.Opponent.Label,
	}

	if len(raw.Rarities) == 0 {
		p.Table = gacha.DefaultTable()
	}
	for _, r := range raw.Rarities {
		name, err := card.ParseRarity(r.Name)
		if err != nil {
			return Params{}, err
		}
		p.Table = append(p.Table, gacha.Tier{
			Rarity:   name,
			Weight:   intOr(r.Weight, 0),
			MinPower: intOr(r.MinPower, 0),
			MaxPower: intOr(r.MaxPower, 0),
		})
	}
	if err := p.Table.Validate(); err != nil {
		return Params{}, err
	}

	if pc := raw.Progression; pc != nil {
		rules := &p.Progression
		rules.XPPerLevel = intOr(pc.XPPerLevel, def.XPPerLevel)
		if pc.Curve != "" {
			rules.Curve = progression.Curve(pc.Curve)
		}
		rules.LevelBonus = intOr(pc.LevelBonus, def.LevelBonus)
		if rw := pc.Rewards; rw != nil {
			rules.Win = reward(rw.Win, def.Win)
			rules.Draw = reward(rw.Draw, def.Draw)
			rules.Loss = reward(rw.Loss, def.Loss)
		}
		if d := pc.Defaults; d != nil {
			rules.Defaults = progression.Stats{
				Level:    intOr(d.Level, def.Defaults.Level),
				XP:       intOr(d.XP, def.Defaults.XP),
				Currency: intOr(d.Currency, def.Defaults.Currency),
				Rating:   intOr(d.Rating, def.Defaults.Rating),
			}
		}
	}
	if err := p.Progression.Validate(); err != nil {
		return Params{}, err
	}

	templates := make([]card.Template, 0, len(raw.Catalog))
	for i, t := range raw.Catalog {
		attr, err := card.ParseAttribute(t.Attribute)
		if err != nil {
			return Params{}, fmt.Errorf("catalog[%d]: %w", i, err)
		}
		rarity, err := card.ParseRarity(t.Rarity)
		if err != nil {
			return Params{}, fmt.Errorf("catalog[%d]: %w", i, err)
		}
		cat, err := card.ParseCategory(t.Category)
		if err != nil {
			return Params{}, fmt.Errorf("catalog[%d]: %w", i, err)
		}
		templates = append(templates, card.Template{
			Name:        t.Name,
			Attribute:   attr,
			Rarity:      rarity,
			Category:    cat,
			Description: t.Description,
			Image:       t.Image,
		})
	}
	catalog, err := card.NewCatalog(templates)
	if err != nil {
		return Params{}, err
	}
	p.Catalog = catalog
	return p, nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func reward(r *RewardConfig, def progression.Reward) progression.Reward {
	if r == nil {
		return def
	}
	return progression.Reward{XP: intOr(r.XP, def.XP), Currency: intOr(r.Currency, def.Currency)}
}
