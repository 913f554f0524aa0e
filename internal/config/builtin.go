package config

import (
	"github.com/xtding233/gacha-arena/internal/battle"
	"github.com/xtding233/gacha-arena/internal/card"
	"github.com/xtding233/gacha-arena/internal/gacha"
	"github.com/xtding233/gacha-arena/internal/match"
	"github.com/xtding233/gacha-arena/internal/progression"
)

// Stock balance values.
const (
	DefaultCostPerCard = 10
	DefaultBatchSize   = 10
	BuiltinVersion     = "builtin"
)

func ptr[T any](v T) *T { return &v }

// Builtin is the lowest config layer. Every field is set.
func Builtin() RawConfig {
	rules := progression.DefaultRules()
	cfg := RawConfig{
		Version: BuiltinVersion,
		Draw: DrawConfig{
			CostPerCard: ptr(DefaultCostPerCard),
			BatchSize:   ptr(DefaultBatchSize),
		},
		Battle: BattleConfig{AdvantageBonus: ptr(battle.AdvantageBonus)},
		Progression: &ProgressionConfig{
			XPPerLevel: ptr(rules.XPPerLevel),
			Curve:      string(rules.Curve),
			LevelBonus: ptr(rules.LevelBonus),
			Rewards: &RewardsConfig{
				Win:  &RewardConfig{XP: ptr(rules.Win.XP), Currency: ptr(rules.Win.Currency)},
				Draw: &RewardConfig{XP: ptr(rules.Draw.XP), Currency: ptr(rules.Draw.Currency)},
				Loss: &RewardConfig{XP: ptr(rules.Loss.XP), Currency: ptr(rules.Loss.Currency)},
			},
			Defaults: &DefaultsConfig{
				Level:    ptr(rules.Defaults.Level),
				XP:       ptr(rules.Defaults.XP),
				Currency: ptr(rules.Defaults.Currency),
				Rating:   ptr(rules.Defaults.Rating),
			},
		},
		Opponent: OpponentConfig{Strategy: match.FirstCard{}.Name(), Label: match.DefaultOpponent},
	}
	for _, t := range gacha.DefaultTable() {
		cfg.Rarities = append(cfg.Rarities, RarityConfig{
			Name:     string(t.Rarity),
			Weight:   ptr(t.Weight),
			MinPower: ptr(t.MinPower),
			MaxPower: ptr(t.MaxPower),
		})
	}
	for _, t := range card.BuiltinTemplates() {
		cfg.Catalog = append(cfg.Catalog, TemplateConfig{
			Name:        t.Name,
			Attribute:   string(t.Attribute),
			Rarity:      string(t.Rarity),
			Category:    string(t.Category),
			Description: t.Description,
			Image:       t.Image,
		})
	}
	return cfg
}
