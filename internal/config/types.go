// types.go
package config

import (
	"github.com/xtding233/gacha-arena/internal/battle"
	"github.com/xtding233/gacha-arena/internal/card"
	"github.com/xtding233/gacha-arena/internal/gacha"
	"github.com/xtding233/gacha-arena/internal/progression"
)

// Raw config loaded from YAML. Pointers distinguish "unset" from zero so
// layers can override field by field.
type RawConfig struct {
	Version     string             `yaml:"version"`
	Draw        DrawConfig         `yaml:"draw"`
	Rarities    []RarityConfig     `yaml:"rarities,omitempty"`
	Battle      BattleConfig       `yaml:"battle"`
	Progression *ProgressionConfig `yaml:"progression,omitempty"`
	Opponent    OpponentConfig     `yaml:"opponent"`
	Catalog     []TemplateConfig   `yaml:"catalog,omitempty"`
	Notes       string             `yaml:"notes,omitempty"`
}

type DrawConfig struct {
	CostPerCard *int `yaml:"cost_per_card"`
	BatchSize   *int `yaml:"batch_size"`
}

// RarityConfig layers merge by name.
type RarityConfig struct {
	Name     string `yaml:"name"`
	Weight   *int   `yaml:"weight"`
	MinPower *int   `yaml:"min_power"`
	MaxPower *int   `yaml:"max_power"`
}

type BattleConfig struct {
	AdvantageBonus *int `yaml:"advantage_bonus"`
}

type ProgressionConfig struct {
	XPPerLevel *int            `yaml:"xp_per_level"`
	Curve      string          `yaml:"xp_curve,omitempty"` // "linear" | "flat"
	LevelBonus *int            `yaml:"level_bonus"`
	Rewards    *RewardsConfig  `yaml:"rewards,omitempty"`
	Defaults   *DefaultsConfig `yaml:"defaults,omitempty"`
}

type RewardsConfig struct {
	Win  *RewardConfig `yaml:"win,omitempty"`
	Draw *RewardConfig `yaml:"draw,omitempty"`
	Loss *RewardConfig `yaml:"loss,omitempty"`
}

type RewardConfig struct {
	XP       *int `yaml:"xp"`
	Currency *int `yaml:"currency"`
}

type DefaultsConfig struct {
	Level    *int `yaml:"level"`
	XP       *int `yaml:"xp"`
	Currency *int `yaml:"currency"`
	Rating   *int `yaml:"rating"`
}

type OpponentConfig struct {
	Strategy string `yaml:"strategy,omitempty"` // "first" | "strongest"
	Label    string `yaml:"label,omitempty"`
}

type TemplateConfig struct {
	Name        string `yaml:"name"`
	Attribute   string `yaml:"attribute"`
	Rarity      string `yaml:"rarity"`
	Category    string `yaml:"category"`
	Description string `yaml:"description,omitempty"`
	Image       string `yaml:"image,omitempty"`
}

// Params are the normalized values consumed by the engine and session.
// A Params value is never mutated after Resolve returns it.
type Params struct {
	Version       string // effective config version for tracing
	CostPerCard   int
	BatchSize     int
	Table         gacha.Table
	Battle        battle.Rules
	Progression   progression.Rules
	Strategy      string
	OpponentLabel string
	Catalog       *card.Catalog
}
