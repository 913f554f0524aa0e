package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/arena/config
}

func (p Paths) Dir() string {
	return filepath.Join(p.BaseDir, "arena")
}
func (p Paths) DefaultPath() string {
	return filepath.Join(p.Dir(), "default.yaml")
}
func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.Dir(), profile+".yaml")
}

// Files lists the files a profile is built from.
func (p Paths) Files(profile string) []string {
	files := []string{p.DefaultPath()}
	if profile != "" && profile != "default" {
		files = append(files, p.ProfilePath(profile))
	}
	return files
}

// Loader reads YAML configs and merges builtin → default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile, "" for default only
}

// NewLoader creates a config loader with the given base directory. An empty
// directory yields the builtin config.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the file layout the loader reads.
func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges builtin → default → profile (profile optional).
// Missing files are skipped; malformed files are errors.
// It returns the merged RawConfig (without normalization).
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	if strings.ContainsAny(profile, `/\`) || strings.Contains(profile, "..") {
		return RawConfig{}, fmt.Errorf("invalid profile name %q", profile)
	}
	l.mu.RLock()
	if cfg, ok := l.cache[profile]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	merged := Builtin()
	if l.paths.BaseDir != "" {
		for _, path := range l.paths.Files(profile) {
			layer, err := readYAML(path)
			if err != nil {
				return RawConfig{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
			}
			merged = mergeRaw(merged, layer)
		}
	}

	l.mu.Lock()
	l.cache[profile] = merged
	l.mu.Unlock()
	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where set.
// Rarities merge by name; the catalog list is replaced wholesale.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	// top-level scalars
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// draw
	if b.Draw.CostPerCard != nil {
		out.Draw.CostPerCard = b.Draw.CostPerCard
	}
	if b.Draw.BatchSize != nil {
		out.Draw.BatchSize = b.Draw.BatchSize
	}

	out.Rarities = mergeRarities(a.Rarities, b.Rarities)

	if b.Battle.AdvantageBonus != nil {
		out.Battle.AdvantageBonus = b.Battle.AdvantageBonus
	}

	out.Progression = mergeProgression(a.Progression, b.Progression)

	if b.Opponent.Strategy != "" {
		out.Opponent.Strategy = b.Opponent.Strategy
	}
	if b.Opponent.Label != "" {
		out.Opponent.Label = b.Opponent.Label
	}

	if len(b.Catalog) > 0 {
		out.Catalog = append([]TemplateConfig(nil), b.Catalog...)
	}
	return out
}

func mergeRarities(a, b []RarityConfig) []RarityConfig {
	out := append([]RarityConfig(nil), a...)
	for _, r := range b {
		idx := -1
		for i := range out {
			if strings.EqualFold(out[i].Name, r.Name) {
				idx = i
				break
			}
		}
		if idx < 0 {
			out = append(out, r)
			continue
		}
		if r.Weight != nil {
			out[idx].Weight = r.Weight
		}
		if r.MinPower != nil {
			out[idx].MinPower = r.MinPower
		}
		if r.MaxPower != nil {
			out[idx].MaxPower = r.MaxPower
		}
	}
	return out
}

func mergeProgression(a, b *ProgressionConfig) *ProgressionConfig {
	switch {
	case b == nil:
		return a
	case a == nil:
		c := *b
		return &c
	}
	out := *a
	if b.XPPerLevel != nil {
		out.XPPerLevel = b.XPPerLevel
	}
	if b.Curve != "" {
		out.Curve = b.Curve
	}
	if b.LevelBonus != nil {
		out.LevelBonus = b.LevelBonus
	}
	if b.Rewards != nil {
		r := RewardsConfig{}
		if out.Rewards != nil {
			r = *out.Rewards
		}
		r.Win = mergeReward(r.Win, b.Rewards.Win)
		r.Draw = mergeReward(r.Draw, b.Rewards.Draw)
		r.Loss = mergeReward(r.Loss, b.Rewards.Loss)
		out.Rewards = &r
	}
	if b.Defaults != nil {
		d := DefaultsConfig{}
		if out.Defaults != nil {
			d = *out.Defaults
		}
		if b.Defaults.Level != nil {
			d.Level = b.Defaults.Level
		}
		if b.Defaults.XP != nil {
			d.XP = b.Defaults.XP
		}
		if b.Defaults.Currency != nil {
			d.Currency = b.Defaults.Currency
		}
		if b.Defaults.Rating != nil {
			d.Rating = b.Defaults.Rating
		}
		out.Defaults = &d
	}
	return &out
}

func mergeReward(a, b *RewardConfig) *RewardConfig {
	switch {
	case b == nil:
		return a
	case a == nil:
		c := *b
		return &c
	}
	out := *a
	if b.XP != nil {
		out.XP = b.XP
	}
	if b.Currency != nil {
		out.Currency = b.Currency
	}
	return &out
}
