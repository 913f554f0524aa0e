package config

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/gacha-arena/internal/card"
	"github.com/xtding233/gacha-arena/internal/gacha"
	"github.com/xtding233/gacha-arena/internal/progression"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestBuiltinResolvesToStockBalance(t *testing.T) {
	raw, p, err := NewLoader("").Resolve("", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, BuiltinVersion, raw.Version)
	assert.Equal(t, 10, p.CostPerCard)
	assert.Equal(t, 10, p.BatchSize)
	assert.Equal(t, gacha.DefaultTable(), p.Table)
	assert.Equal(t, 4, p.Battle.Bonus)
	assert.Equal(t, progression.DefaultRules(), p.Progression)
	assert.Equal(t, "first", p.Strategy)
	assert.Equal(t, "Computer", p.OpponentLabel)
	assert.Equal(t, 30, p.Catalog.Len())
}

func TestLayeredOverride(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{BaseDir: dir}
	writeFile(t, paths.DefaultPath(), `
version: "2025.1"
draw:
  cost_per_card: 20
rarities:
  - name: SSR
    weight: 5
  - name: R
    weight: 65
progression:
  level_bonus: 75
  rewards:
    win: {xp: 20}
`)
	writeFile(t, paths.ProfilePath("event"), `
version: "2025.1-event"
draw:
  batch_size: 5
battle:
  advantage_bonus: 2
opponent:
  strategy: strongest
progression:
  xp_curve: flat
`)

	l := NewLoader(dir)
	_, p, err := l.Resolve("event", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "2025.1-event", p.Version)
	assert.Equal(t, 20, p.CostPerCard)
	assert.Equal(t, 5, p.BatchSize)
	assert.Equal(t, 2, p.Battle.Bonus)
	assert.Equal(t, "strongest", p.Strategy)

	ssr, _ := p.Table.Tier(card.SSR)
	r, _ := p.Table.Tier(card.R)
	sr, _ := p.Table.Tier(card.SR)
	assert.Equal(t, gacha.Tier{Rarity: card.SSR, Weight: 5, MinPower: 9, MaxPower: 10}, ssr)
	assert.Equal(t, 65, r.Weight)
	assert.Equal(t, 30, sr.Weight)

	assert.Equal(t, 75, p.Progression.LevelBonus)
	assert.Equal(t, progression.CurveFlat, p.Progression.Curve)
	assert.Equal(t, progression.Reward{XP: 20, Currency: 5}, p.Progression.Win)
	assert.Equal(t, progression.Reward{XP: 2, Currency: 1}, p.Progression.Draw)
	assert.Equal(t, 30, p.Catalog.Len())

	// default profile skips event.yaml
	_, p, err = l.Resolve("", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 10, p.BatchSize)
	assert.Equal(t, 20, p.CostPerCard)
}

func TestCatalogListReplaces(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, Paths{BaseDir: dir}.DefaultPath(), `
catalog:
  - {name: Lone Golem, attribute: grass, rarity: r, category: golem}
`)
	_, p, err := NewLoader(dir).Resolve("", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Catalog.Len())
	assert.Equal(t, "Lone Golem", p.Catalog.All()[0].Name)
	assert.Equal(t, card.Grass, p.Catalog.All()[0].Attribute)
}

func TestOverridesWin(t *testing.T) {
	cost, bonus, strat := 0, 7, "strongest"
	_, p, err := NewLoader("").Resolve("", Overrides{CostPerCard: &cost, AdvantageBonus: &bonus, Strategy: &strat})
	require.NoError(t, err)
	assert.Zero(t, p.CostPerCard)
	assert.Equal(t, 7, p.Battle.Bonus)
	assert.Equal(t, "strongest", p.Strategy)
}

func TestValidateRawCollectsErrors(t *testing.T) {
	raw := Builtin()
	raw.Draw.CostPerCard = ptr(-1)
	raw.Draw.BatchSize = ptr(0)
	raw.Rarities[0].Weight = ptr(50)
	raw.Rarities[1].MinPower = ptr(9)
	raw.Rarities = append(raw.Rarities, RarityConfig{Name: "UR", Weight: ptr(1), MinPower: ptr(1), MaxPower: ptr(1)})
	raw.Progression.XPPerLevel = ptr(0)
	raw.Progression.Curve = "cubic"
	raw.Opponent.Strategy = "psychic"
	raw.Catalog = append(raw.Catalog, TemplateConfig{Name: "", Attribute: "AIR", Rarity: "R", Category: "BEAST"})

	err := ValidateRaw(raw)
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"draw.cost_per_card",
		"draw.batch_size",
		"must sum to 100",
		"min_power must be <= max_power",
		`"UR"`,
		"xp_per_level",
		"xp_curve",
		"opponent.strategy",
		"name is required",
		`"AIR"`,
	} {
		assert.Contains(t, msg, want)
	}

	empty := Builtin()
	empty.Catalog = nil
	assert.ErrorContains(t, ValidateRaw(empty), "catalog must contain")
	require.NoError(t, ValidateRaw(Builtin()))
}

func TestMalformedYAMLIsAnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, Paths{BaseDir: dir}.DefaultPath(), "draw: [not, a, map")
	_, _, err := NewLoader(dir).Resolve("", Overrides{})
	assert.Error(t, err)
}

func TestInvalidProfileName(t *testing.T) {
	_, err := NewLoader(t.TempDir()).LoadMerged("../etc")
	assert.Error(t, err)
}

func TestLoaderCachesUntilInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := Paths{BaseDir: dir}.DefaultPath()
	writeFile(t, path, "draw: {cost_per_card: 11}\n")
	l := NewLoader(dir)
	raw, err := l.LoadMerged("")
	require.NoError(t, err)
	assert.Equal(t, 11, *raw.Draw.CostPerCard)

	writeFile(t, path, "draw: {cost_per_card: 12}\n")
	raw, err = l.LoadMerged("")
	require.NoError(t, err)
	assert.Equal(t, 11, *raw.Draw.CostPerCard)

	l.Invalidate()
	raw, err = l.LoadMerged("")
	require.NoError(t, err)
	assert.Equal(t, 12, *raw.Draw.CostPerCard)
}

func TestWatcherReloadsParams(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{BaseDir: dir}
	writeFile(t, paths.DefaultPath(), "draw: {cost_per_card: 10}\n")

	var mu sync.Mutex
	var got []int
	rl := &Reloader{
		Loader: NewLoader(dir),
		Apply: func(p Params) {
			mu.Lock()
			got = append(got, p.CostPerCard)
			mu.Unlock()
		},
		Logger: log.New(io.Discard, "", 0),
	}
	_, _, err := rl.Loader.Resolve("", Overrides{})
	require.NoError(t, err)

	w, err := NewFileWatcher(paths.Files(""), 20*time.Millisecond, rl.OnChange)
	require.NoError(t, err)
	w.SetLogger(log.New(io.Discard, "", 0))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// invalid config is ignored, then a valid one is applied
	writeFile(t, paths.DefaultPath(), "draw: {cost_per_card: -5}\n")
	time.Sleep(100 * time.Millisecond)
	writeFile(t, paths.DefaultPath(), "draw: {cost_per_card: 25}\n")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1] == 25
	}, 3*time.Second, 20*time.Millisecond)
	mu.Lock()
	assert.NotContains(t, got, -5)
	mu.Unlock()

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherCreatesMissingConfigDir(t *testing.T) {
	paths := Paths{BaseDir: filepath.Join(t.TempDir(), "not", "yet")}
	w, err := NewFileWatcher(paths.Files("ranked"), DefaultDebounce, nil)
	require.NoError(t, err)
	defer w.Close()
	assert.DirExists(t, paths.Dir())
}

func TestLoadSettingsFromEnv(t *testing.T) {
	t.Setenv("ARENA_GRPC_ADDR", "0.0.0.0:9000")
	t.Setenv("ARENA_SEED", "42")
	t.Setenv("ARENA_DRAW_COST", "15")
	t.Setenv("ARENA_WATCH_CONFIG", "false")
	t.Setenv("ARENA_MEMORY_STORE", "true")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", s.GRPCAddr)
	assert.Equal(t, uint64(42), s.Seed)
	assert.False(t, s.WatchConfig)
	assert.True(t, s.MemoryStore)
	assert.Equal(t, "admin", s.AdminUsername)
	require.NotNil(t, s.Overrides().CostPerCard)
	assert.Equal(t, 15, *s.Overrides().CostPerCard)
}

func TestLoadSettingsBadValue(t *testing.T) {
	t.Setenv("ARENA_RATE_BURST", "lots")
	_, err := LoadSettings()
	assert.ErrorContains(t, err, "parse env:")
}
