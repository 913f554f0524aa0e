package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDominanceIsSingleThreeCycle(t *testing.T) {
	for _, a := range Attributes() {
		assert.False(t, a.Beats(a), "%s must not beat itself", a)
		dominated := 0
		for _, b := range Attributes() {
			relations := 0
			if a.Beats(b) {
				relations++
				dominated++
			}
			if b.Beats(a) {
				relations++
			}
			if a == b {
				relations++
			}
			assert.Equal(t, 1, relations, "%s vs %s", a, b)
		}
		assert.Equal(t, 1, dominated, "%s should beat exactly one attribute", a)
	}

	// walking the cycle from FIRE returns to FIRE in three steps
	cur := Fire
	for i := 0; i < 3; i++ {
		cur = beats[cur]
	}
	assert.Equal(t, Fire, cur)
	assert.True(t, Fire.Beats(Grass))
	assert.True(t, Grass.Beats(Water))
	assert.True(t, Water.Beats(Fire))
}

func TestParseHelpers(t *testing.T) {
	a, err := ParseAttribute(" water ")
	require.NoError(t, err)
	assert.Equal(t, Water, a)

	r, err := ParseRarity("ssr")
	require.NoError(t, err)
	assert.Equal(t, SSR, r)

	c, err := ParseCategory("Golem")
	require.NoError(t, err)
	assert.Equal(t, Golem, c)

	_, err = ParseAttribute("lightning")
	assert.Error(t, err)
	_, err = ParseRarity("UR")
	assert.Error(t, err)
	_, err = ParseCategory("robot")
	assert.Error(t, err)
}

func TestBuiltinCatalogCoversEveryPair(t *testing.T) {
	c := Builtin()
	assert.Equal(t, 30, c.Len())
	assert.Empty(t, c.Gaps())
	for _, a := range Attributes() {
		for _, r := range Rarities() {
			for _, tpl := range c.TemplatesFor(a, r) {
				assert.Equal(t, a, tpl.Attribute)
				assert.Equal(t, r, tpl.Rarity)
				assert.True(t, tpl.Category.Valid())
			}
		}
	}
}

func TestCatalogPoolBroadens(t *testing.T) {
	c, err := NewCatalog([]Template{
		{Name: "Only Fire SSR", Attribute: Fire, Rarity: SSR, Category: Beast},
		{Name: "Only Water R", Attribute: Water, Rarity: R, Category: Mage},
	})
	require.NoError(t, err)

	pool := c.Pool(Fire, SSR)
	require.Len(t, pool, 1)
	assert.Equal(t, "Only Fire SSR", pool[0].Name)

	// attribute ignored
	pool = c.Pool(Grass, SSR)
	require.Len(t, pool, 1)
	assert.Equal(t, "Only Fire SSR", pool[0].Name)

	// rarity ignored too
	pool = c.Pool(Grass, SR)
	assert.Len(t, pool, 2)

	assert.Len(t, c.Gaps(), 7)
}

func TestCatalogIsImmutable(t *testing.T) {
	src := []Template{{Name: "A", Attribute: Fire, Rarity: R, Category: Beast}}
	c, err := NewCatalog(src)
	require.NoError(t, err)

	src[0].Name = "mutated"
	got := c.All()
	got[0].Name = "also mutated"
	assert.Equal(t, "A", c.All()[0].Name)

	_, err = NewCatalog(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestFromTemplateUsesRolledAttribute(t *testing.T) {
	tpl := Template{Name: "Blaze Hound", Attribute: Fire, Rarity: R, Category: Beast, Description: "d"}
	c := FromTemplate(tpl, Water, SR, 7)
	assert.Equal(t, Card{Name: "Blaze Hound", Attribute: Water, Rarity: SR, Category: Beast, Description: "d", BasePower: 7}, c)
}
