package card

import "errors"

// ErrEmptyCatalog is returned when a catalog is built without templates.
var ErrEmptyCatalog = errors.New("catalog has no templates")

type poolKey struct {
	attr   Attribute
	rarity Rarity
}

// Catalog is an immutable set of templates indexed for draw lookups.
type Catalog struct {
	all      []Template
	byPair   map[poolKey][]Template
	byRarity map[Rarity][]Template
}

// NewCatalog copies templates into a read-only catalog.
func NewCatalog(templates []Template) (*Catalog, error) {
	if len(templates) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		all:      append([]Template(nil), templates...),
		byPair:   make(map[poolKey][]Template),
		byRarity: make(map[Rarity][]Template),
	}
	for _, t := range c.all {
		k := poolKey{attr: t.Attribute, rarity: t.Rarity}
		c.byPair[k] = append(c.byPair[k], t)
		c.byRarity[t.Rarity] = append(c.byRarity[t.Rarity], t)
	}
	return c, nil
}

// TemplatesFor returns templates matching both attribute and rarity.
func (c *Catalog) TemplatesFor(attr Attribute, rarity Rarity) []Template {
	return clone(c.byPair[poolKey{attr: attr, rarity: rarity}])
}

// TemplatesOfRarity returns templates of the rarity regardless of attribute.
func (c *Catalog) TemplatesOfRarity(rarity Rarity) []Template {
	return clone(c.byRarity[rarity])
}

// All returns every template in load order.
func (c *Catalog) All() []Template {
	return clone(c.all)
}

// Len is the number of templates.
func (c *Catalog) Len() int {
	return len(c.all)
}

// Pool returns the narrowest non-empty candidate pool for a rolled pair:
// exact (attribute, rarity), then any template of the rarity, then all.
// The returned slice is shared; callers must not modify it.
func (c *Catalog) Pool(attr Attribute, rarity Rarity) []Template {
	if pool := c.byPair[poolKey{attr: attr, rarity: rarity}]; len(pool) > 0 {
		return pool
	}
	if pool := c.byRarity[rarity]; len(pool) > 0 {
		return pool
	}
	return c.all
}

// Gaps lists (attribute, rarity) pairs with no exact template.
func (c *Catalog) Gaps() [][2]string {
	var gaps [][2]string
	for _, a := range Attributes() {
		for _, r := range Rarities() {
			if len(c.byPair[poolKey{attr: a, rarity: r}]) == 0 {
				gaps = append(gaps, [2]string{string(a), string(r)})
			}
		}
	}
	return gaps
}

func clone(ts []Template) []Template {
	if len(ts) == 0 {
		return nil
	}
	return append([]Template(nil), ts...)
}
