// Package card defines the collectible card model: elemental attributes,
// rarity tiers, templates and the rolled card values drawn from them.
package card

import (
	"fmt"
	"strings"
)

// Attribute is the elemental type of a card.
type Attribute string

const (
	Fire  Attribute = "FIRE"
	Water Attribute = "WATER"
	Grass Attribute = "GRASS"
)

// beats maps each attribute to the single attribute it dominates.
// FIRE -> GRASS -> WATER -> FIRE forms exactly one 3-cycle.
var beats = map[Attribute]Attribute{
	Fire:  Grass,
	Grass: Water,
	Water: Fire,
}

// Attributes returns every attribute in a stable order.
func Attributes() []Attribute {
	return []Attribute{Fire, Water, Grass}
}

// Valid reports whether a is a known attribute.
func (a Attribute) Valid() bool {
	_, ok := beats[a]
	return ok
}

// Beats reports whether a dominates other. No attribute beats itself.
func (a Attribute) Beats(other Attribute) bool {
	target, ok := beats[a]
	return ok && target == other
}

// ParseAttribute accepts any letter case.
func ParseAttribute(s string) (Attribute, error) {
	a := Attribute(strings.ToUpper(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("unknown attribute %q", s)
	}
	return a, nil
}

// Rarity is a weight class controlling draw probability and power band.
type Rarity string

const (
	SSR Rarity = "SSR"
	SR  Rarity = "SR"
	R   Rarity = "R"
)

// Rarities returns the rarity tiers from rarest to most common. Draw tables
// accumulate weights in this order.
func Rarities() []Rarity {
	return []Rarity{SSR, SR, R}
}

// Valid reports whether r is a known rarity.
func (r Rarity) Valid() bool {
	switch r {
	case SSR, SR, R:
		return true
	}
	return false
}

// ParseRarity accepts any letter case.
func ParseRarity(s string) (Rarity, error) {
	r := Rarity(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown rarity %q", s)
	}
	return r, nil
}

// Category is a cosmetic classification with no gameplay effect.
type Category string

const (
	Beast     Category = "BEAST"
	Warrior   Category = "WARRIOR"
	Nature    Category = "NATURE"
	Mage      Category = "MAGE"
	Elemental Category = "ELEMENTAL"
	Golem     Category = "GOLEM"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case Beast, Warrior, Nature, Mage, Elemental, Golem:
		return true
	}
	return false
}

// ParseCategory accepts any letter case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Template is the catalog entry a card is rolled from. Never mutated after load.
type Template struct {
	Name        string
	Attribute   Attribute
	Rarity      Rarity
	Category    Category
	Description string
	Image       string // image reference for presentation layers
}

// Card is a rolled card value. Two cards from the same template may carry
// different BasePower; cards have no identity beyond their fields.
type Card struct {
	Name        string
	Attribute   Attribute
	Rarity      Rarity
	Category    Category
	Description string
	BasePower   int
}

// FromTemplate builds a card with the template's display metadata and the
// rolled attribute, rarity and power.
func FromTemplate(t Template, attr Attribute, rarity Rarity, power int) Card {
	return Card{
		Name:        t.Name,
		Attribute:   attr,
		Rarity:      rarity,
		Category:    t.Category,
		Description: t.Description,
		BasePower:   power,
	}
}

func (c Card) String() string {
	return fmt.Sprintf("%s [%s/%s] power=%d", c.Name, c.Attribute, c.Rarity, c.BasePower)
}
