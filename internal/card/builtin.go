package card

// BuiltinTemplates is the stock card set: ten templates per attribute
// covering every (attribute, rarity) pair.
func BuiltinTemplates() []Template {
	return []Template{
		// fire
		{"Blaze Hound", Fire, R, Beast, "A fast-burning canine, agile but fragile.", "images/blaze_hound.png"},
		{"Flame Hedgehog", Fire, R, Beast, "Defensive spiker that retaliates when hit.", "images/flame_hedgehog.png"},
		{"Ember Archer", Fire, SR, Warrior, "Fires burning arrows from long range.", "images/ember_archer.png"},
		{"Lava Beetle", Fire, SR, Nature, "Molten body grants high resistance.", "images/lava_beetle.png"},
		{"Flame Dancer", Fire, SR, Mage, "Twirls through the battlefield, evasive.", "images/flame_dancer.png"},
		{"Inferno Dragon", Fire, SSR, Beast, "Dominant fire-breather, area burn skill.", "images/inferno_dragon.png"},
		{"Hellfire Knight", Fire, SSR, Warrior, "Rides a fire beast, blends strength & magic.", "images/hellfire_knight.png"},
		{"Solar Fox", Fire, SR, Beast, "Quick-strike card with bonus crit chance.", "images/solar_fox.png"},
		{"Magma Golem", Fire, R, Golem, "Slow but incredibly hard to destroy.", "images/magma_golem.png"},
		{"Ash Phoenix", Fire, SSR, Elemental, "Mythical rebirth card, powerful late-game.", "images/ash_phoenix.png"},
		// grass
		{"Mossback Turtle", Grass, R, Beast, "Tanky turtle with regeneration abilities.", "images/mossback_turtle.png"},
		{"Leaf Pixie", Grass, R, Mage, "Disruptive support unit, specializes in CC.", "images/leaf_pixie.png"},
		{"Vine Hunter", Grass, SR, Warrior, "Archer who tracks with entangling vines.", "images/vine_hunter.png"},
		{"Boomshroom", Grass, SR, Nature, "Explodes on attack, high-risk card.", "images/boomshroom.png"},
		{"Thorn Witch", Grass, SR, Mage, "Specializes in poison and control.", "images/thorn_witch.png"},
		{"Shadow Leopard", Grass, SSR, Beast, "Stealthy predator, double strike ability.", "images/shadow_leopard.png"},
		{"Glimmerhorn King", Grass, SSR, Beast, "King of the field, inspires other cards.", "images/glimmerhorn_king.png"},
		{"Spirit of Forest", Grass, SSR, Elemental, "Legendary support card, heals over time.", "images/spirit_of_forest.png"},
		{"Petal Guardian", Grass, R, Warrior, "Defensive shield unit, ideal for stalling.", "images/petal_guardian.png"},
		{"Prairie Windwolf", Grass, SR, Beast, "Breaks through defense with speed.", "images/prairie_windwolf.png"},
		// water
		{"Bubble Tardigrade", Water, R, Beast, "Cute yet resilient, restores minor HP.", "images/bubble_tardigrade.png"},
		{"Tide Ninja", Water, R, Warrior, "High dodge rate, fast assassin.", "images/tide_ninja.png"},
		{"Ice-scaled Murloc", Water, SR, Beast, "Blocks incoming attacks, counter-ready.", "images/ice_scaled_murloc.png"},
		{"Aqua Sorcerer", Water, SR, Mage, "Area caster, slows enemy cards.", "images/aqua_sorcerer.png"},
		{"Abyssal Tentacle", Water, SR, Nature, "Disrupts and binds opponents in place.", "images/abyssal_tentacle.png"},
		{"Frost Giant", Water, SSR, Elemental, "Slows enemies and freezes the battlefield.", "images/frost_giant.png"},
		{"Sea King Knight", Water, SSR, Warrior, "Leads aquatic troops, aggressive leader.", "images/sea_king_knight.png"},
		{"Snowfang Lynx", Water, SR, Beast, "Fast striker with high crit potential.", "images/snowfang_lynx.png"},
		{"Mystic Codex", Water, R, Mage, "Autonomous water spellcaster.", "images/mystic_codex.png"},
		{"Tidal Leviathan", Water, SSR, Beast, "Devastating waterquake attack, hard to beat.", "images/tidal_leviathan.png"},
	}
}

// Builtin returns the stock catalog.
func Builtin() *Catalog {
	c, err := NewCatalog(BuiltinTemplates())
	if err != nil {
		panic(err)
	}
	return c
}
