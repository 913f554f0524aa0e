package progression

import (
	"sync"

	"github.com/xtding233/gacha-arena/internal/card"
)

// Stats is the durable part of a player.
type Stats struct {
	Username string
	Level    int
	XP       int
	Currency int
	Rating   int
}

// LevelUp records one step of a level cascade.
type LevelUp struct {
	Level int // level reached
	Bonus int // currency granted for reaching it
}

// Gain summarizes what an XP grant did.
type Gain struct {
	XP       int
	Currency int // reward currency, excluding level bonuses
	LevelUps []LevelUp
}

// BonusCurrency sums the level-up bonuses.
func (g Gain) BonusCurrency() int {
	total := 0
	for _, l := range g.LevelUps {
		total += l.Bonus
	}
	return total
}

// Player is safe for concurrent use. Every mutation of stats or the owned
// collection happens under one mutex, so a currency check-and-deduct can not
// interleave with another change to the same player.
type Player struct {
	mu         sync.Mutex
	rules      Rules
	stats      Stats
	collection []card.Card
}

// NewPlayer creates a player with the rule defaults.
func NewPlayer(username string, rules Rules) *Player {
	s := rules.Defaults
	s.Username = username
	return &Player{rules: rules, stats: s}
}

// Restore rebuilds a player from durable stats and collection.
func Restore(stats Stats, cards []card.Card, rules Rules) *Player {
	if stats.Level < 1 {
		stats.Level = 1
	}
	return &Player{
		rules:      rules,
		stats:      stats,
		collection: append([]card.Card(nil), cards...),
	}
}

// Username returns the player's identity.
func (p *Player) Username() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats.Username
}

// Stats returns a snapshot.
func (p *Player) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Rules returns the rules currently applied to this player.
func (p *Player) Rules() Rules {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rules
}

// SetRules swaps in reloaded balance. Existing stats are left as they are.
func (p *Player) SetRules(r Rules) {
	p.mu.Lock()
	p.rules = r
	p.mu.Unlock()
}

// XPToNextLevel is the threshold for the current level.
func (p *Player) XPToNextLevel() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rules.Threshold(p.stats.Level)
}

// AddXP grants experience and applies every level-up it triggers.
// Non-positive amounts are ignored.
func (p *Player) AddXP(amount int) []LevelUp {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addXPLocked(amount)
}

func (p *Player) addXPLocked(amount int) []LevelUp {
	if amount <= 0 {
		return nil
	}
	p.stats.XP += amount
	var ups []LevelUp
	for {
		threshold := p.rules.Threshold(p.stats.Level)
		if threshold < 1 || p.stats.XP < threshold {
			break
		}
		p.stats.XP -= threshold
		p.stats.Level++
		bonus := p.rules.LevelBonus * p.stats.Level
		p.stats.Currency += bonus
		ups = append(ups, LevelUp{Level: p.stats.Level, Bonus: bonus})
	}
	return ups
}

// AddCurrency credits amount. Non-positive amounts are ignored.
func (p *Player) AddCurrency(amount int) {
	if amount <= 0 {
		return
	}
	p.mu.Lock()
	p.stats.Currency += amount
	p.mu.Unlock()
}

// TrySpend deducts amount if the balance covers it.
func (p *Player) TrySpend(amount int) bool {
	if amount < 0 {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stats.Currency < amount {
		return false
	}
	p.stats.Currency -= amount
	return true
}

// AddRating applies a signed delta with no floor or ceiling.
func (p *Player) AddRating(delta int) {
	p.mu.Lock()
	p.stats.Rating += delta
	p.mu.Unlock()
}

// ApplyRound grants the reward for one round result.
func (p *Player) ApplyRound(res RoundResult) Gain {
	p.mu.Lock()
	defer p.mu.Unlock()
	rw := p.rules.RewardFor(res)
	g := Gain{XP: rw.XP, Currency: rw.Currency}
	if rw.Currency > 0 {
		p.stats.Currency += rw.Currency
	}
	g.LevelUps = p.addXPLocked(rw.XP)
	return g
}

// AddCards appends to the owned collection.
func (p *Player) AddCards(cards ...card.Card) {
	p.mu.Lock()
	p.collection = append(p.collection, cards...)
	p.mu.Unlock()
}

// Cards returns a copy of the owned collection in acquisition order.
func (p *Player) Cards() []card.Card {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]card.Card{}, p.collection...)
}

// ClearCards empties the owned collection.
func (p *Player) ClearCards() {
	p.mu.Lock()
	p.collection = nil
	p.mu.Unlock()
}
