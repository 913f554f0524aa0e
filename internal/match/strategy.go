package match

import "github.com/xtding233/gacha-arena/internal/card"

// Strategy picks which opponent card is played next. hand is never empty.
// An out-of-range answer falls back to the first card.
type Strategy interface {
	Name() string
	Choose(hand []card.Card) int
}

// FirstCard always plays the first remaining card.
type FirstCard struct{}

func (FirstCard) Name() string           { return "first" }
func (FirstCard) Choose([]card.Card) int { return 0 }

// StrongestCard plays the highest base power, earliest on ties.
type StrongestCard struct{}

func (StrongestCard) Name() string { return "strongest" }

func (StrongestCard) Choose(hand []card.Card) int {
	best := 0
	for i, c := range hand {
		if c.BasePower > hand[best].BasePower {
			best = i
		}
	}
	return best
}

// StrategyByName resolves a configured strategy name; unknown names give FirstCard.
func StrategyByName(name string) Strategy {
	switch name {
	case StrongestCard{}.Name():
		return StrongestCard{}
	default:
		return FirstCard{}
	}
}
