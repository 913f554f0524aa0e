// Package battle resolves a single card-vs-card comparison.
package battle

import (
	"fmt"

	"github.com/xtding233/gacha-arena/internal/card"
)

// AdvantageBonus is added to the power of a card whose attribute dominates its opponent's.
const AdvantageBonus = 4

// Outcome names which side won.
type Outcome int

const (
	Draw Outcome = iota
	AWins
	BWins
)

func (o Outcome) String() string {
	switch o {
	case AWins:
		return "a_wins"
	case BWins:
		return "b_wins"
	default:
		return "draw"
	}
}

// Flip swaps the perspective of the outcome.
func (o Outcome) Flip() Outcome {
	switch o {
	case AWins:
		return BWins
	case BWins:
		return AWins
	}
	return Draw
}

// Result reports both final powers; on a draw there is no winner or loser.
type Result struct {
	Outcome Outcome
	A, B    card.Card
	PowerA  int
	PowerB  int
}

// Winner returns the winning card, or false on a draw.
func (r Result) Winner() (card.Card, bool) {
	switch r.Outcome {
	case AWins:
		return r.A, true
	case BWins:
		return r.B, true
	}
	return card.Card{}, false
}

// Loser returns the losing card, or false on a draw.
func (r Result) Loser() (card.Card, bool) {
	switch r.Outcome {
	case AWins:
		return r.B, true
	case BWins:
		return r.A, true
	}
	return card.Card{}, false
}

// WinnerPower is the winner's final power; on a draw it is PowerA.
func (r Result) WinnerPower() int {
	if r.Outcome == BWins {
		return r.PowerB
	}
	return r.PowerA
}

// LoserPower is the loser's final power; on a draw it is PowerB.
func (r Result) LoserPower() int {
	if r.Outcome == BWins {
		return r.PowerA
	}
	return r.PowerB
}

func (r Result) String() string {
	w, ok := r.Winner()
	if !ok {
		return fmt.Sprintf("Draw (Power: %d vs %d)", r.PowerA, r.PowerB)
	}
	l, _ := r.Loser()
	return fmt.Sprintf("Winner: %s (Power: %d), Loser: %s (Power: %d)", w.Name, r.WinnerPower(), l.Name, r.LoserPower())
}

// Resolve compares two cards using AdvantageBonus.
func Resolve(a, b card.Card) Result {
	return Rules{Bonus: AdvantageBonus}.Resolve(a, b)
}

// Rules carries the tunable advantage bonus loaded from balance config.
type Rules struct {
	Bonus int
}

// Resolve compares two cards. The dominant attribute gains r.Bonus;
// strictly greater final power wins and equal power is a draw. Pure.
func (r Rules) Resolve(a, b card.Card) Result {
	pa, pb := a.BasePower, b.BasePower
	if a.Attribute.Beats(b.Attribute) {
		pa += r.Bonus
	} else if b.Attribute.Beats(a.Attribute) {
		pb += r.Bonus
	}

	res := Result{A: a, B: b, PowerA: pa, PowerB: pb}
	switch {
	case pa > pb:
		res.Outcome = AWins
	case pb > pa:
		res.Outcome = BWins
	default:
		res.Outcome = Draw
	}
	return res
}
