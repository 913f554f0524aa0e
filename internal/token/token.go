package token

import (
	"errors"
	"math"
)

// ErrCostOverflow reports a draw request whose total price does not fit in an int.
var ErrCostOverflow = errors.New("draw cost overflows")

// ErrNegativePrice reports a negative per-draw price.
var ErrNegativePrice = errors.New("per-draw price must be >= 0")

// Token defines how much soft currency one draw costs.
type Token struct {
	Name    string // e.g. "Gold"
	PerDraw int    // currency per single draw
}

// TokensForDraws returns the currency required for n draws.
// n <= 0 costs nothing. There is no bulk discount: n draws cost n * PerDraw.
func (t Token) TokensForDraws(n int) (int, error) {
	if t.PerDraw < 0 {
		return 0, ErrNegativePrice
	}
	if n <= 0 || t.PerDraw == 0 {
		return 0, nil
	}
	if n > math.MaxInt/t.PerDraw {
		return 0, ErrCostOverflow
	}
	return n * t.PerDraw, nil
}

// Affordable returns how many draws balance can pay for.
func (t Token) Affordable(balance int) int {
	if balance <= 0 || t.PerDraw < 0 {
		return 0
	}
	if t.PerDraw == 0 {
		return math.MaxInt
	}
	return balance / t.PerDraw
}
