package gacha

import (
	"errors"
	"fmt"
	"log"

	"github.com/xtding233/gacha-arena/internal/card"
	"github.com/xtding233/gacha-arena/internal/token"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNilPayer          = errors.New("payer is required")
)

// Payer is debited before a paid draw. TrySpend must check and deduct as one
// indivisible step: it either deducts amount and returns true, or changes
// nothing and returns false.
type Payer interface {
	TrySpend(amount int) bool
}

// Engine rolls cards from a catalog using a rarity table.
type Engine struct {
	catalog *card.Catalog
	table   Table
	rng     RandomSource
	logger  *log.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger routes draw logs to l.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine validates the table and catalog. A nil rng uses DefaultRNG.
func NewEngine(catalog *card.Catalog, table Table, rng RandomSource, opts ...Option) (*Engine, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, card.ErrEmptyCatalog
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	e := &Engine{
		catalog: catalog,
		table:   append(Table(nil), table...),
		rng:     rng,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Catalog returns the catalog the engine draws from.
func (e *Engine) Catalog() *card.Catalog { return e.catalog }

// Table returns a copy of the rarity table.
func (e *Engine) Table() Table { return append(Table(nil), e.table...) }

// Draw charges count*costPerCard to payer and then rolls count cards.
// Either the full cost is deducted and count cards are returned, or nothing
// is deducted and ErrInsufficientFunds is returned. count == 0 is free and
// returns an empty slice without touching payer.
func (e *Engine) Draw(count, costPerCard int, payer Payer) ([]card.Card, error) {
	if err := validateCount(count); err != nil {
		return nil, err
	}
	if count == 0 {
		return []card.Card{}, nil
	}
	if payer == nil {
		return nil, ErrNilPayer
	}
	total, err := token.Token{PerDraw: costPerCard}.TokensForDraws(count)
	if err != nil {
		return nil, fmt.Errorf("price %d draws: %w", count, err)
	}
	if !payer.TrySpend(total) {
		return nil, fmt.Errorf("%w: %d draws cost %d", ErrInsufficientFunds, count, total)
	}
	cards := e.roll(count)
	e.logger.Printf("[gacha] drew %d card(s) for %d", count, total)
	return cards, nil
}

// DrawFree rolls count cards with the same tables as Draw but no currency
// check. It generates opponent hands.
func (e *Engine) DrawFree(count int) []card.Card {
	if count <= 0 {
		return []card.Card{}
	}
	return e.roll(count)
}

// DrawOne rolls a single card.
func (e *Engine) DrawOne() card.Card {
	tier := RollRarity(e.table, e.rng)
	attr := RollAttribute(e.rng)
	pool := e.catalog.Pool(attr, tier.Rarity)
	tpl := pool[e.rng.IntN(len(pool))]
	// the rolled attribute wins over the template's nominal one
	return card.FromTemplate(tpl, attr, tier.Rarity, RollPower(tier, e.rng))
}

func (e *Engine) roll(count int) []card.Card {
	cards := make([]card.Card, 0, count)
	for i := 0; i < count; i++ {
		cards = append(cards, e.DrawOne())
	}
	return cards
}
