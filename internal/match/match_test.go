package match

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/gacha-arena/internal/card"
	"github.com/xtding233/gacha-arena/internal/gacha"
	"github.com/xtding233/gacha-arena/internal/progression"
)

type fixedDealer struct{ cards []card.Card }

func (d fixedDealer) DrawFree(n int) []card.Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	return append([]card.Card(nil), d.cards[:n]...)
}

func fire(name string, power int) card.Card {
	return card.Card{Name: name, Attribute: card.Fire, Rarity: card.R, Category: card.Beast, BasePower: power}
}

func quiet() Option { return WithLogger(log.New(io.Discard, "", 0)) }

// sevenOneTwo builds hands where playing index 0 each round yields
// seven wins, one draw and two losses.
func sevenOneTwo() (player, opponent []card.Card) {
	for i := 0; i < 7; i++ {
		player = append(player, fire("p", 9))
		opponent = append(opponent, fire("o", 3))
	}
	player = append(player, fire("p", 5))
	opponent = append(opponent, fire("o", 5))
	for i := 0; i < 2; i++ {
		player = append(player, fire("p", 3))
		opponent = append(opponent, fire("o", 9))
	}
	return player, opponent
}

func TestMatchEndToEndSevenOneTwo(t *testing.T) {
	p := progression.NewPlayer("alice", progression.DefaultRules())
	hand, opp := sevenOneTwo()
	m := New(p, fixedDealer{opp}, quiet())
	assert.Equal(t, NotStarted, m.State())

	require.NoError(t, m.Start(hand))
	assert.Equal(t, InProgress, m.State())
	assert.Len(t, m.OpponentHand(), len(hand))

	for len(m.Hand()) > 0 {
		_, err := m.PlayRound(0)
		require.NoError(t, err)
	}
	assert.Equal(t, Completed, m.State())
	assert.Equal(t, Score{Wins: 7, Losses: 2, Draws: 1}, m.Score())

	out, err := m.Outcome()
	require.NoError(t, err)
	assert.Equal(t, PlayerWins, out)

	delta, err := m.Settle(p)
	require.NoError(t, err)
	assert.Equal(t, 5, delta)

	s := p.Stats()
	assert.Equal(t, 1005, s.Rating)
	assert.Equal(t, 72, s.XP)
	assert.Equal(t, 1036, s.Currency)
	assert.Equal(t, 1, s.Level)

	_, err = m.Settle(p)
	assert.ErrorIs(t, err, ErrAlreadySettled)
	assert.Equal(t, 1005, p.Stats().Rating)
	assert.Len(t, m.Rounds(), 10)
}

func TestPlayRoundInvalidIndexMutatesNothing(t *testing.T) {
	p := progression.NewPlayer("a", progression.DefaultRules())
	hand, opp := sevenOneTwo()
	m := New(p, fixedDealer{opp}, quiet())
	require.NoError(t, m.Start(hand))

	before := p.Stats()
	for _, idx := range []int{-1, len(hand), 99} {
		_, err := m.PlayRound(idx)
		assert.ErrorIs(t, err, ErrInvalidRoundIndex)
	}
	assert.Equal(t, hand, m.Hand())
	assert.Equal(t, opp, m.OpponentHand())
	assert.Equal(t, Score{}, m.Score())
	assert.Empty(t, m.Rounds())
	assert.Equal(t, before, p.Stats())
}

func TestPlayRoundRemovesChosenCards(t *testing.T) {
	hand := []card.Card{fire("a", 3), fire("b", 9), fire("c", 5)}
	opp := []card.Card{fire("x", 4), fire("y", 4), fire("z", 4)}
	m := New(nil, fixedDealer{opp}, quiet())
	require.NoError(t, m.Start(hand))

	r, err := m.PlayRound(1)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Number)
	assert.Equal(t, "b", r.PlayerCard.Name)
	assert.Equal(t, "x", r.OpponentCard.Name)
	assert.Equal(t, progression.RoundWin, r.Result)
	assert.Equal(t, []card.Card{fire("a", 3), fire("c", 5)}, m.Hand())
	assert.Equal(t, []card.Card{fire("y", 4), fire("z", 4)}, m.OpponentHand())
}

func TestAdvantageAppliedInRound(t *testing.T) {
	water := card.Card{Name: "w", Attribute: card.Water, Rarity: card.R, BasePower: 3}
	m := New(nil, fixedDealer{[]card.Card{fire("f", 6)}}, quiet())
	require.NoError(t, m.Start([]card.Card{water}))
	r, err := m.PlayRound(0)
	require.NoError(t, err)
	assert.Equal(t, 7, r.PlayerPower)
	assert.Equal(t, 6, r.OpponentPower)
	assert.Equal(t, progression.RoundWin, r.Result)
}

func TestStateGuards(t *testing.T) {
	m := New(nil, fixedDealer{[]card.Card{fire("o", 1)}}, quiet())
	_, err := m.PlayRound(0)
	assert.ErrorIs(t, err, ErrNotInProgress)
	_, err = m.Outcome()
	assert.ErrorIs(t, err, ErrNotCompleted)
	_, err = m.Settle(progression.NewPlayer("a", progression.DefaultRules()))
	assert.ErrorIs(t, err, ErrNotCompleted)

	assert.ErrorIs(t, m.Start(nil), ErrEmptyHand)
	assert.ErrorIs(t, m.Start([]card.Card{fire("a", 1), fire("b", 1)}), ErrShortDeal)
	assert.Equal(t, NotStarted, m.State())

	require.NoError(t, m.Start([]card.Card{fire("a", 1)}))
	assert.ErrorIs(t, m.Start([]card.Card{fire("a", 1)}), ErrAlreadyStarted)

	_, err = m.PlayRound(0)
	require.NoError(t, err)
	_, err = m.PlayRound(0)
	assert.ErrorIs(t, err, ErrNotInProgress)

	out, err := m.Outcome()
	require.NoError(t, err)
	assert.Equal(t, Tie, out)
}

func TestNegativeRatingDelta(t *testing.T) {
	p := progression.NewPlayer("a", progression.DefaultRules())
	hand := []card.Card{fire("a", 3), fire("b", 3)}
	m := New(p, fixedDealer{[]card.Card{fire("x", 9), fire("y", 9)}}, quiet())
	require.NoError(t, m.Start(hand))
	for len(m.Hand()) > 0 {
		_, err := m.PlayRound(0)
		require.NoError(t, err)
	}
	out, _ := m.Outcome()
	assert.Equal(t, OpponentWins, out)
	delta, err := m.Settle(p)
	require.NoError(t, err)
	assert.Equal(t, -2, delta)
	assert.Equal(t, 998, p.Stats().Rating)
	assert.Equal(t, 1000, p.Stats().Currency)
}

func TestStrongestCardStrategy(t *testing.T) {
	opp := []card.Card{fire("x", 3), fire("y", 9), fire("z", 9)}
	m := New(nil, fixedDealer{opp}, WithStrategy(StrongestCard{}), quiet())
	require.NoError(t, m.Start([]card.Card{fire("a", 1), fire("b", 1), fire("c", 1)}))
	r, err := m.PlayRound(0)
	require.NoError(t, err)
	assert.Equal(t, "y", r.OpponentCard.Name)

	assert.Equal(t, "strongest", StrategyByName("strongest").Name())
	assert.Equal(t, "first", StrategyByName("unknown").Name())
}

type outOfRange struct{}

func (outOfRange) Name() string           { return "broken" }
func (outOfRange) Choose([]card.Card) int { return 42 }

func TestBrokenStrategyFallsBackToFirst(t *testing.T) {
	m := New(nil, fixedDealer{[]card.Card{fire("x", 1), fire("y", 1)}}, WithStrategy(outOfRange{}), quiet())
	require.NoError(t, m.Start([]card.Card{fire("a", 1), fire("b", 1)}))
	r, err := m.PlayRound(0)
	require.NoError(t, err)
	assert.Equal(t, "x", r.OpponentCard.Name)
}

func TestMatchWithEngineDealer(t *testing.T) {
	e, err := gacha.NewEngine(card.Builtin(), gacha.DefaultTable(), gacha.NewSeededRNG(5), gacha.WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, err)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := New(nil, e, quiet(), WithClock(func() time.Time { return at }), WithOpponent("Bot"))
	require.NoError(t, m.Start(e.DrawFree(10)))
	assert.Len(t, m.OpponentHand(), 10)
	assert.Equal(t, at, m.StartedAt())
	assert.Equal(t, "Bot", m.Opponent())
	assert.NotEmpty(t, m.ID())
}
