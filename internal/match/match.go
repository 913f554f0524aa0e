// Package match runs a multi-round battle between a player hand and an
// equal-size opponent hand.
//
// A Controller is not safe for concurrent use; the owning session must
// serialize calls.
package match

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/gacha-arena/internal/battle"
	"github.com/xtding233/gacha-arena/internal/card"
	"github.com/xtding233/gacha-arena/internal/progression"
)

var (
	ErrInvalidRoundIndex = errors.New("invalid round index")
	ErrNotInProgress     = errors.New("match is not in progress")
	ErrNotCompleted      = errors.New("match is not completed")
	ErrAlreadyStarted    = errors.New("match already started")
	ErrEmptyHand         = errors.New("hand is empty")
	ErrAlreadySettled    = errors.New("match rating already settled")
	ErrShortDeal         = errors.New("opponent hand smaller than player hand")
)

// DefaultOpponent labels the computer-controlled side in match records.
const DefaultOpponent = "Computer"

// State of a match.
type State int

const (
	NotStarted State = iota
	InProgress
	Completed
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	default:
		return "not_started"
	}
}

// Outcome of a completed match from the player's side.
type Outcome int

const (
	Tie Outcome = iota
	PlayerWins
	OpponentWins
)

func (o Outcome) String() string {
	switch o {
	case PlayerWins:
		return "win"
	case OpponentWins:
		return "loss"
	default:
		return "draw"
	}
}

// Dealer produces the opponent hand without charging anyone.
type Dealer interface {
	DrawFree(count int) []card.Card
}

// Rewarder receives per-round progression rewards.
type Rewarder interface {
	ApplyRound(progression.RoundResult) progression.Gain
}

// Rater receives the once-per-match rating delta.
type Rater interface {
	AddRating(delta int)
}

// Score is the running tally.
type Score struct {
	Wins   int // player round wins
	Losses int // opponent round wins
	Draws  int
}

// Round is the log entry for one resolved round.
type Round struct {
	Number        int
	PlayerCard    card.Card
	OpponentCard  card.Card
	PlayerPower   int
	OpponentPower int
	Result        progression.RoundResult
	Gain          progression.Gain
}

// Controller drives one match through NotStarted, InProgress and Completed.
type Controller struct {
	id        string
	opponent  string
	rules     battle.Rules
	strategy  Strategy
	dealer    Dealer
	rewarder  Rewarder
	logger    *log.Logger
	now       func() time.Time
	startedAt time.Time

	state        State
	hand         []card.Card
	opponentHand []card.Card
	score        Score
	rounds       []Round
	settled      bool
}

// Option customizes a Controller.
type Option func(*Controller)

// WithStrategy sets the opponent card selection.
func WithStrategy(s Strategy) Option {
	return func(c *Controller) {
		if s != nil {
			c.strategy = s
		}
	}
}

// WithRules sets the battle rules.
func WithRules(r battle.Rules) Option {
	return func(c *Controller) { c.rules = r }
}

// WithOpponent sets the opponent label.
func WithOpponent(label string) Option {
	return func(c *Controller) {
		if label != "" {
			c.opponent = label
		}
	}
}

// WithLogger routes match logs to l.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a match in the NotStarted state.
func New(rewarder Rewarder, dealer Dealer, opts ...Option) *Controller {
	c := &Controller{
		id:       uuid.NewString(),
		opponent: DefaultOpponent,
		rules:    battle.Rules{Bonus: battle.AdvantageBonus},
		strategy: FirstCard{},
		dealer:   dealer,
		rewarder: rewarder,
		logger:   log.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start establishes the battle hand and deals an equal-size opponent hand.
func (c *Controller) Start(hand []card.Card) error {
	if c.state != NotStarted {
		return ErrAlreadyStarted
	}
	if len(hand) == 0 {
		return ErrEmptyHand
	}
	opp := c.dealer.DrawFree(len(hand))
	if len(opp) < len(hand) {
		return fmt.Errorf("%w: got %d want %d", ErrShortDeal, len(opp), len(hand))
	}
	c.hand = append([]card.Card(nil), hand...)
	c.opponentHand = append([]card.Card(nil), opp[:len(hand)]...)
	c.score = Score{}
	c.rounds = nil
	c.startedAt = c.now()
	c.state = InProgress
	c.logger.Printf("[match] %s started: %d card(s) vs %s (%s)", c.id, len(hand), c.opponent, c.strategy.Name())
	return nil
}

// PlayRound plays the player card at index against the opponent's choice.
// An invalid index leaves every piece of state untouched.
func (c *Controller) PlayRound(index int) (Round, error) {
	if c.state != InProgress {
		return Round{}, ErrNotInProgress
	}
	if index < 0 || index >= len(c.hand) {
		return Round{}, fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidRoundIndex, index, len(c.hand))
	}
	oi := c.strategy.Choose(c.opponentHand)
	if oi < 0 || oi >= len(c.opponentHand) {
		oi = 0
	}

	pc := c.hand[index]
	oc := c.opponentHand[oi]
	c.hand = remove(c.hand, index)
	c.opponentHand = remove(c.opponentHand, oi)

	res := c.rules.Resolve(pc, oc)
	var result progression.RoundResult
	switch res.Outcome {
	case battle.AWins:
		result = progression.RoundWin
		c.score.Wins++
	case battle.BWins:
		result = progression.RoundLoss
		c.score.Losses++
	default:
		result = progression.RoundDraw
		c.score.Draws++
	}

	r := Round{
		Number:        len(c.rounds) + 1,
		PlayerCard:    pc,
		OpponentCard:  oc,
		PlayerPower:   res.PowerA,
		OpponentPower: res.PowerB,
		Result:        result,
	}
	if c.rewarder != nil {
		r.Gain = c.rewarder.ApplyRound(result)
	}
	c.rounds = append(c.rounds, r)

	if len(c.hand) == 0 {
		c.state = Completed
		c.logger.Printf("[match] %s completed %d-%d (%d draw(s)): %s", c.id, c.score.Wins, c.score.Losses, c.score.Draws, c.outcome())
	}
	return r, nil
}

// Settle applies the rating delta to rater. It succeeds once per match.
func (c *Controller) Settle(rater Rater) (int, error) {
	if c.state != Completed {
		return 0, ErrNotCompleted
	}
	if c.settled {
		return 0, ErrAlreadySettled
	}
	delta := c.RatingDelta()
	rater.AddRating(delta)
	c.settled = true
	return delta, nil
}

// Outcome compares the tallies of a completed match.
func (c *Controller) Outcome() (Outcome, error) {
	if c.state != Completed {
		return Tie, ErrNotCompleted
	}
	return c.outcome(), nil
}

func (c *Controller) outcome() Outcome {
	switch {
	case c.score.Wins > c.score.Losses:
		return PlayerWins
	case c.score.Losses > c.score.Wins:
		return OpponentWins
	}
	return Tie
}

// RatingDelta is player round wins minus opponent round wins.
func (c *Controller) RatingDelta() int { return c.score.Wins - c.score.Losses }

func (c *Controller) ID() string           { return c.id }
func (c *Controller) Opponent() string     { return c.opponent }
func (c *Controller) State() State         { return c.state }
func (c *Controller) Score() Score         { return c.score }
func (c *Controller) Settled() bool        { return c.settled }
func (c *Controller) StartedAt() time.Time { return c.startedAt }

// Hand returns a copy of the remaining player hand.
func (c *Controller) Hand() []card.Card { return append([]card.Card{}, c.hand...) }

// OpponentHand returns a copy of the remaining opponent hand.
func (c *Controller) OpponentHand() []card.Card { return append([]card.Card{}, c.opponentHand...) }

// Rounds returns a copy of the round log.
func (c *Controller) Rounds() []Round { return append([]Round{}, c.rounds...) }

func remove(hand []card.Card, i int) []card.Card {
	out := make([]card.Card, 0, len(hand)-1)
	out = append(out, hand[:i]...)
	return append(out, hand[i+1:]...)
}
