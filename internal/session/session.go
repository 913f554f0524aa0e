package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xtding233/gacha-arena/internal/card"
	"github.com/xtding233/gacha-arena/internal/match"
	"github.com/xtding233/gacha-arena/internal/progression"
	"github.com/xtding233/gacha-arena/internal/storage"
	"github.com/xtding233/gacha-arena/internal/token"
)

// Session is one logged-in client. Match calls are serialized by the
// session; currency is guarded by the shared player.
type Session struct {
	svc     *Service
	token   string
	account storage.Account
	player  *progression.Player

	mu    sync.Mutex
	match *match.Controller
}

func (s *Session) Token() string            { return s.token }
func (s *Session) Username() string         { return s.account.Username }
func (s *Session) IsAdmin() bool            { return s.account.Admin }
func (s *Session) Stats() progression.Stats { return s.player.Stats() }
func (s *Session) OwnedCards() []card.Card  { return s.player.Cards() }
func (s *Session) XPToNextLevel() int       { return s.player.XPToNextLevel() }

// AffordableDraws is how many cards the balance buys at the current cost.
func (s *Session) AffordableDraws() int {
	cost := s.svc.current().params.CostPerCard
	return token.Token{PerDraw: cost}.Affordable(s.player.Stats().Currency)
}

// Draw buys count cards at the current per-card cost. On
// gacha.ErrInsufficientFunds nothing changed. A *PersistenceError comes with
// the drawn cards, which are already in the in-memory collection.
func (s *Session) Draw(ctx context.Context, count int) ([]card.Card, error) {
	snap := s.svc.current()
	cards, err := snap.engine.Draw(count, snap.params.CostPerCard, s.player)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return cards, nil
	}
	s.player.AddCards(cards...)
	s.svc.logger.Printf("[session] %s drew %d card(s), balance %d", s.Username(), len(cards), s.player.Stats().Currency)
	return cards, s.checkpointDraw(ctx, cards)
}

func (s *Session) checkpointDraw(ctx context.Context, cards []card.Card) error {
	svc := s.svc
	at := svc.now().UTC()
	return errors.Join(
		svc.persist(ctx, "append cards", func(ctx context.Context) error {
			return svc.store.AppendCards(ctx, s.Username(), cards, at)
		}),
		svc.saveStats(ctx, s.player),
	)
}

// StartMatch begins a match with the owned cards at indices, in that order.
func (s *Session) StartMatch(ctx context.Context, indices []int) error {
	owned := s.player.Cards()
	if len(indices) == 0 {
		return fmt.Errorf("%w: select at least one card", ErrInvalidSelection)
	}
	seen := make(map[int]bool, len(indices))
	hand := make([]card.Card, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(owned) {
			return fmt.Errorf("%w: index %d not in [0,%d)", ErrInvalidSelection, i, len(owned))
		}
		if seen[i] {
			return fmt.Errorf("%w: index %d selected twice", ErrInvalidSelection, i)
		}
		seen[i] = true
		hand = append(hand, owned[i])
	}
	return s.startMatch(hand)
}

// DrawAndBattle draws a batch and starts a match with exactly that batch.
// count <= 0 uses the configured batch size.
func (s *Session) DrawAndBattle(ctx context.Context, count int) ([]card.Card, error) {
	if count <= 0 {
		count = s.svc.current().params.BatchSize
	}
	s.mu.Lock()
	busy := s.match != nil && s.match.State() == match.InProgress
	s.mu.Unlock()
	if busy {
		return nil, match.ErrAlreadyStarted
	}
	cards, err := s.Draw(ctx, count)
	if err != nil && !IsPersistence(err) {
		return nil, err
	}
	if startErr := s.startMatch(cards); startErr != nil {
		return cards, startErr
	}
	return cards, err
}

func (s *Session) startMatch(hand []card.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match != nil && s.match.State() == match.InProgress {
		return match.ErrAlreadyStarted
	}
	snap := s.svc.current()
	m := match.New(s.player, snap.engine,
		match.WithRules(snap.params.Battle),
		match.WithStrategy(match.StrategyByName(snap.params.Strategy)),
		match.WithOpponent(snap.params.OpponentLabel),
		match.WithLogger(s.svc.logger),
		match.WithClock(s.svc.now),
	)
	if err := m.Start(hand); err != nil {
		return err
	}
	s.match = m
	return nil
}

// RoundReport is the result of one PlayRound call.
type RoundReport struct {
	Round       match.Round
	Score       match.Score
	State       match.State
	Completed   bool
	Outcome     match.Outcome // set when Completed
	RatingDelta int           // set when Completed
}

// PlayRound plays the hand card at index. When the hand empties the rating
// delta is applied once and the match is recorded; a *PersistenceError may
// accompany a valid report.
func (s *Session) PlayRound(ctx context.Context, index int) (RoundReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match == nil {
		return RoundReport{}, ErrNoMatch
	}
	m := s.match
	r, err := m.PlayRound(index)
	if err != nil {
		return RoundReport{}, err
	}
	for _, up := range r.Gain.LevelUps {
		s.svc.logger.Printf("[session] %s reached level %d (+%d)", s.Username(), up.Level, up.Bonus)
	}
	rep := RoundReport{Round: r, Score: m.Score(), State: m.State()}
	if m.State() != match.Completed {
		return rep, nil
	}

	delta, err := m.Settle(s.player)
	if err != nil {
		return rep, err
	}
	out, _ := m.Outcome()
	rep.Completed = true
	rep.Outcome = out
	rep.RatingDelta = delta
	return rep, s.checkpointMatch(ctx, m)
}

func (s *Session) checkpointMatch(ctx context.Context, m *match.Controller) error {
	svc := s.svc
	score := m.Score()
	rec := storage.MatchRecord{
		ID:       m.ID(),
		Username: s.Username(),
		Opponent: m.Opponent(),
		Wins:     score.Wins,
		Losses:   score.Losses,
		Draws:    score.Draws,
		PlayedAt: svc.now().UTC(),
	}
	return errors.Join(
		svc.persist(ctx, "append match", func(ctx context.Context) error {
			return svc.store.AppendMatch(ctx, rec)
		}),
		svc.saveStats(ctx, s.player),
	)
}

// MatchView is a read-only snapshot of the session's match.
type MatchView struct {
	ID            string
	State         match.State
	Opponent      string
	Hand          []card.Card
	OpponentCards int
	Score         match.Score
	Rounds        []match.Round
	Outcome       match.Outcome // valid when State is Completed
}

// Match returns the current or last match.
func (s *Session) Match() (MatchView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match == nil {
		return MatchView{}, ErrNoMatch
	}
	m := s.match
	v := MatchView{
		ID:            m.ID(),
		State:         m.State(),
		Opponent:      m.Opponent(),
		Hand:          m.Hand(),
		OpponentCards: len(m.OpponentHand()),
		Score:         m.Score(),
		Rounds:        m.Rounds(),
	}
	if out, err := m.Outcome(); err == nil {
		v.Outcome = out
	}
	return v, nil
}

// Hand lists the remaining player hand.
func (s *Session) Hand() ([]card.Card, error) {
	v, err := s.Match()
	if err != nil {
		return nil, err
	}
	return v.Hand, nil
}

// Score returns the running tally.
func (s *Session) Score() (match.Score, error) {
	v, err := s.Match()
	if err != nil {
		return match.Score{}, err
	}
	return v.Score, nil
}

// Outcome returns the result of a completed match.
func (s *Session) Outcome() (match.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match == nil {
		return match.Tie, ErrNoMatch
	}
	return s.match.Outcome()
}

// History lists this player's matches, newest first.
func (s *Session) History(ctx context.Context, limit int) ([]storage.MatchRecord, error) {
	return s.svc.store.ListMatches(ctx, s.Username(), limit)
}
