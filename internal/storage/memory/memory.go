// Package memory provides an in-process persistence gateway for tests and
// throwaway servers.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xtding233/gacha-arena/internal/card"
	"github.com/xtding233/gacha-arena/internal/storage"
)

// Store keeps every table in maps guarded by one mutex.
type Store struct {
	mu       sync.RWMutex
	players  map[string]storage.PlayerStats
	cards    []storage.OwnedCard
	matches  []storage.MatchRecord
	accounts map[string]storage.Account
}

var _ storage.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		players:  make(map[string]storage.PlayerStats),
		accounts: make(map[string]storage.Account),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) LoadPlayer(ctx context.Context, username string) (storage.PlayerStats, error) {
	if err := ctx.Err(); err != nil {
		return storage.PlayerStats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[username]
	if !ok {
		return storage.PlayerStats{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) SavePlayer(ctx context.Context, p storage.PlayerStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(p.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.players[p.Username] = p
	s.mu.Unlock()
	return nil
}

func (s *Store) ListPlayers(ctx context.Context, order storage.Order, limit int) ([]storage.PlayerStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]storage.PlayerStats, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	s.mu.RUnlock()
	storage.SortPlayers(out, order)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) AppendCards(ctx context.Context, username string, cards []card.Card, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cards {
		s.cards = append(s.cards, storage.OwnedCard{Username: username, Card: c, AcquiredAt: at})
	}
	return nil
}

func (s *Store) LoadCollection(ctx context.Context, username string) ([]card.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []card.Card{}
	for _, oc := range s.cards {
		if oc.Username == username {
			out = append(out, oc.Card)
		}
	}
	return out, nil
}

func (s *Store) ClearCollections(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.cards))
	s.cards = nil
	return n, nil
}

func (s *Store) AppendMatch(ctx context.Context, rec storage.MatchRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("match id is required")
	}
	if rec.PlayedAt.IsZero() {
		rec.PlayedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.ID == rec.ID {
			return storage.ErrAlreadyExists
		}
	}
	s.matches = append(s.matches, rec)
	return nil
}

func (s *Store) ListMatches(ctx context.Context, username string, limit int) ([]storage.MatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []storage.MatchRecord{}
	// walk backwards so equal timestamps keep newest-appended first
	for i := len(s.matches) - 1; i >= 0; i-- {
		if s.matches[i].Username == username {
			out = append(out, s.matches[i])
		}
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ClearMatches(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.matches))
	s.matches = nil
	return n, nil
}

func (s *Store) CreateAccount(ctx context.Context, acct storage.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(acct.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[acct.Username]; ok {
		return storage.ErrAlreadyExists
	}
	acct.PasswordHash = append([]byte(nil), acct.PasswordHash...)
	s.accounts[acct.Username] = acct
	return nil
}

func (s *Store) GetAccount(ctx context.Context, username string) (storage.Account, error) {
	if err := ctx.Err(); err != nil {
		return storage.Account{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[username]
	if !ok {
		return storage.Account{}, storage.ErrNotFound
	}
	acct.PasswordHash = append([]byte(nil), acct.PasswordHash...)
	return acct, nil
}

func sortNewestFirst(recs []storage.MatchRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].PlayedAt.After(recs[j].PlayedAt)
	})
}
