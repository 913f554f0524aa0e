package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/xtding233/gacha-arena/internal/progression"
	"github.com/xtding233/gacha-arena/internal/storage"
)

// PurgeTarget names what an admin purge clears.
type PurgeTarget string

const (
	PurgeRecords PurgeTarget = "records"
	PurgeCards   PurgeTarget = "cards"
	PurgeAll     PurgeTarget = "all"
)

// ParsePurgeTarget accepts records, cards or all.
func ParsePurgeTarget(s string) (PurgeTarget, error) {
	switch t := PurgeTarget(strings.ToLower(strings.TrimSpace(s))); t {
	case PurgeRecords, PurgeCards, PurgeAll:
		return t, nil
	}
	return "", fmt.Errorf("unknown purge target %q", s)
}

// PurgeResult counts deleted rows.
type PurgeResult struct {
	Records int64
	Cards   int64
}

// Leaderboard lists players sorted by order. Stats of logged-in players are
// flushed first so the ranking reflects in-memory progress.
func (s *Service) Leaderboard(ctx context.Context, order storage.Order, limit int) ([]storage.PlayerStats, error) {
	s.mu.Lock()
	players := make([]*progression.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	s.mu.Unlock()
	for _, p := range players {
		// best effort; a failed flush only makes the board stale
		_ = s.saveStats(ctx, p)
	}
	return s.store.ListPlayers(ctx, order, limit)
}

// Purge clears match records and/or owned cards for every player.
func (s *Service) Purge(ctx context.Context, sess *Session, target PurgeTarget) (PurgeResult, error) {
	if sess == nil || !sess.IsAdmin() {
		return PurgeResult{}, ErrForbidden
	}
	target, err := ParsePurgeTarget(string(target))
	if err != nil {
		return PurgeResult{}, err
	}
	var res PurgeResult
	if target == PurgeRecords || target == PurgeAll {
		n, err := s.store.ClearMatches(ctx)
		if err != nil {
			return res, fmt.Errorf("clear match records: %w", err)
		}
		res.Records = n
	}
	if target == PurgeCards || target == PurgeAll {
		n, err := s.store.ClearCollections(ctx)
		if err != nil {
			return res, fmt.Errorf("clear owned cards: %w", err)
		}
		res.Cards = n
		s.mu.Lock()
		for _, p := range s.players {
			p.ClearCards()
		}
		s.mu.Unlock()
	}
	s.logger.Printf("[session] %s purged %s: %d record(s), %d card(s)", sess.Username(), target, res.Records, res.Cards)
	return res, nil
}
