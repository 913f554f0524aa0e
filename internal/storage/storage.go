// Package storage defines persistence contracts for player stats, owned
// cards, match history and accounts.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xtding233/gacha-arena/internal/card"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// PlayerStats is one row of the players table.
type PlayerStats struct {
	Username  string
	Level     int
	XP        int
	Currency  int
	Rating    int
	UpdatedAt time.Time
}

// OwnedCard is one append-only row of a player's collection.
type OwnedCard struct {
	Username   string
	Card       card.Card
	AcquiredAt time.Time
}

// MatchRecord is the immutable trace of a completed match.
type MatchRecord struct {
	ID       string
	Username string
	Opponent string
	Wins     int
	Losses   int
	Draws    int
	PlayedAt time.Time
}

// Account holds login credentials, kept apart from PlayerStats.
type Account struct {
	Username     string
	PasswordHash []byte
	Admin        bool
	CreatedAt    time.Time
}

// Order selects the leaderboard sort key.
type Order string

const (
	ByLevel    Order = "level"
	ByCurrency Order = "currency"
	ByRating   Order = "rating"
)

// ParseOrder accepts level, currency or rating in any case; empty means rating.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return ByRating, nil
	case ByLevel, ByCurrency, ByRating:
		return o, nil
	}
	return "", fmt.Errorf("unknown leaderboard order %q", s)
}

// PlayerStore persists player stats.
type PlayerStore interface {
	// LoadPlayer returns ErrNotFound when username has no row.
	LoadPlayer(ctx context.Context, username string) (PlayerStats, error)
	// SavePlayer upserts by username.
	SavePlayer(ctx context.Context, stats PlayerStats) error
	// ListPlayers sorts descending by order, ties by username ascending.
	// limit <= 0 returns every player.
	ListPlayers(ctx context.Context, order Order, limit int) ([]PlayerStats, error)
}

// CollectionStore persists owned cards.
type CollectionStore interface {
	AppendCards(ctx context.Context, username string, cards []card.Card, at time.Time) error
	// LoadCollection returns cards in acquisition order.
	LoadCollection(ctx context.Context, username string) ([]card.Card, error)
	ClearCollections(ctx context.Context) (int64, error)
}

// MatchStore persists match history.
type MatchStore interface {
	AppendMatch(ctx context.Context, rec MatchRecord) error
	// ListMatches returns newest first. limit <= 0 returns every record.
	ListMatches(ctx context.Context, username string, limit int) ([]MatchRecord, error)
	ClearMatches(ctx context.Context) (int64, error)
}

// AccountStore persists credentials.
type AccountStore interface {
	// CreateAccount returns ErrAlreadyExists for a taken username.
	CreateAccount(ctx context.Context, acct Account) error
	GetAccount(ctx context.Context, username string) (Account, error)
}

// Store is the full persistence gateway.
type Store interface {
	PlayerStore
	CollectionStore
	MatchStore
	AccountStore
	Close() error
}

// LoadOrCreatePlayer loads username's stats, saving defaults first when no
// row exists. created reports whether defaults were written.
func LoadOrCreatePlayer(ctx context.Context, s PlayerStore, username string, defaults PlayerStats) (stats PlayerStats, created bool, err error) {
	stats, err = s.LoadPlayer(ctx, username)
	if err == nil {
		return stats, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return PlayerStats{}, false, err
	}
	defaults.Username = username
	if err := s.SavePlayer(ctx, defaults); err != nil {
		return PlayerStats{}, false, fmt.Errorf("save default stats: %w", err)
	}
	return defaults, true, nil
}

// SortPlayers orders players in place the way ListPlayers must.
func SortPlayers(players []PlayerStats, order Order) {
	key := func(p PlayerStats) int {
		switch order {
		case ByLevel:
			return p.Level
		case ByCurrency:
			return p.Currency
		default:
			return p.Rating
		}
	}
	sort.SliceStable(players, func(i, j int) bool {
		ki, kj := key(players[i]), key(players[j])
		if ki != kj {
			return ki > kj
		}
		return players[i].Username < players[j].Username
	})
}
