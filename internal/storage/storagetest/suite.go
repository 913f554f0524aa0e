// Package storagetest holds the behaviour every storage.Store must share.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/gacha-arena/internal/card"
	"github.com/xtding233/gacha-arena/internal/storage"
)

// Run exercises a fresh store from open for each subtest.
func Run(t *testing.T, open func(t *testing.T) storage.Store) {
	t.Run("PlayerUpsert", func(t *testing.T) { testPlayerUpsert(t, open(t)) })
	t.Run("LoadOrCreate", func(t *testing.T) { testLoadOrCreate(t, open(t)) })
	t.Run("Leaderboard", func(t *testing.T) { testLeaderboard(t, open(t)) })
	t.Run("Collection", func(t *testing.T) { testCollection(t, open(t)) })
	t.Run("Matches", func(t *testing.T) { testMatches(t, open(t)) })
	t.Run("Accounts", func(t *testing.T) { testAccounts(t, open(t)) })
	t.Run("CanceledContext", func(t *testing.T) { testCanceled(t, open(t)) })
}

func testPlayerUpsert(t *testing.T, s storage.Store) {
	ctx := context.Background()
	_, err := s.LoadPlayer(ctx, "alice")
	require.ErrorIs(t, err, storage.ErrNotFound)

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	in := storage.PlayerStats{Username: "alice", Level: 2, XP: 15, Currency: 900, Rating: 1005, UpdatedAt: at}
	require.NoError(t, s.SavePlayer(ctx, in))
	got, err := s.LoadPlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, in, got)

	in.Currency = 50
	in.Rating = -3
	require.NoError(t, s.SavePlayer(ctx, in))
	got, err = s.LoadPlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 50, got.Currency)
	assert.Equal(t, -3, got.Rating)

	assert.Error(t, s.SavePlayer(ctx, storage.PlayerStats{Username: "  "}))
}

func testLoadOrCreate(t *testing.T, s storage.Store) {
	ctx := context.Background()
	defaults := storage.PlayerStats{Level: 1, Currency: 1000, Rating: 1000}
	p, created, err := storage.LoadOrCreatePlayer(ctx, s, "bob", defaults)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "bob", p.Username)
	assert.Equal(t, 1000, p.Currency)

	p.Currency = 10
	require.NoError(t, s.SavePlayer(ctx, p))
	p, created, err = storage.LoadOrCreatePlayer(ctx, s, "bob", defaults)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 10, p.Currency)
}

func testLeaderboard(t *testing.T, s storage.Store) {
	ctx := context.Background()
	for _, p := range []storage.PlayerStats{
		{Username: "carol", Level: 3, Currency: 100, Rating: 990},
		{Username: "alice", Level: 1, Currency: 500, Rating: 1010},
		{Username: "bob", Level: 3, Currency: 500, Rating: 1010},
	} {
		require.NoError(t, s.SavePlayer(ctx, p))
	}
	names := func(ps []storage.PlayerStats) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.Username)
		}
		return out
	}

	ps, err := s.ListPlayers(ctx, storage.ByLevel, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol", "alice"}, names(ps))

	ps, err = s.ListPlayers(ctx, storage.ByCurrency, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, names(ps))

	ps, err = s.ListPlayers(ctx, storage.ByRating, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, names(ps))
}

func testCollection(t *testing.T, s storage.Store) {
	ctx := context.Background()
	hound := card.Card{Name: "Blaze Hound", Attribute: card.Fire, Rarity: card.R, Category: card.Beast, Description: "d", BasePower: 4}
	// same template, different roll: both rows are kept
	hound2 := hound
	hound2.BasePower = 5
	ninja := card.Card{Name: "Tide Ninja", Attribute: card.Water, Rarity: card.SR, Category: card.Warrior, BasePower: 7}

	require.NoError(t, s.AppendCards(ctx, "alice", []card.Card{hound, hound2}, time.Time{}))
	require.NoError(t, s.AppendCards(ctx, "bob", []card.Card{ninja}, time.Now()))
	require.NoError(t, s.AppendCards(ctx, "alice", []card.Card{ninja}, time.Now()))
	require.NoError(t, s.AppendCards(ctx, "alice", nil, time.Now()))

	got, err := s.LoadCollection(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []card.Card{hound, hound2, ninja}, got)

	got, err = s.LoadCollection(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err := s.ClearCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	got, err = s.LoadCollection(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testMatches(t *testing.T, s storage.Store) {
	ctx := context.Background()
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, s.AppendMatch(ctx, storage.MatchRecord{
			ID: id, Username: "alice", Opponent: "Computer",
			Wins: i, Losses: 1, Draws: 0, PlayedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.AppendMatch(ctx, storage.MatchRecord{ID: "b1", Username: "bob", Opponent: "Computer", PlayedAt: base}))
	assert.ErrorIs(t, s.AppendMatch(ctx, storage.MatchRecord{ID: "m1", Username: "alice"}), storage.ErrAlreadyExists)

	recs, err := s.ListMatches(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "m3", recs[0].ID)
	assert.Equal(t, "m1", recs[2].ID)
	assert.Equal(t, 2, recs[0].Wins)
	assert.True(t, base.Add(2*time.Minute).Equal(recs[0].PlayedAt))

	recs, err = s.ListMatches(ctx, "alice", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "m3", recs[0].ID)

	n, err := s.ClearMatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	recs, err = s.ListMatches(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func testAccounts(t *testing.T, s storage.Store) {
	ctx := context.Background()
	_, err := s.GetAccount(ctx, "root")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.CreateAccount(ctx, storage.Account{Username: "root", PasswordHash: []byte("hash"), Admin: true}))
	assert.ErrorIs(t, s.CreateAccount(ctx, storage.Account{Username: "root", PasswordHash: []byte("x")}), storage.ErrAlreadyExists)

	acct, err := s.GetAccount(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, []byte("hash"), acct.PasswordHash)
	assert.True(t, acct.Admin)
	assert.False(t, acct.CreatedAt.IsZero())

	// credentials never create a stats row
	_, err = s.LoadPlayer(ctx, "root")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testCanceled(t *testing.T, s storage.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.LoadPlayer(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.SavePlayer(ctx, storage.PlayerStats{Username: "a"}), context.Canceled)
	assert.ErrorIs(t, s.AppendCards(ctx, "a", []card.Card{{Name: "x"}}, time.Now()), context.Canceled)
	_, err = s.ListMatches(ctx, "a", 0)
	assert.ErrorIs(t, err, context.Canceled)
}
