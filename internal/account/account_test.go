package account

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xtding233/gacha-arena/internal/storage"
	"github.com/xtding233/gacha-arena/internal/storage/memory"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return New(store, WithCost(bcrypt.MinCost), WithLogger(log.New(io.Discard, "", 0))), store
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	acct, err := svc.Register(ctx, "  alice ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", acct.Username)
	assert.False(t, acct.Admin)

	stored, err := store.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, []byte("s3cret"), stored.PasswordHash)

	got, err := svc.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejects(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Register(ctx, "", "pass")
	assert.ErrorIs(t, err, ErrInvalidUsername)
	_, err = svc.Register(ctx, "a b", "pass")
	assert.ErrorIs(t, err, ErrInvalidUsername)
	_, err = svc.Register(ctx, strings.Repeat("x", MaxUsernameLen+1), "pass")
	assert.ErrorIs(t, err, ErrInvalidUsername)
	_, err = svc.Register(ctx, "bob", "abc")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Register(ctx, "bob", "abcd")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bob", "other")
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin"))
	acct, err := store.GetAccount(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, acct.Admin)

	// second call keeps the original password
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "changed"))
	_, err = svc.Authenticate(ctx, "admin", "admin")
	assert.NoError(t, err)

	// registering never creates player stats
	_, err = store.LoadPlayer(ctx, "admin")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
