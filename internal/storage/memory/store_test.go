package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/coin-ledger/internal/models"
)

func account(id, amount string) models.Account {
	return models.Account{ID: id, Amount: decimal.RequireFromString(amount)}
}

func TestGetAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore(account("1", "10"))

	got, err := store.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "10", got.Amount.String())

	require.NoError(t, store.Update(ctx, account("1", "12.5")))
	got, err = store.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.Amount.String())

	_, err = store.Get(ctx, "missing")
	require.ErrorIs(t, err, models.ErrAccountNotFound)
	require.ErrorIs(t, store.Update(ctx, account("missing", "1")), models.ErrAccountNotFound)
}

func TestUpdateAllIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore(account("1", "10"), account("2", "20"))

	err := store.UpdateAll(ctx, []models.Account{account("1", "0"), account("3", "30")})
	require.ErrorIs(t, err, models.ErrAccountNotFound)

	got, err := store.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "10", got.Amount.String())

	require.NoError(t, store.UpdateAll(ctx, []models.Account{account("1", "9.7"), account("2", "20.3")}))
	accounts, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "9.7", accounts[0].Amount.String())
	assert.Equal(t, "20.3", accounts[1].Amount.String())
}

func TestAddRemoveExists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore()

	require.NoError(t, store.Add(ctx, account("1", "10")))
	require.ErrorIs(t, store.Add(ctx, account("1", "5")), models.ErrAccountExists)

	exists, err := store.Exists(ctx, "1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Remove(ctx, "1"))
	require.ErrorIs(t, store.Remove(ctx, "1"), models.ErrAccountNotFound)

	exists, err = store.Exists(ctx, "1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListIsSortedCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore(account("b", "2"), account("a", "1"), account("c", "3"))

	accounts, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{accounts[0].ID, accounts[1].ID, accounts[2].ID})

	accounts[0].Amount = decimal.NewFromInt(99)
	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", got.Amount.String())
}
