package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhartley/tally/internal/model"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	cache, err := NewCache(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	require.NoError(t, cache.Migrate(context.Background()))
	return cache
}

func TestCache_ReplaceAndListAccounts(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	err := cache.ReplaceAccounts(ctx, []model.Account{
		{ID: "A2", Name: "Savings", Type: "BANK", CurrencyCode: "PKR", CurrentBalance: 120000},
		{ID: "A1", Name: "Wallet", Type: "CASH", CurrencyCode: "PKR", CurrentBalance: 5000},
	})
	require.NoError(t, err)

	accounts, err := cache.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	// Ordered by name, not insertion.
	assert.Equal(t, "Savings", accounts[0].Name)
	assert.Equal(t, "Wallet", accounts[1].Name)
	assert.Equal(t, model.Amount(5000), accounts[1].CurrentBalance)
}

func TestCache_ReplaceAccountsDropsStaleRows(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.ReplaceAccounts(ctx, []model.Account{
		{ID: "A1", Name: "Wallet"},
		{ID: "A2", Name: "Closed"},
	}))
	require.NoError(t, cache.ReplaceAccounts(ctx, []model.Account{
		{ID: "A1", Name: "Wallet"},
	}))

	accounts, err := cache.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "A1", accounts[0].ID)
}

func TestCache_ResolveAccount(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.ReplaceAccounts(ctx, []model.Account{
		{ID: "A1", Name: "Wallet"},
		{ID: "A2", Name: "Savings"},
	}))

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr error
	}{
		{name: "by id", ref: "A1", wantID: "A1"},
		{name: "by exact name", ref: "Savings", wantID: "A2"},
		{name: "case insensitive name", ref: "wallet", wantID: "A1"},
		{name: "unknown", ref: "Brokerage", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := cache.ResolveAccount(ctx, tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, account.ID)
		})
	}
}

func TestCache_ResolveAccountAmbiguousName(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.ReplaceAccounts(ctx, []model.Account{
		{ID: "A1", Name: "Wallet"},
		{ID: "A2", Name: "wallet"},
	}))

	_, err := cache.ResolveAccount(ctx, "WALLET")
	assert.ErrorIs(t, err, ErrAmbiguous)
}

func TestCache_RefEntitiesPerKind(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.ReplaceRefEntities(ctx, model.KindCategory, []model.RefEntity{
		{ID: "1", Name: "Groceries", Type: "EXPENSE"},
		{ID: "2", Name: "Salary", Type: "INCOME"},
	}))
	require.NoError(t, cache.ReplaceRefEntities(ctx, model.KindMerchant, []model.RefEntity{
		{ID: "1", Name: "Imtiaz"},
	}))

	categories, err := cache.RefEntities(ctx, model.KindCategory)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "EXPENSE", categories[0].Type)

	merchants, err := cache.RefEntities(ctx, model.KindMerchant)
	require.NoError(t, err)
	require.Len(t, merchants, 1)
	assert.Empty(t, merchants[0].Type)
}

func TestCache_ResolveRefEntityScopedToKind(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.ReplaceRefEntities(ctx, model.KindCategory, []model.RefEntity{
		{ID: "7", Name: "Fuel", Type: "EXPENSE"},
	}))
	require.NoError(t, cache.ReplaceRefEntities(ctx, model.KindMerchant, []model.RefEntity{
		{ID: "7", Name: "Shell"},
	}))

	category, err := cache.ResolveRefEntity(ctx, model.KindCategory, "fuel")
	require.NoError(t, err)
	assert.Equal(t, "7", category.ID)

	// Same id exists as a merchant; the category lookup must not see it.
	_, err = cache.ResolveRefEntity(ctx, model.KindCategory, "Shell")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCache_SyncedAt(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	at, err := cache.SyncedAt(ctx, "accounts")
	require.NoError(t, err)
	assert.True(t, at.IsZero(), "unsynced collection should report zero time")

	require.NoError(t, cache.ReplaceAccounts(ctx, []model.Account{{ID: "A1", Name: "Wallet"}}))

	at, err = cache.SyncedAt(ctx, "accounts")
	require.NoError(t, err)
	assert.False(t, at.IsZero())
}

func TestCache_MigrateIsIdempotent(t *testing.T) {
	cache := newTestCache(t)
	require.NoError(t, cache.Migrate(context.Background()))
	require.NoError(t, cache.Migrate(context.Background()))
}
