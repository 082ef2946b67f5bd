package accounts

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"transfers/internal/domain"
	"transfers/internal/storage/memory"
)

func newTestService(t *testing.T) (*memory.Store, AccountService) {
	t.Helper()
	store := memory.NewStore()
	starting := decimal.RequireFromString("1000.00")
	svc := NewAccountService(store, store.Accounts(), store.Outbox(), starting, "transfer_events", zap.NewNop())
	return store, svc
}

func TestRegister(t *testing.T) {
	store, svc := newTestService(t)

	account, err := svc.Register(context.Background(), "Alice", "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "Alice", account.Name)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("1000.00")))

	stored, ok := store.AccountSnapshot(account.ID)
	require.True(t, ok)
	assert.True(t, stored.Balance.Equal(account.Balance))

	msgs := store.OutboxMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "account.registered", msgs[0].MessageType)
	assert.Equal(t, domain.OutboxStatusPending, msgs[0].Status)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store, svc := newTestService(t)

	first, err := svc.Register(context.Background(), "Alice", "alice@example.com")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Other Alice", "alice@example.com")
	require.ErrorIs(t, err, domain.ErrEmailTaken)

	// The failed attempt must not leave an outbox message behind.
	assert.Len(t, store.OutboxMessages(), 1)
	_, ok := store.AccountSnapshot(first.ID)
	assert.True(t, ok)
}

func TestGet(t *testing.T) {
	store, svc := newTestService(t)
	store.SeedAccount("a1", "Alice", "alice@example.com", decimal.RequireFromString("42.50"))

	account, err := svc.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("42.50")))

	_, err = svc.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestDelete(t *testing.T) {
	store, svc := newTestService(t)
	store.SeedAccount("a1", "Alice", "alice@example.com", decimal.RequireFromString("10"))

	require.NoError(t, svc.Delete(context.Background(), "a1"))
	_, ok := store.AccountSnapshot("a1")
	assert.False(t, ok)

	assert.ErrorIs(t, svc.Delete(context.Background(), "a1"), domain.ErrAccountNotFound)
}
