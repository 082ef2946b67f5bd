package transfers

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"transfers/internal/domain"
	"transfers/internal/domain/event"
	"transfers/internal/storage/memory"
)

const testTopic = "transfer_events"

func newTestService(t *testing.T) (*memory.Store, TransferService) {
	t.Helper()
	store := memory.NewStore()
	svc := NewTransferService(store, store.Accounts(), store.Ledger(), store.Outbox(), testTopic, zap.NewNop())
	return store, svc
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestTransferSuccess(t *testing.T) {
	store, svc := newTestService(t)
	store.SeedAccount("a1", "Alice", "alice@example.com", dec(t, "1000"))
	store.SeedAccount("a2", "Bob", "bob@example.com", dec(t, "50"))

	transfer, err := svc.Transfer(context.Background(), "a1", "bob@example.com", "200")
	require.NoError(t, err)

	assert.Equal(t, "a1", transfer.SenderID)
	assert.Equal(t, "a2", transfer.ReceiverID)
	assert.Equal(t, "Alice", transfer.SenderName)
	assert.Equal(t, "Bob", transfer.ReceiverName)
	assert.True(t, transfer.Amount.Equal(dec(t, "200")))
	assert.NotZero(t, transfer.ID)
	assert.False(t, transfer.CreatedAt.IsZero())

	sender, _ := store.AccountSnapshot("a1")
	receiver, _ := store.AccountSnapshot("a2")
	assert.True(t, sender.Balance.Equal(dec(t, "800")), "sender balance %s", sender.Balance)
	assert.True(t, receiver.Balance.Equal(dec(t, "250")), "receiver balance %s", receiver.Balance)
	assert.Equal(t, 1, store.TransferCount())
}

func TestTransferInsufficientBalance(t *testing.T) {
	store, svc := newTestService(t)
	store.SeedAccount("a1", "Alice", "alice@example.com", dec(t, "100"))
	store.SeedAccount("a2", "Bob", "bob@example.com", dec(t, "0"))

	_, err := svc.Transfer(context.Background(), "a1", "bob@example.com", "200")
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	sender, _ := store.AccountSnapshot("a1")
	receiver, _ := store.AccountSnapshot("a2")
	assert.True(t, sender.Balance.Equal(dec(t, "100")))
	assert.True(t, receiver.Balance.Equal(dec(t, "0")))
	assert.Equal(t, 0, store.TransferCount())
	assert.Empty(t, store.OutboxMessages())
}

func TestTransferReceiverNotFound(t *testing.T) {
	store, svc := newTestService(t)
	store.SeedAccount("a1", "Alice", "alice@example.com", dec(t, "1000"))

	_, err := svc.Transfer(context.Background(), "a1", "nobody@example.com", "10")
	require.ErrorIs(t, err, domain.ErrReceiverNotFound)

	sender, _ := store.AccountSnapshot("a1")
	assert.True(t, sender.Balance.Equal(dec(t, "1000")))
	assert.Equal(t, 0, store.TransferCount())
}

func TestTransferInvalidAmount(t *testing.T) {
	store, svc := newTestService(t)
	store.SeedAccount("a1", "Alice", "alice@example.com", dec(t, "1000"))
	store.SeedAccount("a2", "Bob", "bob@example.com", dec(t, "0"))

	for _, raw := range []string{"abc", "-5", "0", "", "1e"} {
		_, err := svc.Transfer(context.Background(), "a1", "bob@example.com", raw)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, "amount %q", raw)
	}

	sender, _ := store.AccountSnapshot("a1")
	assert.True(t, sender.Balance.Equal(dec(t, "1000")))
	assert.Equal(t, 0, store.TransferCount())
}

func TestTransferToSelf(t *testing.T) {
	store, svc := newTestService(t)
	store.SeedAccount("a1", "Alice", "alice@example.com", dec(t, "1000"))

	_, err := svc.Transfer(context.Background(), "a1", "alice@example.com", "10")
	require.ErrorIs(t, err, domain.ErrSelfTransfer)

	sender, _ := store.AccountSnapshot("a1")
	assert.True(t, sender.Balance.Equal(dec(t, "1000")))
	assert.Equal(t, 0, store.TransferCount())
}

func TestTransferUnknownSender(t *testing.T) {
	store, svc := newTestService(t)
	store.SeedAccount("a2", "Bob", "bob@example.com", dec(t, "50"))

	_, err := svc.Transfer(context.Background(), "ghost", "bob@example.com", "10")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	receiver, _ := store.AccountSnapshot("a2")
	assert.True(t, receiver.Balance.Equal(dec(t, "50")))
	assert.Equal(t, 0, store.TransferCount())
}

func TestTransferFailureRetryIsClean(t *testing.T) {
	store, svc := newTestService(t)
	store.SeedAccount("a1", "Alice", "alice@example.com", dec(t, "100"))
	store.SeedAccount("a2", "Bob", "bob@example.com", dec(t, "0"))

	// A failed attempt leaves no trace; retrying yields the same result.
	_, err := svc.Transfer(context.Background(), "a1", "bob@example.com", "200")
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	_, err = svc.Transfer(context.Background(), "a1", "bob@example.com", "200")
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// A valid transfer still goes through afterwards.
	_, err = svc.Transfer(context.Background(), "a1", "bob@example.com", "100")
	require.NoError(t, err)
	sender, _ := store.AccountSnapshot("a1")
	assert.True(t, sender.Balance.Equal(dec(t, "0")))
}

func TestTransferWritesOutboxMessage(t *testing.T) {
	store, svc := newTestService(t)
	store.SeedAccount("a1", "Alice", "alice@example.com", dec(t, "1000"))
	store.SeedAccount("a2", "Bob", "bob@example.com", dec(t, "0"))

	transfer, err := svc.Transfer(context.Background(), "a1", "bob@example.com", "200")
	require.NoError(t, err)

	msgs := store.OutboxMessages()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, domain.OutboxStatusPending, msg.Status)
	assert.Equal(t, "transfer.completed", msg.MessageType)
	assert.Equal(t, testTopic, msg.Topic)

	var evt event.TransferCompletedEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &evt))
	assert.Equal(t, transfer.ID, evt.TransferID)
	assert.Equal(t, "a1", evt.SenderID)
	assert.Equal(t, "a2", evt.ReceiverID)
	assert.True(t, evt.Amount.Equal(dec(t, "200")))
}

func TestHistory(t *testing.T) {
	store, svc := newTestService(t)
	store.SeedAccount("a1", "Alice", "alice@example.com", dec(t, "1000"))
	store.SeedAccount("a2", "Bob", "bob@example.com", dec(t, "1000"))
	store.SeedAccount("a3", "Cara", "cara@example.com", dec(t, "1000"))

	_, err := svc.Transfer(context.Background(), "a1", "bob@example.com", "10")
	require.NoError(t, err)
	_, err = svc.Transfer(context.Background(), "a2", "alice@example.com", "5")
	require.NoError(t, err)
	_, err = svc.Transfer(context.Background(), "a3", "cara@example.com", "1")
	require.ErrorIs(t, err, domain.ErrSelfTransfer)
	_, err = svc.Transfer(context.Background(), "a3", "bob@example.com", "7")
	require.NoError(t, err)

	history, err := svc.History(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Newest first.
	assert.True(t, history[0].ID > history[1].ID)
	for _, tr := range history {
		assert.True(t, tr.SenderID == "a1" || tr.ReceiverID == "a1")
	}

	_, err = svc.History(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

// TestConcurrentOpposingTransfers runs many transfers in both directions
// between the same pair of accounts. The ascending-id lock order must keep
// them deadlock-free, and the pair's total balance must be conserved.
func TestConcurrentOpposingTransfers(t *testing.T) {
	store, svc := newTestService(t)
	store.SeedAccount("a1", "Alice", "alice@example.com", dec(t, "1000"))
	store.SeedAccount("a2", "Bob", "bob@example.com", dec(t, "1000"))

	const rounds = 50
	var wg sync.WaitGroup
	wg.Add(2 * rounds)
	for i := 0; i < rounds; i++ {
		go func() {
			defer wg.Done()
			svc.Transfer(context.Background(), "a1", "bob@example.com", "3")
		}()
		go func() {
			defer wg.Done()
			svc.Transfer(context.Background(), "a2", "alice@example.com", "3")
		}()
	}
	wg.Wait()

	sender, _ := store.AccountSnapshot("a1")
	receiver, _ := store.AccountSnapshot("a2")
	total := sender.Balance.Add(receiver.Balance)
	assert.True(t, total.Equal(dec(t, "2000")), "total balance %s", total)
	assert.True(t, sender.Balance.Sign() >= 0)
	assert.True(t, receiver.Balance.Sign() >= 0)
}

// TestConcurrentDrain fires more debits than the sender can afford; the
// engine must let exactly the affordable ones through and never go negative.
func TestConcurrentDrain(t *testing.T) {
	store, svc := newTestService(t)
	store.SeedAccount("a1", "Alice", "alice@example.com", dec(t, "100"))
	store.SeedAccount("a2", "Bob", "bob@example.com", dec(t, "0"))

	const attempts = 20
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			svc.Transfer(context.Background(), "a1", "bob@example.com", "10")
		}()
	}
	wg.Wait()

	sender, _ := store.AccountSnapshot("a1")
	receiver, _ := store.AccountSnapshot("a2")
	assert.True(t, sender.Balance.Equal(dec(t, "0")), "sender balance %s", sender.Balance)
	assert.True(t, receiver.Balance.Equal(dec(t, "100")), "receiver balance %s", receiver.Balance)
	assert.Equal(t, 10, store.TransferCount())
}
