package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"transfers/internal/domain"
	"transfers/internal/storage/memory"
	"transfers/internal/util"
)

type fakeProducer struct {
	mu       sync.Mutex
	produced []string
	failNext bool
}

func (f *fakeProducer) Produce(ctx context.Context, topic, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return errors.New("broker unreachable")
	}
	f.produced = append(f.produced, topic)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func seedMessage(t *testing.T, store *memory.Store, topic string) string {
	t.Helper()
	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	msg := &domain.OutboxMessage{
		ID:            util.GenerateUUID(),
		AggregateID:   "1",
		AggregateType: "transfer",
		MessageType:   "transfer.completed",
		Topic:         topic,
		Key:           "a1",
		Payload:       []byte(`{}`),
		Status:        domain.OutboxStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, store.Outbox().CreateMessageTx(context.Background(), tx, msg))
	require.NoError(t, tx.Commit())
	return msg.ID
}

func TestProcessPendingPublishesAndMarksSent(t *testing.T) {
	store := memory.NewStore()
	producer := &fakeProducer{}
	p := NewProcessor(store, store.Outbox(), producer, time.Second, time.Second, zap.NewNop())

	id := seedMessage(t, store, "transfer_events")
	p.ProcessPending(context.Background())

	assert.Equal(t, []string{"transfer_events"}, producer.produced)
	msgs := store.OutboxMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID)
	assert.Equal(t, domain.OutboxStatusSent, msgs[0].Status)
	require.NotNil(t, msgs[0].SentAt)
}

func TestProcessPendingMarksFailedOnProduceError(t *testing.T) {
	store := memory.NewStore()
	producer := &fakeProducer{failNext: true}
	p := NewProcessor(store, store.Outbox(), producer, time.Second, time.Second, zap.NewNop())

	seedMessage(t, store, "transfer_events")
	p.ProcessPending(context.Background())

	msgs := store.OutboxMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.OutboxStatusFailed, msgs[0].Status)
	assert.Nil(t, msgs[0].SentAt)
}

func TestProcessPendingNoMessages(t *testing.T) {
	store := memory.NewStore()
	producer := &fakeProducer{}
	p := NewProcessor(store, store.Outbox(), producer, time.Second, time.Second, zap.NewNop())

	p.ProcessPending(context.Background())
	assert.Empty(t, producer.produced)
}
