package outbox_repo

import (
	"context"

	"transfers/internal/domain"
)

type OutboxRepository interface {
	CreateMessageTx(ctx context.Context, querier domain.Querier, msg *domain.OutboxMessage) error
	// GetPendingMessagesTx locks up to limit pending messages with
	// FOR UPDATE SKIP LOCKED so concurrent pollers never pick the same batch.
	GetPendingMessagesTx(ctx context.Context, querier domain.Querier, limit int) ([]domain.OutboxMessage, error)
	MarkMessagesAsSentTx(ctx context.Context, querier domain.Querier, ids []string) error
	MarkMessagesAsFailedTx(ctx context.Context, querier domain.Querier, ids []string) error
}
