package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"transfers/internal/domain"
	kafka_infra "transfers/internal/infrastructure/kafka"
	"transfers/internal/repository/outbox_repo"
)

const batchSize = 10

// Processor ships committed outbox messages to Kafka. Each polling pass runs
// in its own transaction: pending rows are locked with SKIP LOCKED, published,
// and marked sent before the transaction commits, so two processors never
// double-publish a message.
type Processor struct {
	db           domain.TxBeginner
	outboxRepo   outbox_repo.OutboxRepository
	producer     kafka_infra.Producer
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *zap.Logger
}

func NewProcessor(
	db domain.TxBeginner,
	outboxRepo outbox_repo.OutboxRepository,
	producer kafka_infra.Producer,
	pollInterval time.Duration,
	pollTimeout time.Duration,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		db:           db,
		outboxRepo:   outboxRepo,
		producer:     producer,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		logger:       logger,
	}
}

// Start polls until the context is cancelled.
func (p *Processor) Start(ctx context.Context) {
	p.logger.Info("Starting outbox processor", zap.Duration("poll_interval", p.pollInterval))
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox processor stopping")
			return
		case <-ticker.C:
			p.ProcessPending(ctx)
		}
	}
}

// ProcessPending runs one polling pass.
func (p *Processor) ProcessPending(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, p.pollTimeout)
	defer cancel()

	tx, err := p.db.Begin(passCtx)
	if err != nil {
		p.logger.Error("Failed to begin transaction for outbox pass", zap.Error(err))
		return
	}

	messages, err := p.outboxRepo.GetPendingMessagesTx(passCtx, tx, batchSize)
	if err != nil {
		p.logger.Error("Failed to get pending outbox messages", zap.Error(err))
		tx.Rollback()
		return
	}
	if len(messages) == 0 {
		tx.Rollback()
		return
	}
	p.logger.Info("Found pending outbox messages", zap.Int("count", len(messages)))

	var sent, failed []string
	for _, msg := range messages {
		if err := p.producer.Produce(passCtx, msg.Topic, msg.Key, msg.Payload); err != nil {
			p.logger.Error("Failed to publish outbox message",
				zap.String("message_id", msg.ID),
				zap.String("topic", msg.Topic),
				zap.Error(err))
			failed = append(failed, msg.ID)
			continue
		}
		sent = append(sent, msg.ID)
	}

	if err := p.outboxRepo.MarkMessagesAsSentTx(passCtx, tx, sent); err != nil {
		p.logger.Error("Failed to mark outbox messages as sent", zap.Error(err))
		tx.Rollback()
		return
	}
	if err := p.outboxRepo.MarkMessagesAsFailedTx(passCtx, tx, failed); err != nil {
		p.logger.Error("Failed to mark outbox messages as failed", zap.Error(err))
		tx.Rollback()
		return
	}

	if err := tx.Commit(); err != nil {
		p.logger.Error("Failed to commit outbox pass", zap.Error(err))
		return
	}
	p.logger.Info("Outbox pass complete", zap.Int("sent", len(sent)), zap.Int("failed", len(failed)))
}
