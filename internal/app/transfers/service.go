package transfers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"transfers/internal/domain"
	"transfers/internal/domain/event"
	"transfers/internal/repository/accounts_repo"
	"transfers/internal/repository/ledger_repo"
	"transfers/internal/repository/outbox_repo"
	"transfers/internal/util"
)

// TransferService moves funds between accounts. A transfer debits the sender,
// credits the receiver and appends one ledger record as a single database
// transaction; a failed transfer leaves no observable state behind.
type TransferService interface {
	Transfer(ctx context.Context, senderID, recipientEmail, rawAmount string) (*domain.Transfer, error)
	History(ctx context.Context, accountID string) ([]domain.Transfer, error)
}

type transferService struct {
	db          domain.TxBeginner
	accountRepo accounts_repo.AccountRepository
	ledgerRepo  ledger_repo.LedgerRepository
	outboxRepo  outbox_repo.OutboxRepository
	eventsTopic string
	logger      *zap.Logger
}

func NewTransferService(
	db domain.TxBeginner,
	accountRepo accounts_repo.AccountRepository,
	ledgerRepo ledger_repo.LedgerRepository,
	outboxRepo outbox_repo.OutboxRepository,
	eventsTopic string,
	logger *zap.Logger,
) TransferService {
	return &transferService{
		db:          db,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		outboxRepo:  outboxRepo,
		eventsTopic: eventsTopic,
		logger:      logger,
	}
}

// parseAmount validates the raw amount before any lock or transaction is
// opened. Anything that is not a finite positive number is rejected.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, raw)
	}
	if amount.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrInvalidAmount, amount)
	}
	return amount, nil
}

func (s *transferService) Transfer(ctx context.Context, senderID, recipientEmail, rawAmount string) (*domain.Transfer, error) {
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error("Failed to begin transaction for transfer", zap.String("sender_id", senderID), zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered panic during transfer transaction, rolling back", zap.String("sender_id", senderID), zap.Any("panic", r))
			tx.Rollback()
			panic(r)
		}
	}()

	transfer, err := s.transferTx(ctx, tx, senderID, recipientEmail, amount)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Failed to roll back transfer transaction", zap.String("sender_id", senderID), zap.Error(rbErr))
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transfer transaction", zap.String("sender_id", senderID), zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Transfer committed",
		zap.Int64("transfer_id", transfer.ID),
		zap.String("sender_id", transfer.SenderID),
		zap.String("receiver_id", transfer.ReceiverID),
		zap.String("amount", transfer.Amount.String()),
	)
	return transfer, nil
}

func (s *transferService) transferTx(ctx context.Context, tx domain.Tx, senderID, recipientEmail string, amount decimal.Decimal) (*domain.Transfer, error) {
	receiver, err := s.accountRepo.GetByEmailTx(ctx, tx, recipientEmail)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: no account for email %s", domain.ErrReceiverNotFound, recipientEmail)
		}
		return nil, fmt.Errorf("failed to resolve recipient %s: %w", recipientEmail, err)
	}

	if receiver.ID == senderID {
		return nil, fmt.Errorf("%w: account %s", domain.ErrSelfTransfer, senderID)
	}

	// Lock both rows in ascending id order regardless of transfer direction,
	// so two opposite transfers between the same pair cannot deadlock.
	firstID, secondID := senderID, receiver.ID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := s.accountRepo.GetForUpdateTx(ctx, tx, firstID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", firstID, err)
	}
	second, err := s.accountRepo.GetForUpdateTx(ctx, tx, secondID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", secondID, err)
	}

	sender := first
	receiver = second
	if sender.ID != senderID {
		sender, receiver = second, first
	}

	if sender.Balance.LessThan(amount) {
		return nil, fmt.Errorf("%w: balance %s, amount %s", domain.ErrInsufficientBalance, sender.Balance, amount)
	}

	if err := s.accountRepo.AdjustBalanceTx(ctx, tx, sender.ID, amount.Neg()); err != nil {
		return nil, fmt.Errorf("failed to debit sender %s: %w", sender.ID, err)
	}
	if err := s.accountRepo.AdjustBalanceTx(ctx, tx, receiver.ID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit receiver %s: %w", receiver.ID, err)
	}

	now := time.Now().UTC()
	transfer := &domain.Transfer{
		SenderID:     sender.ID,
		ReceiverID:   receiver.ID,
		SenderName:   sender.Name,
		ReceiverName: receiver.Name,
		Amount:       amount,
		CreatedAt:    now,
	}
	if err := s.ledgerRepo.AppendTx(ctx, tx, transfer); err != nil {
		return nil, fmt.Errorf("failed to append ledger record: %w", err)
	}

	payload, err := json.Marshal(event.TransferCompletedEvent{
		TransferID:   transfer.ID,
		SenderID:     transfer.SenderID,
		ReceiverID:   transfer.ReceiverID,
		SenderName:   transfer.SenderName,
		ReceiverName: transfer.ReceiverName,
		Amount:       transfer.Amount,
		OccurredAt:   transfer.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transfer completed event: %w", err)
	}
	outboxMsg := &domain.OutboxMessage{
		ID:            util.GenerateUUID(),
		AggregateID:   strconv.FormatInt(transfer.ID, 10),
		AggregateType: "transfer",
		MessageType:   "transfer.completed",
		Topic:         s.eventsTopic,
		Key:           transfer.SenderID,
		Payload:       payload,
		Status:        domain.OutboxStatusPending,
		CreatedAt:     now,
	}
	if err := s.outboxRepo.CreateMessageTx(ctx, tx, outboxMsg); err != nil {
		return nil, fmt.Errorf("failed to create outbox message for transfer: %w", err)
	}

	return transfer, nil
}

func (s *transferService) History(ctx context.Context, accountID string) ([]domain.Transfer, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error("Failed to begin transaction for history", zap.String("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.accountRepo.GetTx(ctx, tx, accountID); err != nil {
		return nil, err
	}
	transfers, err := s.ledgerRepo.ListByAccountTx(ctx, tx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for account %s: %w", accountID, err)
	}
	return transfers, nil
}
