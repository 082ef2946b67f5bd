package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"transfers/internal/domain"
	"transfers/internal/domain/event"
	"transfers/internal/repository/accounts_repo"
	"transfers/internal/repository/outbox_repo"
	"transfers/internal/util"
)

// AccountService covers the read/write glue around the account store:
// registration, lookup and administrative deletion. Balances are only ever
// mutated by the transfer engine.
type AccountService interface {
	Register(ctx context.Context, name, email string) (*domain.Account, error)
	Get(ctx context.Context, id string) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
}

type accountService struct {
	db              domain.TxBeginner
	accountRepo     accounts_repo.AccountRepository
	outboxRepo      outbox_repo.OutboxRepository
	startingBalance decimal.Decimal
	eventsTopic     string
	logger          *zap.Logger
}

func NewAccountService(
	db domain.TxBeginner,
	accountRepo accounts_repo.AccountRepository,
	outboxRepo outbox_repo.OutboxRepository,
	startingBalance decimal.Decimal,
	eventsTopic string,
	logger *zap.Logger,
) AccountService {
	return &accountService{
		db:              db,
		accountRepo:     accountRepo,
		outboxRepo:      outboxRepo,
		startingBalance: startingBalance,
		eventsTopic:     eventsTopic,
		logger:          logger,
	}
}

func (s *accountService) Register(ctx context.Context, name, email string) (*domain.Account, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error("Failed to begin transaction for registration", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        util.GenerateUUID(),
		Name:      name,
		Email:     email,
		Balance:   s.startingBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accountRepo.CreateTx(ctx, tx, account); err != nil {
		tx.Rollback()
		return nil, err
	}

	payload, err := json.Marshal(event.AccountRegisteredEvent{
		AccountID: account.ID,
		Name:      account.Name,
		Balance:   account.Balance,
		Timestamp: now,
	})
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to marshal account registered event: %w", err)
	}
	outboxMsg := &domain.OutboxMessage{
		ID:            util.GenerateUUID(),
		AggregateID:   account.ID,
		AggregateType: "account",
		MessageType:   "account.registered",
		Topic:         s.eventsTopic,
		Key:           account.ID,
		Payload:       payload,
		Status:        domain.OutboxStatusPending,
		CreatedAt:     now,
	}
	if err := s.outboxRepo.CreateMessageTx(ctx, tx, outboxMsg); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create outbox message for registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit registration transaction", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Account registered",
		zap.String("account_id", account.ID),
		zap.String("balance", account.Balance.String()),
	)
	return account, nil
}

func (s *accountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error("Failed to begin transaction for account lookup", zap.String("account_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	return s.accountRepo.GetTx(ctx, tx, id)
}

// Delete is an administrative override. Ledger records referencing the
// account survive; they carry their own identity snapshots.
func (s *accountService) Delete(ctx context.Context, id string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error("Failed to begin transaction for account deletion", zap.String("account_id", id), zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	// Take the row lock first so the delete serializes with any in-flight
	// transfer touching this account.
	if _, err := s.accountRepo.GetForUpdateTx(ctx, tx, id); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.accountRepo.DeleteTx(ctx, tx, id); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit deletion transaction", zap.String("account_id", id), zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Account deleted", zap.String("account_id", id))
	return nil
}
