package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"transfers/internal/domain"
	"transfers/internal/repository/accounts_repo"
	"transfers/internal/repository/ledger_repo"
	"transfers/internal/repository/outbox_repo"
)

// Accounts returns the memory implementation of the account store contract.
func (s *Store) Accounts() accounts_repo.AccountRepository { return &accountRepo{} }

// Ledger returns the memory implementation of the ledger store contract.
func (s *Store) Ledger() ledger_repo.LedgerRepository { return &ledgerRepo{} }

// Outbox returns the memory implementation of the outbox store contract.
func (s *Store) Outbox() outbox_repo.OutboxRepository { return &outboxRepo{} }

type accountRepo struct{}

func (r *accountRepo) CreateTx(ctx context.Context, querier domain.Querier, account *domain.Account) error {
	tx, err := asTx(querier)
	if err != nil {
		return err
	}
	tx.store.mu.Lock()
	for _, a := range tx.store.accounts {
		if a.Email == account.Email {
			tx.store.mu.Unlock()
			return domain.ErrEmailTaken
		}
	}
	tx.store.mu.Unlock()
	for _, staged := range tx.newAccounts {
		if staged.Email == account.Email {
			return domain.ErrEmailTaken
		}
	}
	tx.newAccounts = append(tx.newAccounts, *account)
	return nil
}

func (r *accountRepo) GetTx(ctx context.Context, querier domain.Querier, id string) (*domain.Account, error) {
	tx, err := asTx(querier)
	if err != nil {
		return nil, err
	}
	a, ok := tx.effectiveAccount(id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

func (r *accountRepo) GetByEmailTx(ctx context.Context, querier domain.Querier, email string) (*domain.Account, error) {
	tx, err := asTx(querier)
	if err != nil {
		return nil, err
	}
	tx.store.mu.Lock()
	var id string
	found := false
	for _, a := range tx.store.accounts {
		if a.Email == email {
			id, found = a.ID, true
			break
		}
	}
	tx.store.mu.Unlock()
	if !found {
		return nil, domain.ErrAccountNotFound
	}
	a, ok := tx.effectiveAccount(id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

func (r *accountRepo) GetForUpdateTx(ctx context.Context, querier domain.Querier, id string) (*domain.Account, error) {
	tx, err := asTx(querier)
	if err != nil {
		return nil, err
	}
	tx.lockRow(id)
	a, ok := tx.effectiveAccount(id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

func (r *accountRepo) AdjustBalanceTx(ctx context.Context, querier domain.Querier, id string, delta decimal.Decimal) error {
	tx, err := asTx(querier)
	if err != nil {
		return err
	}
	// Same contract as the SQL store: callers adjust only rows they locked.
	if !tx.holds(id) {
		return fmt.Errorf("account %s is not locked by this transaction", id)
	}
	a, ok := tx.effectiveAccount(id)
	if !ok {
		return domain.ErrAccountNotFound
	}
	if a.Balance.Add(delta).Sign() < 0 {
		return domain.ErrInsufficientBalance
	}
	if tx.deltas == nil {
		tx.deltas = make(map[string]decimal.Decimal)
	}
	tx.deltas[id] = tx.deltas[id].Add(delta)
	return nil
}

func (r *accountRepo) DeleteTx(ctx context.Context, querier domain.Querier, id string) error {
	tx, err := asTx(querier)
	if err != nil {
		return err
	}
	if _, ok := tx.effectiveAccount(id); !ok {
		return domain.ErrAccountNotFound
	}
	if tx.deleted == nil {
		tx.deleted = make(map[string]bool)
	}
	tx.deleted[id] = true
	return nil
}

type ledgerRepo struct{}

func (r *ledgerRepo) AppendTx(ctx context.Context, querier domain.Querier, transfer *domain.Transfer) error {
	tx, err := asTx(querier)
	if err != nil {
		return err
	}
	// Ids come from a sequence, like BIGSERIAL: monotonic, and burned if the
	// transaction rolls back.
	tx.store.mu.Lock()
	tx.store.nextID++
	transfer.ID = tx.store.nextID
	tx.store.mu.Unlock()

	tx.newTransfers = append(tx.newTransfers, transfer)
	return nil
}

func (r *ledgerRepo) ListByAccountTx(ctx context.Context, querier domain.Querier, accountID string) ([]domain.Transfer, error) {
	tx, err := asTx(querier)
	if err != nil {
		return nil, err
	}
	tx.store.mu.Lock()
	var result []domain.Transfer
	for _, t := range tx.store.transfers {
		if t.SenderID == accountID || t.ReceiverID == accountID {
			result = append(result, t)
		}
	}
	tx.store.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

type outboxRepo struct{}

func (r *outboxRepo) CreateMessageTx(ctx context.Context, querier domain.Querier, msg *domain.OutboxMessage) error {
	tx, err := asTx(querier)
	if err != nil {
		return err
	}
	tx.newMessages = append(tx.newMessages, *msg)
	return nil
}

func (r *outboxRepo) GetPendingMessagesTx(ctx context.Context, querier domain.Querier, limit int) ([]domain.OutboxMessage, error) {
	tx, err := asTx(querier)
	if err != nil {
		return nil, err
	}
	tx.store.mu.Lock()
	var pending []domain.OutboxMessage
	for _, m := range tx.store.outbox {
		if m.Status == domain.OutboxStatusPending {
			pending = append(pending, m)
		}
	}
	tx.store.mu.Unlock()

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *outboxRepo) MarkMessagesAsSentTx(ctx context.Context, querier domain.Querier, ids []string) error {
	tx, err := asTx(querier)
	if err != nil {
		return err
	}
	tx.sentIDs = append(tx.sentIDs, ids...)
	return nil
}

func (r *outboxRepo) MarkMessagesAsFailedTx(ctx context.Context, querier domain.Querier, ids []string) error {
	tx, err := asTx(querier)
	if err != nil {
		return err
	}
	tx.failedIDs = append(tx.failedIDs, ids...)
	return nil
}

// SeedAccount inserts an account directly into committed state; tests use it
// to arrange fixtures without going through the registration flow.
func (s *Store) SeedAccount(id, name, email string, balance decimal.Decimal) domain.Account {
	now := time.Now().UTC()
	a := domain.Account{
		ID:        id,
		Name:      name,
		Email:     email,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.accounts[id] = a
	s.mu.Unlock()
	return a
}
