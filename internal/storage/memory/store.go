// Package memory implements the account, ledger and outbox store contracts
// in process memory. It mirrors the Postgres behavior the services rely on:
// per-account row locks held for the length of a unit of work, and writes
// that are staged until commit and discarded on rollback. Tests use it to
// exercise the services, including under real goroutine contention.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"transfers/internal/domain"
)

type Store struct {
	mu        sync.Mutex
	accounts  map[string]domain.Account
	transfers []domain.Transfer
	outbox    map[string]domain.OutboxMessage
	rowLocks  map[string]*sync.Mutex
	nextID    int64
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		outbox:   make(map[string]domain.OutboxMessage),
		rowLocks: make(map[string]*sync.Mutex),
	}
}

func (s *Store) Begin(ctx context.Context) (domain.Tx, error) {
	return &Tx{store: s}, nil
}

var _ domain.TxBeginner = (*Store)(nil)

// rowLock returns the lock for an account id, creating it on first use. The
// lock outlives the account so a delete racing a transfer still serializes.
func (s *Store) rowLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rowLocks[id]; !ok {
		s.rowLocks[id] = &sync.Mutex{}
	}
	return s.rowLocks[id]
}

// Tx stages writes until Commit. The embedded nil Querier makes Tx satisfy
// domain.Tx; the memory repositories never execute SQL through it.
type Tx struct {
	domain.Querier
	store *Store

	held         []string
	deltas       map[string]decimal.Decimal
	newAccounts  []domain.Account
	deleted      map[string]bool
	newTransfers []*domain.Transfer
	newMessages  []domain.OutboxMessage
	sentIDs      []string
	failedIDs    []string
	done         bool
}

func (t *Tx) lockRow(id string) {
	for _, held := range t.held {
		if held == id {
			return
		}
	}
	t.store.rowLock(id).Lock()
	t.held = append(t.held, id)
}

func (t *Tx) holds(id string) bool {
	for _, held := range t.held {
		if held == id {
			return true
		}
	}
	return false
}

func (t *Tx) releaseLocks() {
	for _, id := range t.held {
		t.store.rowLock(id).Unlock()
	}
	t.held = nil
}

func (t *Tx) Commit() error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.done = true

	s := t.store
	s.mu.Lock()
	for _, a := range t.newAccounts {
		s.accounts[a.ID] = a
	}
	for id, delta := range t.deltas {
		a, ok := s.accounts[id]
		if !ok {
			continue
		}
		a.Balance = a.Balance.Add(delta)
		a.UpdatedAt = time.Now().UTC()
		s.accounts[id] = a
	}
	for id := range t.deleted {
		delete(s.accounts, id)
	}
	for _, tr := range t.newTransfers {
		s.transfers = append(s.transfers, *tr)
	}
	for _, m := range t.newMessages {
		s.outbox[m.ID] = m
	}
	now := time.Now().UTC()
	for _, id := range t.sentIDs {
		if m, ok := s.outbox[id]; ok {
			m.Status = domain.OutboxStatusSent
			m.SentAt = &now
			s.outbox[id] = m
		}
	}
	for _, id := range t.failedIDs {
		if m, ok := s.outbox[id]; ok {
			m.Status = domain.OutboxStatusFailed
			m.SentAt = nil
			s.outbox[id] = m
		}
	}
	s.mu.Unlock()

	t.releaseLocks()
	return nil
}

func (t *Tx) Rollback() error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.done = true
	t.releaseLocks()
	return nil
}

// effectiveAccount resolves an account as this transaction sees it: committed
// state plus its own staged writes.
func (t *Tx) effectiveAccount(id string) (domain.Account, bool) {
	if t.deleted[id] {
		return domain.Account{}, false
	}
	t.store.mu.Lock()
	a, ok := t.store.accounts[id]
	t.store.mu.Unlock()
	if !ok {
		for _, staged := range t.newAccounts {
			if staged.ID == id {
				a, ok = staged, true
				break
			}
		}
	}
	if !ok {
		return domain.Account{}, false
	}
	if delta, exists := t.deltas[id]; exists {
		a.Balance = a.Balance.Add(delta)
	}
	return a, true
}

func asTx(querier domain.Querier) (*Tx, error) {
	tx, ok := querier.(*Tx)
	if !ok {
		return nil, fmt.Errorf("memory store requires a memory transaction, got %T", querier)
	}
	if tx.done {
		return nil, fmt.Errorf("transaction already finished")
	}
	return tx, nil
}

// Snapshot helpers used by test assertions.

func (s *Store) AccountSnapshot(id string) (domain.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	return a, ok
}

func (s *Store) TransferCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transfers)
}

func (s *Store) OutboxMessages() []domain.OutboxMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]domain.OutboxMessage, 0, len(s.outbox))
	for _, m := range s.outbox {
		msgs = append(msgs, m)
	}
	return msgs
}
