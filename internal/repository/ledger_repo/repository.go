package ledger_repo

import (
	"context"

	"transfers/internal/domain"
)

// LedgerRepository is the append-only log of completed transfers.
type LedgerRepository interface {
	// AppendTx inserts a record inside the enclosing unit of work and fills
	// in its store-assigned id. If the unit of work rolls back, the append is
	// undone with it.
	AppendTx(ctx context.Context, querier domain.Querier, transfer *domain.Transfer) error
	// ListByAccountTx returns records where the account is sender or
	// receiver, newest first.
	ListByAccountTx(ctx context.Context, querier domain.Querier, accountID string) ([]domain.Transfer, error)
}
