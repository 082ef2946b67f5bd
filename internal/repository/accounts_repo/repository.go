package accounts_repo

import (
	"context"

	"github.com/shopspring/decimal"

	"transfers/internal/domain"
)

// AccountRepository is the account store contract consumed by the services.
// Every method takes the Querier of the enclosing unit of work.
type AccountRepository interface {
	CreateTx(ctx context.Context, querier domain.Querier, account *domain.Account) error
	GetTx(ctx context.Context, querier domain.Querier, id string) (*domain.Account, error)
	// GetByEmailTx resolves a recipient without locking the row.
	GetByEmailTx(ctx context.Context, querier domain.Querier, email string) (*domain.Account, error)
	// GetForUpdateTx acquires an exclusive row lock held until the enclosing
	// transaction commits or rolls back. Concurrent lockers of the same id
	// block until release.
	GetForUpdateTx(ctx context.Context, querier domain.Querier, id string) (*domain.Account, error)
	// AdjustBalanceTx applies a signed delta to an account. Callers must hold
	// the account's row lock.
	AdjustBalanceTx(ctx context.Context, querier domain.Querier, id string, delta decimal.Decimal) error
	DeleteTx(ctx context.Context, querier domain.Querier, id string) error
}
