package accounts_repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"transfers/internal/domain"
)

const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
)

type accountRepository struct{}

func NewAccountRepository() AccountRepository {
	return &accountRepository{}
}

func (r *accountRepository) CreateTx(ctx context.Context, querier domain.Querier, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, name, email, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := querier.ExecContext(ctx, query,
		account.ID, account.Name, account.Email, account.Balance, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == pqUniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to create account %s: %w", account.ID, err)
	}
	return nil
}

func (r *accountRepository) GetTx(ctx context.Context, querier domain.Querier, id string) (*domain.Account, error) {
	query := `
		SELECT id, name, email, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	return scanAccount(querier.QueryRowContext(ctx, query, id), id)
}

func (r *accountRepository) GetByEmailTx(ctx context.Context, querier domain.Querier, email string) (*domain.Account, error) {
	query := `
		SELECT id, name, email, balance, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`
	return scanAccount(querier.QueryRowContext(ctx, query, email), email)
}

func (r *accountRepository) GetForUpdateTx(ctx context.Context, querier domain.Querier, id string) (*domain.Account, error) {
	query := `
		SELECT id, name, email, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`
	return scanAccount(querier.QueryRowContext(ctx, query, id), id)
}

func (r *accountRepository) AdjustBalanceTx(ctx context.Context, querier domain.Querier, id string, delta decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = $2
		WHERE id = $3
	`
	res, err := querier.ExecContext(ctx, query, delta, time.Now().UTC(), id)
	if err != nil {
		// The engine checks the balance under lock before debiting; the
		// CHECK (balance >= 0) constraint is the backstop.
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == pqCheckViolation {
			return domain.ErrInsufficientBalance
		}
		return fmt.Errorf("failed to adjust balance for account %s: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) DeleteTx(ctx context.Context, querier domain.Querier, id string) error {
	query := `DELETE FROM accounts WHERE id = $1`
	res, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func scanAccount(row *sql.Row, key string) (*domain.Account, error) {
	account := &domain.Account{}
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account %s: %w", key, err)
	}
	return account, nil
}
