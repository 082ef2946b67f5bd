package ledger_repo

import (
	"context"
	"fmt"

	"transfers/internal/domain"
)

type ledgerRepository struct{}

func NewLedgerRepository() LedgerRepository {
	return &ledgerRepository{}
}

func (r *ledgerRepository) AppendTx(ctx context.Context, querier domain.Querier, transfer *domain.Transfer) error {
	query := `
		INSERT INTO transfers (sender_id, receiver_id, sender_name, receiver_name, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := querier.QueryRowContext(ctx, query,
		transfer.SenderID,
		transfer.ReceiverID,
		transfer.SenderName,
		transfer.ReceiverName,
		transfer.Amount,
		transfer.CreatedAt,
	).Scan(&transfer.ID)
	if err != nil {
		return fmt.Errorf("failed to append transfer record: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListByAccountTx(ctx context.Context, querier domain.Querier, accountID string) ([]domain.Transfer, error) {
	query := `
		SELECT id, sender_id, receiver_id, sender_name, receiver_name, amount, created_at
		FROM transfers
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := querier.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		var t domain.Transfer
		err := rows.Scan(
			&t.ID,
			&t.SenderID,
			&t.ReceiverID,
			&t.SenderName,
			&t.ReceiverName,
			&t.Amount,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer record: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer records: %w", err)
	}
	return transfers, nil
}
