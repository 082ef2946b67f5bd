package event

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferCompletedEvent is published after a transfer commits.
type TransferCompletedEvent struct {
	TransferID   int64           `json:"transfer_id"`
	SenderID     string          `json:"sender_id"`
	ReceiverID   string          `json:"receiver_id"`
	SenderName   string          `json:"sender_name"`
	ReceiverName string          `json:"receiver_name"`
	Amount       decimal.Decimal `json:"amount"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// AccountRegisteredEvent is published after an account is created.
type AccountRegisteredEvent struct {
	AccountID string          `json:"account_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Timestamp time.Time       `json:"timestamp"`
}
