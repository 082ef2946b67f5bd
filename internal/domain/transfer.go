package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is one completed movement of funds between two accounts. Records
// are immutable: they are appended exactly once, in the same transaction as
// the two balance mutations they describe, and never updated or deleted.
//
// SenderName and ReceiverName are snapshots of the account names at transfer
// time. Account names may change later; the record keeps what was true when
// the money moved.
type Transfer struct {
	ID           int64
	SenderID     string
	ReceiverID   string
	SenderName   string
	ReceiverName string
	Amount       decimal.Decimal
	CreatedAt    time.Time
}
