package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a balance and the identity fields used to address transfers.
// Balances are mutated only by the transfer engine, under a held row lock,
// inside a single database transaction.
type Account struct {
	ID        string
	Name      string
	Email     string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
