package domain

import "errors"

var (
	// ErrInvalidAmount indicates the amount did not parse to a positive
	// monetary value. Raised before any lock or transaction is opened.
	ErrInvalidAmount = errors.New("amount must be a positive number")
	// ErrReceiverNotFound indicates no account exists for the recipient email.
	ErrReceiverNotFound = errors.New("receiver not found")
	// ErrSelfTransfer indicates sender and resolved receiver are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to own account")
	// ErrAccountNotFound indicates the account does not exist, or vanished
	// between resolution and lock acquisition.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientBalance indicates the locked sender balance is below the
	// transfer amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrEmailTaken indicates another account is already registered with the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrStoreUnavailable indicates an infrastructure failure; the unit of
	// work was rolled back and no state was mutated.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrForbidden indicates a missing or wrong administrative credential.
	ErrForbidden = errors.New("forbidden")
)

// Kind maps an error chain onto a stable machine-readable kind for API
// responses. Unrecognized errors report as internal.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrReceiverNotFound):
		return "receiver_not_found"
	case errors.Is(err, ErrSelfTransfer):
		return "self_transfer_not_allowed"
	case errors.Is(err, ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}
